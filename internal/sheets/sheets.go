// Package sheets stores the wishlist in a Google spreadsheet: one gift per
// row below a header row, plus an optional append-only contribution log.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/jredh-dev/hochzeit/internal/wishlist"
	"github.com/jredh-dev/hochzeit/pkg/models"
)

// DefaultWishlistWorksheet is used when no worksheet name is configured.
const DefaultWishlistWorksheet = "Wishlist"

// ErrMissingColumn is returned when the sheet has no "payed" column to write to.
var ErrMissingColumn = errors.New("wishlist sheet has no payed column")

// Config locates the spreadsheet and the credentials used to reach it.
type Config struct {
	SpreadsheetID     string
	WishlistWorksheet string
	LogWorksheet      string // empty disables the contribution log

	// Service account credentials, either inline or as a JSON key file.
	ServiceAccountEmail      string
	ServiceAccountPrivateKey string
	CredentialsPath          string
}

// Store reads and writes the wishlist sheet.
type Store struct {
	svc           *gsheets.Service
	spreadsheetID string
	worksheet     string
	logWorksheet  string
}

// New connects to the Sheets API. Extra client options are appended after
// the credential options, so tests can point the client at a fake endpoint.
func New(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Store, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	var clientOpts []option.ClientOption
	switch {
	case cfg.ServiceAccountEmail != "" && cfg.ServiceAccountPrivateKey != "":
		jc := &jwt.Config{
			Email:      cfg.ServiceAccountEmail,
			PrivateKey: []byte(cfg.ServiceAccountPrivateKey),
			Scopes:     []string{gsheets.SpreadsheetsScope},
			TokenURL:   google.JWTTokenURL,
		}
		clientOpts = append(clientOpts, option.WithHTTPClient(jc.Client(ctx)))
	case cfg.CredentialsPath != "":
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsPath))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := gsheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	worksheet := cfg.WishlistWorksheet
	if worksheet == "" {
		worksheet = DefaultWishlistWorksheet
	}

	return &Store{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		worksheet:     worksheet,
		logWorksheet:  cfg.LogWorksheet,
	}, nil
}

// HasLog reports whether a contribution log worksheet is configured.
func (s *Store) HasLog() bool {
	return s.logWorksheet != ""
}

// Gifts implements wishlist.Ledger.
func (s *Store) Gifts(ctx context.Context) ([]models.Gift, error) {
	tbl, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return tbl.gifts, nil
}

// SetContributed implements wishlist.Ledger. The gift is located by id in a
// fresh read, so rows inserted or deleted above it do not redirect the write.
// The payed cell is then re-read and the write is refused with
// wishlist.ErrStale if the gift is gone or the cell no longer holds
// gift.ContributedParts.
func (s *Store) SetContributed(ctx context.Context, gift models.Gift, contributed int) error {
	tbl, err := s.load(ctx)
	if err != nil {
		return err
	}
	if tbl.payedCol < 0 {
		return ErrMissingColumn
	}
	row, ok := tbl.rowOf(gift.ID)
	if !ok {
		return fmt.Errorf("%w: gift %s no longer in sheet", wishlist.ErrStale, gift.ID)
	}

	cell := fmt.Sprintf("%s!%s%d", quoteSheet(s.worksheet), ColumnLetter(tbl.payedCol), row)

	current, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, cell).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", cell, err)
	}
	if observed := contributedFromCell(current.Values); observed != gift.ContributedParts {
		return fmt.Errorf("%w: %s holds %d, expected %d", wishlist.ErrStale, cell, observed, gift.ContributedParts)
	}

	vr := &gsheets.ValueRange{Values: [][]interface{}{{contributed}}}
	if _, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, cell, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("update %s: %w", cell, err)
	}
	return nil
}

// Append implements wishlist.AuditLog. It is a no-op without a log worksheet.
func (s *Store) Append(ctx context.Context, e wishlist.AuditEntry) error {
	if s.logWorksheet == "" {
		return nil
	}

	vr := &gsheets.ValueRange{Values: [][]interface{}{{
		e.Timestamp.UTC().Format(time.RFC3339),
		e.GiftID,
		e.GiftTitle,
		e.Parts,
		e.Name,
		e.Email,
		e.Message,
		e.SubmissionID,
	}}}
	rng := quoteSheet(s.logWorksheet) + "!A:H"
	if _, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("append %s: %w", rng, err)
	}
	return nil
}

func (s *Store) load(ctx context.Context) (*table, error) {
	rng := quoteSheet(s.worksheet) + "!A:Z"
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return parseTable(resp.Values), nil
}

// quoteSheet wraps worksheet names containing spaces or punctuation in the
// single quotes A1 notation requires.
func quoteSheet(name string) string {
	if strings.IndexFunc(name, func(r rune) bool {
		return !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	}) < 0 {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
