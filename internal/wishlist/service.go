package wishlist

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jredh-dev/hochzeit/pkg/models"
)

// SuccessMessage is returned to the guest after an accepted reservation.
const SuccessMessage = "Vielen Dank für eure Reservierung!"

const defaultNotifyTimeout = 20 * time.Second

// Ledger is the authoritative store of gifts and their contribution counts.
type Ledger interface {
	// Gifts reads every gift fresh from the store.
	Gifts(ctx context.Context) ([]models.Gift, error)

	// SetContributed stores contributed for gift. gift.ContributedParts is the
	// value the caller observed; implementations return ErrStale if the store
	// holds something else.
	SetContributed(ctx context.Context, gift models.Gift, contributed int) error
}

// AuditEntry is one accepted contribution, written to the append-only log.
type AuditEntry struct {
	Timestamp    time.Time
	SubmissionID string
	GiftID       string
	GiftTitle    string
	Parts        int
	Name         string
	Email        string
	Message      string
}

// AuditLog records accepted contributions.
type AuditLog interface {
	Append(ctx context.Context, entry AuditEntry) error
}

// Receipt summarizes an accepted submission for notification.
type Receipt struct {
	SubmissionID string
	Name         string
	Email        string
	Message      string
	Items        []ItemResult
	Total        Amount
}

// Notifier delivers a receipt, typically by e-mail.
type Notifier interface {
	NotifyContribution(ctx context.Context, receipt Receipt) error
}

// ItemResult is the state of one gift after a reservation was applied.
type ItemResult struct {
	GiftID           string `json:"id"`
	Title            string `json:"title"`
	Parts            int    `json:"parts"`
	TotalParts       int    `json:"totalParts"`
	ContributedParts int    `json:"contributedParts"`
	RemainingParts   int    `json:"remainingParts"`
	Amount           Amount `json:"amount"`
}

// Result is returned for an accepted submission.
type Result struct {
	SubmissionID string       `json:"submissionId"`
	Message      string       `json:"message"`
	Items        []ItemResult `json:"gifts"`
	Total        Amount       `json:"total"`
}

// Option configures a Service.
type Option func(*Service)

// WithAuditLog enables the contribution log.
func WithAuditLog(a AuditLog) Option {
	return func(s *Service) { s.audit = a }
}

// WithNotifier enables contribution receipts.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service runs the reservation workflow against a Ledger.
type Service struct {
	ledger        Ledger
	audit         AuditLog
	notifier      Notifier
	log           *zap.Logger
	now           func() time.Time
	newID         func() string
	notifyTimeout time.Duration

	// mu serializes read-validate-write cycles within this process. The
	// ledger's stale check covers writers in other processes.
	mu sync.Mutex
}

// NewService creates a Service. A nil logger disables logging.
func NewService(ledger Ledger, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		ledger:        ledger,
		log:           logger,
		now:           time.Now,
		newID:         uuid.NewString,
		notifyTimeout: defaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Gifts returns the current wishlist.
func (s *Service) Gifts(ctx context.Context) ([]models.Gift, error) {
	gifts, err := s.ledger.Gifts(ctx)
	if err != nil {
		return nil, unavailable(err)
	}
	if gifts == nil {
		gifts = []models.Gift{}
	}
	return gifts, nil
}

// Reserve validates sub against a freshly loaded ledger and applies it. Every
// item is checked before anything is written; a rejected item rejects the
// whole submission.
func (s *Service) Reserve(ctx context.Context, sub Submission) (*Result, error) {
	name := strings.TrimSpace(sub.Name)
	email := strings.TrimSpace(sub.Email)
	message := strings.TrimSpace(sub.Message)

	if name == "" {
		return nil, invalid("Bitte gebt euren Namen für diese Reservierung an.")
	}
	if !(sub.EmailOptional && email == "") && !emailPattern.MatchString(email) {
		return nil, invalid("Bitte gebt Name und eine gültige E-Mail-Adresse an.")
	}

	requests, err := aggregate(sub.Items)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	gifts, err := s.ledger.Gifts(ctx)
	if err != nil {
		return nil, unavailable(err)
	}
	targets, err := validate(requests, gifts)
	if err != nil {
		return nil, err
	}

	if err := s.apply(ctx, targets, requests); err != nil {
		return nil, err
	}

	res := &Result{
		SubmissionID: s.newID(),
		Message:      SuccessMessage,
		Items:        make([]ItemResult, 0, len(targets)),
	}
	amounts := make([]Amount, 0, len(targets))
	ts := s.now().UTC()

	for i, g := range targets {
		parts := requests[i].parts
		contributed := g.ContributedParts + parts
		after := g
		after.ContributedParts = contributed

		amount := Contribution(g.Price, g.TotalParts, parts)
		amounts = append(amounts, amount)
		res.Items = append(res.Items, ItemResult{
			GiftID:           g.ID,
			Title:            g.Title,
			Parts:            parts,
			TotalParts:       g.TotalParts,
			ContributedParts: contributed,
			RemainingParts:   after.Remaining(),
			Amount:           amount,
		})

		s.appendAudit(ctx, AuditEntry{
			Timestamp:    ts,
			SubmissionID: res.SubmissionID,
			GiftID:       g.ID,
			GiftTitle:    g.Title,
			Parts:        parts,
			Name:         name,
			Email:        email,
			Message:      message,
		})
	}
	res.Total = SumAmounts(amounts)

	s.notify(ctx, Receipt{
		SubmissionID: res.SubmissionID,
		Name:         name,
		Email:        email,
		Message:      message,
		Items:        res.Items,
		Total:        res.Total,
	})

	return res, nil
}

// validate resolves every request against gifts, returning the matching gifts
// in request order.
func validate(requests []request, gifts []models.Gift) ([]models.Gift, error) {
	byID := make(map[string]models.Gift, len(gifts))
	for _, g := range gifts {
		byID[g.ID] = g
	}

	targets := make([]models.Gift, 0, len(requests))
	for _, r := range requests {
		g, ok := byID[r.giftID]
		if !ok {
			return nil, notFound(r.giftID)
		}
		remaining := g.Remaining()
		if remaining <= 0 {
			return nil, exhausted(g.ID, g.Title)
		}
		if r.parts > remaining {
			return nil, insufficient(g.ID, g.Title, remaining)
		}
		targets = append(targets, g)
	}
	return targets, nil
}

// apply persists every new contribution count. If a write fails, the writes
// already made are reverted before the error is returned.
func (s *Service) apply(ctx context.Context, targets []models.Gift, requests []request) error {
	for i, g := range targets {
		contributed := g.ContributedParts + requests[i].parts
		err := s.ledger.SetContributed(ctx, g, contributed)
		if err == nil {
			continue
		}

		s.log.Error("persist contribution failed",
			zap.String("gift_id", g.ID),
			zap.Int("contributed", contributed),
			zap.Error(err))
		s.revert(ctx, targets[:i], requests[:i])

		if errors.Is(err, ErrStale) {
			return &RequestError{
				Err:     ErrConflict,
				GiftID:  g.ID,
				Message: "Die Verfügbarkeit hat sich gerade geändert. Bitte ladet die Wunschliste neu.",
			}
		}
		return unavailable(err)
	}
	return nil
}

func (s *Service) revert(ctx context.Context, applied []models.Gift, requests []request) {
	if len(applied) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	for i, g := range applied {
		written := g
		written.ContributedParts = g.ContributedParts + requests[i].parts
		if err := s.ledger.SetContributed(ctx, written, g.ContributedParts); err != nil {
			s.log.Error("revert contribution failed",
				zap.String("gift_id", g.ID),
				zap.Int("contributed", written.ContributedParts),
				zap.Int("restore_to", g.ContributedParts),
				zap.Error(err))
		}
	}
}

func (s *Service) appendAudit(ctx context.Context, entry AuditEntry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		s.log.Warn("append contribution log failed",
			zap.String("submission_id", entry.SubmissionID),
			zap.String("gift_id", entry.GiftID),
			zap.Error(err))
	}
}

func (s *Service) notify(ctx context.Context, receipt Receipt) {
	if s.notifier == nil || receipt.Email == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	if err := s.notifier.NotifyContribution(ctx, receipt); err != nil {
		s.log.Warn("send contribution receipt failed",
			zap.String("submission_id", receipt.SubmissionID),
			zap.String("email", receipt.Email),
			zap.Error(err))
	}
}

// Basket reconciles a browser basket against the current wishlist.
func (s *Service) Basket(ctx context.Context, entries []BasketEntry) (*BasketView, error) {
	gifts, err := s.Gifts(ctx)
	if err != nil {
		return nil, err
	}
	view := BuildBasketView(entries, gifts)
	return &view, nil
}
