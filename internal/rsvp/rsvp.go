// Package rsvp validates and stores guest registrations.
package rsvp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jredh-dev/hochzeit/internal/program"
	"github.com/jredh-dev/hochzeit/pkg/identity"
	"github.com/jredh-dev/hochzeit/pkg/models"
)

// Guest-facing messages.
const (
	InvalidMessage = "Bitte gebt euren Namen, eure E-Mail-Adresse und mindestens einen Programmpunkt an."
	SuccessMessage = "Danke! Eure Anmeldung ist eingegangen. Wir melden uns bald mit weiteren Details."
	FailureMessage = "Die Anmeldung konnte nicht gespeichert werden. Bitte versucht es später nochmals."
)

// MaxPartySize caps the number of people one RSVP may cover.
const MaxPartySize = 12

var (
	// ErrInvalid is returned for incomplete or malformed registrations.
	ErrInvalid = errors.New("invalid registration")
	// ErrStore wraps persistence failures.
	ErrStore = errors.New("registration store failed")
)

// Store persists registrations. Saving under an existing key replaces the
// earlier registration.
type Store interface {
	SaveRegistration(ctx context.Context, key string, reg *models.Registration) error
}

// PartySize decodes from a JSON number or numeric string. Anything else is
// treated as a single guest.
type PartySize int

// UnmarshalJSON implements json.Unmarshaler.
func (p *PartySize) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		var s string
		if json.Unmarshal(data, &s) != nil {
			*p = 1
			return nil
		}
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			*p = 1
			return nil
		}
	}
	*p = PartySize(clampParty(f))
	return nil
}

func clampParty(f float64) int {
	if math.IsNaN(f) || f < 1 {
		return 1
	}
	if f > MaxPartySize {
		return MaxPartySize
	}
	return int(math.Round(f))
}

// Request is the body of POST /api/register.
type Request struct {
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	PartySize PartySize `json:"partySize"`
	Attending []string  `json:"attending"`
	Message   string    `json:"message"`
}

// Service registers guests.
type Service struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

// NewService creates a Service. A nil logger disables logging.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store: store,
		log:   logger,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Register validates req and stores it keyed by the guest's normalized
// e-mail address, so a repeated RSVP replaces the previous one.
func (s *Service) Register(ctx context.Context, req Request) (*models.Registration, error) {
	reg, err := normalize(req)
	if err != nil {
		return nil, err
	}
	reg.ID = s.newID()
	reg.CreatedAt = s.now().UTC()

	if err := s.store.SaveRegistration(ctx, identity.GuestKey(reg.Email), reg); err != nil {
		s.log.Error("save registration failed",
			zap.String("registration_id", reg.ID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	s.log.Info("registration saved",
		zap.String("registration_id", reg.ID),
		zap.Int("party_size", reg.PartySize),
		zap.Strings("attending", reg.Attending))
	return reg, nil
}

func normalize(req Request) (*models.Registration, error) {
	name := strings.TrimSpace(req.FullName)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalid
	}

	seen := make(map[string]bool, len(req.Attending))
	attending := make([]string, 0, len(req.Attending))
	for _, id := range req.Attending {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		if _, ok := program.Lookup(id); !ok {
			return nil, fmt.Errorf("%w: unknown program item %q", ErrInvalid, id)
		}
		seen[id] = true
		attending = append(attending, id)
	}
	if len(attending) == 0 {
		return nil, ErrInvalid
	}

	size := int(req.PartySize)
	if size < 1 {
		size = 1
	}

	return &models.Registration{
		FullName:  name,
		Email:     email,
		PartySize: size,
		Attending: attending,
		Message:   strings.TrimSpace(req.Message),
	}, nil
}
