package wishlist

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("invalid submission")
	ErrNotFound         = errors.New("gift not found")
	ErrConflict         = errors.New("not enough parts remaining")
	ErrStoreUnavailable = errors.New("wishlist store unavailable")

	// ErrStale is returned by a Ledger when the stored contribution count no
	// longer matches the value the caller observed.
	ErrStale = errors.New("contribution count changed since read")
)

// RequestError carries the guest-facing message for a rejected submission.
type RequestError struct {
	Err       error
	Message   string
	GiftID    string
	Remaining int
}

func (e *RequestError) Error() string {
	if e.GiftID != "" {
		return fmt.Sprintf("%v (gift %s): %s", e.Err, e.GiftID, e.Message)
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Message)
}

func (e *RequestError) Unwrap() error { return e.Err }

// UserMessage returns the message suitable for showing to a guest, falling
// back to fallback for errors that are not RequestErrors.
func UserMessage(err error, fallback string) string {
	var re *RequestError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return fallback
}

func invalid(msg string) error {
	return &RequestError{Err: ErrValidation, Message: msg}
}

func notFound(id string) error {
	return &RequestError{Err: ErrNotFound, GiftID: id, Message: "Geschenk wurde nicht gefunden."}
}

func exhausted(id, title string) error {
	msg := "Dieses Geschenk wurde bereits komplett reserviert."
	if title != "" {
		msg = fmt.Sprintf("„%s“ wurde bereits komplett reserviert.", title)
	}
	return &RequestError{Err: ErrConflict, GiftID: id, Message: msg}
}

func insufficient(id, title string, remaining int) error {
	msg := fmt.Sprintf("Es sind nur noch %d Anteil(e) verfügbar.", remaining)
	if title != "" {
		msg = fmt.Sprintf("Für „%s“ sind nur noch %d Anteil(e) verfügbar.", title, remaining)
	}
	return &RequestError{Err: ErrConflict, GiftID: id, Remaining: remaining, Message: msg}
}

func unavailable(err error) error {
	return &RequestError{
		Err:     fmt.Errorf("%w: %w", ErrStoreUnavailable, err),
		Message: "Wir konnten die Reservierung nicht speichern. Bitte versucht es später nochmals.",
	}
}
