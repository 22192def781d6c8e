package handlers

import (
	"errors"
	"net/http"

	"github.com/jredh-dev/hochzeit/internal/program"
	"github.com/jredh-dev/hochzeit/internal/rsvp"
)

const (
	msgRegistrationClosed      = "Die Anmeldung ist derzeit geschlossen."
	msgRegistrationUnavailable = "Die Anmeldung ist gerade nicht verfügbar. Bitte versucht es später nochmals."
)

type registerResp struct {
	Message        string `json:"message"`
	RegistrationID string `json:"registrationId"`
}

// Register stores a guest's RSVP.
// POST /api/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.Features.RegistrationEnabled {
		jsonError(w, msgRegistrationClosed, http.StatusForbidden)
		return
	}
	if h.rsvp == nil {
		jsonError(w, msgRegistrationUnavailable, http.StatusServiceUnavailable)
		return
	}

	var req rsvp.Request
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, rsvp.InvalidMessage, http.StatusBadRequest)
		return
	}

	reg, err := h.rsvp.Register(r.Context(), req)
	switch {
	case errors.Is(err, rsvp.ErrInvalid):
		jsonError(w, rsvp.InvalidMessage, http.StatusBadRequest)
		return
	case err != nil:
		jsonError(w, rsvp.FailureMessage, http.StatusInternalServerError)
		return
	}

	jsonOK(w, http.StatusCreated, registerResp{
		Message:        rsvp.SuccessMessage,
		RegistrationID: reg.ID,
	})
}

// RegisterPage renders the RSVP form.
// GET /anmeldung
func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, "register.html", h.pageData("Anmeldung", map[string]interface{}{
		"Program":             program.Options,
		"MaxPartySize":        rsvp.MaxPartySize,
		"RegistrationEnabled": h.cfg.Features.RegistrationEnabled,
	}))
}
