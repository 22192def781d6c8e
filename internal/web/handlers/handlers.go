package handlers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jredh-dev/hochzeit/config"
	"github.com/jredh-dev/hochzeit/internal/program"
	"github.com/jredh-dev/hochzeit/internal/rsvp"
	"github.com/jredh-dev/hochzeit/internal/token"
	"github.com/jredh-dev/hochzeit/internal/web/templates"
	"github.com/jredh-dev/hochzeit/internal/wishlist"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	cfg       *config.Config
	log       *zap.Logger
	wishlist  *wishlist.Service
	rsvp      *rsvp.Service // nil when no registration store is configured
	gate      *token.Service
	templates map[string]*template.Template
	now       func() time.Time
}

// New creates a new handler with parsed templates.
func New(cfg *config.Config, logger *zap.Logger, wl *wishlist.Service, reg *rsvp.Service, gate *token.Service) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	tmplMap := make(map[string]*template.Template)
	for _, page := range []string{
		"home.html", "login.html", "register.html", "wishlist.html", "basket.html",
	} {
		tmplMap[page] = template.Must(
			template.New(page).ParseFS(templates.FS, "base.html", page),
		)
	}

	return &Handler{
		cfg:       cfg,
		log:       logger,
		wishlist:  wl,
		rsvp:      reg,
		gate:      gate,
		templates: tmplMap,
		now:       time.Now,
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Home renders the landing page with the program.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, "home.html", h.pageData("", map[string]interface{}{
		"Program":             program.Options,
		"HasCalendar":         h.cfg.Event.Date != "",
		"RegistrationEnabled": h.cfg.Features.RegistrationEnabled,
	}))
}

// --- helpers ---

func (h *Handler) pageData(title string, extra map[string]interface{}) map[string]interface{} {
	data := map[string]interface{}{
		"Title":     title,
		"Year":      h.now().Year(),
		"Couple":    h.cfg.Event.Couple,
		"EventDate": h.cfg.Event.Date,
		"Location":  h.cfg.Event.Location,
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

func (h *Handler) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	tmpl, ok := h.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %s not found", name), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		h.log.Error("render template failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func jsonOK(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	jsonOK(w, status, map[string]string{"error": msg})
}
