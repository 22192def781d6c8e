package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// GateCookie holds the signed site-access token.
const GateCookie = "wedding-auth"

const msgWrongPassword = "Das Passwort stimmt leider nicht."

// LoginPage renders the password form. Visitors who already passed the gate
// are sent home.
// GET /login
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Gate.Password == "" || h.granted(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderTemplate(w, "login.html", h.pageData("Login", map[string]interface{}{
		"From": localTarget(r.URL.Query().Get("from")),
	}))
}

// Login checks the site password and sets the gate cookie.
// POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.loginError(w, "/", "Ungültige Anfrage.")
		return
	}
	target := localTarget(r.FormValue("from"))

	if h.cfg.Gate.Password == "" {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	password := r.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(password), []byte(h.cfg.Gate.Password)) != 1 {
		h.log.Info("site password rejected", zap.String("remote_addr", r.RemoteAddr))
		h.loginError(w, target, msgWrongPassword)
		return
	}

	tok, err := h.gate.Grant(h.cfg.Gate.MaxAge)
	if err != nil {
		h.log.Error("issue gate token failed", zap.Error(err))
		h.loginError(w, target, "Etwas ist schiefgelaufen. Bitte versucht es nochmals.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     GateCookie,
		Value:    tok,
		Path:     "/",
		MaxAge:   int(h.cfg.Gate.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.Server.Env == "production",
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) granted(r *http.Request) bool {
	cookie, err := r.Cookie(GateCookie)
	if err != nil {
		return false
	}
	return h.gate.Granted(cookie.Value)
}

func (h *Handler) loginError(w http.ResponseWriter, from, msg string) {
	h.renderTemplate(w, "login.html", h.pageData("Login", map[string]interface{}{
		"From":  from,
		"Error": msg,
	}))
}

// localTarget returns target if it is a path on this site, "/" otherwise.
func localTarget(target string) string {
	if !strings.HasPrefix(target, "/") ||
		strings.HasPrefix(target, "//") ||
		strings.HasPrefix(target, "/\\") ||
		strings.HasPrefix(target, "/login") {
		return "/"
	}
	return target
}
