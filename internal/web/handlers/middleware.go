package handlers

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/jredh-dev/hochzeit/internal/token"
)

// exemptPrefixes are reachable without passing the gate.
var exemptPrefixes = []string{"/static/", "/images/", "/api/"}

// exemptPaths are exact paths reachable without passing the gate.
var exemptPaths = map[string]bool{
	"/login":       true,
	"/health":      true,
	"/wishlist":    true,
	"/favicon.ico": true,
	"/robots.txt":  true,
	"/sitemap.xml": true,
}

// GateMiddleware requires the gate cookie on every page when password is set.
// Visitors without it are redirected to /login?from=<path>.
func GateMiddleware(password string, gate *token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if password == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if gateExempt(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			if cookie, err := r.Cookie(GateCookie); err == nil && gate.Granted(cookie.Value) {
				next.ServeHTTP(w, r)
				return
			}

			http.Redirect(w, r, "/login?from="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
		})
	}
}

func gateExempt(p string) bool {
	if exemptPaths[p] || path.Ext(p) != "" {
		return true
	}
	for _, prefix := range exemptPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}
