package middleware

import (
	"context"
	"net/http"

	"github.com/itchan-dev/nanashi/shared/csrf"
	"github.com/itchan-dev/nanashi/shared/logger"
)

const (
	csrfCookieName = "csrf_token"
	csrfFormField  = "csrf_token"
	maxFormBytes   = 64 << 10
)

type csrfContextKey struct{}

// CSRF issues a double-submit token cookie and checks it on post forms.
type CSRF struct {
	secureCookies bool // requires https
}

func NewCSRF(secureCookies bool) *CSRF {
	return &CSRF{secureCookies: secureCookies}
}

// Issue makes sure the visitor has a token and exposes it to templates.
func (c *CSRF) Issue(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if cookie, err := r.Cookie(csrfCookieName); err == nil && cookie.Value != "" {
			token = cookie.Value
		} else {
			token, err = csrf.GenerateToken()
			if err != nil {
				logger.FromContext(r.Context()).Error("failed to generate CSRF token", "error", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     csrfCookieName,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				Secure:   c.secureCookies,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   86400,
			})
		}

		ctx := context.WithValue(r.Context(), csrfContextKey{}, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Verify rejects unsafe requests whose form token does not match the cookie.
// It also caps and parses the form body.
func (c *CSRF) Verify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		log := logger.FromContext(r.Context())

		cookie, err := r.Cookie(csrfCookieName)
		if err != nil {
			log.Warn("CSRF token cookie missing", "path", r.URL.Path)
			http.Error(w, "CSRF token missing", http.StatusForbidden)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			log.Debug("failed to parse form", "error", err)
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		if !csrf.ValidateToken(cookie.Value, r.PostFormValue(csrfFormField)) {
			log.Warn("CSRF token validation failed", "path", r.URL.Path)
			http.Error(w, "CSRF token invalid", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetCSRFTokenFromContext retrieves CSRF token from request context
func GetCSRFTokenFromContext(r *http.Request) string {
	token, _ := r.Context().Value(csrfContextKey{}).(string)
	return token
}
