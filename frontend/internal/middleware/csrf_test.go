package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCSRFIssue(t *testing.T) {
	c := NewCSRF(false)

	t.Run("new visitor gets a cookie and a context token", func(t *testing.T) {
		var seen string
		h := c.Issue(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetCSRFTokenFromContext(r)
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotEmpty(t, seen)
		var cookie *http.Cookie
		for _, ck := range w.Result().Cookies() {
			if ck.Name == csrfCookieName {
				cookie = ck
			}
		}
		require.NotNil(t, cookie)
		assert.Equal(t, seen, cookie.Value)
		assert.True(t, cookie.HttpOnly)
	})

	t.Run("existing cookie is reused", func(t *testing.T) {
		var seen string
		h := c.Issue(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetCSRFTokenFromContext(r)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "kept"})
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, "kept", seen)
		assert.Empty(t, w.Result().Cookies())
	})
}

func TestCSRFVerify(t *testing.T) {
	token := "test-token-123"

	tests := []struct {
		name           string
		method         string
		cookie         *http.Cookie
		formToken      string
		expectedStatus int
	}{
		{"valid POST request", http.MethodPost, &http.Cookie{Name: csrfCookieName, Value: token}, token, http.StatusOK},
		{"GET request is not checked", http.MethodGet, nil, "", http.StatusOK},
		{"missing cookie", http.MethodPost, nil, token, http.StatusForbidden},
		{"missing form token", http.MethodPost, &http.Cookie{Name: csrfCookieName, Value: token}, "", http.StatusForbidden},
		{"mismatched tokens", http.MethodPost, &http.Cookie{Name: csrfCookieName, Value: token}, "different-token", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{}
			if tt.formToken != "" {
				form.Set(csrfFormField, tt.formToken)
			}
			req := httptest.NewRequest(tt.method, "/", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}

			w := httptest.NewRecorder()
			NewCSRF(false).Verify(ok()).ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
