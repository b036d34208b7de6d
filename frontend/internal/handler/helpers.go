package handler

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"time"
)

const (
	flashCookieError   = "flash_error"
	flashCookieSuccess = "flash_success"

	nameCookie  = "nanashi_name"
	emailCookie = "nanashi_email"

	rememberFor = 30 * 24 * time.Hour
)

func (h *Handler) setFlash(w http.ResponseWriter, name, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    base64.URLEncoding.EncodeToString([]byte(msg)),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   h.Public.Http.Https,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns a flash message and expires its cookie.
func (h *Handler) popFlash(w http.ResponseWriter, r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1})
	msg, err := base64.URLEncoding.DecodeString(c.Value)
	if err != nil {
		return ""
	}
	return string(msg)
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, target, name, msg string) {
	h.setFlash(w, name, msg)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// remember keeps the poster's name and email for the next form.
func (h *Handler) remember(w http.ResponseWriter, name, email string) {
	for cookie, value := range map[string]string{nameCookie: name, emailCookie: email} {
		http.SetCookie(w, &http.Cookie{
			Name:     cookie,
			Value:    base64.URLEncoding.EncodeToString([]byte(value)),
			Path:     "/",
			MaxAge:   int(rememberFor.Seconds()),
			HttpOnly: true,
			Secure:   h.Public.Http.Https,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func readCookie(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	v, err := base64.URLEncoding.DecodeString(c.Value)
	if err != nil {
		return ""
	}
	return string(v)
}

func parsePage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
