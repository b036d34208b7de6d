package handler

import (
	"net/http"
	"time"

	"github.com/itchan-dev/nanashi/shared/api"
	mw "github.com/itchan-dev/nanashi/shared/middleware"
	"github.com/itchan-dev/nanashi/shared/utils"
)

// AdminLogin returns a token and also sets it as an http-only cookie for
// browser clients.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	var body api.AdminLoginRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	token, err := h.auth.Login(r.Context(), body.Password)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     mw.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.cfg.JwtTTL()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	utils.WriteJSON(w, http.StatusOK, api.AdminLoginResponse{Token: token})
}
