package middleware

import (
	"context"
	"net/http"
	"strings"

	internal_errors "github.com/itchan-dev/nanashi/shared/errors"
	jwt_internal "github.com/itchan-dev/nanashi/shared/jwt"
	"github.com/itchan-dev/nanashi/shared/utils"
)

const AccessTokenCookie = "accessToken"

// Key to store the admin claims in the request context
type key int

const AdminClaimsKey key = 0

type TokenDecoder interface {
	DecodeToken(jwtStr string) (*jwt_internal.Claims, error)
}

// Auth guards the admin routes.
type Auth struct {
	jwtService TokenDecoder
}

func NewAuth(jwtService TokenDecoder) *Auth {
	return &Auth{jwtService: jwtService}
}

// AdminOnly rejects requests without a valid admin token. The token comes
// from the accessToken cookie (browser) or a Bearer header (api clients).
func (a *Auth) AdminOnly() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := tokenFromRequest(r)
			if tokenString == "" {
				utils.WriteErrorAndStatusCode(w, internal_errors.Unauthorized("please sign in"))
				return
			}
			claims, err := a.jwtService.DecodeToken(tokenString)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), AdminClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		return token
	}
	return ""
}

// GetAdminFromContext returns the claims set by AdminOnly, or nil.
func GetAdminFromContext(r *http.Request) *jwt_internal.Claims {
	claims, ok := r.Context().Value(AdminClaimsKey).(*jwt_internal.Claims)
	if !ok {
		return nil
	}
	return claims
}
