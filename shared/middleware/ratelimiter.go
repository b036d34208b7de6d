package middleware

import (
	"net/http"

	"github.com/itchan-dev/nanashi/shared/middleware/ratelimiter"
	"github.com/itchan-dev/nanashi/shared/utils"
)

// RateLimit throttles requests per identity. Admin requests pass through.
func RateLimit(rl *ratelimiter.KeyRateLimiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetAdminFromContext(r) != nil {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(identity) {
				http.Error(w, "Rate limit exceeded, try again later", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GlobalRateLimit(rl *ratelimiter.KeyRateLimiter) func(http.Handler) http.Handler {
	return RateLimit(rl, func(r *http.Request) (string, error) { return "global", nil })
}

// IPIdentity keys limits by client address.
func IPIdentity(proxies *utils.Proxies) func(r *http.Request) (string, error) {
	return func(r *http.Request) (string, error) {
		return utils.GetIP(r, proxies)
	}
}
