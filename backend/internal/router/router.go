package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/itchan-dev/nanashi/backend/internal/setup"
	mw "github.com/itchan-dev/nanashi/shared/middleware"
	"github.com/itchan-dev/nanashi/shared/middleware/metrics"
	rl "github.com/itchan-dev/nanashi/shared/middleware/ratelimiter"
	"github.com/itchan-dev/nanashi/shared/utils"
)

// New creates the api router.
// IMPORTANT! ratelimiters set with .Use limit requests for all endpoints of that group combined
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()
	cfg := deps.Config.Public

	r.Use(middleware.Recoverer)
	r.Use(mw.RequestID)
	r.Use(metrics.Middleware("api"))
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))
	r.Use(mw.APIHeaders)

	h := deps.Handler
	ip := mw.IPIdentity(utils.MustParseProxies(cfg.TrustedProxies.Api))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(mw.GlobalRateLimit(rl.New(1000, 1000, time.Hour)))

		// reads: 10 RPS per IP
		v1.Group(func(read chi.Router) {
			read.Use(mw.RateLimit(rl.Rps10(), ip))
			read.Get("/boards", h.ListBoards)
			read.Get("/boards/{board}", h.GetBoard)
			read.Get("/threads", h.ListThreads)
			read.Get("/threads/{thread}", h.GetThread)
		})

		// writes: 1 per second per IP, the per-board cooldown is in the ledger
		v1.Group(func(write chi.Router) {
			write.Use(mw.RateLimit(rl.New(1, 3, time.Hour), ip))
			write.Post("/threads", h.CreateThread)
			write.Post("/threads/{thread}/responses", h.CreateResponse)
		})

		v1.Route("/admin", func(admin chi.Router) {
			// login: 5 attempts per minute per IP
			admin.With(mw.RateLimit(rl.New(5.0/60, 5, time.Hour), ip)).Post("/login", h.AdminLogin)

			admin.Group(func(authed chi.Router) {
				authed.Use(deps.AuthMiddleware.AdminOnly())
				authed.Post("/categories", h.CreateCategory)
				authed.Post("/boards", h.CreateBoard)
			})
		})
	})

	return r
}
