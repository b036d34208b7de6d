package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/itchan-dev/nanashi/frontend/internal/setup"
	"github.com/itchan-dev/nanashi/frontend/web"
	mw "github.com/itchan-dev/nanashi/shared/middleware"
	"github.com/itchan-dev/nanashi/shared/middleware/metrics"
)

func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()
	h := deps.Handler

	r.Use(middleware.Recoverer)
	r.Use(mw.RequestID)
	r.Use(metrics.Middleware("frontend"))
	r.Use(middleware.Compress(5))

	r.Get("/health", h.Health)
	r.Handle("/metrics", metrics.Handler())

	static, _ := fs.Sub(web.Files, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Group(func(pages chi.Router) {
		pages.Use(mw.SecurityHeadersWithCSP(deps.Public.Http.Https, mw.DefaultCSP))
		pages.Use(deps.CSRF.Issue)
		pages.Use(deps.CSRF.Verify)

		pages.Get("/", h.IndexGetHandler)
		pages.Get("/boards/{board}", h.BoardGetHandler)
		pages.Get("/threads/{thread}", h.ThreadGetHandler)
		pages.Post("/threads", h.ThreadPostHandler)
		pages.Post("/threads/{thread}", h.ResponsePostHandler)
	})

	return r
}
