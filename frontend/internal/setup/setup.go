package setup

import (
	"fmt"

	"github.com/itchan-dev/nanashi/frontend/internal/apiclient"
	"github.com/itchan-dev/nanashi/frontend/internal/handler"
	"github.com/itchan-dev/nanashi/frontend/internal/markdown"
	"github.com/itchan-dev/nanashi/frontend/internal/middleware"
	"github.com/itchan-dev/nanashi/frontend/web"
	"github.com/itchan-dev/nanashi/shared/config"
)

type Dependencies struct {
	Handler *handler.Handler
	CSRF    *middleware.CSRF
	Public  config.Public
}

// SetupDependencies wires the frontend. It needs only public config: the
// frontend holds no secrets and talks to the api over http.
func SetupDependencies(public config.Public) (*Dependencies, error) {
	templates, err := handler.LoadTemplates(web.Files, web.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	apiClient := apiclient.New(public.Http.ApiBaseURL)
	h := handler.New(templates, public, markdown.New(), apiClient)

	return &Dependencies{
		Handler: h,
		CSRF:    middleware.NewCSRF(public.Http.Https),
		Public:  public,
	}, nil
}
