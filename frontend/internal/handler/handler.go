package handler

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/itchan-dev/nanashi/frontend/internal/markdown"
	"github.com/itchan-dev/nanashi/shared/api"
	"github.com/itchan-dev/nanashi/shared/config"
	"github.com/itchan-dev/nanashi/shared/domain"
	"github.com/itchan-dev/nanashi/shared/utils"
)

// APIClient is the part of the backend api the pages use.
type APIClient interface {
	ListBoards(ctx context.Context, clientIP string) (api.BoardsResponse, error)
	GetBoard(ctx context.Context, clientIP string, id domain.BoardId) (domain.Board, error)
	ListThreads(ctx context.Context, clientIP string, board *domain.BoardId, sort domain.ThreadSort, page int) (api.ThreadListResponse, error)
	GetThread(ctx context.Context, clientIP string, id domain.ThreadId) (api.ThreadResponse, error)
	CreateThread(ctx context.Context, clientIP string, data api.CreateThreadRequest) (api.CreateThreadResponse, error)
	CreateResponse(ctx context.Context, clientIP string, threadId domain.ThreadId, data api.CreateResponseRequest) (api.CreateResponseResponse, error)
}

type Handler struct {
	Templates map[string]*template.Template
	Public    config.Public
	Rules     *markdown.Renderer
	APIClient APIClient
	location  *time.Location
	proxies   *utils.Proxies
}

func New(templates map[string]*template.Template, publicCfg config.Public, rules *markdown.Renderer, apiClient APIClient) *Handler {
	return &Handler{
		Templates: templates,
		Public:    publicCfg,
		Rules:     rules,
		APIClient: apiClient,
		location:  publicCfg.Bbs.Location(),
		proxies:   utils.MustParseProxies(publicCfg.TrustedProxies.Frontend),
	}
}

// clientIP is forwarded to the api, which believes it only because the
// frontend is on its trusted proxy list. An unusable address is left for the
// api to resolve from the connection.
func (h *Handler) clientIP(r *http.Request) string {
	ip, err := utils.GetIP(r, h.proxies)
	if err != nil {
		return ""
	}
	return ip
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
