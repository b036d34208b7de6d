package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/nanashi/shared/config"
	"github.com/itchan-dev/nanashi/shared/domain"
	internal_errors "github.com/itchan-dev/nanashi/shared/errors"
	"github.com/itchan-dev/nanashi/shared/utils"
)

// maxBodyBytes caps json request bodies; the longest post is far below it.
const maxBodyBytes = 64 << 10

// to mock services in tests
type LedgerService interface {
	CreateThread(ctx context.Context, data domain.ThreadCreationData) (domain.Thread, domain.Response, error)
	AppendResponse(ctx context.Context, data domain.ResponseCreationData) (domain.Thread, domain.Response, error)
	GetThread(ctx context.Context, id domain.ThreadId) (domain.ThreadDetail, error)
	ListThreads(ctx context.Context, board *domain.BoardId, sort domain.ThreadSort, page int) ([]domain.ThreadPreview, error)
	Momentum(t domain.Thread) float64
}

type BoardService interface {
	CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error)
	CreateBoard(ctx context.Context, data domain.BoardCreationData) (domain.Board, error)
	GetBoard(ctx context.Context, id domain.BoardId) (domain.Board, error)
	ListBoards(ctx context.Context) ([]domain.Category, []domain.Board, error)
}

type AuthService interface {
	Login(ctx context.Context, password string) (string, error)
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	ledger  LedgerService
	board   BoardService
	auth    AuthService
	health  HealthChecker
	cfg     *config.Config
	proxies *utils.Proxies
}

func New(ledger LedgerService, board BoardService, auth AuthService, health HealthChecker, cfg *config.Config) *Handler {
	return &Handler{
		ledger:  ledger,
		board:   board,
		auth:    auth,
		health:  health,
		cfg:     cfg,
		proxies: utils.MustParseProxies(cfg.Public.TrustedProxies.Api),
	}
}

func parseIntParam(value, name string) (int64, error) {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n <= 0 {
		return 0, internal_errors.Validation("invalid %s %q", name, value)
	}
	return n, nil
}

func urlID(r *http.Request, name string) (int64, error) {
	return parseIntParam(chi.URLParam(r, name), name)
}

func limitBody(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
}
