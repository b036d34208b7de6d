package setup

import (
	"context"
	"fmt"
	"io"

	"github.com/itchan-dev/nanashi/backend/internal/handler"
	"github.com/itchan-dev/nanashi/backend/internal/service"
	"github.com/itchan-dev/nanashi/backend/internal/storage/kv"
	"github.com/itchan-dev/nanashi/backend/internal/storage/memory"
	"github.com/itchan-dev/nanashi/backend/internal/storage/pg"
	"github.com/itchan-dev/nanashi/shared/config"
	"github.com/itchan-dev/nanashi/shared/identity"
	"github.com/itchan-dev/nanashi/shared/jwt"
	"github.com/itchan-dev/nanashi/shared/logger"
	mw "github.com/itchan-dev/nanashi/shared/middleware"
	"github.com/itchan-dev/nanashi/shared/middleware/ratelimiter"
)

// Storage is everything the api needs from a board store.
type Storage interface {
	service.LedgerStorage
	service.BoardStorage
	Ping(ctx context.Context) error
	Cleanup() error
}

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Storage        Storage
	Handler        *handler.Handler
	AuthMiddleware *mw.Auth
	Config         *config.Config

	closers []io.Closer
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	deps := &Dependencies{Storage: storage, Config: cfg}

	flood, err := deps.newFloodGuard(ctx, cfg)
	if err != nil {
		storage.Cleanup()
		return nil, err
	}

	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())
	ledger := service.NewLedger(storage, flood, identity.RealClock{}, cfg.Public.Bbs)
	board := service.NewBoard(storage, cfg.Public.Bbs)
	auth := service.NewAuth(jwtService, cfg.Private.AdminPasswordHash)

	deps.Handler = handler.New(ledger, board, auth, storage, cfg)
	deps.AuthMiddleware = mw.NewAuth(jwtService)
	return deps, nil
}

func newStorage(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.Public.Storage {
	case "memory":
		logger.Log.Warn("using in-memory storage, posts are lost on restart")
		return memory.New(), nil
	case "pg":
		return pg.New(ctx, cfg.Private.Pg)
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Public.Storage)
	}
}

// newFloodGuard picks redis when configured so every api instance shares
// one cooldown; otherwise the cooldown is per process.
func (d *Dependencies) newFloodGuard(ctx context.Context, cfg *config.Config) (service.FloodGuard, error) {
	interval := cfg.Public.Bbs.PostCooldown
	if url := cfg.Private.Redis.URL; url != "" {
		cooldown, err := kv.New(ctx, url, interval)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, cooldown)
		logger.Log.Info("post cooldown backed by redis", "interval", interval)
		return cooldown, nil
	}
	cooldown := ratelimiter.NewCooldown(interval)
	d.closers = append(d.closers, closerFunc(func() error { cooldown.Stop(); return nil }))
	logger.Log.Info("post cooldown kept in process", "interval", interval)
	return cooldown, nil
}

// Cleanup releases the store and the cooldown backend.
func (d *Dependencies) Cleanup() error {
	for _, c := range d.closers {
		if err := c.Close(); err != nil {
			logger.Log.Error("cleanup failed", "error", err)
		}
	}
	return d.Storage.Cleanup()
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
