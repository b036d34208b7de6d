package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/itchan-dev/nanashi/shared/config"
	"github.com/itchan-dev/nanashi/shared/domain"
	internal_errors "github.com/itchan-dev/nanashi/shared/errors"
	"github.com/itchan-dev/nanashi/shared/identity"
	"github.com/itchan-dev/nanashi/shared/logger"
	"github.com/itchan-dev/nanashi/shared/text"
)

type LedgerStorage interface {
	GetBoard(ctx context.Context, id domain.BoardId) (domain.Board, error)
	EnsureDefaultBoard(ctx context.Context, data domain.DefaultBoardData) (domain.Board, error)
	GetThreadMetadata(ctx context.Context, id domain.ThreadId) (domain.Thread, error)
	GetThread(ctx context.Context, id domain.ThreadId) (domain.ThreadDetail, error)
	ListThreads(ctx context.Context, filter domain.ThreadFilter) ([]domain.ThreadPreview, error)
	// CreateThread persists the thread and its first response atomically.
	CreateThread(ctx context.Context, nt domain.NewThread) (domain.Thread, domain.Response, error)
	// AppendResponse locks the thread, calls apply with its current state and
	// writes apply's result. Nothing is written if apply fails.
	AppendResponse(ctx context.Context, id domain.ThreadId, apply domain.AppendFunc) (domain.Thread, domain.Response, error)
}

// FloodGuard limits how often one address may post to one board.
type FloodGuard interface {
	Allow(ctx context.Context, key string) (bool, error)
	// Release gives back a slot taken by Allow for a post that was not stored.
	Release(ctx context.Context, key string) error
}

// Ledger owns thread creation and response appends: sequence numbers,
// capacity, and bump/sage ordering.
type Ledger struct {
	storage LedgerStorage
	flood   FloodGuard
	ids     *identity.IdentityDeriver
	clock   identity.Clock
	cfg     config.Bbs
}

func NewLedger(storage LedgerStorage, flood FloodGuard, clock identity.Clock, cfg config.Bbs) *Ledger {
	if clock == nil {
		clock = identity.RealClock{}
	}
	return &Ledger{
		storage: storage,
		flood:   flood,
		ids:     identity.NewIdentityDeriver(clock, cfg.Location()),
		clock:   clock,
		cfg:     cfg,
	}
}

func (l *Ledger) CreateThread(ctx context.Context, data domain.ThreadCreationData) (domain.Thread, domain.Response, error) {
	if err := l.validateTitle(data.Title); err != nil {
		return domain.Thread{}, domain.Response{}, err
	}
	if err := l.validatePost(data.Name, data.Email, data.Body); err != nil {
		return domain.Thread{}, domain.Response{}, err
	}

	board, err := l.resolveBoard(ctx, data.BoardId)
	if err != nil {
		return domain.Thread{}, domain.Response{}, err
	}
	release, err := l.claimFlood(ctx, board.Id, data.IpAddress)
	if err != nil {
		return domain.Thread{}, domain.Response{}, err
	}

	now := l.now()
	first := l.draftResponse(board, data.Name, data.Email, data.Body, data.IpAddress, now)
	first.ResNumber = 1

	thread, first, err := l.storage.CreateThread(ctx, domain.NewThread{
		Thread: domain.Thread{
			BoardId:   board.Id,
			Title:     text.Escape(strings.TrimSpace(data.Title)),
			ResCount:  1,
			IsFull:    1 >= l.cfg.MaxResponses,
			CreatedAt: now,
			BumpedAt:  now,
		},
		First: first,
	})
	if err != nil {
		release()
		return domain.Thread{}, domain.Response{}, err
	}

	threadsCreated.WithLabelValues(boardLabel(board.Id)).Inc()
	logger.FromContext(ctx).Info("thread created", "board", board.Id, "thread", thread.Id, "poster_id", first.PosterId)
	return thread, first, nil
}

func (l *Ledger) AppendResponse(ctx context.Context, data domain.ResponseCreationData) (domain.Thread, domain.Response, error) {
	if err := l.validatePost(data.Name, data.Email, data.Body); err != nil {
		return domain.Thread{}, domain.Response{}, err
	}

	// Snapshot check: cheap rejection for threads already full. The
	// authoritative check runs again inside the atomic unit.
	snapshot, err := l.storage.GetThreadMetadata(ctx, data.ThreadId)
	if err != nil {
		return domain.Thread{}, domain.Response{}, err
	}
	if l.atCapacity(snapshot) {
		capacityRejections.Inc()
		return domain.Thread{}, domain.Response{}, internal_errors.CapacityExceeded(l.cfg.MaxResponses)
	}

	board, err := l.storage.GetBoard(ctx, snapshot.BoardId)
	if err != nil {
		return domain.Thread{}, domain.Response{}, err
	}
	release, err := l.claimFlood(ctx, board.Id, data.IpAddress)
	if err != nil {
		return domain.Thread{}, domain.Response{}, err
	}

	now := l.now()
	sage := domain.IsSage(data.Email)
	draft := l.draftResponse(board, data.Name, data.Email, data.Body, data.IpAddress, now)

	thread, res, err := l.storage.AppendResponse(ctx, data.ThreadId, func(current domain.Thread) (domain.Thread, domain.Response, error) {
		return l.advance(current, draft, sage, now)
	})
	if err != nil {
		release()
		if internal_errors.IsCapacityExceeded(err) {
			capacityRejections.Inc()
		}
		return domain.Thread{}, domain.Response{}, err
	}

	responsesAppended.WithLabelValues(boardLabel(board.Id), fmt.Sprint(sage)).Inc()
	if thread.IsFull {
		threadsFilled.Inc()
		logger.FromContext(ctx).Info("thread is full", "thread", thread.Id, "res_count", thread.ResCount)
	}
	logger.FromContext(ctx).Debug("response appended", "thread", thread.Id, "res_number", res.ResNumber, "sage", sage)
	return thread, res, nil
}

// advance is the thread's state transition for one accepted response. It
// runs against the state read under the store's lock.
func (l *Ledger) advance(current domain.Thread, draft domain.Response, sage bool, now time.Time) (domain.Thread, domain.Response, error) {
	if l.atCapacity(current) {
		return domain.Thread{}, domain.Response{}, internal_errors.CapacityExceeded(l.cfg.MaxResponses)
	}

	next := current
	next.ResCount = current.ResCount + 1
	next.IsFull = next.ResCount >= l.cfg.MaxResponses
	if !sage {
		next.BumpedAt = now
	}

	res := draft
	res.ThreadId = current.Id
	res.ResNumber = next.ResCount
	return next, res, nil
}

func (l *Ledger) atCapacity(t domain.Thread) bool {
	return t.IsFull || t.ResCount >= l.cfg.MaxResponses
}

// resolveBoard returns the requested board. The default board is created on
// first use; other missing boards are an error.
func (l *Ledger) resolveBoard(ctx context.Context, id domain.BoardId) (domain.Board, error) {
	def := l.cfg.DefaultBoard
	if id == 0 {
		id = def.Id
	}
	board, err := l.storage.GetBoard(ctx, id)
	if err == nil || !internal_errors.IsNotFound(err) || id != def.Id {
		return board, err
	}

	logger.FromContext(ctx).Info("bootstrapping default board", "board", def.Id, "category", def.CategoryId)
	return l.storage.EnsureDefaultBoard(ctx, domain.DefaultBoardData{
		Category: domain.Category{Id: def.CategoryId, Name: def.CategoryName},
		Board: domain.BoardCreationData{
			Id:          def.Id,
			CategoryId:  def.CategoryId,
			Name:        def.Name,
			DefaultName: def.DefaultName,
		},
	})
}

// draftResponse derives everything a response shows from the raw form
// fields. All user text is escaped here, once.
func (l *Ledger) draftResponse(board domain.Board, rawName, email, body, ip string, now time.Time) domain.Response {
	name, trip := identity.ParseName(rawName)
	name = strings.TrimSpace(name)
	if name == "" {
		name = board.DefaultName
	}
	return domain.Response{
		Name:      text.Escape(name),
		Tripcode:  trip,
		Email:     text.Escape(strings.TrimSpace(email)),
		Body:      text.Escape(body),
		IpAddress: ip,
		PosterId:  l.ids.Derive(ip, board.Id),
		CreatedAt: now,
	}
}

// claimFlood takes the poster's cooldown slot for board. The returned
// release must be called if the post is then not stored, so a rejected post
// does not lock its author out.
func (l *Ledger) claimFlood(ctx context.Context, board domain.BoardId, ip string) (release func(), err error) {
	release = func() {}
	if l.flood == nil {
		return release, nil
	}
	key := fmt.Sprintf("%d:%s", board, ip)
	ok, err := l.flood.Allow(ctx, key)
	if err != nil {
		// A broken cooldown store must not take posting down with it.
		logger.FromContext(ctx).Warn("flood guard unavailable", "error", err)
		return release, nil
	}
	if !ok {
		return release, internal_errors.RateLimited()
	}
	return func() {
		if err := l.flood.Release(context.WithoutCancel(ctx), key); err != nil {
			logger.FromContext(ctx).Warn("flood guard release failed", "key", key, "error", err)
		}
	}, nil
}

func (l *Ledger) now() time.Time {
	return l.clock.Now().UTC().Round(time.Microsecond) // postgres keeps microseconds
}

func (l *Ledger) validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return internal_errors.Validation("title is required")
	}
	if n := utf8.RuneCountInString(title); n > l.cfg.MaxTitleLength {
		return internal_errors.Validation("title is too long (%d > %d)", n, l.cfg.MaxTitleLength)
	}
	return nil
}

func (l *Ledger) validatePost(name, email, body string) error {
	if strings.TrimSpace(body) == "" {
		return internal_errors.Validation("body is required")
	}
	if n := utf8.RuneCountInString(body); n > l.cfg.MaxBodyLength {
		return internal_errors.Validation("body is too long (%d > %d)", n, l.cfg.MaxBodyLength)
	}
	if n := utf8.RuneCountInString(name); n > l.cfg.MaxNameLength {
		return internal_errors.Validation("name is too long (%d > %d)", n, l.cfg.MaxNameLength)
	}
	if n := utf8.RuneCountInString(email); n > l.cfg.MaxEmailLength {
		return internal_errors.Validation("email is too long (%d > %d)", n, l.cfg.MaxEmailLength)
	}
	return nil
}

// ----- read side -----

func (l *Ledger) GetThread(ctx context.Context, id domain.ThreadId) (domain.ThreadDetail, error) {
	return l.storage.GetThread(ctx, id)
}

// ListThreads returns one page (1-based) of previews.
func (l *Ledger) ListThreads(ctx context.Context, board *domain.BoardId, sort domain.ThreadSort, page int) ([]domain.ThreadPreview, error) {
	page = max(1, page)
	return l.storage.ListThreads(ctx, domain.ThreadFilter{
		BoardId: board,
		Sort:    sort,
		Limit:   l.cfg.ThreadsPerPage,
		Offset:  (page - 1) * l.cfg.ThreadsPerPage,
	})
}

// Momentum is the thread's momentum as of now.
func (l *Ledger) Momentum(t domain.Thread) float64 {
	return Momentum(t, l.clock.Now())
}

// Momentum is responses per day since the thread was created, rounded to
// one decimal. Threads younger than a day report their raw count.
func Momentum(t domain.Thread, now time.Time) float64 {
	days := now.Sub(t.CreatedAt).Hours() / 24
	if days < 1 {
		return float64(t.ResCount)
	}
	return math.Round(float64(t.ResCount)/days*10) / 10
}

func boardLabel(id domain.BoardId) string {
	return fmt.Sprint(id)
}
