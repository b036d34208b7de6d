// Package memory is an in-process board store. It backs the "memory"
// storage mode and the service tests; every mutation runs under one mutex,
// which is its atomic unit.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/itchan-dev/nanashi/shared/domain"
	internal_errors "github.com/itchan-dev/nanashi/shared/errors"
)

type threadRecord struct {
	thread    domain.Thread
	responses []domain.Response
}

type Storage struct {
	mu         sync.Mutex
	categories map[domain.CategoryId]domain.Category
	boards     map[domain.BoardId]domain.Board
	threads    map[domain.ThreadId]*threadRecord

	lastCategoryId domain.CategoryId
	lastBoardId    domain.BoardId
	lastThreadId   domain.ThreadId
	lastResponseId domain.ResponseId

	now func() time.Time
}

func New() *Storage {
	return &Storage{
		categories: make(map[domain.CategoryId]domain.Category),
		boards:     make(map[domain.BoardId]domain.Board),
		threads:    make(map[domain.ThreadId]*threadRecord),
		now:        time.Now,
	}
}

func (s *Storage) Ping(context.Context) error { return nil }

func (s *Storage) Cleanup() error { return nil }

// ----- categories / boards -----

func (s *Storage) CreateCategory(_ context.Context, c domain.Category) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createCategory(c)
}

func (s *Storage) createCategory(c domain.Category) (domain.Category, error) {
	if c.Id == 0 {
		s.lastCategoryId++
		c.Id = s.lastCategoryId
	} else if _, ok := s.categories[c.Id]; ok {
		return domain.Category{}, internal_errors.Conflict("category")
	}
	s.lastCategoryId = max(s.lastCategoryId, c.Id)
	s.categories[c.Id] = c
	return c, nil
}

func (s *Storage) ListCategories(context.Context) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out, nil
}

func (s *Storage) CreateBoard(_ context.Context, data domain.BoardCreationData) (domain.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createBoard(data)
}

func (s *Storage) createBoard(data domain.BoardCreationData) (domain.Board, error) {
	if _, ok := s.categories[data.CategoryId]; !ok {
		return domain.Board{}, internal_errors.NotFound("category")
	}
	id := data.Id
	if id == 0 {
		s.lastBoardId++
		id = s.lastBoardId
	} else if _, ok := s.boards[id]; ok {
		return domain.Board{}, internal_errors.Conflict("board")
	}
	s.lastBoardId = max(s.lastBoardId, id)
	b := domain.Board{
		Id:          id,
		CategoryId:  data.CategoryId,
		Name:        data.Name,
		DefaultName: data.DefaultName,
		Rules:       data.Rules,
		CreatedAt:   s.now().UTC(),
	}
	s.boards[id] = b
	return b, nil
}

// EnsureDefaultBoard creates the category and board unless they exist.
func (s *Storage) EnsureDefaultBoard(_ context.Context, data domain.DefaultBoardData) (domain.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[data.Category.Id]; !ok {
		if _, err := s.createCategory(data.Category); err != nil {
			return domain.Board{}, err
		}
	}
	if b, ok := s.boards[data.Board.Id]; ok {
		return b, nil
	}
	return s.createBoard(data.Board)
}

func (s *Storage) GetBoard(_ context.Context, id domain.BoardId) (domain.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.boards[id]
	if !ok {
		return domain.Board{}, internal_errors.NotFound("board")
	}
	return b, nil
}

func (s *Storage) ListBoards(context.Context) ([]domain.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Board, 0, len(s.boards))
	for _, b := range s.boards {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out, nil
}

// ----- threads -----

func (s *Storage) CreateThread(_ context.Context, nt domain.NewThread) (domain.Thread, domain.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.boards[nt.Thread.BoardId]; !ok {
		return domain.Thread{}, domain.Response{}, internal_errors.NotFound("board")
	}
	if nt.First.ResNumber != 1 || nt.Thread.ResCount != 1 {
		return domain.Thread{}, domain.Response{}, fmt.Errorf("%w: new thread must start at response 1", internal_errors.ErrStorage)
	}

	s.lastThreadId++
	s.lastResponseId++
	thread := nt.Thread
	thread.Id = s.lastThreadId
	first := nt.First
	first.Id = s.lastResponseId
	first.ThreadId = thread.Id

	s.threads[thread.Id] = &threadRecord{thread: thread, responses: []domain.Response{first}}
	return thread, first, nil
}

func (s *Storage) GetThreadMetadata(_ context.Context, id domain.ThreadId) (domain.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.threads[id]
	if !ok {
		return domain.Thread{}, internal_errors.NotFound("thread")
	}
	return rec.thread, nil
}

func (s *Storage) GetThread(_ context.Context, id domain.ThreadId) (domain.ThreadDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.threads[id]
	if !ok {
		return domain.ThreadDetail{}, internal_errors.NotFound("thread")
	}
	return domain.ThreadDetail{
		Thread:    rec.thread,
		Board:     s.boards[rec.thread.BoardId],
		Responses: append([]domain.Response(nil), rec.responses...),
	}, nil
}

func (s *Storage) ListThreads(_ context.Context, filter domain.ThreadFilter) ([]domain.ThreadPreview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previews := make([]domain.ThreadPreview, 0, len(s.threads))
	for _, rec := range s.threads {
		if filter.BoardId != nil && rec.thread.BoardId != *filter.BoardId {
			continue
		}
		previews = append(previews, domain.ThreadPreview{
			Thread: rec.thread,
			Board:  s.boards[rec.thread.BoardId],
			First:  rec.responses[0],
		})
	}

	sort.Slice(previews, func(i, j int) bool {
		a, b := previews[i].Thread, previews[j].Thread
		ta, tb := a.BumpedAt, b.BumpedAt
		if filter.Sort == domain.SortCreated {
			ta, tb = a.CreatedAt, b.CreatedAt
		}
		if !ta.Equal(tb) {
			return ta.After(tb)
		}
		return a.Id > b.Id
	})

	if filter.Offset >= len(previews) {
		return []domain.ThreadPreview{}, nil
	}
	previews = previews[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(previews) {
		previews = previews[:filter.Limit]
	}
	return previews, nil
}

// AppendResponse runs apply against the thread's current state and stores
// the result, all under the store mutex.
func (s *Storage) AppendResponse(_ context.Context, id domain.ThreadId, apply domain.AppendFunc) (domain.Thread, domain.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.threads[id]
	if !ok {
		return domain.Thread{}, domain.Response{}, internal_errors.NotFound("thread")
	}

	next, res, err := apply(rec.thread)
	if err != nil {
		return domain.Thread{}, domain.Response{}, err
	}
	// Same guarantees the pg schema enforces with constraints.
	if res.ResNumber != rec.thread.ResCount+1 || next.ResCount != res.ResNumber || next.Id != rec.thread.Id {
		return domain.Thread{}, domain.Response{}, fmt.Errorf("%w: response %d does not follow %d", internal_errors.ErrStorage, res.ResNumber, rec.thread.ResCount)
	}

	s.lastResponseId++
	res.Id = s.lastResponseId
	res.ThreadId = id
	rec.responses = append(rec.responses, res)
	rec.thread = next
	return next, res, nil
}
