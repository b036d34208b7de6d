package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/nanashi/shared/api"
	"github.com/itchan-dev/nanashi/shared/config"
	"github.com/itchan-dev/nanashi/shared/domain"
	internal_errors "github.com/itchan-dev/nanashi/shared/errors"
	"github.com/itchan-dev/nanashi/shared/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockLedgerService struct {
	CreateThreadFunc   func(ctx context.Context, data domain.ThreadCreationData) (domain.Thread, domain.Response, error)
	AppendResponseFunc func(ctx context.Context, data domain.ResponseCreationData) (domain.Thread, domain.Response, error)
	GetThreadFunc      func(ctx context.Context, id domain.ThreadId) (domain.ThreadDetail, error)
	ListThreadsFunc    func(ctx context.Context, board *domain.BoardId, sort domain.ThreadSort, page int) ([]domain.ThreadPreview, error)
}

func (m *MockLedgerService) CreateThread(ctx context.Context, data domain.ThreadCreationData) (domain.Thread, domain.Response, error) {
	if m.CreateThreadFunc != nil {
		return m.CreateThreadFunc(ctx, data)
	}
	return domain.Thread{Id: 1, ResCount: 1}, domain.Response{ResNumber: 1}, nil
}

func (m *MockLedgerService) AppendResponse(ctx context.Context, data domain.ResponseCreationData) (domain.Thread, domain.Response, error) {
	if m.AppendResponseFunc != nil {
		return m.AppendResponseFunc(ctx, data)
	}
	return domain.Thread{Id: data.ThreadId, ResCount: 2}, domain.Response{ResNumber: 2}, nil
}

func (m *MockLedgerService) GetThread(ctx context.Context, id domain.ThreadId) (domain.ThreadDetail, error) {
	if m.GetThreadFunc != nil {
		return m.GetThreadFunc(ctx, id)
	}
	return domain.ThreadDetail{}, nil
}

func (m *MockLedgerService) ListThreads(ctx context.Context, board *domain.BoardId, sort domain.ThreadSort, page int) ([]domain.ThreadPreview, error) {
	if m.ListThreadsFunc != nil {
		return m.ListThreadsFunc(ctx, board, sort, page)
	}
	return nil, nil
}

func (m *MockLedgerService) Momentum(t domain.Thread) float64 {
	return float64(t.ResCount)
}

type MockBoardService struct {
	CreateCategoryFunc func(ctx context.Context, c domain.Category) (domain.Category, error)
	CreateBoardFunc    func(ctx context.Context, data domain.BoardCreationData) (domain.Board, error)
	GetBoardFunc       func(ctx context.Context, id domain.BoardId) (domain.Board, error)
	ListBoardsFunc     func(ctx context.Context) ([]domain.Category, []domain.Board, error)
}

func (m *MockBoardService) CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	if m.CreateCategoryFunc != nil {
		return m.CreateCategoryFunc(ctx, c)
	}
	return c, nil
}

func (m *MockBoardService) CreateBoard(ctx context.Context, data domain.BoardCreationData) (domain.Board, error) {
	if m.CreateBoardFunc != nil {
		return m.CreateBoardFunc(ctx, data)
	}
	return domain.Board{Id: data.Id, Name: data.Name}, nil
}

func (m *MockBoardService) GetBoard(ctx context.Context, id domain.BoardId) (domain.Board, error) {
	if m.GetBoardFunc != nil {
		return m.GetBoardFunc(ctx, id)
	}
	return domain.Board{Id: id}, nil
}

func (m *MockBoardService) ListBoards(ctx context.Context) ([]domain.Category, []domain.Board, error) {
	if m.ListBoardsFunc != nil {
		return m.ListBoardsFunc(ctx)
	}
	return nil, nil, nil
}

type MockAuthService struct {
	LoginFunc func(ctx context.Context, password string) (string, error)
}

func (m *MockAuthService) Login(ctx context.Context, password string) (string, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, password)
	}
	return "token", nil
}

type MockHealth struct {
	err error
}

func (m *MockHealth) Ping(context.Context) error { return m.err }

// --- Helpers ---

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Public.Defaults()
	cfg.Public.JwtTTL = time.Hour
	return cfg
}

func testRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Get("/v1/boards", h.ListBoards)
	r.Get("/v1/boards/{board}", h.GetBoard)
	r.Get("/v1/threads", h.ListThreads)
	r.Post("/v1/threads", h.CreateThread)
	r.Get("/v1/threads/{thread}", h.GetThread)
	r.Post("/v1/threads/{thread}/responses", h.CreateResponse)
	r.Post("/v1/admin/login", h.AdminLogin)
	r.Post("/v1/admin/categories", h.CreateCategory)
	r.Post("/v1/admin/boards", h.CreateBoard)
	return r
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "203.0.113.9:5555"
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// --- Tests ---

func TestCreateThreadHandler(t *testing.T) {
	var got domain.ThreadCreationData
	ledger := &MockLedgerService{
		CreateThreadFunc: func(_ context.Context, data domain.ThreadCreationData) (domain.Thread, domain.Response, error) {
			got = data
			return domain.Thread{Id: 7, BoardId: 1, ResCount: 1}, domain.Response{ThreadId: 7, ResNumber: 1, PosterId: "abcdEFGH"}, nil
		},
	}
	router := testRouter(New(ledger, &MockBoardService{}, &MockAuthService{}, &MockHealth{}, testConfig()))

	rr := do(t, router, http.MethodPost, "/v1/threads", api.CreateThreadRequest{Title: "t", Name: "n#s", Email: "sage", Body: "b"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "203.0.113.9", got.IpAddress)
	assert.Equal(t, "n#s", got.Name, "name is parsed by the ledger, not the handler")

	var resp api.CreateThreadResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, int64(7), resp.Thread.Id)
	assert.Equal(t, "abcdEFGH", resp.First.PosterId)

	t.Run("invalid json", func(t *testing.T) {
		rr := do(t, router, http.MethodPost, "/v1/threads", "{ivalid json::}")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing body", func(t *testing.T) {
		rr := do(t, router, http.MethodPost, "/v1/threads", api.CreateThreadRequest{Title: "t"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("oversized request", func(t *testing.T) {
		big := make([]byte, maxBodyBytes+1)
		for i := range big {
			big[i] = 'a'
		}
		rr := do(t, router, http.MethodPost, "/v1/threads", api.CreateThreadRequest{Title: "t", Body: string(big)})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestCreateResponseHandlerErrors(t *testing.T) {
	testCases := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "ok", expectedStatus: http.StatusCreated},
		{name: "validation", err: internal_errors.Validation("body is required"), expectedStatus: http.StatusBadRequest},
		{name: "not found", err: internal_errors.NotFound("thread"), expectedStatus: http.StatusNotFound},
		{name: "capacity", err: internal_errors.CapacityExceeded(1000), expectedStatus: http.StatusConflict},
		{name: "rate limited", err: internal_errors.RateLimited(), expectedStatus: http.StatusTooManyRequests},
		{name: "storage", err: internal_errors.Storage("append", errors.New("conn reset")), expectedStatus: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ledger := &MockLedgerService{
				AppendResponseFunc: func(_ context.Context, data domain.ResponseCreationData) (domain.Thread, domain.Response, error) {
					assert.Equal(t, int64(5), data.ThreadId)
					if tc.err != nil {
						return domain.Thread{}, domain.Response{}, tc.err
					}
					return domain.Thread{Id: 5, ResCount: 2}, domain.Response{ResNumber: 2}, nil
				},
			}
			router := testRouter(New(ledger, &MockBoardService{}, &MockAuthService{}, &MockHealth{}, testConfig()))

			rr := do(t, router, http.MethodPost, "/v1/threads/5/responses", api.CreateResponseRequest{Body: "hi"})
			assert.Equal(t, tc.expectedStatus, rr.Code)
			if tc.expectedStatus == http.StatusInternalServerError {
				assert.NotContains(t, rr.Body.String(), "conn reset", "driver errors stay in the logs")
			}
		})
	}

	t.Run("bad thread id", func(t *testing.T) {
		router := testRouter(New(&MockLedgerService{}, &MockBoardService{}, &MockAuthService{}, &MockHealth{}, testConfig()))
		rr := do(t, router, http.MethodPost, "/v1/threads/abc/responses", api.CreateResponseRequest{Body: "hi"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGetThreadHandler(t *testing.T) {
	ledger := &MockLedgerService{
		GetThreadFunc: func(_ context.Context, id domain.ThreadId) (domain.ThreadDetail, error) {
			if id != 3 {
				return domain.ThreadDetail{}, internal_errors.NotFound("thread")
			}
			return domain.ThreadDetail{
				Thread: domain.Thread{Id: 3, ResCount: 2},
				Responses: []domain.Response{
					{ResNumber: 1, Body: "first"},
					{ResNumber: 2, Body: text.Escape(">>1\n>>9")},
				},
			}, nil
		},
	}
	router := testRouter(New(ledger, &MockBoardService{}, &MockAuthService{}, &MockHealth{}, testConfig()))

	rr := do(t, router, http.MethodGet, "/v1/threads/3", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp api.ThreadResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Responses, 2)
	assert.Equal(t, float64(2), resp.Momentum)

	var anchors []text.Segment
	for _, s := range resp.Responses[1].Segments {
		if s.Kind == text.SegmentAnchor {
			anchors = append(anchors, s)
		}
	}
	require.Len(t, anchors, 2)
	assert.True(t, anchors[0].Resolved)
	assert.Equal(t, 9, anchors[1].Target)
	assert.False(t, anchors[1].Resolved, "anchor past the thread end is dangling")

	rr = do(t, router, http.MethodGet, "/v1/threads/4", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListThreadsHandler(t *testing.T) {
	var (
		gotBoard *domain.BoardId
		gotSort  domain.ThreadSort
		gotPage  int
	)
	ledger := &MockLedgerService{
		ListThreadsFunc: func(_ context.Context, board *domain.BoardId, sort domain.ThreadSort, page int) ([]domain.ThreadPreview, error) {
			gotBoard, gotSort, gotPage = board, sort, page
			return []domain.ThreadPreview{{Thread: domain.Thread{Id: 1, ResCount: 4}}}, nil
		},
	}
	router := testRouter(New(ledger, &MockBoardService{}, &MockAuthService{}, &MockHealth{}, testConfig()))

	rr := do(t, router, http.MethodGet, "/v1/threads?board=2&sort=createdAt&page=3", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, gotBoard)
	assert.Equal(t, int64(2), *gotBoard)
	assert.Equal(t, domain.SortCreated, gotSort)
	assert.Equal(t, 3, gotPage)

	var resp api.ThreadListResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Threads, 1)
	assert.Equal(t, float64(4), resp.Threads[0].Momentum)

	rr = do(t, router, http.MethodGet, "/v1/threads?page=-1&sort=junk", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, gotBoard)
	assert.Equal(t, domain.SortBumped, gotSort)
	assert.Equal(t, 1, gotPage)

	rr = do(t, router, http.MethodGet, "/v1/threads?board=x", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBoardHandlers(t *testing.T) {
	boards := &MockBoardService{
		ListBoardsFunc: func(context.Context) ([]domain.Category, []domain.Board, error) {
			return []domain.Category{{Id: 1, Name: "雑談"}}, []domain.Board{{Id: 1, CategoryId: 1, Name: "雑談板"}}, nil
		},
		CreateBoardFunc: func(_ context.Context, data domain.BoardCreationData) (domain.Board, error) {
			if data.Id == 1 {
				return domain.Board{}, internal_errors.Conflict("board")
			}
			return domain.Board{Id: 2, CategoryId: data.CategoryId, Name: data.Name}, nil
		},
	}
	router := testRouter(New(&MockLedgerService{}, boards, &MockAuthService{}, &MockHealth{}, testConfig()))

	rr := do(t, router, http.MethodGet, "/v1/boards", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list api.BoardsResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	assert.Len(t, list.Categories, 1)
	assert.Len(t, list.Boards, 1)

	rr = do(t, router, http.MethodGet, "/v1/boards/9", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, router, http.MethodPost, "/v1/admin/boards", api.CreateBoardRequest{CategoryId: 1, Name: "新板"})
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, router, http.MethodPost, "/v1/admin/boards", api.CreateBoardRequest{Id: 1, CategoryId: 1, Name: "dup"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, router, http.MethodPost, "/v1/admin/boards", api.CreateBoardRequest{Name: "no category"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodPost, "/v1/admin/categories", api.CreateCategoryRequest{Name: "趣味"})
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestAdminLoginHandler(t *testing.T) {
	auth := &MockAuthService{LoginFunc: func(_ context.Context, password string) (string, error) {
		if password != "right" {
			return "", internal_errors.Unauthorized("invalid credentials")
		}
		return "jwt", nil
	}}
	router := testRouter(New(&MockLedgerService{}, &MockBoardService{}, auth, &MockHealth{}, testConfig()))

	rr := do(t, router, http.MethodPost, "/v1/admin/login", api.AdminLoginRequest{Password: "right"})
	require.Equal(t, http.StatusOK, rr.Code)
	var resp api.AdminLoginResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "jwt", resp.Token)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "accessToken", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	rr = do(t, router, http.MethodPost, "/v1/admin/login", api.AdminLoginRequest{Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Empty(t, rr.Result().Cookies())
}

func TestHealthHandlers(t *testing.T) {
	health := &MockHealth{}
	router := testRouter(New(&MockLedgerService{}, &MockBoardService{}, &MockAuthService{}, health, testConfig()))

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/ready", nil).Code)

	health.err = errors.New("down")
	assert.Equal(t, http.StatusServiceUnavailable, do(t, router, http.MethodGet, "/ready", nil).Code)
}
