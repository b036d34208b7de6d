package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/itchan-dev/nanashi/shared/api"
	"github.com/itchan-dev/nanashi/shared/domain"
)

// === Thread Methods ===

// ListThreads lists threads of one board, or of all boards when board is nil.
func (c *APIClient) ListThreads(ctx context.Context, clientIP string, board *domain.BoardId, sort domain.ThreadSort, page int) (api.ThreadListResponse, error) {
	q := url.Values{}
	if board != nil {
		q.Set("board", strconv.FormatInt(*board, 10))
	}
	if sort != "" {
		q.Set("sort", string(sort))
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	path := "/threads"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp api.ThreadListResponse
	err := c.doJSON(ctx, http.MethodGet, path, nil, clientIP, http.StatusOK, &resp)
	return resp, err
}

func (c *APIClient) GetThread(ctx context.Context, clientIP string, id domain.ThreadId) (api.ThreadResponse, error) {
	var thread api.ThreadResponse
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/threads/%d", id), nil, clientIP, http.StatusOK, &thread)
	return thread, err
}

func (c *APIClient) CreateThread(ctx context.Context, clientIP string, data api.CreateThreadRequest) (api.CreateThreadResponse, error) {
	var resp api.CreateThreadResponse
	err := c.doJSON(ctx, http.MethodPost, "/threads", data, clientIP, http.StatusCreated, &resp)
	return resp, err
}

func (c *APIClient) CreateResponse(ctx context.Context, clientIP string, threadId domain.ThreadId, data api.CreateResponseRequest) (api.CreateResponseResponse, error) {
	var resp api.CreateResponseResponse
	err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/threads/%d/responses", threadId), data, clientIP, http.StatusCreated, &resp)
	return resp, err
}
