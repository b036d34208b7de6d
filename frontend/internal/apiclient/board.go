package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/itchan-dev/nanashi/shared/api"
	"github.com/itchan-dev/nanashi/shared/domain"
)

// === Board Methods ===

func (c *APIClient) ListBoards(ctx context.Context, clientIP string) (api.BoardsResponse, error) {
	var resp api.BoardsResponse
	err := c.doJSON(ctx, http.MethodGet, "/boards", nil, clientIP, http.StatusOK, &resp)
	return resp, err
}

func (c *APIClient) GetBoard(ctx context.Context, clientIP string, id domain.BoardId) (domain.Board, error) {
	var board domain.Board
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/boards/%d", id), nil, clientIP, http.StatusOK, &board)
	return board, err
}
