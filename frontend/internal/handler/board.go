package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	frontend_domain "github.com/itchan-dev/nanashi/frontend/internal/domain"
	"github.com/itchan-dev/nanashi/shared/api"
	"github.com/itchan-dev/nanashi/shared/domain"
	internal_errors "github.com/itchan-dev/nanashi/shared/errors"
)

// IndexGetHandler lists threads of every board.
func (h *Handler) IndexGetHandler(w http.ResponseWriter, r *http.Request) {
	h.renderListing(w, r, nil)
}

// BoardGetHandler lists one board's threads together with its local rules.
func (h *Handler) BoardGetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "board"), 10, 64)
	if err != nil || id < 1 {
		h.writeError(w, r, internal_errors.NotFound("board"))
		return
	}
	board, err := h.APIClient.GetBoard(r.Context(), h.clientIP(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.renderListing(w, r, &board)
}

func (h *Handler) renderListing(w http.ResponseWriter, r *http.Request, board *domain.Board) {
	ctx := r.Context()
	ip := h.clientIP(r)

	data := frontend_domain.IndexPageData{
		Board: board,
		Sort:  domain.ParseThreadSort(r.URL.Query().Get("sort")),
		Page:  parsePage(r),
	}

	boards, err := h.APIClient.ListBoards(ctx, ip)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	data.Menu = groupBoards(boards)

	var filter *domain.BoardId
	if board != nil {
		filter = &board.Id
		data.FormBoardId = board.Id
		data.Rules = h.Rules.Render(board.Rules)
	}

	list, err := h.APIClient.ListThreads(ctx, ip, filter, data.Sort, data.Page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	data.Threads = make([]*frontend_domain.ThreadRow, len(list.Threads))
	for i, t := range list.Threads {
		data.Threads[i] = renderThreadRow(t, h.location)
	}
	data.HasNext = len(list.Threads) >= h.Public.Bbs.ThreadsPerPage

	h.renderTemplate(w, r, "index.html", data)
}

// groupBoards keeps category order from the api; boards without a known
// category are dropped from the menu.
func groupBoards(resp api.BoardsResponse) []frontend_domain.CategoryBoards {
	menu := make([]frontend_domain.CategoryBoards, len(resp.Categories))
	idx := make(map[domain.CategoryId]int, len(resp.Categories))
	for i, c := range resp.Categories {
		menu[i].Category = c
		idx[c.Id] = i
	}
	for _, b := range resp.Boards {
		if i, ok := idx[b.CategoryId]; ok {
			menu[i].Boards = append(menu[i].Boards, b)
		}
	}
	return menu
}
