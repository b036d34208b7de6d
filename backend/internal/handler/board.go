package handler

import (
	"net/http"

	"github.com/itchan-dev/nanashi/shared/api"
	"github.com/itchan-dev/nanashi/shared/domain"
	"github.com/itchan-dev/nanashi/shared/utils"
)

func (h *Handler) ListBoards(w http.ResponseWriter, r *http.Request) {
	categories, boards, err := h.board.ListBoards(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.BoardsResponse{Categories: categories, Boards: boards})
}

func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "board")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	board, err := h.board.GetBoard(r.Context(), id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, board)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	var body api.CreateCategoryRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	c, err := h.board.CreateCategory(r.Context(), domain.Category{Id: body.Id, Name: body.Name})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	var body api.CreateBoardRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	board, err := h.board.CreateBoard(r.Context(), domain.BoardCreationData{
		Id:          body.Id,
		CategoryId:  body.CategoryId,
		Name:        body.Name,
		DefaultName: body.DefaultName,
		Rules:       body.Rules,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, board)
}
