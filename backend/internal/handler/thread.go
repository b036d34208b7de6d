package handler

import (
	"net/http"
	"strconv"

	"github.com/itchan-dev/nanashi/shared/api"
	"github.com/itchan-dev/nanashi/shared/domain"
	"github.com/itchan-dev/nanashi/shared/utils"
)

func (h *Handler) ListThreads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var board *domain.BoardId
	if s := q.Get("board"); s != "" {
		id, err := parseIntParam(s, "board")
		if err != nil {
			utils.WriteErrorAndStatusCode(w, err)
			return
		}
		board = &id
	}

	page := 1
	if s := q.Get("page"); s != "" {
		if p, err := strconv.Atoi(s); err == nil && p > 0 {
			page = p
		}
	}
	sort := domain.ParseThreadSort(q.Get("sort"))

	previews, err := h.ledger.ListThreads(r.Context(), board, sort, page)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	resp := api.ThreadListResponse{Threads: make([]api.ThreadPreviewView, 0, len(previews)), Sort: sort, Page: page}
	for _, p := range previews {
		resp.Threads = append(resp.Threads, api.ThreadPreviewView{ThreadPreview: p, Momentum: h.ledger.Momentum(p.Thread)})
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	ip, err := utils.GetIP(r, h.proxies)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	limitBody(w, r)
	var body api.CreateThreadRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	thread, first, err := h.ledger.CreateThread(r.Context(), domain.ThreadCreationData{
		BoardId:   body.BoardId,
		Title:     body.Title,
		Name:      body.Name,
		Email:     body.Email,
		Body:      body.Body,
		IpAddress: ip,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.CreateThreadResponse{Thread: thread, First: first})
}

func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "thread")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	detail, err := h.ledger.GetThread(r.Context(), id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	resp := api.ThreadResponse{
		Thread:    detail.Thread,
		Board:     detail.Board,
		Responses: make([]api.ResponseView, 0, len(detail.Responses)),
		Momentum:  h.ledger.Momentum(detail.Thread),
	}
	for _, res := range detail.Responses {
		resp.Responses = append(resp.Responses, api.NewResponseView(res, detail.ResCount))
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreateResponse(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "thread")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	ip, err := utils.GetIP(r, h.proxies)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	limitBody(w, r)
	var body api.CreateResponseRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	thread, res, err := h.ledger.AppendResponse(r.Context(), domain.ResponseCreationData{
		ThreadId:  id,
		Name:      body.Name,
		Email:     body.Email,
		Body:      body.Body,
		IpAddress: ip,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.CreateResponseResponse{Thread: thread, Response: res})
}
