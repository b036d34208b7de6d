package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	frontend_domain "github.com/itchan-dev/nanashi/frontend/internal/domain"
	"github.com/itchan-dev/nanashi/shared/api"
	"github.com/itchan-dev/nanashi/shared/domain"
	internal_errors "github.com/itchan-dev/nanashi/shared/errors"
	"github.com/itchan-dev/nanashi/shared/logger"
)

func threadIdParam(r *http.Request) (domain.ThreadId, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "thread"), 10, 64)
	if err != nil || id < 1 {
		return 0, internal_errors.NotFound("thread")
	}
	return id, nil
}

func (h *Handler) ThreadGetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := threadIdParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	thread, err := h.APIClient.GetThread(r.Context(), h.clientIP(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// sage responses leave BumpedAt alone, so the newest response dates the page
	lastModified := thread.CreatedAt
	if n := len(thread.Responses); n > 0 {
		lastModified = thread.Responses[n-1].CreatedAt
	}
	if checkNotModified(w, r, lastModified) {
		return
	}

	h.renderTemplate(w, r, "thread.html", frontend_domain.ThreadPageData{Thread: renderThread(thread, h.location)})
}

// ThreadPostHandler creates a thread from the new thread form.
func (h *Handler) ThreadPostHandler(w http.ResponseWriter, r *http.Request) {
	boardId, _ := strconv.ParseInt(r.PostFormValue("board_id"), 10, 64)
	backTo := "/"
	if boardId > 0 {
		backTo = fmt.Sprintf("/boards/%d", boardId)
	}

	data := api.CreateThreadRequest{
		BoardId: boardId,
		Title:   r.PostFormValue("title"),
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Body:    r.PostFormValue("body"),
	}
	created, err := h.APIClient.CreateThread(r.Context(), h.clientIP(r), data)
	if err != nil {
		h.redirectWithFlash(w, r, backTo, flashCookieError, h.postErrorMessage(r, err))
		return
	}

	h.remember(w, data.Name, data.Email)
	http.Redirect(w, r, fmt.Sprintf("/threads/%d", created.Thread.Id), http.StatusSeeOther)
}

// ResponsePostHandler appends a response from the reply form.
func (h *Handler) ResponsePostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := threadIdParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	backTo := fmt.Sprintf("/threads/%d", id)

	data := api.CreateResponseRequest{
		Name:  r.PostFormValue("name"),
		Email: r.PostFormValue("email"),
		Body:  r.PostFormValue("body"),
	}
	created, err := h.APIClient.CreateResponse(r.Context(), h.clientIP(r), id, data)
	if err != nil {
		h.redirectWithFlash(w, r, backTo+"#form", flashCookieError, h.postErrorMessage(r, err))
		return
	}

	h.remember(w, data.Name, data.Email)
	logger.FromContext(r.Context()).Debug("response posted", "thread_id", id, "res_number", created.Response.ResNumber)
	http.Redirect(w, r, fmt.Sprintf("%s#res-%d", backTo, created.Response.ResNumber), http.StatusSeeOther)
}
