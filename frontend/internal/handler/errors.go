package handler

import (
	"errors"
	"fmt"
	"net/http"

	internal_errors "github.com/itchan-dev/nanashi/shared/errors"
	"github.com/itchan-dev/nanashi/shared/logger"
)

// postErrorMessage is what the poster sees after a rejected form.
func (h *Handler) postErrorMessage(r *http.Request, err error) string {
	switch {
	case internal_errors.IsCapacityExceeded(err):
		return fmt.Sprintf("このスレッドは%d件に達したので書き込めません。新しいスレッドを立ててください。", h.Public.Bbs.MaxResponses)
	case errors.Is(err, internal_errors.ErrRateLimited):
		return "連続投稿はできません。しばらく待ってから書き込んでください。"
	case internal_errors.IsNotFound(err):
		return "スレッドまたは板が見つかりません。"
	}

	var withStatus *internal_errors.ErrorWithStatusCode
	if errors.As(err, &withStatus) && withStatus.StatusCode == http.StatusBadRequest {
		return withStatus.Message
	}
	logger.FromContext(r.Context()).Error("posting via api", "error", err)
	return "サーバーエラーが発生しました。時間をおいて再度お試しください。"
}

// writeError renders the error page with the api's status. Transport and
// decoding failures become a generic 502.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	msg := "バックエンドに接続できません。"

	var withStatus *internal_errors.ErrorWithStatusCode
	switch {
	case internal_errors.IsNotFound(err):
		status, msg = http.StatusNotFound, "ページが見つかりません。"
	case errors.As(err, &withStatus) && withStatus.StatusCode < http.StatusInternalServerError:
		status, msg = withStatus.StatusCode, withStatus.Message
	default:
		logger.FromContext(r.Context()).Error("loading page via api", "path", r.URL.Path, "error", err)
	}

	h.renderTemplateWithStatus(w, r, "error.html", msg, status)
}
