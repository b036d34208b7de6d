package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	frontend_domain "github.com/itchan-dev/nanashi/frontend/internal/domain"
	"github.com/itchan-dev/nanashi/frontend/internal/middleware"
	"github.com/itchan-dev/nanashi/shared/api"
	"github.com/itchan-dev/nanashi/shared/logger"
	"github.com/itchan-dev/nanashi/shared/text"
)

var weekdays = [...]string{"日", "月", "火", "水", "木", "金", "土"}

// checkNotModified handles HTTP conditional GET requests using Last-Modified/If-Modified-Since.
// Returns true if a 304 Not Modified response was sent (caller should return early).
func checkNotModified(w http.ResponseWriter, r *http.Request, lastModified time.Time) bool {
	lastModified = lastModified.UTC().Truncate(time.Second)

	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Last-Modified", lastModified.Format(http.TimeFormat))

	if ifModifiedSince := r.Header.Get("If-Modified-Since"); ifModifiedSince != "" {
		if t, err := http.ParseTime(ifModifiedSince); err == nil {
			if !lastModified.After(t.UTC().Truncate(time.Second)) {
				w.WriteHeader(http.StatusNotModified)
				return true
			}
		}
	}
	return false
}

// TemplateData wraps page-specific data with common template data.
// Templates access page data via .Data and common data via .Common.
type TemplateData struct {
	Data   any
	Common frontend_domain.CommonTemplateData
}

func (h *Handler) getTemplate(name string) (*template.Template, bool) {
	tmpl, ok := h.Templates[name]
	return tmpl, ok
}

func (h *Handler) initCommonTemplateData(w http.ResponseWriter, r *http.Request) frontend_domain.CommonTemplateData {
	b := h.Public.Bbs
	return frontend_domain.CommonTemplateData{
		Error:     h.popFlash(w, r, flashCookieError),
		Success:   h.popFlash(w, r, flashCookieSuccess),
		CSRFToken: middleware.GetCSRFTokenFromContext(r),
		Name:      readCookie(r, nameCookie),
		Email:     readCookie(r, emailCookie),
		Validation: frontend_domain.ValidationData{
			TitleMaxLen:  b.MaxTitleLength,
			NameMaxLen:   b.MaxNameLength,
			EmailMaxLen:  b.MaxEmailLength,
			BodyMaxLen:   b.MaxBodyLength,
			MaxResponses: b.MaxResponses,
		},
	}
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	h.renderTemplateWithStatus(w, r, name, data, http.StatusOK)
}

func (h *Handler) renderTemplateWithStatus(w http.ResponseWriter, r *http.Request, name string, data any, status int) {
	tmpl, ok := h.getTemplate(name)
	if !ok {
		http.Error(w, fmt.Sprintf("Template %s not found", name), http.StatusInternalServerError)
		return
	}

	wrapped := TemplateData{
		Data:   data,
		Common: h.initCommonTemplateData(w, r),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, wrapped); err != nil {
		logger.FromContext(r.Context()).Error("error executing template", "template", name, "error", err)
		http.Error(w, "Internal Server Error rendering template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// formatDate renders a timestamp as "2024/01/02(火) 15:04:05" in the board zone.
func formatDate(t time.Time, loc *time.Location) string {
	t = t.In(loc)
	return fmt.Sprintf("%s(%s) %s", t.Format("2006/01/02"), weekdays[t.Weekday()], t.Format("15:04:05"))
}

func formatMomentum(m float64) string {
	return strconv.FormatFloat(m, 'f', -1, 64)
}

// renderBody builds body markup from segments. Text is re-escaped from its
// plain form; anchors link to resNumber ids under href. Dangling anchors keep
// the link element but get no href.
func renderBody(segs []text.Segment, href string) template.HTML {
	var sb strings.Builder
	for _, s := range segs {
		switch s.Kind {
		case text.SegmentBreak:
			sb.WriteString("<br>")
		case text.SegmentAnchor:
			ref := template.HTMLEscapeString(s.Ref)
			if !s.Resolved {
				fmt.Fprintf(&sb, `<a class="anchor dangling" data-anchor="%s">&gt;&gt;%s</a>`, ref, ref)
				continue
			}
			fmt.Fprintf(&sb, `<a class="anchor" data-anchor="%s" href="%s#res-%d">&gt;&gt;%s</a>`, ref, href, s.Target, ref)
		default:
			sb.WriteString(template.HTMLEscapeString(s.Plain()))
		}
	}
	return template.HTML(sb.String())
}

// renderResponse transforms an api response view into a template view model.
// Name and email are stored escaped and html/template escapes on output, so
// they are unescaped here.
func renderResponse(view api.ResponseView, href string, loc *time.Location) *frontend_domain.Response {
	return &frontend_domain.Response{
		ResNumber: view.ResNumber,
		Name:      text.Unescape(view.Name),
		Tripcode:  view.Tripcode,
		Email:     text.Unescape(view.Email),
		IsSage:    view.IsSage(),
		PosterId:  view.PosterId,
		Date:      formatDate(view.CreatedAt, loc),
		Body:      renderBody(view.Segments, href),
	}
}

func renderThread(thread api.ThreadResponse, loc *time.Location) *frontend_domain.Thread {
	rendered := &frontend_domain.Thread{
		Thread:    thread.Thread,
		Board:     thread.Board,
		Responses: make([]*frontend_domain.Response, len(thread.Responses)),
		Momentum:  formatMomentum(thread.Momentum),
	}
	for i, res := range thread.Responses {
		rendered.Responses[i] = renderResponse(res, "", loc)
		rendered.LastRes = res.ResNumber
	}
	return rendered
}

func renderThreadRow(row api.ThreadPreviewView, loc *time.Location) *frontend_domain.ThreadRow {
	href := fmt.Sprintf("/threads/%d", row.Id)
	return &frontend_domain.ThreadRow{
		Thread:   row.Thread,
		Board:    row.Board,
		First:    renderResponse(api.NewResponseView(row.First, row.ResCount), href, loc),
		Momentum: formatMomentum(row.Momentum),
		Date:     formatDate(row.CreatedAt, loc),
	}
}
