package api

import (
	"github.com/itchan-dev/nanashi/shared/domain"
	"github.com/itchan-dev/nanashi/shared/text"
)

// Request DTOs shared by backend and frontend handlers

type CreateThreadRequest struct {
	BoardId domain.BoardId `json:"board_id,omitempty"` // 0 selects the default board
	Title   string         `json:"title" validate:"required"`
	Name    string         `json:"name,omitempty"`
	Email   string         `json:"email,omitempty"`
	Body    string         `json:"body" validate:"required"`
}

type CreateResponseRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Body  string `json:"body" validate:"required"`
}

type CreateCategoryRequest struct {
	Id   domain.CategoryId `json:"id,omitempty"`
	Name string            `json:"name" validate:"required"`
}

type CreateBoardRequest struct {
	Id          domain.BoardId    `json:"id,omitempty"`
	CategoryId  domain.CategoryId `json:"category_id" validate:"required"`
	Name        string            `json:"name" validate:"required"`
	DefaultName string            `json:"default_name,omitempty"`
	Rules       string            `json:"rules,omitempty"`
}

type AdminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// Response DTOs

type AdminLoginResponse struct {
	Token string `json:"token"`
}

type BoardsResponse struct {
	Categories []domain.Category `json:"categories"`
	Boards     []domain.Board    `json:"boards"`
}

// ResponseView is a stored response plus its body split into render segments.
type ResponseView struct {
	domain.Response
	Segments []text.Segment `json:"segments"`
}

type ThreadResponse struct {
	domain.Thread
	Board     domain.Board   `json:"board"`
	Responses []ResponseView `json:"responses"`
	Momentum  float64        `json:"momentum"`
}

type ThreadPreviewView struct {
	domain.ThreadPreview
	Momentum float64 `json:"momentum"`
}

type ThreadListResponse struct {
	Threads []ThreadPreviewView `json:"threads"`
	Sort    domain.ThreadSort   `json:"sort"`
	Page    int                 `json:"page"`
}

type CreateThreadResponse struct {
	Thread domain.Thread   `json:"thread"`
	First  domain.Response `json:"first"`
}

type CreateResponseResponse struct {
	Thread   domain.Thread   `json:"thread"`
	Response domain.Response `json:"response"`
}

// NewResponseView splits a stored body into segments; anchors past the
// thread's current count are marked unresolved.
func NewResponseView(r domain.Response, resCount int) ResponseView {
	return ResponseView{Response: r, Segments: text.ResolveAnchors(text.FormatBody(r.Body), resCount)}
}
