package frontend_domain

import (
	"html/template"

	"github.com/itchan-dev/nanashi/shared/domain"
)

// Response is a stored response prepared for a template. Body is built from
// the api's segments; nothing else in it is trusted markup.
type Response struct {
	ResNumber domain.ResNumber
	Name      string
	Tripcode  domain.Tripcode
	Email     string
	IsSage    bool
	PosterId  domain.PosterId
	Date      string
	Body      template.HTML
}

type Thread struct {
	domain.Thread
	Board     domain.Board
	Responses []*Response
	Momentum  string
	LastRes   domain.ResNumber
}

// ThreadRow is one line of a thread listing.
type ThreadRow struct {
	domain.Thread
	Board    domain.Board
	First    *Response
	Momentum string
	Date     string
}
