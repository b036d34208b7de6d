package frontend_domain

import (
	"html/template"

	"github.com/itchan-dev/nanashi/shared/domain"
)

// CategoryBoards groups boards under their category for the board menu.
type CategoryBoards struct {
	Category domain.Category
	Boards   []domain.Board
}

type IndexPageData struct {
	Menu    []CategoryBoards
	Board   *domain.Board // nil on the all-boards listing
	Rules   template.HTML
	Threads []*ThreadRow
	Sort    domain.ThreadSort
	Page    int
	HasNext bool
	// BoardId preselected in the new thread form; 0 posts to the default board.
	FormBoardId domain.BoardId
}

type ThreadPageData struct {
	Thread *Thread
}
