package domain

import (
	"strings"
	"time"
)

type Thread struct {
	Id        ThreadId    `json:"id"`
	BoardId   BoardId     `json:"board_id"`
	Title     ThreadTitle `json:"title"`
	ResCount  int         `json:"res_count"`
	IsFull    bool        `json:"is_full"`
	CreatedAt time.Time   `json:"created_at"`
	BumpedAt  time.Time   `json:"bumped_at"`
}

// ThreadDetail is a thread with its board and every response in ResNumber order.
type ThreadDetail struct {
	Thread
	Board     Board      `json:"board"`
	Responses []Response `json:"responses"`
}

// ThreadPreview is a listing row: the thread plus its first response.
type ThreadPreview struct {
	Thread
	Board Board    `json:"board"`
	First Response `json:"first"`
}

// to iterate thru layers: handler -> service
type ThreadCreationData struct {
	BoardId   BoardId // 0 selects the default board
	Title     string
	Name      string
	Email     string
	Body      string
	IpAddress string
}

// NewThread is a fully derived thread and its first response, ready to persist.
type NewThread struct {
	Thread Thread
	First  Response
}

type ThreadSort string

const (
	SortBumped  ThreadSort = "bumped"
	SortCreated ThreadSort = "created"
)

// ParseThreadSort accepts the api values and the names used by the old app.
// Anything unknown sorts by bump time.
func ParseThreadSort(s string) ThreadSort {
	switch strings.ToLower(s) {
	case "created", "createdat", "created_at":
		return SortCreated
	default:
		return SortBumped
	}
}

type ThreadFilter struct {
	BoardId *BoardId
	Sort    ThreadSort
	Limit   int
	Offset  int
}
