package domain

import (
	"time"
)

type Category struct {
	Id   CategoryId `json:"id"`
	Name string     `json:"name"`
}

type Board struct {
	Id          BoardId    `json:"id"`
	CategoryId  CategoryId `json:"category_id"`
	Name        string     `json:"name"`
	DefaultName string     `json:"default_name"` // shown when a poster leaves the name empty
	Rules       string     `json:"rules,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// to iterate thru layers: handler -> service -> storage
type BoardCreationData struct {
	Id          BoardId // 0 lets the store pick one
	CategoryId  CategoryId
	Name        string
	DefaultName string
	Rules       string
}

// DefaultBoardData describes the board/category pair bootstrapped on first use.
type DefaultBoardData struct {
	Category Category
	Board    BoardCreationData
}
