package domain

type (
	CategoryId = int64
	BoardId    = int64
	ThreadId   = int64
	ResponseId = int64

	ThreadTitle = string
	ResNumber   = int
	PosterId    = string // daily pseudonymous id, 8 chars
	Tripcode    = string
)
