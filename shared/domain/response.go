package domain

import "time"

type Response struct {
	Id        ResponseId `json:"id"`
	ThreadId  ThreadId   `json:"thread_id"`
	ResNumber ResNumber  `json:"res_number"`
	Name      string     `json:"name"`
	Tripcode  Tripcode   `json:"tripcode,omitempty"`
	Email     string     `json:"email,omitempty"`
	Body      string     `json:"body"`
	IpAddress string     `json:"-"` // kept for moderation, never sent to clients
	PosterId  PosterId   `json:"poster_id"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsSage reports whether the email field asks not to bump the thread.
func (r *Response) IsSage() bool {
	return IsSage(r.Email)
}

// to iterate thru layers: handler -> service
type ResponseCreationData struct {
	ThreadId  ThreadId
	Name      string
	Email     string
	Body      string
	IpAddress string
}

// AppendFunc runs inside the store's atomic unit. It receives the thread as
// read under the unit's lock and returns the thread's next state together
// with the response to insert. Returning an error aborts the unit.
type AppendFunc func(current Thread) (next Thread, res Response, err error)
