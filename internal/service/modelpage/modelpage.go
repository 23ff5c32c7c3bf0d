// Package modelpage provides the page context shared by the board controllers and the view.
package modelpage

import (
	"fmt"

	"github.com/danilovkiri/dk_go_post_board/internal/service/modelpost"
)

// StatusKind is the visual state of the status area.
type StatusKind string

const (
	StatusIdle    StatusKind = "idle"
	StatusLoading StatusKind = "loading"
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// Status messages shown in the status area.
const (
	MessageIdle       = "No request has been made yet."
	MessageLoading    = "Loading..."
	MessageSuccess    = "Success!"
	MessageRestored   = "Posts loaded from local storage."
	MessageValidation = "Error: please enter a number between 1 and 10."
	MessageFormat     = "Error: data is not in the expected format."
	MessageStorage    = "Error: local storage is unavailable."
)

// Status is the content of the status area.
type Status struct {
	Kind    StatusKind `json:"kind"`
	Message string     `json:"message"`
}

// Form mirrors the input field and the remember checkbox.
type Form struct {
	UserID   string `json:"userId"`
	Remember bool   `json:"remember"`
}

// Page is the context object handed to every controller in place of element bindings.
// It is built once per request and is not safe for concurrent use.
type Page struct {
	Form   Form             `json:"form"`
	Status Status           `json:"status"`
	Posts  []modelpost.Post `json:"posts"`

	observer func(Status)
}

// New returns a page with an idle status and an empty list.
func New() *Page {
	return &Page{
		Status: Idle(),
		Posts:  []modelpost.Post{},
	}
}

// Observe registers fn to be called on every status change.
func (p *Page) Observe(fn func(Status)) {
	p.observer = fn
}

// SetStatus replaces the status area content.
func (p *Page) SetStatus(s Status) {
	p.Status = s
	if p.observer != nil {
		p.observer(s)
	}
}

// ClearPosts empties the list.
func (p *Page) ClearPosts() {
	p.Posts = []modelpost.Post{}
}

// Idle is the status area before any action.
func Idle() Status {
	return Status{Kind: StatusIdle, Message: MessageIdle}
}

// Loading is shown while a fetch is in flight.
func Loading() Status {
	return Status{Kind: StatusLoading, Message: MessageLoading}
}

// Success follows a fetch that stored and rendered the posts.
func Success() Status {
	return Status{Kind: StatusSuccess, Message: MessageSuccess}
}

// Restored follows a bootstrap that rendered cached posts.
func Restored() Status {
	return Status{Kind: StatusSuccess, Message: MessageRestored}
}

// ValidationError rejects a user id outside 1..10.
func ValidationError() Status {
	return Status{Kind: StatusError, Message: MessageValidation}
}

// FormatError reports posts data, fetched or cached, that is not a JSON array.
func FormatError() Status {
	return Status{Kind: StatusError, Message: MessageFormat}
}

// StorageError reports a slot that could not be read or written.
func StorageError() Status {
	return Status{Kind: StatusError, Message: MessageStorage}
}

// ConnectionError reports a failed fetch with its underlying message.
func ConnectionError(err error) Status {
	return Status{Kind: StatusError, Message: fmt.Sprintf("Connection error: %s", err.Error())}
}
