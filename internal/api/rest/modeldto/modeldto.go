// Package modeldto provides locally used types and their structure for data transfer objects.
package modeldto

import (
	"bytes"
	"encoding/json"

	"github.com/danilovkiri/dk_go_post_board/internal/service/modelpage"
	"github.com/danilovkiri/dk_go_post_board/internal/service/modelpost"
)

type (
	// RequestPosts is the body of POST /api/posts.
	RequestPosts struct {
		UserID   UserIDInput `json:"userId"`
		Remember bool        `json:"remember"`
	}

	// ResponsePage mirrors the page after an operation.
	ResponsePage struct {
		Form   modelpage.Form   `json:"form"`
		Status modelpage.Status `json:"status"`
		Posts  []modelpost.Post `json:"posts"`
	}
)

// UserIDInput keeps the raw text of the userId field, which may be sent as a JSON string or number.
type UserIDInput string

// UnmarshalJSON accepts "3", 3 and null.
func (u *UserIDInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*u = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*u = UserIDInput(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*u = UserIDInput(n.String())
	return nil
}

// Form converts the request into the page form.
func (r RequestPosts) Form() modelpage.Form {
	return modelpage.Form{UserID: string(r.UserID), Remember: r.Remember}
}

// FromPage builds a response from a page.
func FromPage(page *modelpage.Page) ResponsePage {
	posts := page.Posts
	if posts == nil {
		posts = []modelpost.Post{}
	}
	return ResponsePage{
		Form:   page.Form,
		Status: page.Status,
		Posts:  posts,
	}
}
