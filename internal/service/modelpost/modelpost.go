// Package modelpost provides locally used types and their structure for post handling between modules.
package modelpost

import (
	"encoding/json"
)

// Post is a record received from the posts API. Every field is optional.
type Post struct {
	ID     *json.Number `json:"id,omitempty"`
	UserID *json.Number `json:"userId,omitempty"`
	Title  *string      `json:"title,omitempty"`
	Body   *string      `json:"body,omitempty"`
}

// TitleText returns the title or an empty string when it is missing.
func (p Post) TitleText() string {
	if p.Title == nil {
		return ""
	}
	return *p.Title
}

// BodyText returns the body or an empty string when it is missing.
func (p Post) BodyText() string {
	if p.Body == nil {
		return ""
	}
	return *p.Body
}

// FromRaw decodes one array element. Elements that are not objects, or whose fields have unexpected types,
// yield an empty Post.
func FromRaw(raw json.RawMessage) Post {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Post{}
	}
	var p Post
	p.ID = number(fields["id"])
	p.UserID = number(fields["userId"])
	p.Title = text(fields["title"])
	p.Body = text(fields["body"])
	return p
}

func number(raw json.RawMessage) *json.Number {
	if raw == nil {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil || n == "" {
		return nil
	}
	return &n
}

func text(raw json.RawMessage) *string {
	if raw == nil || string(raw) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}
