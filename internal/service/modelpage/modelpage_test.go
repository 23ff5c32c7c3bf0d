package modelpage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danilovkiri/dk_go_post_board/internal/service/modelpost"
)

// Tests

func TestStatusConstructors(t *testing.T) {
	tests := []struct {
		name    string
		status  Status
		kind    StatusKind
		message string
	}{
		{name: "idle", status: Idle(), kind: StatusIdle, message: MessageIdle},
		{name: "loading", status: Loading(), kind: StatusLoading, message: MessageLoading},
		{name: "success", status: Success(), kind: StatusSuccess, message: MessageSuccess},
		{name: "restored", status: Restored(), kind: StatusSuccess, message: MessageRestored},
		{name: "validation", status: ValidationError(), kind: StatusError, message: MessageValidation},
		{name: "format", status: FormatError(), kind: StatusError, message: MessageFormat},
		{name: "storage", status: StorageError(), kind: StatusError, message: MessageStorage},
		{name: "connection", status: ConnectionError(errors.New("dial tcp: refused")), kind: StatusError, message: "Connection error: dial tcp: refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.status.Kind)
			assert.Equal(t, tt.message, tt.status.Message)
		})
	}
}

func TestPage_SetStatusNotifiesObserver(t *testing.T) {
	page := New()
	assert.Equal(t, Idle(), page.Status)
	var seen []Status
	page.Observe(func(s Status) { seen = append(seen, s) })
	page.SetStatus(Loading())
	page.SetStatus(Success())
	assert.Equal(t, []Status{Loading(), Success()}, seen)
	assert.Equal(t, Success(), page.Status)
}

func TestPage_ClearPosts(t *testing.T) {
	page := New()
	title := "T"
	page.Posts = []modelpost.Post{{Title: &title}}
	page.ClearPosts()
	assert.NotNil(t, page.Posts)
	assert.Empty(t, page.Posts)
}
