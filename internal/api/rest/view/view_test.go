package view

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danilovkiri/dk_go_post_board/internal/service/modelpage"
	"github.com/danilovkiri/dk_go_post_board/internal/service/modelpost"
)

func TestRenderPage_Idle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, modelpage.New()))
	out := buf.String()
	for _, id := range []string{"postForm", "userIdInput", "rememberUser", "statusArea", "postsList", "clearResultsBtn"} {
		assert.Contains(t, out, `id="`+id+`"`)
	}
	assert.Contains(t, out, `<p class="status-message">No request has been made yet.</p>`)
	assert.NotContains(t, out, "post-item")
	assert.NotContains(t, out, " checked")
}

func TestRenderPage_Posts(t *testing.T) {
	page := modelpage.New()
	page.Form = modelpage.Form{UserID: "3", Remember: true}
	page.SetStatus(modelpage.Success())
	page.Posts = []modelpost.Post{
		modelpost.FromRaw(json.RawMessage(`{"id":1,"title":"T","body":"B"}`)),
		modelpost.FromRaw(json.RawMessage(`{"title":"<script>alert(1)</script>","body":"a & b"}`)),
		modelpost.FromRaw(json.RawMessage(`7`)),
	}

	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, page))
	out := buf.String()
	assert.Equal(t, 3, strings.Count(out, `<li class="post-item">`))
	assert.Contains(t, out, `<h3 class="post-title">T</h3>`)
	assert.Contains(t, out, `<p class="post-body">B</p>`)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.Contains(t, out, "a &amp; b")
	assert.Contains(t, out, `<h3 class="post-title"></h3>`)
	assert.Contains(t, out, `value="3"`)
	assert.Contains(t, out, " checked")
	assert.Contains(t, out, `<p class="status-message status-message--success">Success!</p>`)
	// order is kept
	assert.Less(t, strings.Index(out, ">T<"), strings.Index(out, "alert(1)"))
}

func TestStatusClass(t *testing.T) {
	tests := []struct {
		kind modelpage.StatusKind
		want string
	}{
		{kind: modelpage.StatusIdle, want: "status-message"},
		{kind: modelpage.StatusLoading, want: "status-message status-message--loading"},
		{kind: modelpage.StatusSuccess, want: "status-message status-message--success"},
		{kind: modelpage.StatusError, want: "status-message status-message--error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusClass(tt.kind))
	}
}
