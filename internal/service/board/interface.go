// Package board provides interfaces for types to be in compliance with.
package board

import (
	"context"
	"encoding/json"

	"github.com/danilovkiri/dk_go_post_board/internal/service/modelpage"
)

// Processor defines a set of methods for types implementing Processor.
// Every method reports failures on the page status area; the returned error only classifies them.
type Processor interface {
	Bootstrap(ctx context.Context, clientID string, page *modelpage.Page) error
	Submit(ctx context.Context, clientID string, form modelpage.Form, page *modelpage.Page) error
	Render(ctx context.Context, clientID string, raw json.RawMessage, page *modelpage.Page) error
	Clear(ctx context.Context, clientID string, page *modelpage.Page) error
}
