// Package fetcher provides interfaces for types to be in compliance with.
package fetcher

import (
	"context"
	"encoding/json"
)

// Fetcher defines a set of methods for types implementing Fetcher.
type Fetcher interface {
	FetchPosts(ctx context.Context, userID int) (json.RawMessage, error)
}
