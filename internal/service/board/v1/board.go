// Package board provides the controllers behind the post board page: bootstrap, submit, render and clear.
package board

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/danilovkiri/dk_go_post_board/internal/service/board"
	serviceErrors "github.com/danilovkiri/dk_go_post_board/internal/service/errors"
	"github.com/danilovkiri/dk_go_post_board/internal/service/fetcher"
	"github.com/danilovkiri/dk_go_post_board/internal/service/modelpage"
	"github.com/danilovkiri/dk_go_post_board/internal/service/modelpost"
	"github.com/danilovkiri/dk_go_post_board/internal/storage"
	storageErrors "github.com/danilovkiri/dk_go_post_board/internal/storage/errors"
)

// StorageTimeout bounds every single slot operation.
const StorageTimeout = 500 * time.Millisecond

// Check interface implementation explicitly
var (
	_ board.Processor = (*Board)(nil)
)

var stats = expvar.NewMap("board")

// Board struct defines data structure handling and provides support for adding new implementations.
type Board struct {
	SlotStorage storage.SlotStorage
	Fetcher     fetcher.Fetcher
	logger      zerolog.Logger
}

// InitBoard initializes a Board object and sets its attributes.
func InitBoard(s storage.SlotStorage, f fetcher.Fetcher, logger zerolog.Logger) (*Board, error) {
	if s == nil {
		return nil, &serviceErrors.ServiceFoundNilStorage{Msg: "nil storage was passed to service initializer"}
	}
	if f == nil {
		return nil, &serviceErrors.ServiceFoundNilFetcher{Msg: "nil fetcher was passed to service initializer"}
	}
	return &Board{
		SlotStorage: s,
		Fetcher:     f,
		logger:      logger.With().Str("component", "board").Logger(),
	}, nil
}

// Bootstrap rehydrates the form and the list of a freshly loaded page.
func (b *Board) Bootstrap(ctx context.Context, clientID string, page *modelpage.Page) error {
	if lastUserID, ok := b.read(ctx, clientID, storage.LastUserIDKey); ok && lastUserID != "" {
		page.Form.UserID = lastUserID
		page.Form.Remember = true
	}
	cached, ok := b.read(ctx, clientID, storage.PostsDataKey)
	if !ok || cached == "" {
		return nil
	}
	if !json.Valid([]byte(cached)) {
		b.selfHeal(ctx, clientID, cached)
		return nil
	}
	err := b.Render(ctx, clientID, json.RawMessage(cached), page)
	var formatErr *serviceErrors.FormatError
	switch {
	case errors.As(err, &formatErr):
		return nil
	case err != nil:
		return err
	}
	page.SetStatus(modelpage.Restored())
	return nil
}

// Submit validates the form, fetches the posts of the requested user, renders them and applies the remember
// policy. Overlapping submissions of one client are not serialized; the last one to finish owns the slots.
func (b *Board) Submit(ctx context.Context, clientID string, form modelpage.Form, page *modelpage.Page) error {
	page.Form = form
	b.restoreList(ctx, clientID, page)
	userID, err := ParseUserID(form.UserID)
	if err != nil {
		page.SetStatus(modelpage.ValidationError())
		return err
	}
	page.SetStatus(modelpage.Loading())
	raw, err := b.Fetcher.FetchPosts(ctx, userID)
	if err != nil {
		stats.Add("fetch_failed", 1)
		b.logger.Info().Err(err).Str("client", clientID).Int("userId", userID).Msg("fetch failed")
		page.SetStatus(modelpage.ConnectionError(err))
		return err
	}
	stats.Add("fetch_ok", 1)
	page.SetStatus(modelpage.Success())
	renderErr := b.Render(ctx, clientID, raw, page)
	var formatErr *serviceErrors.FormatError
	if renderErr != nil && !errors.As(renderErr, &formatErr) {
		return renderErr
	}
	if err := b.remember(ctx, clientID, userID, form.Remember); err != nil {
		return err
	}
	return renderErr
}

// Render replaces the list with the posts of raw and persists raw as the result cache. A value that is not
// a JSON array leaves the list and the cache untouched.
func (b *Board) Render(ctx context.Context, clientID string, raw json.RawMessage, page *modelpage.Page) error {
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil || elements == nil {
		b.logger.Warn().Str("client", clientID).Msg("render expected an array")
		page.SetStatus(modelpage.FormatError())
		return &serviceErrors.FormatError{Msg: "posts payload is not an array"}
	}
	posts := make([]modelpost.Post, 0, len(elements))
	for _, element := range elements {
		posts = append(posts, modelpost.FromRaw(element))
	}
	page.Posts = posts

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return err
	}
	if err := b.write(ctx, clientID, storage.PostsDataKey, compact.String()); err != nil {
		page.SetStatus(modelpage.StorageError())
		return err
	}
	return nil
}

// Clear empties the list, drops the result cache and resets the status. The remembered user id is kept.
func (b *Board) Clear(ctx context.Context, clientID string, page *modelpage.Page) error {
	page.ClearPosts()
	if err := b.delete(ctx, clientID, storage.PostsDataKey); err != nil {
		page.SetStatus(modelpage.StorageError())
		return err
	}
	page.SetStatus(modelpage.Idle())
	return nil
}

// remember stores the submitted user id when the flag is set and drops it otherwise.
func (b *Board) remember(ctx context.Context, clientID string, userID int, flag bool) error {
	var err error
	if flag {
		err = b.write(ctx, clientID, storage.LastUserIDKey, strconv.Itoa(userID))
	} else {
		err = b.delete(ctx, clientID, storage.LastUserIDKey)
	}
	if err != nil {
		b.logger.Error().Err(err).Str("client", clientID).Msg("remember policy")
	}
	return err
}

// restoreList fills the list with the cached posts without touching the status, matching what a page that
// stayed open would still display.
func (b *Board) restoreList(ctx context.Context, clientID string, page *modelpage.Page) {
	cached, ok := b.read(ctx, clientID, storage.PostsDataKey)
	if !ok || cached == "" {
		return
	}
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(cached), &elements); err != nil {
		if !json.Valid([]byte(cached)) {
			b.selfHeal(ctx, clientID, cached)
		}
		return
	}
	posts := make([]modelpost.Post, 0, len(elements))
	for _, element := range elements {
		posts = append(posts, modelpost.FromRaw(element))
	}
	page.Posts = posts
}

// selfHeal drops a result cache that is not valid JSON. It is reported through the logger and the
// board.cache_selfheal counter only, never on the page.
func (b *Board) selfHeal(ctx context.Context, clientID, cached string) {
	stats.Add("cache_selfheal", 1)
	var v interface{}
	parseErr := json.Unmarshal([]byte(cached), &v)
	event := b.logger.Warn().Str("client", clientID).Int("bytes", len(cached))
	if parseErr != nil {
		event = event.Err(parseErr)
	}
	event.Msg("result cache is not valid JSON, slot deleted")
	if err := b.delete(ctx, clientID, storage.PostsDataKey); err != nil {
		b.logger.Error().Err(err).Str("client", clientID).Msg("result cache self-heal")
	}
}

// read returns a slot value; absent slots and storage failures both report ok=false.
func (b *Board) read(ctx context.Context, clientID, key string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, StorageTimeout)
	defer cancel()
	value, err := b.SlotStorage.Read(ctx, clientID, key)
	if err != nil {
		var notFound *storageErrors.NotFoundError
		if !errors.As(err, &notFound) {
			b.logger.Error().Err(err).Str("client", clientID).Str("key", key).Msg("reading slot")
		}
		return "", false
	}
	return value, true
}

func (b *Board) write(ctx context.Context, clientID, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, StorageTimeout)
	defer cancel()
	return b.SlotStorage.Write(ctx, clientID, key, value)
}

func (b *Board) delete(ctx context.Context, clientID, key string) error {
	ctx, cancel := context.WithTimeout(ctx, StorageTimeout)
	defer cancel()
	return b.SlotStorage.Delete(ctx, clientID, key)
}
