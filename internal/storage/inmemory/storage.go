// Package inmemory provides functionality for reading/writing client slots to/from local
// storage implemented as a map.
package inmemory

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/danilovkiri/dk_go_post_board/internal/storage"
	storageErrors "github.com/danilovkiri/dk_go_post_board/internal/storage/errors"
	"github.com/danilovkiri/dk_go_post_board/internal/storage/modelstorage"
)

// Check interface implementation explicitly
var (
	_ storage.SlotStorage = (*Storage)(nil)
)

// Storage struct defines data structure handling and provides support for adding new implementations.
type Storage struct {
	mu sync.Mutex
	DB map[string]modelstorage.SlotMap
}

// InitStorage initializes a Storage object and sets its attributes.
func InitStorage() *Storage {
	db := make(map[string]modelstorage.SlotMap)
	return &Storage{DB: db}
}

// Read returns the value stored under key for a client.
func (s *Storage) Read(ctx context.Context, clientID, key string) (value string, err error) {
	// create channels for listening to the go routine result
	readDone := make(chan string, 1)
	readError := make(chan error, 1)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		v, ok := s.DB[clientID][key]
		if !ok {
			readError <- &storageErrors.NotFoundError{ClientID: clientID, Key: key}
			return
		}
		readDone <- v
	}()

	// wait for the first channel to retrieve a value
	select {
	case <-ctx.Done():
		log.Debug().Err(ctx.Err()).Str("key", key).Msg("reading slot")
		return "", &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case rdError := <-readError:
		return "", rdError
	case v := <-readDone:
		log.Debug().Str("client", clientID).Str("key", key).Msg("slot read")
		return v, nil
	}
}

// Write stores value under key for a client, overwriting any previous value.
func (s *Storage) Write(ctx context.Context, clientID, key, value string) error {
	writeDone := make(chan struct{}, 1)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		slots, ok := s.DB[clientID]
		if !ok {
			slots = make(modelstorage.SlotMap)
			s.DB[clientID] = slots
		}
		slots[key] = value
		writeDone <- struct{}{}
	}()

	select {
	case <-ctx.Done():
		log.Debug().Err(ctx.Err()).Str("key", key).Msg("writing slot")
		return &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case <-writeDone:
		log.Debug().Str("client", clientID).Str("key", key).Msg("slot written")
		return nil
	}
}

// Delete removes key for a client. Removing an absent slot is a no-op.
func (s *Storage) Delete(ctx context.Context, clientID, key string) error {
	deleteDone := make(chan struct{}, 1)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if slots, ok := s.DB[clientID]; ok {
			delete(slots, key)
			if len(slots) == 0 {
				delete(s.DB, clientID)
			}
		}
		deleteDone <- struct{}{}
	}()

	select {
	case <-ctx.Done():
		log.Debug().Err(ctx.Err()).Str("key", key).Msg("deleting slot")
		return &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case <-deleteDone:
		log.Debug().Str("client", clientID).Str("key", key).Msg("slot deleted")
		return nil
	}
}

// PingDB is a mock for SQL DB pinger for inmemory DB handling.
func (s *Storage) PingDB() error {
	return nil
}

// CloseDB is a mock for SQL DB closer for inmemory DB handling.
func (s *Storage) CloseDB() error {
	return nil
}
