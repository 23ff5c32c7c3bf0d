// Package infile provides data types and methods for local file storage operations.
package infile

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/danilovkiri/dk_go_post_board/internal/config"
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
	mu      sync.Mutex
	Cfg     *config.StorageConfig
	DB      map[string]modelstorage.SlotMap
	Encoder *json.Encoder
}

// InitStorage initializes a Storage object, replays the journal and starts a listener closing the file on ctx
// cancellation.
func InitStorage(ctx context.Context, wg *sync.WaitGroup, cfg *config.StorageConfig) (*Storage, error) {
	db := make(map[string]modelstorage.SlotMap)
	st := Storage{
		Cfg: cfg,
		DB:  db,
	}
	err := st.restore()
	if err != nil {
		return nil, err
	}
	// open file outside goroutine since this operation might not finish prior to encoding operations
	file, err := os.OpenFile(st.Cfg.FileStoragePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	st.Encoder = json.NewEncoder(file)
	// start a goroutine to listen for ctx cancellation followed by file storage closure,
	// use sync.WaitGroup to prevent goroutine premature termination when main exits
	go func() {
		defer wg.Done()
		<-ctx.Done()
		st.mu.Lock()
		defer st.mu.Unlock()
		if err := file.Close(); err != nil {
			log.Error().Err(err).Msg("file storage close failed")
			return
		}
		log.Info().Msg("file storage closed successfully")
	}()
	return &st, nil
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

// Write stores value under key for a client and journals it.
func (s *Storage) Write(ctx context.Context, clientID, key, value string) error {
	writeDone := make(chan struct{}, 1)
	writeError := make(chan error, 1)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		err := s.addToFileDB(modelstorage.SlotJournalEntry{ClientID: clientID, Key: key, Value: value})
		if err != nil {
			writeError <- &storageErrors.FileWriteError{Err: err}
			return
		}
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
	case wrError := <-writeError:
		log.Error().Err(wrError).Str("key", key).Msg("writing slot")
		return wrError
	case <-writeDone:
		log.Debug().Str("client", clientID).Str("key", key).Msg("slot written")
		return nil
	}
}

// Delete removes key for a client and journals a tombstone. Removing an absent slot is a no-op.
func (s *Storage) Delete(ctx context.Context, clientID, key string) error {
	deleteDone := make(chan struct{}, 1)
	deleteError := make(chan error, 1)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.DB[clientID][key]; !ok {
			deleteDone <- struct{}{}
			return
		}
		err := s.addToFileDB(modelstorage.SlotJournalEntry{ClientID: clientID, Key: key, Deleted: true})
		if err != nil {
			deleteError <- &storageErrors.FileWriteError{Err: err}
			return
		}
		s.forget(clientID, key)
		deleteDone <- struct{}{}
	}()

	select {
	case <-ctx.Done():
		log.Debug().Err(ctx.Err()).Str("key", key).Msg("deleting slot")
		return &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case dlError := <-deleteError:
		log.Error().Err(dlError).Str("key", key).Msg("deleting slot")
		return dlError
	case <-deleteDone:
		log.Debug().Str("client", clientID).Str("key", key).Msg("slot deleted")
		return nil
	}
}

// restore fills the tmpfs DB with slot entries replayed from file storage.
func (s *Storage) restore() error {
	file, err := os.OpenFile(s.Cfg.FileStoragePath, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer file.Close()
	reader := bufio.NewScanner(file)
	reader.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lines := 0
	for reader.Scan() {
		var entry modelstorage.SlotJournalEntry
		if err := json.Unmarshal(reader.Bytes(), &entry); err != nil {
			return err
		}
		lines++
		if entry.Deleted {
			s.forget(entry.ClientID, entry.Key)
			continue
		}
		slots, ok := s.DB[entry.ClientID]
		if !ok {
			slots = make(modelstorage.SlotMap)
			s.DB[entry.ClientID] = slots
		}
		slots[entry.Key] = entry.Value
	}
	if err := reader.Err(); err != nil {
		return err
	}
	log.Info().Int("entries", lines).Int("clients", len(s.DB)).Msg("file storage was restored")
	return nil
}

// forget drops a slot from the map, removing the client once it holds no slots.
func (s *Storage) forget(clientID, key string) {
	slots, ok := s.DB[clientID]
	if !ok {
		return
	}
	delete(slots, key)
	if len(slots) == 0 {
		delete(s.DB, clientID)
	}
}

// addToFileDB appends one journal entry to the file DB.
func (s *Storage) addToFileDB(entry modelstorage.SlotJournalEntry) error {
	return s.Encoder.Encode(entry)
}

// PingDB is a mock for SQL DB pinger.
func (s *Storage) PingDB() error {
	return nil
}

// CloseDB is a mock for SQL DB closer.
func (s *Storage) CloseDB() error {
	return nil
}
