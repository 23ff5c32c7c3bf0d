// Package insqlite provides data types and methods for SQLite slot storage operations.
package insqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/danilovkiri/dk_go_post_board/internal/config"
	"github.com/danilovkiri/dk_go_post_board/internal/storage"
	storageErrors "github.com/danilovkiri/dk_go_post_board/internal/storage/errors"
)

// Check interface implementation explicitly
var (
	_ storage.SlotStorage = (*Storage)(nil)
)

const schema = `CREATE TABLE IF NOT EXISTS local_slots (
	client_id TEXT NOT NULL,
	slot TEXT NOT NULL,
	value TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (client_id, slot)
);`

// Storage struct defines data structure handling and provides support for adding new implementations.
type Storage struct {
	Cfg *config.StorageConfig
	DB  *sql.DB
}

// InitStorage opens the SQLite database, creates the table if needed and starts a listener closing the DB on ctx
// cancellation.
func InitStorage(ctx context.Context, wg *sync.WaitGroup, cfg *config.StorageConfig) (*Storage, error) {
	if strings.TrimSpace(cfg.SQLitePath) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(cfg.SQLitePath) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, &storageErrors.ExecutionSQLError{Err: err}
	}
	st := &Storage{
		Cfg: cfg,
		DB:  db,
	}
	go func() {
		defer wg.Done()
		<-ctx.Done()
		if err := st.DB.Close(); err != nil {
			log.Error().Err(err).Msg("sqlite storage close failed")
			return
		}
		log.Info().Msg("sqlite storage closed successfully")
	}()
	return st, nil
}

// Read returns the value stored under key for a client.
func (s *Storage) Read(ctx context.Context, clientID, key string) (value string, err error) {
	query := "SELECT value FROM local_slots WHERE client_id = ? AND slot = ?"
	err = s.DB.QueryRowContext(ctx, query, clientID, key).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", &storageErrors.NotFoundError{ClientID: clientID, Key: key, Err: err}
	case ctx.Err() != nil:
		return "", &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case err != nil:
		return "", &storageErrors.ExecutionSQLError{Err: err}
	}
	log.Debug().Str("client", clientID).Str("key", key).Msg("slot read")
	return value, nil
}

// Write stores value under key for a client, overwriting any previous value.
func (s *Storage) Write(ctx context.Context, clientID, key, value string) error {
	query := `INSERT INTO local_slots (client_id, slot, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (client_id, slot) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err := s.DB.ExecContext(ctx, query, clientID, key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		if ctx.Err() != nil {
			return &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
		}
		return &storageErrors.ExecutionSQLError{Err: err}
	}
	log.Debug().Str("client", clientID).Str("key", key).Msg("slot written")
	return nil
}

// Delete removes key for a client. Removing an absent slot is a no-op.
func (s *Storage) Delete(ctx context.Context, clientID, key string) error {
	query := "DELETE FROM local_slots WHERE client_id = ? AND slot = ?"
	_, err := s.DB.ExecContext(ctx, query, clientID, key)
	if err != nil {
		if ctx.Err() != nil {
			return &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
		}
		return &storageErrors.ExecutionSQLError{Err: err}
	}
	log.Debug().Str("client", clientID).Str("key", key).Msg("slot deleted")
	return nil
}

// PingDB checks the DB connection.
func (s *Storage) PingDB() error {
	return s.DB.Ping()
}

// CloseDB closes the DB connection.
func (s *Storage) CloseDB() error {
	return s.DB.Close()
}
