// Package inpsql provides data types and methods for PSQL slot storage operations.
package inpsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/danilovkiri/dk_go_post_board/internal/config"
	"github.com/danilovkiri/dk_go_post_board/internal/storage"
	storageErrors "github.com/danilovkiri/dk_go_post_board/internal/storage/errors"
)

// Check interface implementation explicitly
var (
	_ storage.SlotStorage = (*Storage)(nil)
)

// Storage struct defines data structure handling and provides support for adding new implementations.
type Storage struct {
	Cfg     *config.StorageConfig
	DB      *sql.DB
	table   string
	queries queries
}

type queries struct {
	read   string
	write  string
	delete string
}

// InitStorage initializes a Storage object, sets its attributes and starts a listener closing the DB on ctx
// cancellation.
func InitStorage(ctx context.Context, wg *sync.WaitGroup, cfg *config.StorageConfig) (*Storage, error) {
	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	table := pq.QuoteIdentifier(cfg.DatabaseTable)
	st := &Storage{
		Cfg:   cfg,
		DB:    db,
		table: table,
		queries: queries{
			read:  fmt.Sprintf("SELECT value FROM %s WHERE client_id = $1 AND slot = $2", table),
			write: fmt.Sprintf(`INSERT INTO %s (client_id, slot, value, updated_at) VALUES ($1, $2, $3, now())
				ON CONFLICT (client_id, slot) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`, table),
			delete: fmt.Sprintf("DELETE FROM %s WHERE client_id = $1 AND slot = $2", table),
		},
	}
	if err := st.createTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	go func() {
		defer wg.Done()
		<-ctx.Done()
		if err := st.DB.Close(); err != nil {
			log.Error().Err(err).Msg("PSQL DB connection close failed")
			return
		}
		log.Info().Msg("PSQL DB connection closed successfully")
	}()
	return st, nil
}

// Read returns the value stored under key for a client.
func (s *Storage) Read(ctx context.Context, clientID, key string) (value string, err error) {
	err = s.DB.QueryRowContext(ctx, s.queries.read, clientID, key).Scan(&value)
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
	_, err := s.DB.ExecContext(ctx, s.queries.write, clientID, key, value)
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
	_, err := s.DB.ExecContext(ctx, s.queries.delete, clientID, key)
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

// createTable creates a table for PSQL DB storage if not exist.
func (s *Storage) createTable(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		client_id text not null,
		slot text not null,
		value text not null,
		updated_at timestamptz not null default now(),
		PRIMARY KEY (client_id, slot)
	);`, s.table)
	_, err := s.DB.ExecContext(ctx, query)
	if err != nil && !isDuplicateObject(err) {
		return &storageErrors.ExecutionSQLError{Err: err}
	}
	return nil
}

// isDuplicateObject reports errors raised when two instances create the table concurrently.
func isDuplicateObject(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation, pgerrcode.DuplicateTable, pgerrcode.DuplicateObject:
		return true
	}
	return false
}
