package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/danilovkiri/dk_go_post_board/internal/config"
	"github.com/danilovkiri/dk_go_post_board/internal/storage"
	"github.com/danilovkiri/dk_go_post_board/internal/storage/infile"
	"github.com/danilovkiri/dk_go_post_board/internal/storage/inmemory"
	"github.com/danilovkiri/dk_go_post_board/internal/storage/inpsql"
	"github.com/danilovkiri/dk_go_post_board/internal/storage/insqlite"
)

// openStorage initializes the configured slot storage. Backends holding a resource register their closer on wg.
func openStorage(ctx context.Context, wg *sync.WaitGroup, cfg *config.StorageConfig) (storage.SlotStorage, error) {
	if cfg.Backend == config.BackendMemory {
		return inmemory.InitStorage(), nil
	}
	wg.Add(1)
	var (
		st  storage.SlotStorage
		err error
	)
	switch cfg.Backend {
	case config.BackendFile:
		st, err = infile.InitStorage(ctx, wg, cfg)
	case config.BackendSQLite:
		st, err = insqlite.InitStorage(ctx, wg, cfg)
	case config.BackendPostgres:
		st, err = inpsql.InitStorage(ctx, wg, cfg)
	default:
		err = fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		wg.Done()
		return nil, err
	}
	return st, nil
}
