package main

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/danilovkiri/dk_go_post_board/internal/config"
	"github.com/danilovkiri/dk_go_post_board/internal/storage"
)

func TestOpenStorage(t *testing.T) {
	defer goleak.VerifyNone(t)
	dir := t.TempDir()
	tests := []struct {
		name    string
		cfg     config.StorageConfig
		wantErr bool
	}{
		{name: "memory", cfg: config.StorageConfig{Backend: config.BackendMemory}},
		{name: "file", cfg: config.StorageConfig{Backend: config.BackendFile, FileStoragePath: filepath.Join(dir, "slots.json")}},
		{name: "sqlite", cfg: config.StorageConfig{Backend: config.BackendSQLite, SQLitePath: filepath.Join(dir, "slots.db")}},
		{name: "sqlite without path", cfg: config.StorageConfig{Backend: config.BackendSQLite}, wantErr: true},
		{name: "unknown", cfg: config.StorageConfig{Backend: "redis"}, wantErr: true},
	}

	// perform each test
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			wg := &sync.WaitGroup{}
			st, err := openStorage(ctx, wg, &tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				cancel()
				wg.Wait()
				return
			}
			require.NoError(t, err)
			require.NoError(t, st.Write(ctx, "client", storage.LastUserIDKey, "5"))
			v, err := st.Read(ctx, "client", storage.LastUserIDKey)
			require.NoError(t, err)
			assert.Equal(t, "5", v)
			cancel()
			wg.Wait()
		})
	}
}

func TestNewRootCommand_Flags(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"config", "address", "storage", "file", "sqlite", "dsn", "api", "log-level"} {
		assert.NotNil(t, root.Flags().Lookup(name), name)
	}
	assert.Equal(t, "postboard", root.Use)
}
