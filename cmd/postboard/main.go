package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/danilovkiri/dk_go_post_board/internal/api/rest"
	"github.com/danilovkiri/dk_go_post_board/internal/config"
	"github.com/danilovkiri/dk_go_post_board/internal/logger"
)

const shutdownTimeout = 5 * time.Second

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "postboard",
		Short: "Serve a page that fetches user posts and keeps them in per-browser slots",
		Example: `  postboard --address :8080 --storage sqlite --sqlite ./slots.db
  STORAGE_BACKEND=postgres DATABASE_DSN=postgres://localhost/board postboard`,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	config.RegisterFlags(root.Flags())
	return root
}

func run(parent context.Context, cfg *config.Config) error {
	l, err := logger.New(&cfg.LogConfig, os.Stderr)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	// storage closers run once the server has stopped
	storageCtx, storageCancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	defer func() {
		storageCancel()
		wg.Wait()
	}()

	slotStorage, err := openStorage(storageCtx, wg, &cfg.StorageConfig)
	if err != nil {
		return err
	}
	server, err := rest.InitServer(storageCtx, cfg, slotStorage, l)
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		l.Info().Str("address", cfg.ServerConfig.ServerAddress).Str("storage", cfg.StorageConfig.Backend).Msg("server start attempted")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	l.Info().Msg("server shutdown attempted")
	ctxTO, cancelTO := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelTO()
	if err := server.Shutdown(ctxTO); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	l.Info().Msg("server shutdown succeeded")
	return nil
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("postboard")
	}
}
