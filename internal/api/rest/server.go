// Package rest provides functionality for initializing a server for the post board page.
package rest

import (
	"context"
	"expvar"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/rs/zerolog"

	"github.com/danilovkiri/dk_go_post_board/internal/api/rest/handlers"
	"github.com/danilovkiri/dk_go_post_board/internal/api/rest/middleware"
	"github.com/danilovkiri/dk_go_post_board/internal/config"
	"github.com/danilovkiri/dk_go_post_board/internal/service/board/v1"
	"github.com/danilovkiri/dk_go_post_board/internal/service/fetcher/v1"
	"github.com/danilovkiri/dk_go_post_board/internal/service/secretary/v1"
	"github.com/danilovkiri/dk_go_post_board/internal/storage"
)

var (
	serverStart = time.Now()
)

// uptime returns time in seconds since the server start-up.
func uptime() interface{} {
	return int64(time.Since(serverStart).Seconds())
}

// NewRouter wires the page, API and debug routes over the given slot storage.
func NewRouter(cfg *config.Config, slotStorage storage.SlotStorage, logger zerolog.Logger) (*chi.Mux, error) {
	postFetcher := fetcher.InitFetcher(&cfg.FetchConfig)
	boardService, err := board.InitBoard(slotStorage, postFetcher, logger)
	if err != nil {
		return nil, err
	}
	pageHandler, err := handlers.InitPageHandler(boardService, slotStorage)
	if err != nil {
		return nil, err
	}
	secretaryService, err := secretary.NewSecretaryService(&cfg.SecretConfig)
	if err != nil {
		return nil, err
	}
	cookieHandler := middleware.NewCookieHandler(secretaryService, &cfg.SecretConfig)
	trustedNetHandler := middleware.NewTrustedNetHandler(&cfg.ServerConfig)

	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.LogHandle)
	r.Use(middleware.CompressHandle)
	r.Use(middleware.DecompressHandle)
	r.Group(func(r chi.Router) {
		r.Use(cookieHandler.CookieHandle)
		r.Get("/", pageHandler.HandleGetPage())
		r.Post("/", pageHandler.HandlePostPage())
		r.Post("/clear", pageHandler.HandleClear())
		r.Get("/api/state", pageHandler.JSONHandleGetState())
		r.Post("/api/posts", pageHandler.JSONHandlePostPosts())
		r.Delete("/api/posts", pageHandler.JSONHandleDeletePosts())
	})
	r.Get("/ping", pageHandler.HandlePing())
	r.Route("/debug", func(r chi.Router) {
		r.Use(trustedNetHandler.TrustedNetworkHandler)
		r.Mount("/", chiMiddleware.Profiler())
	})
	if expvar.Get("system.uptime") == nil {
		expvar.Publish("system.uptime", expvar.Func(uptime))
	}
	return r, nil
}

// InitServer returns a http.Server object ready to be listening and serving.
func InitServer(ctx context.Context, cfg *config.Config, slotStorage storage.SlotStorage, logger zerolog.Logger) (*http.Server, error) {
	r, err := NewRouter(cfg, slotStorage, logger)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{
		Addr:              cfg.ServerConfig.ServerAddress,
		Handler:           r,
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
	}
	return srv, nil
}
