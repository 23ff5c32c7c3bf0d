// Package handlers provides http.HandlerFunc handler functions to be used for endpoints.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/danilovkiri/dk_go_post_board/internal/api/rest/middleware"
	"github.com/danilovkiri/dk_go_post_board/internal/api/rest/modeldto"
	"github.com/danilovkiri/dk_go_post_board/internal/api/rest/view"
	"github.com/danilovkiri/dk_go_post_board/internal/service/board"
	serviceErrors "github.com/danilovkiri/dk_go_post_board/internal/service/errors"
	"github.com/danilovkiri/dk_go_post_board/internal/service/modelpage"
	"github.com/danilovkiri/dk_go_post_board/internal/storage"
	storageErrors "github.com/danilovkiri/dk_go_post_board/internal/storage/errors"
)

// maxBodySize limits JSON and form request bodies.
const maxBodySize = 1 << 16

// PageHandler defines data structure handling and provides support for adding new implementations.
type PageHandler struct {
	processor board.Processor
	pinger    storage.Pinger
}

// InitPageHandler initializes a PageHandler object and sets its attributes.
func InitPageHandler(processor board.Processor, pinger storage.Pinger) (*PageHandler, error) {
	if processor == nil {
		return nil, fmt.Errorf("nil board service was passed to page handler initializer")
	}
	if pinger == nil {
		return nil, fmt.Errorf("nil storage was passed to page handler initializer")
	}
	return &PageHandler{processor: processor, pinger: pinger}, nil
}

// HandleGetPage serves the page rehydrated from the client slots.
func (h *PageHandler) HandleGetPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, page, ok := h.start(w, r)
		if !ok {
			return
		}
		err := h.processor.Bootstrap(r.Context(), clientID, page)
		writeHTML(w, statusCode(err), page)
	}
}

// HandlePostPage reads the postForm fields, fetches the posts and serves the updated page.
func (h *PageHandler) HandlePostPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, page, ok := h.start(w, r)
		if !ok {
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		form := modelpage.Form{
			UserID:   r.PostForm.Get("userId"),
			Remember: r.PostForm.Get("rememberUser") != "",
		}
		err := h.processor.Submit(r.Context(), clientID, form, page)
		writeHTML(w, statusCode(err), page)
	}
}

// HandleClear empties the list and serves the page with the remembered form intact.
func (h *PageHandler) HandleClear() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, page, ok := h.start(w, r)
		if !ok {
			return
		}
		err := h.clear(r, clientID, page)
		writeHTML(w, statusCode(err), page)
	}
}

// JSONHandleGetState provides client with the bootstrapped page as JSON.
func (h *PageHandler) JSONHandleGetState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, page, ok := h.start(w, r)
		if !ok {
			return
		}
		err := h.processor.Bootstrap(r.Context(), clientID, page)
		writeJSON(w, statusCode(err), page)
	}
}

// JSONHandlePostPosts accepts JSON as {"userId":"3","remember":true} and provides client with the updated page.
func (h *PageHandler) JSONHandlePostPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, page, ok := h.start(w, r)
		if !ok {
			return
		}
		b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var req modeldto.RequestPosts
		if err := json.Unmarshal(b, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		err = h.processor.Submit(r.Context(), clientID, req.Form(), page)
		writeJSON(w, statusCode(err), page)
	}
}

// JSONHandleDeletePosts clears the list and provides client with the resulting page.
func (h *PageHandler) JSONHandleDeletePosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, page, ok := h.start(w, r)
		if !ok {
			return
		}
		err := h.clear(r, clientID, page)
		writeJSON(w, statusCode(err), page)
	}
}

// HandlePing checks the slot storage.
func (h *PageHandler) HandlePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.pinger.PingDB(); err != nil {
			log.Error().Err(err).Msg("ping")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// start resolves the client and prepares a page whose status changes are traced.
func (h *PageHandler) start(w http.ResponseWriter, r *http.Request) (string, *modelpage.Page, bool) {
	clientID, ok := middleware.ClientIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing client session", http.StatusUnauthorized)
		return "", nil, false
	}
	page := modelpage.New()
	page.Observe(func(s modelpage.Status) {
		log.Debug().Str("client", clientID).Str("kind", string(s.Kind)).Str("path", r.URL.Path).Msg(s.Message)
	})
	return clientID, page, true
}

// clear bootstraps the form first so the response keeps showing the remembered user id.
func (h *PageHandler) clear(r *http.Request, clientID string, page *modelpage.Page) error {
	if err := h.processor.Bootstrap(r.Context(), clientID, page); err != nil {
		log.Warn().Err(err).Str("client", clientID).Msg("bootstrap before clear")
	}
	return h.processor.Clear(r.Context(), clientID, page)
}

// statusCode maps a controller error onto the response code; the page itself always carries the message.
func statusCode(err error) int {
	var (
		invalid    *serviceErrors.InvalidUserIDError
		failed     *serviceErrors.RequestFailedError
		connection *serviceErrors.ConnectionError
		format     *serviceErrors.FormatError
		timeout    *storageErrors.ContextTimeoutExceededError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &failed), errors.As(err, &connection), errors.As(err, &format):
		return http.StatusBadGateway
	case errors.As(err, &timeout):
		return http.StatusGatewayTimeout
	default:
		log.Error().Err(err).Msg("page operation")
		return http.StatusInternalServerError
	}
}

func writeHTML(w http.ResponseWriter, code int, page *modelpage.Page) {
	var buf bytes.Buffer
	if err := view.RenderPage(&buf, page); err != nil {
		log.Error().Err(err).Msg("rendering page")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		log.Debug().Err(err).Msg("writing page")
	}
}

func writeJSON(w http.ResponseWriter, code int, page *modelpage.Page) {
	resBody, err := json.Marshal(modeldto.FromPage(page))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(resBody); err != nil {
		log.Debug().Err(err).Msg("writing page")
	}
}
