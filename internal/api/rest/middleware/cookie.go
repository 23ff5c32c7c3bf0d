// Package middleware provides the session cookie, compression and trusted network middlewares.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/danilovkiri/dk_go_post_board/internal/config"
	"github.com/danilovkiri/dk_go_post_board/internal/service/secretary"
)

type contextKey string

const clientIDKey contextKey = "clientID"

// ClientIDFromContext returns the client id stored by CookieHandle.
func ClientIDFromContext(ctx context.Context) (string, bool) {
	clientID, ok := ctx.Value(clientIDKey).(string)
	return clientID, ok && clientID != ""
}

// WithClientID returns a copy of ctx carrying clientID.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDKey, clientID)
}

// CookieHandler sets object structure.
type CookieHandler struct {
	sec secretary.Secretary
	cfg *config.SecretConfig
}

// NewCookieHandler initializes a new cookie handler.
func NewCookieHandler(sec secretary.Secretary, cfg *config.SecretConfig) *CookieHandler {
	return &CookieHandler{
		sec: sec,
		cfg: cfg,
	}
}

// CookieHandle identifies the browser by its encrypted session cookie. A fresh client id is issued when the
// cookie is absent or fails to decode, so a rotated key or a tampered token starts a new session.
func (c *CookieHandler) CookieHandle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var clientID string
		cookie, err := r.Cookie(c.cfg.AuthKey)
		switch {
		case errors.Is(err, http.ErrNoCookie):
			clientID = c.issue(w)
			log.Debug().Str("client", clientID).Msg("session issued")
		case err != nil:
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		default:
			clientID, err = c.sec.Decode(cookie.Value)
			if err != nil {
				clientID = c.issue(w)
				log.Info().Err(err).Str("remote", r.RemoteAddr).Str("client", clientID).Msg("session reissued")
			}
		}
		next.ServeHTTP(w, r.WithContext(WithClientID(r.Context(), clientID)))
	})
}

// issue sets a cookie carrying a new client id and returns the id.
func (c *CookieHandler) issue(w http.ResponseWriter) string {
	clientID := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     c.cfg.AuthKey,
		Value:    c.sec.Encode(clientID),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return clientID
}
