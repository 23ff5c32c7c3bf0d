package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/danilovkiri/dk_go_post_board/internal/config"
)

// TrustedNetHandler sets object structure.
type TrustedNetHandler struct {
	Resolved bool
	IP       net.IP
	IPNet    *net.IPNet
}

// NewTrustedNetHandler initializes a trusted network handler. An empty or malformed subnet resolves to a
// handler that rejects everything.
func NewTrustedNetHandler(cfg *config.ServerConfig) *TrustedNetHandler {
	ip, ipnet, err := net.ParseCIDR(cfg.TrustedSubnet)
	if err != nil {
		if cfg.TrustedSubnet != "" {
			log.Warn().Err(err).Msg("trusted network was not initialized")
		}
		return &TrustedNetHandler{}
	}
	return &TrustedNetHandler{
		Resolved: true,
		IP:       ip,
		IPNet:    ipnet,
	}
}

// TrustedNetworkHandler lets through requests whose peer address belongs to the trusted subnet. When such a peer
// forwards X-Real-IP or X-Forwarded-For, the first forwarded address must belong to the subnet as well.
func (tn *TrustedNetHandler) TrustedNetworkHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tn.Resolved || !tn.trusted(r) {
			http.Error(w, "Internal subnet access violation", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (tn *TrustedNetHandler) trusted(r *http.Request) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return false
	}
	peer := net.ParseIP(host)
	if peer == nil || !tn.IPNet.Contains(peer) {
		return false
	}
	// forwarding headers are only honoured from a trusted peer
	forwarded := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if forwarded == "" {
		forwarded, _, _ = strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
		forwarded = strings.TrimSpace(forwarded)
	}
	if forwarded == "" {
		return true
	}
	ip := net.ParseIP(forwarded)
	return ip != nil && tn.IPNet.Contains(ip)
}
