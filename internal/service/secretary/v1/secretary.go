// Package secretary provides methods for ciphering session tokens.
package secretary

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/danilovkiri/dk_go_post_board/internal/config"
	serviceErrors "github.com/danilovkiri/dk_go_post_board/internal/service/errors"
	"github.com/danilovkiri/dk_go_post_board/internal/service/secretary"
)

// Check interface implementation explicitly
var (
	_ secretary.Secretary = (*Secretary)(nil)
)

// ErrShortToken is returned for tokens that cannot hold a nonce.
var ErrShortToken = errors.New("token is too short")

// Secretary defines object structure and its attributes.
type Secretary struct {
	aesgcm cipher.AEAD
	aad    []byte
}

// NewSecretaryService initializes a secretary service with ciphering functionality. Tokens are bound to the
// cookie name so a token issued for one cookie is rejected under another.
func NewSecretaryService(cfg *config.SecretConfig) (*Secretary, error) {
	key := sha256.Sum256([]byte(cfg.UserKey))
	aesblock, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, &serviceErrors.ServiceInitCipherError{Err: err}
	}
	aesgcm, err := cipher.NewGCM(aesblock)
	if err != nil {
		return nil, &serviceErrors.ServiceInitCipherError{Err: err}
	}
	return &Secretary{
		aesgcm: aesgcm,
		aad:    []byte(cfg.AuthKey),
	}, nil
}

// Encode ciphers data under a fresh nonce and returns nonce and ciphertext hex-encoded.
func (s *Secretary) Encode(data string) string {
	nonce := make([]byte, s.aesgcm.NonceSize())
	_, _ = rand.Read(nonce)
	sealed := s.aesgcm.Seal(nonce, nonce, []byte(data), s.aad)
	return hex.EncodeToString(sealed)
}

// Decode deciphers a token produced by Encode.
func (s *Secretary) Decode(msg string) (string, error) {
	msgBytes, err := hex.DecodeString(msg)
	if err != nil {
		return "", err
	}
	nonceSize := s.aesgcm.NonceSize()
	if len(msgBytes) < nonceSize {
		return "", ErrShortToken
	}
	decoded, err := s.aesgcm.Open(nil, msgBytes[:nonceSize], msgBytes[nonceSize:], s.aad)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
