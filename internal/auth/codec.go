package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/hongminglow/lateral-entry-be/internal/apperr"
)

// TokenCodec encrypts OAuth tokens before they are persisted. The key is parsed on first use.
type TokenCodec struct {
	rawKey string

	once sync.Once
	key  []byte
	err  error
}

// NewTokenCodec wraps a base64 encoded 32-byte key. Validation is deferred until the first
// Encrypt or Decrypt call.
func NewTokenCodec(rawKey string) *TokenCodec {
	return &TokenCodec{rawKey: strings.TrimSpace(rawKey)}
}

// GenerateKey returns a fresh key in the format NewTokenCodec expects.
func GenerateKey() (string, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

func (c *TokenCodec) load() ([]byte, error) {
	c.once.Do(func() {
		if c.rawKey == "" {
			c.err = apperr.New(apperr.ErrConfig, "TOKEN_ENCRYPTION_KEY is not set")
			return
		}
		key, err := decodeKey(c.rawKey)
		if err != nil {
			c.err = apperr.Wrap(apperr.ErrConfig, "TOKEN_ENCRYPTION_KEY is invalid", err)
			return
		}
		c.key = key
	})
	return c.key, c.err
}

func decodeKey(raw string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
		if key, err := enc.DecodeString(raw); err == nil {
			if len(key) != chacha20poly1305.KeySize {
				return nil, fmt.Errorf("key is %d bytes, want %d", len(key), chacha20poly1305.KeySize)
			}
			return key, nil
		}
	}
	return nil, errors.New("key is not base64")
}

// Encrypt seals plaintext. Empty input yields empty output.
func (c *TokenCodec) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	key, err := c.load()
	if err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrConfig, "init cipher", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. Empty input yields empty output.
func (c *TokenCodec) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	key, err := c.load()
	if err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrConfig, "init cipher", err)
	}

	raw, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrCrypto, "token is not valid base64", err)
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return "", apperr.New(apperr.ErrCrypto, "token is too short")
	}
	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrCrypto, "token failed authentication", err)
	}
	return string(plain), nil
}
