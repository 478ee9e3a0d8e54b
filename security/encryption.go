package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

// TokenCipher seals bearer tokens with AES-GCM before they are written to
// the session table, so a leaked database file does not leak live
// credentials.
type TokenCipher struct {
	key []byte
}

// NewTokenCipher derives a 32 byte key from the configured secret. Short
// keys are padded with zero bytes and long keys are truncated.
func NewTokenCipher(key string) *TokenCipher {
	if len(key) < 32 {
		padding := make([]byte, 32-len(key))
		key = key + string(padding)
	}
	return &TokenCipher{key: []byte(key[:32])}
}

// Seal encrypts a bearer token and returns it base64 encoded.
func (c *TokenCipher) Seal(token string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, []byte(token), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a token previously produced by Seal.
func (c *TokenCipher) Open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(raw) < gcm.NonceSize() {
		return "", errors.New("sealed token too short")
	}

	nonce := raw[:gcm.NonceSize()]
	raw = raw[gcm.NonceSize():]

	token, err := gcm.Open(nil, nonce, raw, nil)
	if err != nil {
		return "", err
	}

	return string(token), nil
}
