package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

var ErrNotConfigured = errors.New("crypto: encryption key not configured")

// Service seals small values such as wages with AES-256-GCM. The nonce is
// prepended to the ciphertext.
type Service struct {
	aead cipher.AEAD
}

// New returns a Service for a 32 byte key given as hex, base64 or raw text.
// An empty key yields an unconfigured Service.
func New(key string) (*Service, error) {
	if key == "" {
		return &Service{}, nil
	}
	decoded := decodeKey(key)
	if len(decoded) != 32 {
		return nil, fmt.Errorf("DATA_ENCRYPTION_KEY must be 32 bytes after decoding")
	}
	block, err := aes.NewCipher(decoded)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Service{aead: aead}, nil
}

func (s *Service) Configured() bool {
	return s != nil && s.aead != nil
}

func (s *Service) Seal(plain []byte) ([]byte, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return s.aead.Seal(nonce, nonce, plain, nil), nil
}

func (s *Service) Open(ciphertext []byte) ([]byte, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	size := s.aead.NonceSize()
	if len(ciphertext) < size {
		return nil, errors.New("crypto: ciphertext too short")
	}
	return s.aead.Open(nil, ciphertext[:size], ciphertext[size:], nil)
}

func (s *Service) SealString(value string) ([]byte, error) {
	return s.Seal([]byte(value))
}

func (s *Service) OpenString(ciphertext []byte) (string, error) {
	plain, err := s.Open(ciphertext)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func decodeKey(raw string) []byte {
	if len(raw) == 64 {
		if decoded, err := hex.DecodeString(raw); err == nil {
			return decoded
		}
	}
	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil {
		return decoded
	}
	if decoded, err := base64.RawStdEncoding.DecodeString(raw); err == nil {
		return decoded
	}
	return []byte(raw)
}
