package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrEncryptionFailed = errors.New("failed to encrypt api key")
	ErrDecryptionFailed = errors.New("failed to decrypt api key")
)

// KeyCipher seals user-supplied API keys with AES-256-GCM. Ciphertext is
// base64(nonce || sealed).
type KeyCipher struct {
	key []byte
}

// NewKeyCipher accepts a 32 byte key, raw or base64 encoded.
func NewKeyCipher(secret string) (*KeyCipher, error) {
	if decoded, err := base64.StdEncoding.DecodeString(secret); err == nil && len(decoded) == 32 {
		return &KeyCipher{key: decoded}, nil
	}
	if len(secret) == 32 {
		return &KeyCipher{key: []byte(secret)}, nil
	}
	return nil, errors.New("encryption key must be 32 bytes (raw or base64)")
}

func (k *KeyCipher) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(k.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt returns "" for an empty plaintext.
func (k *KeyCipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	gcm, err := k.gcm()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (k *KeyCipher) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	gcm, err := k.gcm()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	if len(data) < gcm.NonceSize() {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecryptionFailed)
	}
	nonce, sealed := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	return string(plaintext), nil
}

// MaskKey hides all but the first and last four characters. Keys of eight
// characters or fewer are masked entirely.
func MaskKey(key string) string {
	n := len(key)
	if n == 0 {
		return ""
	}
	if n <= 8 {
		return strings.Repeat("*", n)
	}
	return key[:4] + strings.Repeat("*", n-8) + key[n-4:]
}
