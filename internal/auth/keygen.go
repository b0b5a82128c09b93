// Package auth provides credential generation and verification for API keys
// and the admin secret.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// Key format: {prefix}{random chars}
// Example API key:      cz_4fQd2e1B9c7a5F3d2e1b9c7A5f3d2e1b
// Example admin secret: admin_x8!K... (48 random chars)
const (
	APIKeyPrefix      = "cz_"
	APIKeyRandomLen   = 32
	AdminSecretPrefix = "admin_"
	AdminSecretLen    = 48

	// MaxKeysPerRequest caps how many API keys one admin request may generate.
	MaxKeysPerRequest = 10

	// maskVisibleLen is how many leading characters MaskKey keeps.
	maskVisibleLen = 8
)

const (
	apiKeyAlphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	adminSecretAlphabet = apiKeyAlphabet + "!@#$%^&*"
)

// ErrInvalidCount indicates a non-positive key count.
var ErrInvalidCount = errors.New("key count must be at least 1")

// GenerateAPIKey creates a new random API key with the cz_ prefix.
func GenerateAPIKey() (string, error) {
	return generate(APIKeyPrefix, apiKeyAlphabet, APIKeyRandomLen)
}

// GenerateAPIKeys creates n API keys. n is capped at MaxKeysPerRequest.
func GenerateAPIKeys(n int) ([]string, error) {
	if n < 1 {
		return nil, ErrInvalidCount
	}
	n = min(n, MaxKeysPerRequest)

	keys := make([]string, 0, n)
	for range n {
		key, err := GenerateAPIKey()
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// GenerateAdminSecret creates a new random admin secret with the admin_ prefix.
func GenerateAdminSecret() (string, error) {
	return generate(AdminSecretPrefix, adminSecretAlphabet, AdminSecretLen)
}

// generate draws length characters uniformly from alphabet.
func generate(prefix, alphabet string, length int) (string, error) {
	buf := make([]byte, 0, len(prefix)+length)
	buf = append(buf, prefix...)

	limit := big.NewInt(int64(len(alphabet)))
	for range length {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate random index: %w", err)
		}
		buf = append(buf, alphabet[idx.Int64()])
	}
	return string(buf), nil
}

// MaskKey returns a display-safe form of a credential: the first 8
// characters followed by "...". Credentials of 8 characters or fewer
// reveal only their first half so the full value is never shown.
func MaskKey(key string) string {
	visible := maskVisibleLen
	if len(key) <= maskVisibleLen {
		visible = len(key) / 2
	}
	return key[:visible] + "..."
}
