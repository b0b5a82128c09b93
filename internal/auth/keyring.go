package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/blake2b"
)

// Keyring is the immutable credential set loaded at startup:
// a list of API keys and a single admin secret.
//
// Only BLAKE2b-256 digests are compared, in constant time, so lookups do
// not leak key length or prefix matches through timing.
type Keyring struct {
	apiKeyDigests [][blake2b.Size256]byte
	apiKeyMasks   []string
	adminDigest   [blake2b.Size256]byte
	hasAdmin      bool
}

// NewKeyring builds a Keyring. Empty API keys are ignored; an empty admin
// secret means admin authentication is not configured.
func NewKeyring(apiKeys []string, adminSecret string) *Keyring {
	k := &Keyring{}
	for _, key := range apiKeys {
		if key == "" {
			continue
		}
		k.apiKeyDigests = append(k.apiKeyDigests, blake2b.Sum256([]byte(key)))
		k.apiKeyMasks = append(k.apiKeyMasks, MaskKey(key))
	}
	if adminSecret != "" {
		k.adminDigest = blake2b.Sum256([]byte(adminSecret))
		k.hasAdmin = true
	}
	return k
}

// HasAPIKeys reports whether at least one API key is configured.
func (k *Keyring) HasAPIKeys() bool {
	return len(k.apiKeyDigests) > 0
}

// HasAdminSecret reports whether an admin secret is configured.
func (k *Keyring) HasAdminSecret() bool {
	return k.hasAdmin
}

// APIKeyCount returns the number of configured API keys.
func (k *Keyring) APIKeyCount() int {
	return len(k.apiKeyDigests)
}

// APIKeyPrefixes returns the masked form of every configured key.
func (k *Keyring) APIKeyPrefixes() []string {
	out := make([]string, len(k.apiKeyMasks))
	copy(out, k.apiKeyMasks)
	return out
}

// ValidAPIKey reports whether key is a configured API key.
// Every configured key is compared so the time taken does not depend on
// which entry matched.
func (k *Keyring) ValidAPIKey(key string) bool {
	digest := blake2b.Sum256([]byte(key))
	match := 0
	for i := range k.apiKeyDigests {
		match |= subtle.ConstantTimeCompare(digest[:], k.apiKeyDigests[i][:])
	}
	return match == 1
}

// ValidAdminSecret reports whether secret equals the configured admin secret.
func (k *Keyring) ValidAdminSecret(secret string) bool {
	if !k.hasAdmin {
		return false
	}
	digest := blake2b.Sum256([]byte(secret))
	return subtle.ConstantTimeCompare(digest[:], k.adminDigest[:]) == 1
}
