package service

import (
	"context"
	"fmt"

	"github.com/cozysnippet/api/internal/auth"
	"github.com/cozysnippet/api/internal/metrics"
)

// KeyService generates credentials and reports on the configured ones.
// It never stores what it generates.
type KeyService struct {
	keyring  *auth.Keyring
	validate *Validator
	metrics  metrics.Recorder
}

// KeyInfo describes the configured API keys without revealing them.
type KeyInfo struct {
	TotalKeys   int
	KeyPrefixes []string
	Configured  bool
}

// NewKeyService creates a new KeyService.
func NewKeyService(keyring *auth.Keyring, recorder metrics.Recorder) *KeyService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &KeyService{
		keyring:  keyring,
		validate: NewValidator(),
		metrics:  recorder,
	}
}

// GenerateAPIKeys returns req.Count fresh API keys, capped at
// auth.MaxKeysPerRequest.
func (s *KeyService) GenerateAPIKeys(ctx context.Context, req GenerateKeysRequest) ([]string, error) {
	if err := s.validate.Validate(req, "Invalid key generation request"); err != nil {
		return nil, err
	}

	count := DefaultKeyCount
	if req.Count != nil {
		count = *req.Count
	}

	keys, err := auth.GenerateAPIKeys(count)
	if err != nil {
		return nil, fmt.Errorf("failed to generate api keys: %w", err)
	}

	s.metrics.AddKeysGenerated(len(keys))
	return keys, nil
}

// Info summarizes the configured API keys.
func (s *KeyService) Info(ctx context.Context) KeyInfo {
	return KeyInfo{
		TotalKeys:   s.keyring.APIKeyCount(),
		KeyPrefixes: s.keyring.APIKeyPrefixes(),
		Configured:  s.keyring.HasAPIKeys(),
	}
}
