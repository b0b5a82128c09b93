// Package dto provides Data Transfer Objects for API responses.
// Request bodies are decoded straight into the service request types.
package dto

import "time"

// HealthResponse is the payload of GET /health.
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Version       string    `json:"version"`
	UptimeSeconds float64   `json:"uptime_seconds"`
}

// DeletedUserResponse is the payload of a successful delete.
type DeletedUserResponse struct {
	ID string `json:"id"`
}

// GeneratedKeysResponse is the payload of POST /admin/keys/generate.
type GeneratedKeysResponse struct {
	Keys         []string        `json:"keys"`
	Count        int             `json:"count"`
	Instructions KeyInstructions `json:"instructions"`
}

// KeyInstructions tells the operator how to install generated keys.
type KeyInstructions struct {
	Setup string `json:"setup"`
	Value string `json:"value"`
	Usage string `json:"usage"`
}

// KeyInfoResponse is the payload of GET /admin/keys/info.
// Key values are never included, only their masked prefixes.
type KeyInfoResponse struct {
	TotalKeys   int       `json:"totalKeys"`
	KeyPrefixes []string  `json:"keyPrefixes"`
	Configured  bool      `json:"configured"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// AdminHealthResponse is the payload of GET /admin/health.
type AdminHealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Features  []string  `json:"features"`
}
