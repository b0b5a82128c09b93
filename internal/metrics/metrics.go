// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Auth realms reported to IncAuthFailure.
const (
	RealmAPI   = "api"
	RealmAdmin = "admin"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// HTTP metrics
	ObserveRequestDuration(duration time.Duration)

	// User store metrics
	IncUserCreated()
	IncUserUpdated()
	IncUserDeleted()
	AddUsersSeeded(n int)

	// Admission control metrics
	IncAuthFailure(realm string) // realm: RealmAPI or RealmAdmin
	IncRateLimitRejected()

	// Key management metrics
	AddKeysGenerated(n int)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
