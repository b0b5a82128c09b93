package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// ObserveRequestDuration is a no-op.
func (n *NoopRecorder) ObserveRequestDuration(duration time.Duration) {}

// IncUserCreated is a no-op.
func (n *NoopRecorder) IncUserCreated() {}

// IncUserUpdated is a no-op.
func (n *NoopRecorder) IncUserUpdated() {}

// IncUserDeleted is a no-op.
func (n *NoopRecorder) IncUserDeleted() {}

// AddUsersSeeded is a no-op.
func (n *NoopRecorder) AddUsersSeeded(int) {}

// IncAuthFailure is a no-op.
func (n *NoopRecorder) IncAuthFailure(string) {}

// IncRateLimitRejected is a no-op.
func (n *NoopRecorder) IncRateLimitRejected() {}

// AddKeysGenerated is a no-op.
func (n *NoopRecorder) AddKeysGenerated(int) {}
