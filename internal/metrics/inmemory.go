package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	RequestDurationCount   uint64
	RequestDurationTotalNs int64
	UsersCreated           uint64
	UsersUpdated           uint64
	UsersDeleted           uint64
	UsersSeeded            uint64
	AuthFailuresAPI        uint64
	AuthFailuresAdmin      uint64
	RateLimitRejected      uint64
	KeysGenerated          uint64
}

// InMemoryRecorder stores metrics in memory. It backs the admin metrics
// endpoint and is used directly by tests.
type InMemoryRecorder struct {
	requestDurationCount   atomic.Uint64
	requestDurationTotalNs atomic.Int64
	usersCreated           atomic.Uint64
	usersUpdated           atomic.Uint64
	usersDeleted           atomic.Uint64
	usersSeeded            atomic.Uint64
	authFailuresAPI        atomic.Uint64
	authFailuresAdmin      atomic.Uint64
	rateLimitRejected      atomic.Uint64
	keysGenerated          atomic.Uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		RequestDurationCount:   m.requestDurationCount.Load(),
		RequestDurationTotalNs: m.requestDurationTotalNs.Load(),
		UsersCreated:           m.usersCreated.Load(),
		UsersUpdated:           m.usersUpdated.Load(),
		UsersDeleted:           m.usersDeleted.Load(),
		UsersSeeded:            m.usersSeeded.Load(),
		AuthFailuresAPI:        m.authFailuresAPI.Load(),
		AuthFailuresAdmin:      m.authFailuresAdmin.Load(),
		RateLimitRejected:      m.rateLimitRejected.Load(),
		KeysGenerated:          m.keysGenerated.Load(),
	}
}

// ObserveRequestDuration records the duration of a served request.
func (m *InMemoryRecorder) ObserveRequestDuration(duration time.Duration) {
	m.requestDurationCount.Add(1)
	m.requestDurationTotalNs.Add(duration.Nanoseconds())
}

// IncUserCreated increments the user created counter.
func (m *InMemoryRecorder) IncUserCreated() {
	m.usersCreated.Add(1)
}

// IncUserUpdated increments the user updated counter.
func (m *InMemoryRecorder) IncUserUpdated() {
	m.usersUpdated.Add(1)
}

// IncUserDeleted increments the user deleted counter.
func (m *InMemoryRecorder) IncUserDeleted() {
	m.usersDeleted.Add(1)
}

// AddUsersSeeded adds n to the seeded users counter.
func (m *InMemoryRecorder) AddUsersSeeded(n int) {
	if n > 0 {
		m.usersSeeded.Add(uint64(n))
	}
}

// IncAuthFailure increments the failure counter for realm.
// Unknown realms are counted as API failures.
func (m *InMemoryRecorder) IncAuthFailure(realm string) {
	if realm == RealmAdmin {
		m.authFailuresAdmin.Add(1)
		return
	}
	m.authFailuresAPI.Add(1)
}

// IncRateLimitRejected increments the rate limit rejection counter.
func (m *InMemoryRecorder) IncRateLimitRejected() {
	m.rateLimitRejected.Add(1)
}

// AddKeysGenerated adds n to the generated keys counter.
func (m *InMemoryRecorder) AddKeysGenerated(n int) {
	if n > 0 {
		m.keysGenerated.Add(uint64(n))
	}
}
