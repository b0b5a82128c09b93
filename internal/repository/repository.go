// Package repository provides the in-process user store.
// The Repository is the sole owner of user records; every method returns
// copies so callers cannot mutate stored state.
package repository

import (
	"sync"

	"github.com/google/uuid"

	"github.com/cozysnippet/api/internal/model"
)

// IDGenerator produces identifiers for new records.
type IDGenerator func() string

// NewUUID returns a random (version 4) UUID string.
func NewUUID() string {
	return uuid.NewString()
}

// Option configures a Repository.
type Option func(*Repository)

// WithIDGenerator overrides the identifier generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(r *Repository) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// WithFaker overrides the generator used for default and seeded field values.
func WithFaker(f *Faker) Option {
	return func(r *Repository) {
		if f != nil {
			r.faker = f
		}
	}
}

// Repository provides user storage methods.
// All methods are safe for concurrent use; compound check-then-write
// sequences run under a single write lock.
type Repository struct {
	mu      sync.RWMutex
	order   []string              // ids in insertion order
	users   map[string]model.User // id -> record
	byEmail map[string]string     // email -> id
	newID   IDGenerator
	faker   *Faker
}

// New creates an empty Repository.
func New(opts ...Option) *Repository {
	r := &Repository{
		users:   make(map[string]model.User),
		byEmail: make(map[string]string),
		newID:   NewUUID,
		faker:   NewFaker(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Count returns the number of stored users.
func (r *Repository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// insertLocked appends a record. Caller must hold the write lock.
func (r *Repository) insertLocked(u model.User) {
	r.order = append(r.order, u.ID)
	r.users[u.ID] = u
	r.byEmail[u.Email] = u.ID
}

// emailTakenLocked reports whether any record uses email.
// Caller must hold a lock.
func (r *Repository) emailTakenLocked(email string) bool {
	_, ok := r.byEmail[email]
	return ok
}
