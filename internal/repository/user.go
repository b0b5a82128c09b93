package repository

import (
	"context"
	"errors"
	"slices"

	"github.com/cozysnippet/api/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

// maxEmailAttempts bounds how often a generated email is re-rolled
// before falling back to a random suffix.
const maxEmailAttempts = 10

// ListUsers returns a snapshot of all users in insertion order.
func (r *Repository) ListUsers(ctx context.Context) []model.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, 0, len(r.order))
	for _, id := range r.order {
		users = append(users, r.users[id])
	}
	return users
}

// GetUserByID looks up a user by exact id.
// The boolean is false when no such user exists.
func (r *Repository) GetUserByID(ctx context.Context, id string) (model.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	return u, ok
}

// CreateUser inserts a new user with a fresh id.
// Fields missing from in are filled with generated values.
// Returns ErrEmailExists if the given email is already in use.
func (r *Repository) CreateUser(ctx context.Context, in model.UserInput) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if in.Email != nil && r.emailTakenLocked(*in.Email) {
		return model.User{}, ErrEmailExists
	}

	user := in.Apply(model.User{
		ID:   r.newID(),
		Name: r.faker.Name(),
		Age:  r.faker.Age(),
	})
	if in.Email == nil {
		user.Email = r.uniqueEmailLocked(user.Name)
	}

	r.insertLocked(user)
	return user, nil
}

// UpdateUser merges the provided fields over an existing user.
// Returns ErrUserNotFound for an unknown id and ErrEmailExists when the
// new email belongs to a different user. The id is never changed.
func (r *Repository) UpdateUser(ctx context.Context, id string, in model.UserInput) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[id]
	if !ok {
		return model.User{}, ErrUserNotFound
	}

	if in.Email != nil && *in.Email != existing.Email {
		if owner, taken := r.byEmail[*in.Email]; taken && owner != id {
			return model.User{}, ErrEmailExists
		}
	}

	updated := in.Apply(existing)
	if updated.Email != existing.Email {
		delete(r.byEmail, existing.Email)
		r.byEmail[updated.Email] = id
	}
	r.users[id] = updated

	return updated, nil
}

// DeleteUser removes a user. It reports whether a record was removed.
func (r *Repository) DeleteUser(ctx context.Context, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return false
	}

	delete(r.users, id)
	delete(r.byEmail, u.Email)
	if idx := slices.Index(r.order, id); idx >= 0 {
		r.order = slices.Delete(r.order, idx, idx+1)
	}
	return true
}

// SeedUsers generates count synthetic users. Emails are unique against
// existing records and the rest of the batch.
func (r *Repository) SeedUsers(ctx context.Context, count int) []model.User {
	if count <= 0 {
		return []model.User{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seeded := make([]model.User, 0, count)
	for range count {
		name := r.faker.Name()
		user := model.User{
			ID:    r.newID(),
			Name:  name,
			Email: r.uniqueEmailLocked(name),
			Age:   r.faker.Age(),
		}
		r.insertLocked(user)
		seeded = append(seeded, user)
	}
	return seeded
}

// uniqueEmailLocked generates an email for name that no stored user has.
// It re-rolls from a wider number range up to maxEmailAttempts times, then
// switches to a random hex suffix. Caller must hold the write lock.
func (r *Repository) uniqueEmailLocked(name string) string {
	email := r.faker.Email(name, 100)
	for attempt := 0; attempt < maxEmailAttempts && r.emailTakenLocked(email); attempt++ {
		email = r.faker.Email(name, 1000)
	}
	for r.emailTakenLocked(email) {
		email = r.faker.SuffixedEmail(name)
	}
	return email
}
