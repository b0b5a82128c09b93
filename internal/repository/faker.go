package repository

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

var fakeNames = []string{"Alice", "Bob", "Charlie", "Diana", "Eve", "Frank"}

const (
	fakeMinAge   = 18
	fakeAgeRange = 40
	fakeDomain   = "example.com"
)

// Faker generates synthetic user fields for seeding and create defaults.
// A seeded Faker is deterministic, which keeps tests reproducible.
type Faker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewFaker returns a Faker backed by a randomly seeded generator.
func NewFaker() *Faker {
	return NewSeededFaker(rand.Uint64(), rand.Uint64())
}

// NewSeededFaker returns a deterministic Faker.
func NewSeededFaker(seed1, seed2 uint64) *Faker {
	return &Faker{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

// Name picks a first name.
func (f *Faker) Name() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fakeNames[f.rng.IntN(len(fakeNames))]
}

// Age returns an age in [18, 58).
func (f *Faker) Age() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fakeMinAge + f.rng.IntN(fakeAgeRange)
}

// Email builds "<name><n>@example.com" with n in [0, spread).
func (f *Faker) Email(name string, spread int) string {
	f.mu.Lock()
	n := f.rng.IntN(spread)
	f.mu.Unlock()
	return fmt.Sprintf("%s%d@%s", strings.ToLower(name), n, fakeDomain)
}

// SuffixedEmail builds "<name>.<8 hex chars>@example.com".
func (f *Faker) SuffixedEmail(name string) string {
	f.mu.Lock()
	n := f.rng.Uint32()
	f.mu.Unlock()
	return fmt.Sprintf("%s.%08x@%s", strings.ToLower(name), n, fakeDomain)
}
