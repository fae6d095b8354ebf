// Package id generates identifiers for new entities and domain events.
package id

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generator produces identifiers. Entities receive one through their factory
// so tests can supply deterministic ids.
type Generator interface {
	// NewUUID returns a random (version 4) UUID string.
	NewUUID() string
	// NewPrefixed returns a prefixed compact id, e.g. "evt-V1StGXR8_Z5jdHi6B-myT".
	NewPrefixed(prefix string) string
}

// Random is the production Generator backed by crypto-grade randomness.
type Random struct{}

// NewUUID returns a fresh UUID v4.
func (Random) NewUUID() string {
	return uuid.NewString()
}

// NewPrefixed returns prefix + "-" + a 21 character NanoID.
func (Random) NewPrefixed(prefix string) string {
	return MustGenerate(prefix)
}

// Generate creates a prefixed unique ID using NanoID
// Format: prefix-nanoid (e.g., "evt-V1StGXR8_Z5jdHi6B-myT")
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Sequence is a deterministic Generator for tests. UUIDs are valid version 4
// strings numbered from 1: 00000000-0000-4000-8000-000000000001, ...
type Sequence struct {
	mu sync.Mutex
	n  uint64
}

// NewSequence returns a Sequence starting at 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

func (s *Sequence) next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n
}

// NewUUID returns the next UUID in the sequence.
func (s *Sequence) NewUUID() string {
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", s.next())
}

// NewPrefixed returns prefix-<n>.
func (s *Sequence) NewPrefixed(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, s.next())
}
