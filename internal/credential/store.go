package credential

import (
	"errors"
	"sync"
)

// Key is the fixed storage key the identifier is kept under
const Key = "identifier"

// ErrEmptyIdentifier is returned by Set when called with an empty value
var ErrEmptyIdentifier = errors.New("identifier cannot be empty")

// Reader exposes the stored identifier. Presence is the only authorization
// signal; the value is never inspected.
type Reader interface {
	Identifier() (string, bool)
}

// Store is a Reader that can also replace or drop the identifier
type Store interface {
	Reader
	Set(identifier string) error
	Clear() error
}

// MemoryStore keeps the identifier in process memory
type MemoryStore struct {
	mu         sync.RWMutex
	identifier string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Identifier returns the stored identifier and whether one is present
func (s *MemoryStore) Identifier() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identifier, s.identifier != ""
}

// Set stores the identifier
func (s *MemoryStore) Set(identifier string) error {
	if identifier == "" {
		return ErrEmptyIdentifier
	}
	s.mu.Lock()
	s.identifier = identifier
	s.mu.Unlock()
	return nil
}

// Clear drops the identifier
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	s.identifier = ""
	s.mu.Unlock()
	return nil
}

// Apply sets the identifier when non-empty and clears the store otherwise
func Apply(s Store, identifier string) error {
	if identifier == "" {
		return s.Clear()
	}
	return s.Set(identifier)
}
