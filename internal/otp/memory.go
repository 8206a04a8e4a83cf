package otp

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	code    string
	expires time.Time
}

// MemoryStore is the in-process fallback used in development and tests.
type MemoryStore struct {
	mu    sync.Mutex
	codes map[string]memoryEntry
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		codes: make(map[string]memoryEntry),
		now:   time.Now,
	}
}

func (s *MemoryStore) SetCode(ctx context.Context, email, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[email] = memoryEntry{code: code, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) GetCode(ctx context.Context, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.codes[email]
	if !ok {
		return "", ErrCodeNotFound
	}
	if s.now().After(e.expires) {
		delete(s.codes, email)
		return "", ErrCodeNotFound
	}
	return e.code, nil
}

func (s *MemoryStore) DeleteCode(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, email)
	return nil
}
