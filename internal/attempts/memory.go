package attempts

import (
	"context"
	"slices"
	"sync"
	"time"
)

type memoryStore struct {
	mu      sync.Mutex
	records map[string]*Record
}

// NewMemory creates an in-process attempt store for redis-less local runs
// and tests. The mutex makes Increment atomic within the process.
func NewMemory() Store {
	return &memoryStore{
		records: make(map[string]*Record),
	}
}

func (s *memoryStore) Get(ctx context.Context, key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return snapshot(r), nil
}

func (s *memoryStore) Increment(ctx context.Context, key string, max int) (*Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()

	r, ok := s.records[key]
	if !ok {
		r = &Record{
			Key:        key,
			PriorCodes: []string{},
			FirstSeen:  now,
		}
		s.records[key] = r
	}

	allowed := r.Attempts < max
	if allowed {
		r.Attempts++
	}
	r.LastSeen = now

	return snapshot(r), allowed, nil
}

func (s *memoryStore) RecordCodes(ctx context.Context, key string, codes []string) error {
	if len(codes) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[key]
	if !ok {
		return ErrNotFound
	}
	r.PriorCodes = append(r.PriorCodes, codes...)
	return nil
}

func snapshot(r *Record) *Record {
	return &Record{
		Key:        r.Key,
		Attempts:   r.Attempts,
		PriorCodes: slices.Clone(r.PriorCodes),
		FirstSeen:  r.FirstSeen,
		LastSeen:   r.LastSeen,
	}
}
