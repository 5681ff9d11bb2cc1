package store

import (
	"context"
	"sort"
	"sync"
)

type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*Run
	seen map[string]string // digest -> run id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string]*Run),
		seen: make(map[string]string),
	}
}

func (s *MemoryStore) Save(_ context.Context, r *Run) error {
	if r.ID == "" {
		r.ID = NewRunID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.ID] = r
	if r.Digest != "" {
		s.seen[r.Digest] = r.ID
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func (s *MemoryStore) ByDigest(_ context.Context, digest string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.seen[digest]
	if !ok {
		return nil, ErrNotFound
	}
	return s.runs[id], nil
}

func (s *MemoryStore) List(_ context.Context) ([]RunInfo, error) {
	s.mu.RLock()
	out := make([]RunInfo, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, r.Info())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
