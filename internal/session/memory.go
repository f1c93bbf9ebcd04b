// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"mailcraft/internal/models"
)

// DefaultMemorySize bounds the number of visitors kept by MemoryStore.
const DefaultMemorySize = 10_000

// MemoryStore keeps sessions in a bounded, expiring LRU. It is used when no
// Valkey instance is configured and in tests. State is lost on restart.
type MemoryStore struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, State]
}

// NewMemoryStore creates an in-memory store holding up to size sessions,
// each expiring ttl after its last write.
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size <= 0 {
		size = DefaultMemorySize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{cache: expirable.NewLRU[string, State](size, nil, ttl)}
}

func (s *MemoryStore) Begin(_ context.Context, id string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, _ := s.cache.Get(id)
	st.Sequence++
	s.cache.Add(id, st)
	return st.Sequence, nil
}

func (s *MemoryStore) Commit(_ context.Context, id string, seq uint64, artifact *models.GeneratedArtifact) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.cache.Get(id)
	if !ok || st.Sequence != seq {
		return false, nil
	}
	a := *artifact
	st.Artifact = &a
	s.cache.Add(id, st)
	return true, nil
}

func (s *MemoryStore) Unlock(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, _ := s.cache.Get(id)
	st.Unlocked = true
	s.cache.Add(id, st)
	return nil
}

func (s *MemoryStore) State(_ context.Context, id string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.cache.Get(id)
	if !ok {
		return &State{}, nil
	}
	if st.Artifact != nil {
		a := *st.Artifact
		st.Artifact = &a
	}
	return &st, nil
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}
