package store

import (
	"context"
	"strings"
	"sync"

	"pairScope/internal/model"
)

// MemoryStore is an in-memory EntityStore. It backs tests and dry runs
// where no Postgres DSN is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	pairs  map[string]model.Pair
	tokens map[string]model.Token
	bundle model.Bundle
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pairs:  make(map[string]model.Pair),
		tokens: make(map[string]model.Token),
	}
}

func (s *MemoryStore) LoadPair(_ context.Context, address string) (model.Pair, bool, error) {
	s.mu.RLock()
	pair, ok := s.pairs[entityKey(address)]
	s.mu.RUnlock()
	return pair, ok, nil
}

func (s *MemoryStore) SavePairs(_ context.Context, pairs []model.Pair) error {
	s.mu.Lock()
	for _, pair := range pairs {
		s.pairs[entityKey(pair.Address)] = pair
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) LoadToken(_ context.Context, address string) (model.Token, bool, error) {
	s.mu.RLock()
	token, ok := s.tokens[entityKey(address)]
	s.mu.RUnlock()
	return token, ok, nil
}

func (s *MemoryStore) SaveTokens(_ context.Context, tokens []model.Token) error {
	s.mu.Lock()
	for _, token := range tokens {
		s.tokens[entityKey(token.Address)] = token
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) LoadBundle(_ context.Context) (model.Bundle, error) {
	s.mu.RLock()
	bundle := s.bundle
	s.mu.RUnlock()
	return bundle, nil
}

func (s *MemoryStore) SaveBundle(_ context.Context, bundle model.Bundle) error {
	s.mu.Lock()
	s.bundle = bundle
	s.mu.Unlock()
	return nil
}

func entityKey(address string) string {
	return strings.ToLower(address)
}
