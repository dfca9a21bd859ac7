// Package storage persists analysis records. Records are write-once: saving
// the same document id twice keeps the first record, matching the pipeline's
// immutability rule.
package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/crisislens/analyzer/internal/domain"
)

// ErrNotFound is returned when no record exists for a document id.
var ErrNotFound = errors.New("storage: record not found")

// Store is the persistence interface for analysis records.
type Store interface {
	// Save persists a record. Saving an id that already exists is a no-op,
	// not an error.
	Save(ctx context.Context, record *domain.AnalysisRecord) error
	// Get returns the record for a document id, or ErrNotFound.
	Get(ctx context.Context, documentID string) (*domain.AnalysisRecord, error)
	Close() error
}

// MemoryStore keeps records in memory. Used in tests and when no database is
// configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*domain.AnalysisRecord
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{records: make(map[string]*domain.AnalysisRecord)}
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, record *domain.AnalysisRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.DocumentID]; exists {
		return nil
	}
	s.records[record.DocumentID] = record
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, documentID string) (*domain.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[documentID]
	if !ok {
		return nil, ErrNotFound
	}
	return record, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
