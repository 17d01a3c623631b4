package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/yigit/visitportal/internal/pkg/apperrors"
)

// MemorySessionStore keeps session records in process memory
type MemorySessionStore struct {
	mu      sync.RWMutex
	records map[string]*SessionRecord
	now     func() time.Time
}

// NewMemorySessionStore creates an empty in-memory store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		records: make(map[string]*SessionRecord),
		now:     time.Now,
	}
}

// Get returns a copy of the record
func (s *MemorySessionStore) Get(_ context.Context, id string) (*SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	return rec.Clone(), nil
}

// Set stores a copy of the record
func (s *MemorySessionStore) Set(_ context.Context, record *SessionRecord) error {
	if record == nil || record.ID == "" {
		return apperrors.NewBadRequestError("session record requires an id")
	}
	rec := record.Clone()
	rec.UpdatedAt = s.now()

	s.mu.Lock()
	s.records[rec.ID] = rec
	s.mu.Unlock()
	return nil
}

// Clear removes the record. Clearing an unknown id is not an error.
func (s *MemorySessionStore) Clear(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()
	return nil
}

// PurgeBefore drops records not updated since cutoff
func (s *MemorySessionStore) PurgeBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, rec := range s.records {
		if rec.UpdatedAt.Before(cutoff) {
			delete(s.records, id)
			n++
		}
	}
	return n, nil
}
