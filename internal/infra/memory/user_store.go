package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"timed-quiz-service/internal/domain"
)

// UserStore keeps user records in memory. The name pair is unique, like the
// unique index of the SQL store.
type UserStore struct {
	clock func() time.Time

	mu      sync.RWMutex
	records map[string]domain.UserRecord
	byName  map[nameKey]string
}

type nameKey struct {
	first, last string
}

func NewUserStore() *UserStore {
	return &UserStore{
		clock:   time.Now,
		records: make(map[string]domain.UserRecord),
		byName:  make(map[nameKey]string),
	}
}

func (s *UserStore) FindByName(_ context.Context, firstName, lastName string) (domain.UserRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[nameKey{firstName, lastName}]
	if !ok {
		return domain.UserRecord{}, false, nil
	}
	return s.records[id].Clone(), true, nil
}

func (s *UserStore) Create(_ context.Context, rec domain.UserRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := nameKey{rec.FirstName, rec.LastName}
	if _, ok := s.byName[key]; ok {
		return "", domain.ErrDuplicateIdentity
	}
	rec = rec.Clone()
	rec.ID = uuid.NewString()
	now := s.clock()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	s.records[rec.ID] = rec
	s.byName[key] = rec.ID
	return rec.ID, nil
}

// Update overwrites the whole record stored under id.
func (s *UserStore) Update(_ context.Context, id string, rec domain.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.records[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	oldKey := nameKey{existing.FirstName, existing.LastName}
	newKey := nameKey{rec.FirstName, rec.LastName}
	if owner, ok := s.byName[newKey]; ok && owner != id {
		return domain.ErrDuplicateIdentity
	}
	delete(s.byName, oldKey)
	s.byName[newKey] = id

	rec = rec.Clone()
	rec.ID = id
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = s.clock()
	s.records[id] = rec
	return nil
}

func (s *UserStore) Get(_ context.Context, id string) (domain.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return domain.UserRecord{}, domain.ErrUserNotFound
	}
	return rec.Clone(), nil
}

// Count returns the number of stored records.
func (s *UserStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
