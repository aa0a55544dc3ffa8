// Package memstore keeps users, statuses, cases and history in process memory.
// It backs the service when no Postgres DSN is configured and serves as the
// repository fake in tests.
package memstore

import (
	"sync"
	"time"

	"github.com/spec-kit/case-service/internal/domain"
	"github.com/spec-kit/case-service/internal/repository"
)

type caseRecord struct {
	seq  int64
	data domain.Case
}

// Store is a goroutine-safe in-memory backend.
type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	seq      int64
	users    map[string]domain.User
	statuses []domain.CaseStatus
	cases    map[string]*caseRecord
	history  map[string][]domain.CaseHistory
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		now:     time.Now,
		users:   make(map[string]domain.User),
		cases:   make(map[string]*caseRecord),
		history: make(map[string][]domain.CaseHistory),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Users returns the user repository view.
func (s *Store) Users() repository.UserRepository { return &userRepo{s} }

// Statuses returns the status repository view.
func (s *Store) Statuses() repository.CaseStatusRepository { return &statusRepo{s} }

// Cases returns the case repository view.
func (s *Store) Cases() repository.CaseRepository { return &caseRepo{s} }

// History returns the history repository view.
func (s *Store) History() repository.CaseHistoryRepository { return &historyRepo{s} }

func (s *Store) statusByID(id int) (domain.CaseStatus, bool) {
	for _, status := range s.statuses {
		if status.ID == id {
			return status, true
		}
	}
	return domain.CaseStatus{}, false
}

func (s *Store) userRef(id *string) *domain.User {
	if id == nil {
		return nil
	}
	user, ok := s.users[*id]
	if !ok {
		return nil
	}
	return &user
}

// expand copies rec with related records joined in.
func (s *Store) expand(rec *caseRecord) domain.Case {
	c := rec.data
	c.AssignedTo = copyPtr(c.AssignedTo)
	c.AssignedBy = copyPtr(c.AssignedBy)
	if status, ok := s.statusByID(c.StatusID); ok {
		c.Status = status
	}
	c.Creator = s.userRef(&c.CreatedBy)
	c.AssignedUser = s.userRef(c.AssignedTo)
	c.Assigner = s.userRef(c.AssignedBy)
	return c
}

func copyPtr(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
