package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"

	"github.com/spec-kit/case-service/internal/domain"
	"github.com/spec-kit/case-service/internal/repository"
)

type userRepo struct{ s *Store }

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *userRepo) ListByRoles(_ context.Context, roles []domain.Role) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := []domain.User{}
	for _, user := range r.s.users {
		if lo.Contains(roles, user.Role) {
			result = append(result, user)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *userRepo) Upsert(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if existing, ok := r.s.users[user.ID]; ok {
		user.CreatedAt = existing.CreatedAt
		return nil
	}
	user.CreatedAt = r.s.now()
	r.s.users[user.ID] = *user
	return nil
}

type statusRepo struct{ s *Store }

func (r *statusRepo) List(_ context.Context) ([]domain.CaseStatus, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]domain.CaseStatus{}, r.s.statuses...), nil
}

func (r *statusRepo) Ensure(_ context.Context, names []domain.CaseStatusName) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, name := range names {
		if _, ok := domain.FindStatus(r.s.statuses, name); ok {
			continue
		}
		r.s.statuses = append(r.s.statuses, domain.CaseStatus{ID: len(r.s.statuses) + 1, Name: name})
	}
	return nil
}

type caseRepo struct{ s *Store }

func (r *caseRepo) Create(_ context.Context, c *domain.Case) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[c.CreatedBy]; !ok {
		return fmt.Errorf("created_by %s: unknown user", c.CreatedBy)
	}
	if _, ok := r.s.statusByID(c.StatusID); !ok {
		return fmt.Errorf("status_id %d: unknown status", c.StatusID)
	}
	now := r.s.now()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now
	r.s.seq++
	stored := *c
	stored.AssignedTo = copyPtr(c.AssignedTo)
	stored.AssignedBy = copyPtr(c.AssignedBy)
	stored.Status, stored.Creator, stored.AssignedUser, stored.Assigner = domain.CaseStatus{}, nil, nil, nil
	r.s.cases[c.ID] = &caseRecord{seq: r.s.seq, data: stored}
	return nil
}

func (r *caseRepo) GetByID(_ context.Context, id string) (*domain.Case, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.cases[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c := r.s.expand(rec)
	return &c, nil
}

func (r *caseRepo) List(_ context.Context, filter repository.CaseFilter) ([]domain.Case, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	matched := r.matching(filter)
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.data.CreatedAt.Equal(b.data.CreatedAt) {
			return a.data.CreatedAt.After(b.data.CreatedAt)
		}
		return a.seq > b.seq
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = domain.DefaultPageLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return []domain.Case{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return lo.Map(matched[offset:end], func(rec *caseRecord, _ int) domain.Case {
		return r.s.expand(rec)
	}), nil
}

func (r *caseRepo) Count(_ context.Context, filter repository.CaseFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.matching(filter)), nil
}

func (r *caseRepo) CountByStatus(_ context.Context, assigneeID *string) (map[int]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[int]int)
	for _, rec := range r.s.cases {
		if assigneeID != nil && !rec.data.IsAssignedTo(*assigneeID) {
			continue
		}
		counts[rec.data.StatusID]++
	}
	return counts, nil
}

func (r *caseRepo) CountCreatedBy(_ context.Context, userID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(lo.Filter(lo.Values(r.s.cases), func(rec *caseRecord, _ int) bool {
		return rec.data.CreatedBy == userID
	})), nil
}

func (r *caseRepo) Assign(_ context.Context, id, assigneeID, assignedBy string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.cases[id]
	if !ok {
		return pgx.ErrNoRows
	}
	rec.data.AssignedTo = &assigneeID
	rec.data.AssignedBy = &assignedBy
	rec.data.UpdatedAt = r.s.now()
	return nil
}

func (r *caseRepo) UpdateStatus(_ context.Context, id string, statusID int, expectedAssignee string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.cases[id]
	if !ok || !rec.data.IsAssignedTo(expectedAssignee) {
		return repository.ErrAssigneeChanged
	}
	rec.data.StatusID = statusID
	rec.data.UpdatedAt = r.s.now()
	return nil
}

func (r *caseRepo) matching(filter repository.CaseFilter) []*caseRecord {
	term := ""
	if filter.SearchTerm != nil {
		term = strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
	}
	var out []*caseRecord
	for _, rec := range r.s.cases {
		c := rec.data
		if filter.AssigneeID != nil && !c.IsAssignedTo(*filter.AssigneeID) {
			continue
		}
		if filter.StatusID != nil && c.StatusID != *filter.StatusID {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(c.Title), term) &&
			!strings.Contains(strings.ToLower(c.Description), term) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

type historyRepo struct{ s *Store }

func (r *historyRepo) Create(_ context.Context, history *domain.CaseHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	history.ID = uuid.NewString()
	history.CreatedAt = r.s.now()
	r.s.history[history.CaseID] = append(r.s.history[history.CaseID], *history)
	return nil
}

func (r *historyRepo) ListByCase(_ context.Context, caseID string) ([]domain.CaseHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]domain.CaseHistory{}, r.s.history[caseID]...), nil
}
