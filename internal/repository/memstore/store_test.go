package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/case-service/internal/domain"
	"github.com/spec-kit/case-service/internal/repository"
)

func seeded(t *testing.T) (*Store, context.Context) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s := New(WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}))
	require.NoError(t, s.Statuses().Ensure(ctx, domain.CaseStatusNames))
	for _, u := range []domain.User{
		{ID: "admin", Name: "John", Role: domain.RoleAdmin},
		{ID: "agent", Name: "Sam", Role: domain.RoleAgent},
	} {
		u := u
		require.NoError(t, s.Users().Upsert(ctx, &u))
	}
	return s, ctx
}

func TestCaseLifecycle(t *testing.T) {
	s, ctx := seeded(t)
	cases := s.Cases()

	c := &domain.Case{Title: "Leaky tap", Description: "Kitchen", CreatedBy: "admin", StatusID: 1}
	require.NoError(t, cases.Create(ctx, c))
	require.NotEmpty(t, c.ID)

	require.NoError(t, cases.Assign(ctx, c.ID, "agent", "admin"))
	got, err := cases.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedUser)
	assert.Equal(t, "Sam", got.AssignedUser.Name)
	assert.Equal(t, domain.CaseStatusToBeReviewed, got.Status.Name)

	err = cases.UpdateStatus(ctx, c.ID, 4, "admin")
	assert.ErrorIs(t, err, repository.ErrAssigneeChanged)
	require.NoError(t, cases.UpdateStatus(ctx, c.ID, 4, "agent"))

	counts, err := cases.CountByStatus(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{4: 1}, counts)

	_, err = cases.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, pgx.ErrNoRows))
	assert.True(t, errors.Is(cases.Assign(ctx, "missing", "agent", "admin"), pgx.ErrNoRows))
}

func TestListOrderingAndSearch(t *testing.T) {
	s, ctx := seeded(t)
	cases := s.Cases()
	for _, title := range []string{"first", "second 100%", "third"} {
		require.NoError(t, cases.Create(ctx, &domain.Case{Title: title, Description: "d", CreatedBy: "admin", StatusID: 1}))
	}

	all, err := cases.List(ctx, repository.CaseFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "third", all[0].Title)
	assert.Equal(t, "second 100%", all[1].Title)

	term := "100%"
	found, err := cases.List(ctx, repository.CaseFilter{SearchTerm: &term})
	require.NoError(t, err)
	require.Len(t, found, 1)

	past, err := cases.List(ctx, repository.CaseFilter{Limit: 10, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestCreateRejectsUnknownReferences(t *testing.T) {
	s, ctx := seeded(t)
	assert.Error(t, s.Cases().Create(ctx, &domain.Case{Title: "t", CreatedBy: "ghost", StatusID: 1}))
	assert.Error(t, s.Cases().Create(ctx, &domain.Case{Title: "t", CreatedBy: "admin", StatusID: 99}))
}
