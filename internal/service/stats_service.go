package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/case-service/internal/domain"
	"github.com/spec-kit/case-service/internal/repository"
	apperrors "github.com/spec-kit/case-service/pkg/util/errorutil"
)

// StatusCount is the number of cases in one status.
type StatusCount struct {
	Status domain.CaseStatusName
	Count  int
}

// UserStats summarizes a user's workload.
type UserStats struct {
	UserID        string
	UserName      string
	TotalAssigned int
	TotalCreated  int
	ByStatus      []StatusCount
}

// StatusCounts summarizes visible cases per status.
type StatusCounts struct {
	Total    int
	ByStatus []StatusCount
}

// StatsService computes dashboard aggregates.
type StatsService struct {
	cases    repository.CaseRepository
	users    repository.UserRepository
	statuses StatusSource
}

// StatsDependencies bundles collaborators.
type StatsDependencies struct {
	CaseRepo repository.CaseRepository
	UserRepo repository.UserRepository
	Statuses StatusSource
}

// NewStatsService creates the service.
func NewStatsService(deps StatsDependencies) *StatsService {
	return &StatsService{cases: deps.CaseRepo, users: deps.UserRepo, statuses: deps.Statuses}
}

// UserStats counts cases assigned to and created by userID. ByStatus holds one entry
// per known status in catalog order and sums to TotalAssigned.
func (s *StatsService) UserStats(ctx context.Context, userID string) (*UserStats, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}

	var (
		statuses []domain.CaseStatus
		counts   map[int]int
		created  int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		statuses, err = listStatuses(gctx, s.statuses)
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = s.cases.CountByStatus(gctx, &user.ID)
		return err
	})
	g.Go(func() error {
		var err error
		created, err = s.cases.CountCreatedBy(gctx, user.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.MapError(err)
	}

	byStatus := countsFor(statuses, counts)
	return &UserStats{
		UserID:        user.ID,
		UserName:      user.Name,
		TotalAssigned: sumCounts(byStatus),
		TotalCreated:  created,
		ByStatus:      byStatus,
	}, nil
}

// StatusCounts counts the cases actor can see, per status.
func (s *StatsService) StatusCounts(ctx context.Context, actor domain.Actor) (*StatusCounts, error) {
	var assignee *string
	if !actor.Role.SeesAllCases() {
		actorID := actor.ID
		assignee = &actorID
	}

	statuses, err := listStatuses(ctx, s.statuses)
	if err != nil {
		return nil, err
	}
	counts, err := s.cases.CountByStatus(ctx, assignee)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	byStatus := countsFor(statuses, counts)
	return &StatusCounts{Total: sumCounts(byStatus), ByStatus: byStatus}, nil
}

func countsFor(statuses []domain.CaseStatus, counts map[int]int) []StatusCount {
	return lo.Map(statuses, func(status domain.CaseStatus, _ int) StatusCount {
		return StatusCount{Status: status.Name, Count: counts[status.ID]}
	})
}

func sumCounts(items []StatusCount) int {
	return lo.SumBy(items, func(item StatusCount) int { return item.Count })
}
