package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/case-service/internal/domain"
	"github.com/spec-kit/case-service/internal/events"
	"github.com/spec-kit/case-service/internal/repository"
	apperrors "github.com/spec-kit/case-service/pkg/util/errorutil"
)

// AssignmentService handles case assignment operations.
type AssignmentService struct {
	cases      repository.CaseRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	CaseRepo   repository.CaseRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		cases:      deps.CaseRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// AssignCase hands a case to targetUserID. Reassignment is always allowed; the
// actor's role must be allowed to assign to the target's role.
func (s *AssignmentService) AssignCase(ctx context.Context, actor domain.Actor, caseID, targetUserID string) (*domain.Case, error) {
	c, err := loadCase(ctx, s.cases, caseID)
	if err != nil {
		return nil, err
	}

	target, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("target user", map[string]any{"user_id": targetUserID})
		}
		return nil, apperrors.MapError(err)
	}

	if !actor.Role.CanAssign(target.Role) {
		return nil, apperrors.NewForbidden("you are not allowed to assign to this user")
	}

	if err := s.cases.Assign(ctx, c.ID, target.ID, actor.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("case", map[string]any{"case_id": caseID})
		}
		return nil, apperrors.MapError(err)
	}

	updated, err := loadCase(ctx, s.cases, c.ID)
	if err != nil {
		return nil, err
	}
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:   events.EventCaseAssigned,
		CaseID: updated.ID,
		Actor:  events.ActorFrom(actor),
		Payload: events.CaseAssignedPayload{
			PreviousAssigneeID: c.AssignedTo,
			AssigneeID:         target.ID,
			AssigneeRole:       target.Role,
		},
	})
	return updated, nil
}

// AssignableUsers lists the users actor may assign cases to, ordered by name.
func (s *AssignmentService) AssignableUsers(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	roles := actor.Role.AssignableRoles()
	if len(roles) == 0 {
		return []domain.User{}, nil
	}
	users, err := s.users.ListByRoles(ctx, roles)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}
