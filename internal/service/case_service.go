package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/case-service/internal/domain"
	"github.com/spec-kit/case-service/internal/events"
	"github.com/spec-kit/case-service/internal/repository"
	apperrors "github.com/spec-kit/case-service/pkg/util/errorutil"
)

// StatusSource provides the seeded status catalog.
type StatusSource interface {
	List(ctx context.Context) ([]domain.CaseStatus, error)
}

// CaseService coordinates case creation, reads and status transitions.
type CaseService struct {
	cases      repository.CaseRepository
	history    repository.CaseHistoryRepository
	statuses   StatusSource
	policy     TransitionPolicy
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// CaseDependencies bundles collaborators for case service.
type CaseDependencies struct {
	CaseRepo    repository.CaseRepository
	HistoryRepo repository.CaseHistoryRepository
	Statuses    StatusSource
	Policy      TransitionPolicy
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// CaseCreateInput describes case creation payload.
type CaseCreateInput struct {
	Title       string
	Description string
}

// CaseListFilter describes listing filters. Page and Limit are normalized by the service.
type CaseListFilter struct {
	Page   int
	Limit  int
	Status *string
	Search *string
}

// NewCaseService constructs the service.
func NewCaseService(deps CaseDependencies) *CaseService {
	policy := deps.Policy
	if policy == nil {
		policy = FreeTransitions{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaseService{
		cases:      deps.CaseRepo,
		history:    deps.HistoryRepo,
		statuses:   deps.Statuses,
		policy:     policy,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateCase opens a case in TO_BE_REVIEWED owned by actor. Callers gate the role.
func (s *CaseService) CreateCase(ctx context.Context, actor domain.Actor, input CaseCreateInput) (*domain.Case, error) {
	initial, err := requireStatus(ctx, s.statuses, domain.CaseStatusToBeReviewed)
	if err != nil {
		return nil, err
	}

	c := &domain.Case{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		CreatedBy:   actor.ID,
		StatusID:    initial.ID,
	}
	if err := s.cases.Create(ctx, c); err != nil {
		return nil, apperrors.MapError(err)
	}

	created, err := loadCase(ctx, s.cases, c.ID)
	if err != nil {
		return nil, err
	}
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:   events.EventCaseCreated,
		CaseID: created.ID,
		Actor:  events.ActorFrom(actor),
		Payload: events.CaseCreatedPayload{
			Title:  created.Title,
			Status: initial.Name,
		},
	})
	return created, nil
}

// ListCases returns the page of cases visible to actor, newest first.
func (s *CaseService) ListCases(ctx context.Context, actor domain.Actor, filter CaseListFilter) (*domain.CasePage, error) {
	page := domain.NewPageRequest(filter.Page, filter.Limit)
	repoFilter := repository.CaseFilter{
		SearchTerm: filter.Search,
		Limit:      page.Limit,
		Offset:     page.Offset(),
	}
	if !actor.Role.SeesAllCases() {
		actorID := actor.ID
		repoFilter.AssigneeID = &actorID
	}

	if filter.Status != nil && *filter.Status != "" {
		statusID, ok, err := s.statusIDFor(ctx, *filter.Status)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &domain.CasePage{Items: []domain.Case{}, Meta: page.Meta(0)}, nil
		}
		repoFilter.StatusID = &statusID
	}

	total, err := s.cases.Count(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	items := []domain.Case{}
	if total > repoFilter.Offset {
		items, err = s.cases.List(ctx, repoFilter)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
	}
	return &domain.CasePage{Items: items, Meta: page.Meta(total)}, nil
}

// GetCase returns a case if actor may see it.
func (s *CaseService) GetCase(ctx context.Context, actor domain.Actor, caseID string) (*domain.Case, error) {
	c, err := loadCase(ctx, s.cases, caseID)
	if err != nil {
		return nil, err
	}
	if !c.VisibleTo(actor) {
		return nil, apperrors.NewForbidden("you can only view cases assigned to you")
	}
	return c, nil
}

// UpdateStatus moves a case to statusName. Only the current assignee may do so, whatever their role.
func (s *CaseService) UpdateStatus(ctx context.Context, actor domain.Actor, caseID, statusName string) (*domain.Case, error) {
	c, err := loadCase(ctx, s.cases, caseID)
	if err != nil {
		return nil, err
	}
	if !c.IsAssignedTo(actor.ID) {
		return nil, apperrors.NewForbidden("you can only update cases assigned to you")
	}

	name, ok := domain.ParseCaseStatusName(statusName)
	if !ok {
		return nil, apperrors.NewBadRequest("invalid status", map[string]any{"status": statusName})
	}
	target, err := requireStatus(ctx, s.statuses, name)
	if err != nil {
		return nil, err
	}
	if !s.policy.Allow(c.Status.Name, target.Name) {
		return nil, apperrors.NewBadRequest("invalid status transition", map[string]any{
			"from": c.Status.Name,
			"to":   target.Name,
		})
	}

	if err := s.cases.UpdateStatus(ctx, c.ID, target.ID, actor.ID); err != nil {
		if errors.Is(err, repository.ErrAssigneeChanged) {
			return nil, apperrors.NewForbidden("you can only update cases assigned to you")
		}
		return nil, apperrors.MapError(err)
	}

	updated, err := loadCase(ctx, s.cases, c.ID)
	if err != nil {
		return nil, err
	}
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:   events.EventCaseStatusChanged,
		CaseID: updated.ID,
		Actor:  events.ActorFrom(actor),
		Payload: events.CaseStatusChangedPayload{
			OldStatus: c.Status.Name,
			NewStatus: target.Name,
		},
	})
	return updated, nil
}

// ListStatuses returns the catalog ordered by ID.
func (s *CaseService) ListStatuses(ctx context.Context) ([]domain.CaseStatus, error) {
	return listStatuses(ctx, s.statuses)
}

// ListHistory returns the audit trail of a case visible to actor, oldest first.
func (s *CaseService) ListHistory(ctx context.Context, actor domain.Actor, caseID string) ([]domain.CaseHistory, error) {
	c, err := s.GetCase(ctx, actor, caseID)
	if err != nil {
		return nil, err
	}
	if s.history == nil {
		return []domain.CaseHistory{}, nil
	}
	entries, err := s.history.ListByCase(ctx, c.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if entries == nil {
		entries = []domain.CaseHistory{}
	}
	return entries, nil
}

func (s *CaseService) statusIDFor(ctx context.Context, value string) (int, bool, error) {
	name, ok := domain.ParseCaseStatusName(value)
	if !ok {
		return 0, false, nil
	}
	statuses, err := listStatuses(ctx, s.statuses)
	if err != nil {
		return 0, false, err
	}
	status, ok := domain.FindStatus(statuses, name)
	return status.ID, ok, nil
}

func loadCase(ctx context.Context, cases repository.CaseRepository, caseID string) (*domain.Case, error) {
	c, err := cases.GetByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("case", map[string]any{"case_id": caseID})
		}
		return nil, apperrors.MapError(err)
	}
	return c, nil
}

func listStatuses(ctx context.Context, source StatusSource) ([]domain.CaseStatus, error) {
	statuses, err := source.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	sorted := append([]domain.CaseStatus{}, statuses...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return sorted, nil
}

func requireStatus(ctx context.Context, source StatusSource, name domain.CaseStatusName) (domain.CaseStatus, error) {
	statuses, err := listStatuses(ctx, source)
	if err != nil {
		return domain.CaseStatus{}, err
	}
	status, ok := domain.FindStatus(statuses, name)
	if !ok {
		return domain.CaseStatus{}, apperrors.NewInvariantViolation("case status not seeded", map[string]any{"status": name})
	}
	return status, nil
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event subscribers failed",
			zap.String("event_type", string(event.Type)),
			zap.String("case_id", event.CaseID),
			zap.Error(err))
	}
}
