package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/case-service/internal/domain"
	"github.com/spec-kit/case-service/internal/events"
	"github.com/spec-kit/case-service/internal/repository"
)

// AuditWorker turns case events into history entries.
type AuditWorker struct {
	history repository.CaseHistoryRepository
	logger  *zap.Logger
}

// StartAuditWorker subscribes the audit writer to every case event.
func StartAuditWorker(dispatcher events.Dispatcher, history repository.CaseHistoryRepository, logger *zap.Logger) *AuditWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &AuditWorker{history: history, logger: logger}
	if dispatcher == nil || history == nil {
		return w
	}
	dispatcher.Subscribe(events.EventCaseCreated, w.Handle)
	dispatcher.Subscribe(events.EventCaseAssigned, w.Handle)
	dispatcher.Subscribe(events.EventCaseStatusChanged, w.Handle)
	return w
}

// Handle persists one event. Failures are logged and returned to the dispatcher.
func (w *AuditWorker) Handle(ctx context.Context, event events.Event) error {
	entry, err := historyEntry(event)
	if err != nil {
		w.logger.Warn("audit entry skipped", zap.String("event_type", string(event.Type)), zap.Error(err))
		return err
	}
	if err := w.history.Create(ctx, entry); err != nil {
		w.logger.Error("failed to record case history",
			zap.String("case_id", event.CaseID),
			zap.String("change_type", string(entry.ChangeType)),
			zap.Error(err))
		return fmt.Errorf("record case history: %w", err)
	}
	return nil
}

func historyEntry(event events.Event) (*domain.CaseHistory, error) {
	entry := &domain.CaseHistory{
		CaseID:  event.CaseID,
		ActorID: event.Actor.ID,
	}
	switch payload := event.Payload.(type) {
	case events.CaseCreatedPayload:
		entry.ChangeType = domain.ChangeTypeCreated
		entry.NewValue = map[string]any{"title": payload.Title, "status": string(payload.Status)}
	case events.CaseAssignedPayload:
		entry.ChangeType = domain.ChangeTypeAssignee
		if payload.PreviousAssigneeID != nil {
			entry.OldValue = map[string]any{"assigned_to": *payload.PreviousAssigneeID}
		}
		entry.NewValue = map[string]any{
			"assigned_to": payload.AssigneeID,
			"assigned_by": event.Actor.ID,
		}
	case events.CaseStatusChangedPayload:
		entry.ChangeType = domain.ChangeTypeStatus
		entry.OldValue = map[string]any{"status": string(payload.OldStatus)}
		entry.NewValue = map[string]any{"status": string(payload.NewStatus)}
	default:
		return nil, fmt.Errorf("unsupported payload %T", event.Payload)
	}
	return entry, nil
}
