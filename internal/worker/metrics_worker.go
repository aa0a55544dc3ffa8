package worker

import (
	"context"

	"github.com/spec-kit/case-service/internal/events"
	"github.com/spec-kit/case-service/internal/observability"
)

// StartMetricsWorker counts case lifecycle events.
func StartMetricsWorker(dispatcher events.Dispatcher, metrics *observability.Metrics) {
	if dispatcher == nil || metrics == nil {
		return
	}
	dispatcher.Subscribe(events.EventCaseCreated, func(context.Context, events.Event) error {
		metrics.RecordCaseCreated()
		return nil
	})
	dispatcher.Subscribe(events.EventCaseAssigned, func(_ context.Context, event events.Event) error {
		if payload, ok := event.Payload.(events.CaseAssignedPayload); ok {
			metrics.RecordCaseAssigned(string(payload.AssigneeRole))
		}
		return nil
	})
	dispatcher.Subscribe(events.EventCaseStatusChanged, func(_ context.Context, event events.Event) error {
		if payload, ok := event.Payload.(events.CaseStatusChangedPayload); ok {
			metrics.RecordStatusChange(string(payload.OldStatus), string(payload.NewStatus))
		}
		return nil
	})
}
