// Package worker attaches the asynchronous side effects of case changes to the
// event dispatcher.
package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/case-service/internal/events"
	"github.com/spec-kit/case-service/internal/observability"
	"github.com/spec-kit/case-service/internal/repository"
	"github.com/spec-kit/case-service/internal/service"
)

// Dependencies bundles what the subscribers need.
type Dependencies struct {
	Dispatcher    events.Dispatcher
	History       repository.CaseHistoryRepository
	Metrics       *observability.Metrics
	Notifications *service.NotificationService
	Logger        *zap.Logger
}

// Start registers the audit, metrics and notification subscribers.
func Start(deps Dependencies) {
	StartAuditWorker(deps.Dispatcher, deps.History, deps.Logger)
	StartMetricsWorker(deps.Dispatcher, deps.Metrics)
	StartNotificationWorker(deps.Notifications)
}

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
