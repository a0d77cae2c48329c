package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/events"
)

// AuditService records authentication events as structured audit lines.
type AuditService struct {
	logger     *zap.Logger
	dispatcher events.Dispatcher
}

// NewAuditService builds the service.
func NewAuditService(logger *zap.Logger, dispatcher events.Dispatcher) *AuditService {
	return &AuditService{logger: logger, dispatcher: dispatcher}
}

// RegisterHandlers subscribes the audit log to every auth event type.
func (s *AuditService) RegisterHandlers() {
	for _, eventType := range []events.EventType{
		events.EventSubjectLoggedIn,
		events.EventTokenRefreshed,
		events.EventSubjectLoggedOut,
		events.EventSessionSuperseded,
	} {
		s.dispatcher.Subscribe(eventType, s.record)
	}
}

func (s *AuditService) record(_ context.Context, event events.Event) error {
	s.logger.Info("audit",
		zap.String("event", string(event.Type)),
		zap.String("subject_id", event.SubjectID),
		zap.String("username", event.Username),
		zap.Time("at", event.Timestamp),
	)
	return nil
}
