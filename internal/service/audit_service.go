package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/token-auth-service/internal/domain"
	"github.com/spec-kit/token-auth-service/internal/events"
)

// AuditService records security-relevant events to the structured log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger.Named("audit")}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventPrincipalRegistered, a.handle)
	a.dispatcher.Subscribe(events.EventTokenIssued, a.handle)
	a.dispatcher.Subscribe(events.EventTokenRevoked, a.handle)
	a.dispatcher.Subscribe(events.EventAuthenticationFailed, a.handleFailure)
}

func (a *AuditService) handle(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.Int64("principal", int64(event.Principal)),
		zap.String("principal_type", string(event.PrincipalType)),
		zap.Any("payload", event.Payload))
	return nil
}

func (a *AuditService) handleFailure(_ context.Context, event events.Event) error {
	a.logger.Warn(string(event.Type),
		zap.String("event_id", event.ID),
		zap.Any("payload", event.Payload))
	return nil
}

// publisher is embedded by services that emit audit events.
type publisher struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

func (p publisher) publish(ctx context.Context, eventType events.EventType, principal domain.Principal, principalType domain.PrincipalType, payload interface{}) {
	if p.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		Principal:     principal,
		PrincipalType: principalType,
		Timestamp:     p.now().UTC(),
		Payload:       payload,
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil {
		p.logger.Warn("audit handler failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}
