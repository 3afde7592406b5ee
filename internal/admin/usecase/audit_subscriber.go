package usecase

import (
	"context"

	"mongo-admin/internal/admin/domain/model"
	"mongo-admin/internal/admin/domain/repository"
	"mongo-admin/internal/shared/eventbus"
	"mongo-admin/internal/shared/logger"
)

// AuditSubscriber appends every change event to the audit store.
type AuditSubscriber struct {
	store repository.AuditStore
	log   logger.Logger
}

// NewAuditSubscriber creates a subscriber writing to store.
func NewAuditSubscriber(store repository.AuditStore, log logger.Logger) *AuditSubscriber {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &AuditSubscriber{store: store, log: log.WithComponent("audit_subscriber")}
}

// Register subscribes to change events on bus.
func (s *AuditSubscriber) Register(bus eventbus.EventBusInterface) eventbus.Subscription {
	return bus.Subscribe(eventbus.EventTypeCollectionChanged, s.Handle)
}

// Handle appends the event. Failures are logged and swallowed so the write
// that produced the event is never affected.
func (s *AuditSubscriber) Handle(ctx context.Context, event eventbus.Event) error {
	change, ok := event.Data().(model.ChangeEvent)
	if !ok {
		s.log.Warnf("Ignoring %s event with unexpected payload %T", event.Type(), event.Data())
		return nil
	}
	if err := s.store.Append(ctx, change); err != nil {
		s.log.WithContext(ctx).Errorf("Audit append failed for %s/%s: %v", change.TenantID, change.Collection, err)
	}
	return nil
}
