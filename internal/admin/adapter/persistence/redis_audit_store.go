package persistence

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"mongo-admin/internal/admin/domain/model"
	"mongo-admin/internal/admin/domain/repository"
	"mongo-admin/internal/shared/logger"
	"mongo-admin/internal/shared/metrics"

	"github.com/redis/go-redis/v9"
)

// AuditStreamPrefix prefixes the per-tenant audit stream key.
const AuditStreamPrefix = "audit:"

// RedisAuditStore implements repository.AuditStore with one Redis stream per
// tenant, trimmed to roughly maxLen entries.
type RedisAuditStore struct {
	client *redis.Client
	maxLen int64
	logger logger.Logger
}

var _ repository.AuditStore = (*RedisAuditStore)(nil)

// NewRedisAuditStore creates a Redis-backed audit log.
func NewRedisAuditStore(client *redis.Client, maxLen int64, log logger.Logger) *RedisAuditStore {
	if maxLen <= 0 {
		maxLen = 10000
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &RedisAuditStore{client: client, maxLen: maxLen, logger: log.WithComponent("audit_store")}
}

// StreamKey returns the audit stream for tenantID.
func StreamKey(tenantID string) string {
	return AuditStreamPrefix + tenantID
}

// Append adds event to the tenant's stream.
func (r *RedisAuditStore) Append(ctx context.Context, event model.ChangeEvent) error {
	_, err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey(event.TenantID),
		MaxLen: r.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"id":         event.ID,
			"collection": event.Collection,
			"kind":       string(event.Kind),
			"documentId": event.DocumentID,
			"affected":   event.Affected,
			"actor":      event.Actor,
			"requestId":  event.RequestID,
			"occurredAt": event.OccurredAt.UnixNano(),
		},
	}).Result()
	metrics.ObserveAudit(err)
	if err != nil {
		r.logger.WithContext(ctx).Errorf("Failed to append audit event to %s: %v", StreamKey(event.TenantID), err)
		return err
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (r *RedisAuditStore) Recent(ctx context.Context, tenantID string, limit int64) ([]model.AuditEntry, error) {
	msgs, err := r.client.XRevRangeN(ctx, StreamKey(tenantID), "+", "-", limit).Result()
	if err != nil {
		if err == redis.Nil {
			return []model.AuditEntry{}, nil
		}
		return nil, err
	}

	entries := make([]model.AuditEntry, 0, len(msgs))
	for _, msg := range msgs {
		entry, err := parseAuditMessage(tenantID, msg)
		if err != nil {
			r.logger.WithContext(ctx).Warnf("Skipping malformed audit entry %s: %v", msg.ID, err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseAuditMessage(tenantID string, msg redis.XMessage) (model.AuditEntry, error) {
	str := func(key string) string {
		if v, ok := msg.Values[key].(string); ok {
			return v
		}
		return ""
	}
	affected, err := strconv.ParseInt(str("affected"), 10, 64)
	if err != nil {
		return model.AuditEntry{}, fmt.Errorf("invalid affected count: %w", err)
	}
	nanos, err := strconv.ParseInt(str("occurredAt"), 10, 64)
	if err != nil {
		return model.AuditEntry{}, fmt.Errorf("invalid timestamp: %w", err)
	}
	return model.AuditEntry{
		StreamID: msg.ID,
		ChangeEvent: model.ChangeEvent{
			ID:         str("id"),
			TenantID:   tenantID,
			Collection: str("collection"),
			Kind:       model.MutationKind(str("kind")),
			DocumentID: str("documentId"),
			Affected:   affected,
			Actor:      str("actor"),
			RequestID:  str("requestId"),
			OccurredAt: time.Unix(0, nanos).UTC(),
		},
	}, nil
}

// NoopAuditStore discards events; used when Redis is disabled.
type NoopAuditStore struct{}

var _ repository.AuditStore = NoopAuditStore{}

func (NoopAuditStore) Append(context.Context, model.ChangeEvent) error { return nil }

func (NoopAuditStore) Recent(context.Context, string, int64) ([]model.AuditEntry, error) {
	return []model.AuditEntry{}, nil
}
