package model

import "time"

// ChangeEvent is published after a successful write and feeds both the audit
// log and live subscribers.
type ChangeEvent struct {
	ID         string       `json:"id"`
	TenantID   string       `json:"tenantId"`
	Collection string       `json:"collection"`
	Kind       MutationKind `json:"kind"`
	DocumentID string       `json:"documentId,omitempty"`
	Affected   int64        `json:"affected"`
	Actor      string       `json:"actor,omitempty"`
	RequestID  string       `json:"requestId,omitempty"`
	OccurredAt time.Time    `json:"occurredAt"`
}

// AuditEntry is a ChangeEvent as read back from the audit log.
type AuditEntry struct {
	StreamID string `json:"streamId"`
	ChangeEvent
}
