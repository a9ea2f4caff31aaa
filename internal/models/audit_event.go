package models

import "time"

// AuditEvent is a single dispatched request as recorded by the audit trail.
type AuditEvent struct {
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
	RemoteAddr string    `json:"remote_addr"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Status     int       `json:"status"`
	Username   string    `json:"username,omitempty"` // empty for anonymous requests
}
