package domain

import "time"

type AuditEventType string

const (
	AuditEventMemWrite  AuditEventType = "mem_write"
	AuditEventMemRevoke AuditEventType = "mem_revoke"
	AuditEventVerify    AuditEventType = "receipt_verify"
)

type AuditResult string

const (
	AuditResultSuccess AuditResult = "success"
	AuditResultFailure AuditResult = "failure"
)

// AuditEvent records one action taken against the service. The payload hash
// lets an operator correlate events with receipts without storing item text.
type AuditEvent struct {
	ID          string         `json:"id"`
	EventType   AuditEventType `json:"eventType"`
	TargetID    string         `json:"targetId,omitempty"`
	Result      AuditResult    `json:"result"`
	ErrorCode   string         `json:"errorCode,omitempty"`
	PayloadHash string         `json:"payloadHash,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}
