package domain

import (
	"encoding/json"
	"time"
)

// AuditAction names a state-changing operation.
type AuditAction string

const (
	AuditCreate   AuditAction = "CREATE"
	AuditUpdate   AuditAction = "UPDATE"
	AuditDelete   AuditAction = "DELETE"
	AuditPost     AuditAction = "POST"
	AuditAdjust   AuditAction = "ADJUST"
	AuditReverse  AuditAction = "REVERSE"
	AuditPayment  AuditAction = "PAYMENT"
	AuditStatus   AuditAction = "STATUS_CHANGE"
	AuditSchedule AuditAction = "SCHEDULE_UPDATE"
)

// AuditRecord is emitted after a state-changing operation commits.
type AuditRecord struct {
	AuditID   string          `json:"auditID"`
	Action    AuditAction     `json:"action"`
	Module    string          `json:"module"`
	RecordID  string          `json:"recordID"`
	Before    json.RawMessage `json:"before,omitempty"`
	After     json.RawMessage `json:"after"`
	Actor     string          `json:"actor"`
	Timestamp time.Time       `json:"timestamp"`
}
