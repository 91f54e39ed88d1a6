// Package audit implements the append-only audit trail for security- and
// business-relevant events: authentication attempts, client record changes,
// file uploads, security violations, and API errors. Audit records are
// intentionally separate from application logs because they have different
// consumers and retention requirements — application logs are ephemeral debug
// output consumed by on-call engineers, while audit records are immutable
// entries consumed by administrators and may be subject to compliance
// retention policies. Records are persisted as line-delimited JSON in daily
// partition files and are never updated or deleted individually; whole
// partitions age out under the Writer's retention policy.
package audit

import (
	"encoding/json"
	"time"
)

// EventType classifies an audit record by the subsystem that reported it.
// The set is closed; new members are added here, never at call sites.
type EventType string

const (
	EventAuth     EventType = "auth"
	EventRecord   EventType = "record"
	EventFile     EventType = "file"
	EventSecurity EventType = "security"
	EventSystem   EventType = "system"
	EventAPI      EventType = "api"
)

// Severity grades how much attention a record deserves. Routine successful
// actions are low; security violations are always high or critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Record is one structured audit log line. Records are immutable once
// written — there is no update or delete operation on individual records.
type Record struct {
	Timestamp     time.Time `json:"timestamp"`
	EventType     EventType `json:"eventType"`
	Severity      Severity  `json:"severity"`
	Success       bool      `json:"success"`
	ActorID       string    `json:"actorId"`
	NetworkOrigin string    `json:"networkOrigin"`
	Message       string    `json:"message"`
	Details       Details   `json:"details,omitempty"`
}

// Details is the event-specific payload of a Record. Each EventType has its
// own concrete details struct so call sites get compile-time guarantees over
// what an event kind may carry, instead of an open map.
type Details interface {
	auditDetails()
}

// AuthDetails accompanies EventAuth records.
type AuthDetails struct {
	Event         string `json:"event"`
	Email         string `json:"email,omitempty"`
	FailureReason string `json:"failureReason,omitempty"`
}

// RecordDetails accompanies EventRecord records (client record CRUD).
type RecordDetails struct {
	Action        string   `json:"action"`
	RecordID      string   `json:"recordId"`
	ChangedFields []string `json:"changedFields,omitempty"`
}

// FileDetails accompanies EventFile records.
type FileDetails struct {
	Event        string `json:"event"`
	OriginalName string `json:"originalName,omitempty"`
	StoredName   string `json:"storedName,omitempty"`
	MimeType     string `json:"mimeType,omitempty"`
	Category     string `json:"category,omitempty"`
	Size         int64  `json:"size,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

// SecurityDetails accompanies EventSecurity records.
type SecurityDetails struct {
	Event  string `json:"event"`
	Detail string `json:"detail,omitempty"`
}

// APIErrorDetails accompanies EventAPI records.
type APIErrorDetails struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error,omitempty"`
}

func (AuthDetails) auditDetails()     {}
func (RecordDetails) auditDetails()   {}
func (FileDetails) auditDetails()     {}
func (SecurityDetails) auditDetails() {}
func (APIErrorDetails) auditDetails() {}

// StoredRecord is a Record as read back from a partition file. Details are
// kept raw because the concrete type is only known from EventType; callers
// that need the payload decode it into the matching details struct.
type StoredRecord struct {
	Timestamp     time.Time       `json:"timestamp"`
	EventType     EventType       `json:"eventType"`
	Severity      Severity        `json:"severity"`
	Success       bool            `json:"success"`
	ActorID       string          `json:"actorId"`
	NetworkOrigin string          `json:"networkOrigin"`
	Message       string          `json:"message"`
	Details       json.RawMessage `json:"details,omitempty"`
}
