// facade.go provides the typed entry points through which the rest of the
// application reports audit events. Call sites never construct raw records:
// each helper derives severity and a deterministic summary message from the
// event it describes, so every event is shaped consistently regardless of
// which subsystem reports it.
package audit

import "strings"

// Fine-grained event tags carried inside details payloads. The summary
// message of a record is derived from these, never free-typed at call sites.
const (
	AuthLogin         = "LOGIN"
	AuthLoginFailed   = "LOGIN_FAILED"
	AuthLogout        = "LOGOUT"
	AuthTokenRejected = "TOKEN_REJECTED"

	FileUploaded          = "FILE_UPLOADED"
	FileRejected          = "FILE_REJECTED"
	FileDeleted           = "FILE_DELETED"
	FileSignatureMismatch = "FILE_SIGNATURE_MISMATCH"
)

// Logger is the audit facade: one helper per reporting domain, all funneling
// into a single Writer. It is constructed by the composition root and passed
// by reference to every collaborator that emits audit events.
type Logger struct {
	writer *Writer
}

// NewLogger creates an audit facade over the given Writer.
func NewLogger(w *Writer) *Logger {
	return &Logger{writer: w}
}

// AuthEvent describes an authentication-flow event.
type AuthEvent struct {
	Event         string // AuthLogin, AuthLoginFailed, AuthLogout, AuthTokenRejected
	ActorID       string
	Email         string
	Origin        string
	Success       bool
	FailureReason string
}

// LogAuth records an authentication event. Failed attempts are medium
// severity; successful routine actions are low.
func (l *Logger) LogAuth(e AuthEvent) {
	severity := SeverityLow
	if !e.Success {
		severity = SeverityMedium
	}
	l.writer.Append(Record{
		EventType:     EventAuth,
		Severity:      severity,
		Success:       e.Success,
		ActorID:       e.ActorID,
		NetworkOrigin: e.Origin,
		Message:       authMessage(e.Event),
		Details: AuthDetails{
			Event:         e.Event,
			Email:         e.Email,
			FailureReason: e.FailureReason,
		},
	})
}

// RecordEvent describes a create/read/update/delete action on a client record.
type RecordEvent struct {
	Action        string // "create", "update", "delete", "view"
	RecordID      string
	ActorID       string
	Origin        string
	Success       bool
	ChangedFields []string
}

// LogRecordChange records a client-record CRUD event. Deletions are medium
// severity even when successful; everything else routine is low.
func (l *Logger) LogRecordChange(e RecordEvent) {
	severity := SeverityLow
	if e.Action == "delete" || !e.Success {
		severity = SeverityMedium
	}
	l.writer.Append(Record{
		EventType:     EventRecord,
		Severity:      severity,
		Success:       e.Success,
		ActorID:       e.ActorID,
		NetworkOrigin: e.Origin,
		Message:       "client record " + e.Action,
		Details: RecordDetails{
			Action:        e.Action,
			RecordID:      e.RecordID,
			ChangedFields: e.ChangedFields,
		},
	})
}

// FileEvent describes an upload-gate or file-management outcome.
type FileEvent struct {
	Event        string // FileUploaded, FileRejected, FileDeleted
	ActorID      string
	Origin       string
	Success      bool
	OriginalName string
	StoredName   string
	MimeType     string
	Category     string
	Size         int64
	Reason       string
}

// LogFile records a file event. Accepted uploads are low severity, policy
// rejections medium.
func (l *Logger) LogFile(e FileEvent) {
	severity := SeverityLow
	if !e.Success {
		severity = SeverityMedium
	}
	l.writer.Append(Record{
		EventType:     EventFile,
		Severity:      severity,
		Success:       e.Success,
		ActorID:       e.ActorID,
		NetworkOrigin: e.Origin,
		Message:       fileMessage(e.Event),
		Details: FileDetails{
			Event:        e.Event,
			OriginalName: e.OriginalName,
			StoredName:   e.StoredName,
			MimeType:     e.MimeType,
			Category:     e.Category,
			Size:         e.Size,
			Reason:       e.Reason,
		},
	})
}

// SecurityEvent describes a detected security violation.
type SecurityEvent struct {
	Event    string // e.g. FileSignatureMismatch
	ActorID  string
	Origin   string
	Detail   string
	Critical bool
}

// LogSecurity records a security violation. Security events are never below
// high severity.
func (l *Logger) LogSecurity(e SecurityEvent) {
	severity := SeverityHigh
	if e.Critical {
		severity = SeverityCritical
	}
	l.writer.Append(Record{
		EventType:     EventSecurity,
		Severity:      severity,
		Success:       false,
		ActorID:       e.ActorID,
		NetworkOrigin: e.Origin,
		Message:       securityMessage(e.Event),
		Details: SecurityDetails{
			Event:  e.Event,
			Detail: e.Detail,
		},
	})
}

// APIErrorEvent describes a request that terminated with a 4xx/5xx status.
type APIErrorEvent struct {
	Method     string
	Path       string
	StatusCode int
	ActorID    string
	Origin     string
	Error      string
}

// LogAPIError records an API error. Server-side failures (5xx) are high
// severity, client errors medium.
func (l *Logger) LogAPIError(e APIErrorEvent) {
	severity := SeverityMedium
	if e.StatusCode >= 500 {
		severity = SeverityHigh
	}
	l.writer.Append(Record{
		EventType:     EventAPI,
		Severity:      severity,
		Success:       false,
		ActorID:       e.ActorID,
		NetworkOrigin: e.Origin,
		Message:       "API error on " + e.Method + " " + e.Path,
		Details: APIErrorDetails{
			Method:     e.Method,
			Path:       e.Path,
			StatusCode: e.StatusCode,
			Error:      e.Error,
		},
	})
}

func authMessage(event string) string {
	switch event {
	case AuthLogin:
		return "user logged in"
	case AuthLoginFailed:
		return "login attempt failed"
	case AuthLogout:
		return "user logged out"
	case AuthTokenRejected:
		return "authentication token rejected"
	default:
		return "authentication event " + event
	}
}

func fileMessage(event string) string {
	switch event {
	case FileUploaded:
		return "file upload accepted"
	case FileRejected:
		return "file upload rejected"
	case FileDeleted:
		return "stored file deleted"
	default:
		return "file event " + event
	}
}

func securityMessage(event string) string {
	switch event {
	case FileSignatureMismatch:
		return "uploaded file content does not match its declared type"
	default:
		return "security violation " + strings.ToLower(event)
	}
}
