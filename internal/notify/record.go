package notify

import (
	"strings"
	"time"
)

// Severity classifies a notification for display purposes.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ParseSeverity normalizes a free-form severity string.
// Unknown or empty values fall back to info.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success":
		return SeveritySuccess
	case "error", "danger":
		return SeverityError
	case "warning", "warn":
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Record is a single notification as held by the store.
// Records are immutable once stored; the only mutation is removal via Clear.
type Record struct {
	ID         string    `json:"id"`
	Severity   Severity  `json:"severity"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// DisplayTime renders the receipt timestamp for the dropdown.
func (r Record) DisplayTime() string {
	return r.ReceivedAt.Format("15:04:05")
}
