package classify

import (
	"bytes"
	"encoding/json"
	"strings"
)

// EventID carries the server-assigned notification id. The wire value may be
// a JSON number (database id) or a string; both normalize to a string.
type EventID string

// UnmarshalJSON accepts string, number, and null id values.
func (id *EventID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = EventID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = EventID(n.String())
	return nil
}

// RawEvent is a single push message as delivered by the stream.
type RawEvent struct {
	Type     string  `json:"type"`
	Title    string  `json:"title"`
	Message  string  `json:"message"`
	Details  string  `json:"details,omitempty"`
	Severity string  `json:"severity,omitempty"`
	ID       EventID `json:"id,omitempty"`
}

// Category is the semantic class of a push event.
type Category string

const (
	CategoryNotification        Category = "notification"
	CategoryBackup              Category = "backup"
	CategoryServerStart         Category = "server_start"
	CategoryServerStop          Category = "server_stop"
	CategoryServerReboot        Category = "server_reboot"
	CategoryServerDeletion      Category = "server_deletion"
	CategoryServerCreation      Category = "server_creation"
	CategoryRoleAssignment      Category = "role_assignment"
	CategoryError               Category = "error"
	CategoryNodeExporterInstall Category = "node_exporter_install"
	CategoryUnrecognized        Category = "unrecognized"
)

// CategoryOf maps the payload's explicit type field to a category.
// The type field is authoritative; anything unknown is unrecognized.
func CategoryOf(typ string) Category {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "notification":
		return CategoryNotification
	case "backup":
		return CategoryBackup
	case "server_start":
		return CategoryServerStart
	case "server_stop":
		return CategoryServerStop
	case "server_reboot":
		return CategoryServerReboot
	case "server_deletion":
		return CategoryServerDeletion
	case "server_creation":
		return CategoryServerCreation
	case "role_assignment", "ansible_role":
		return CategoryRoleAssignment
	case "error":
		return CategoryError
	case "node_exporter_install":
		return CategoryNodeExporterInstall
	default:
		return CategoryUnrecognized
	}
}

// Recognized reports whether events of this category are admitted to the
// notification store. Node exporter installs only drive UI updates; they do
// not show up in the dropdown.
func (c Category) Recognized() bool {
	switch c {
	case CategoryNotification, CategoryBackup, CategoryServerStart,
		CategoryServerStop, CategoryServerReboot, CategoryServerDeletion,
		CategoryServerCreation, CategoryRoleAssignment, CategoryError:
		return true
	}
	return false
}

// serverLifecycle reports whether the category always requires a server-row
// UI update, independent of title wording.
func (c Category) serverLifecycle() bool {
	switch c {
	case CategoryServerStart, CategoryServerStop, CategoryServerReboot,
		CategoryServerDeletion, CategoryNodeExporterInstall,
		CategoryRoleAssignment:
		return true
	}
	return false
}

// Event is a classified push event. Ephemeral: computed per message and
// never persisted.
type Event struct {
	Raw      RawEvent
	Category Category
	Entity   Entity
}

// Classify derives the category and target entity for a raw payload.
func Classify(raw RawEvent) Event {
	return Event{
		Raw:      raw,
		Category: CategoryOf(raw.Type),
		Entity:   ExtractEntity(raw),
	}
}

// uiKeywords match titles of events that lack a structured type but still
// require a server-row reaction. Coupled to server-side message phrasing.
var uiKeywords = []string{
	"start",
	"stop",
	"restart",
	"delet",
	"complet",
	"succe",
	"fail",
	"role assign",
}

// NeedsUIUpdate reports whether the event must go through server-row
// reconciliation. True for lifecycle categories and for title keyword
// matches; runs regardless of the dedup outcome.
func NeedsUIUpdate(ev Event) bool {
	if ev.Category.serverLifecycle() {
		return true
	}
	title := strings.ToLower(ev.Raw.Title)
	for _, kw := range uiKeywords {
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

// IsFailure reports whether the title indicates a failed operation.
func IsFailure(title string) bool {
	return strings.Contains(strings.ToLower(title), "fail")
}

// IsDeletionComplete reports whether the title indicates a finished server
// deletion, which drives row removal rather than a plain refresh.
func IsDeletionComplete(title string) bool {
	t := strings.ToLower(title)
	return strings.Contains(t, "delet") && strings.Contains(t, "complet")
}

// MentionsBackup reports whether the message references a backup operation.
func MentionsBackup(message string) bool {
	return strings.Contains(strings.ToLower(message), "backup")
}

// BackupOutcome is the branch taken by the backup sub-protocol.
type BackupOutcome int

const (
	BackupUnknown BackupOutcome = iota
	BackupCompleted
	BackupFailed
	BackupRestored
)

// BackupOutcomeOf inspects a backup event title. Restore completion is
// checked first so "backup restore completed" never counts as a plain
// completion.
func BackupOutcomeOf(title string) BackupOutcome {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "restore") && strings.Contains(t, "complet"):
		return BackupRestored
	case strings.Contains(t, "fail"), strings.Contains(t, "error"), strings.Contains(t, "timeout"), strings.Contains(t, "timed out"):
		return BackupFailed
	case strings.Contains(t, "complet"), strings.Contains(t, "succe"):
		return BackupCompleted
	default:
		return BackupUnknown
	}
}
