package ui

import "sync"

// ButtonKind names one of the four per-row action controls.
type ButtonKind string

const (
	ButtonStart  ButtonKind = "start"
	ButtonStop   ButtonKind = "stop"
	ButtonReboot ButtonKind = "reboot"
	ButtonDelete ButtonKind = "delete"
)

// ButtonKinds lists all row controls in display order.
var ButtonKinds = []ButtonKind{ButtonStart, ButtonStop, ButtonReboot, ButtonDelete}

// DefaultLabel returns the idle label for a control.
func DefaultLabel(kind ButtonKind) string {
	switch kind {
	case ButtonStart:
		return "Start"
	case ButtonStop:
		return "Stop"
	case ButtonReboot:
		return "Reboot"
	case ButtonDelete:
		return "Delete"
	}
	return string(kind)
}

// Button is the state of one row control.
type Button struct {
	Disabled bool
	Label    string
}

// Row is the control state of one server row.
type Row struct {
	Server  string
	Buttons map[ButtonKind]Button
}

func newRow(server string) Row {
	buttons := make(map[ButtonKind]Button, len(ButtonKinds))
	for _, kind := range ButtonKinds {
		buttons[kind] = Button{Label: DefaultLabel(kind)}
	}
	return Row{Server: server, Buttons: buttons}
}

// Table mirrors the server-row portion of the console: which rows exist and
// the state of their action controls. Safe for concurrent use.
type Table struct {
	mu   sync.Mutex
	rows map[string]Row
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{rows: make(map[string]Row)}
}

// Upsert ensures a row exists for the server, creating it with all controls
// enabled and default-labeled.
func (t *Table) Upsert(server string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[server]; !ok {
		t.rows[server] = newRow(server)
	}
}

// Replace rebuilds the table from a full server list, dropping rows for
// servers that no longer exist. Existing button state is kept.
func (t *Table) Replace(servers []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := make(map[string]Row, len(servers))
	for _, server := range servers {
		if row, ok := t.rows[server]; ok {
			next[server] = row
		} else {
			next[server] = newRow(server)
		}
	}
	t.rows = next
}

// SetButton updates one control of one row. Unknown rows are a no-op.
func (t *Table) SetButton(server string, kind ButtonKind, disabled bool, label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[server]
	if !ok {
		return
	}
	row.Buttons[kind] = Button{Disabled: disabled, Label: label}
}

// RemoveRow deletes a server's row. Reports whether the row existed;
// removing an absent row is not an error, so the operation stays idempotent
// under duplicate deletion events.
func (t *Table) RemoveRow(server string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[server]; !ok {
		return false
	}
	delete(t.rows, server)
	return true
}

// RestoreButtons resets all four controls of a row to enabled with default
// labels, undoing any optimistic in-progress state. No-op for unknown rows.
func (t *Table) RestoreButtons(server string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[server]
	if !ok {
		return false
	}
	for _, kind := range ButtonKinds {
		row.Buttons[kind] = Button{Disabled: false, Label: DefaultLabel(kind)}
	}
	return true
}

// Row returns a copy of one row's state.
func (t *Table) Row(server string) (Row, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[server]
	if !ok {
		return Row{}, false
	}
	out := Row{Server: row.Server, Buttons: make(map[ButtonKind]Button, len(row.Buttons))}
	for kind, btn := range row.Buttons {
		out.Buttons[kind] = btn
	}
	return out, true
}

// Len returns the number of rows.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}
