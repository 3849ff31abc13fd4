package ui

import "console-sync/internal/notify"

// Hooks is the optional-capability interface to the surrounding console
// views. The reconciler calls these when pushed events invalidate what is
// on screen; a missing capability is a no-op, never an error.
type Hooks interface {
	// RefreshServers reloads the active server list.
	RefreshServers()
	// RefreshBackups reloads the backup list.
	RefreshBackups()
	// SetBackupControls enables or disables the backup controls of one
	// server's row.
	SetBackupControls(server string, inProgress bool)
}

// NopHooks is the default Hooks implementation: every trigger is skipped.
type NopHooks struct{}

func (NopHooks) RefreshServers()                {}
func (NopHooks) RefreshBackups()                {}
func (NopHooks) SetBackupControls(string, bool) {}

// View renders the notification dropdown and badge.
type View interface {
	// RenderDropdown rebuilds the dropdown from the store's current
	// contents, newest first. An empty slice renders the placeholder and
	// hides the badge.
	RenderDropdown(records []notify.Record)
}

// NopView discards renders.
type NopView struct{}

func (NopView) RenderDropdown([]notify.Record) {}
