package ui

import (
	"log/slog"
	"sync"
	"time"

	"console-sync/internal/classify"
	"console-sync/internal/notify"
)

// DefaultSettleDelay is how long the reconciler waits after an optimistic
// row removal before forcing the full server-list refresh that is the
// source of truth.
const DefaultSettleDelay = time.Second

// Reconciler drives the console's visible state from classified push
// events: the notification dropdown, the server-row table, and the
// backup views. All transitions are idempotent, so duplicate or reordered
// events converge to the same UI state.
type Reconciler struct {
	store       *notify.Store
	table       *Table
	view        View
	hooks       Hooks
	settleDelay time.Duration
	log         *slog.Logger

	mu        sync.Mutex
	backingUp map[string]struct{}
}

// ReconcilerOption customizes a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithSettleDelay overrides the post-removal refresh delay.
func WithSettleDelay(d time.Duration) ReconcilerOption {
	return func(r *Reconciler) { r.settleDelay = d }
}

// WithLogger overrides the default logger.
func WithLogger(log *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) { r.log = log }
}

// NewReconciler wires a Reconciler. A nil view or hooks falls back to the
// no-op implementation.
func NewReconciler(store *notify.Store, table *Table, view View, hooks Hooks, opts ...ReconcilerOption) *Reconciler {
	if view == nil {
		view = NopView{}
	}
	if hooks == nil {
		hooks = NopHooks{}
	}
	if table == nil {
		table = NewTable()
	}
	r := &Reconciler{
		store:       store,
		table:       table,
		view:        view,
		hooks:       hooks,
		settleDelay: DefaultSettleDelay,
		log:         slog.Default().With("component", "Reconciler"),
		backingUp:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Table exposes the server-row table for the embedding console.
func (r *Reconciler) Table() *Table {
	return r.table
}

// ForceRender rebuilds the dropdown from the store. Invoked on every store
// mutation and, as a consistency safety net, after duplicate events.
func (r *Reconciler) ForceRender() {
	r.guard("render dropdown", func() {
		r.view.RenderDropdown(r.store.List())
	})
}

// Reconcile applies one classified event to the server-row and backup
// views. Branches are guarded independently: a failing hook is logged and
// the remaining branches still run.
func (r *Reconciler) Reconcile(ev classify.Event) {
	ent := ev.Entity
	title := ev.Raw.Title

	switch {
	case ent.Resolved && !ent.Bulk:
		if classify.IsDeletionComplete(title) {
			r.removeRowAndRefresh(ent.Name, title)
		} else {
			// Completion or failure of start/stop/reboot/role assignment:
			// the server list is re-fetched either way.
			r.guard("refresh servers", r.hooks.RefreshServers)

			if classify.IsFailure(title) {
				if r.table.RestoreButtons(ent.Name) {
					r.log.Debug("restored action buttons after failure", "server", ent.Name)
				}
			}
		}

	case ent.Bulk:
		r.log.Debug("bulk operation, full refresh", "title", title)
		r.guard("refresh servers", r.hooks.RefreshServers)

	default:
		// No server resolved and not a bulk signal: guessing a row to
		// mutate would be worse than doing nothing.
		r.log.Warn("could not determine server for event",
			"title", title, "message", ev.Raw.Message, "details", ev.Raw.Details)
		return
	}

	if classify.MentionsBackup(ev.Raw.Message) {
		r.guard("refresh backups", r.hooks.RefreshBackups)
	}
}

// removeRowAndRefresh handles a completed deletion: the row disappears
// immediately (visual optimism) and a full list refresh follows after the
// settle delay (ground truth).
func (r *Reconciler) removeRowAndRefresh(server, title string) {
	if r.table.RemoveRow(server) {
		r.log.Info("removed server row", "server", server, "title", title)
	}
	time.AfterFunc(r.settleDelay, func() {
		r.guard("refresh servers", r.hooks.RefreshServers)
	})
}

// TrackBackup registers a server as having a backup in flight, so the
// completion event can re-enable its controls. Called by the action that
// initiates the backup.
func (r *Reconciler) TrackBackup(server string) {
	r.mu.Lock()
	r.backingUp[server] = struct{}{}
	r.mu.Unlock()
}

// BackupInProgress reports whether a backup is tracked for the server.
func (r *Reconciler) BackupInProgress(server string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.backingUp[server]
	return ok
}

func (r *Reconciler) untrackBackup(server string) {
	r.mu.Lock()
	delete(r.backingUp, server)
	r.mu.Unlock()
}

// HandleBackup runs the backup sub-protocol for a backup-typed event.
// The server name comes from the title alone.
func (r *Reconciler) HandleBackup(ev classify.Event) {
	title := ev.Raw.Title
	server := classify.EntityFromTitle(title)

	switch classify.BackupOutcomeOf(title) {
	case classify.BackupCompleted:
		r.log.Info("backup completed", "server", server)
		r.finishBackup(server)
		r.guard("refresh backups", r.hooks.RefreshBackups)

	case classify.BackupFailed:
		r.log.Info("backup failed or timed out", "server", server)
		r.finishBackup(server)

	case classify.BackupRestored:
		// Restores are not tracked in the in-progress set; only the views
		// need refreshing.
		r.log.Info("backup restore completed", "details", ev.Raw.Details)
		r.guard("refresh servers", r.hooks.RefreshServers)
		r.guard("refresh backups", r.hooks.RefreshBackups)

	default:
		r.log.Debug("backup event without terminal outcome", "title", title)
	}
}

// finishBackup is the shared tail of the completed and failed branches:
// drop the in-progress marker, re-enable the row's backup controls, and
// re-fetch the server list.
func (r *Reconciler) finishBackup(server string) {
	if server != "" {
		r.untrackBackup(server)
		r.guard("set backup controls", func() {
			r.hooks.SetBackupControls(server, false)
		})
	}
	r.guard("refresh servers", r.hooks.RefreshServers)
}

// guard runs one reconciliation branch, converting a panicking hook into a
// log line so the remaining branches for the event still run.
func (r *Reconciler) guard(name string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("UI update failed", "branch", name, "panic", rec)
		}
	}()
	fn()
}
