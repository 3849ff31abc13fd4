package ui

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"console-sync/internal/classify"
	"console-sync/internal/notify"
)

// countingHooks records refresh triggers for assertions.
type countingHooks struct {
	mu             sync.Mutex
	servers        int
	backups        int
	backupControls map[string]bool
	panicOn        string
}

func newCountingHooks() *countingHooks {
	return &countingHooks{backupControls: map[string]bool{}}
}

func (h *countingHooks) RefreshServers() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.panicOn == "servers" {
		panic("refresh servers exploded")
	}
	h.servers++
}

func (h *countingHooks) RefreshBackups() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.backups++
}

func (h *countingHooks) SetBackupControls(server string, inProgress bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.backupControls[server] = inProgress
}

func (h *countingHooks) counts() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.servers, h.backups
}

func event(typ, title, message, details string) classify.Event {
	return classify.Classify(classify.RawEvent{Type: typ, Title: title, Message: message, Details: details})
}

func newTestReconciler(t *testing.T) (*Reconciler, *countingHooks) {
	t.Helper()
	hooks := newCountingHooks()
	store := notify.NewStore(10)
	rec := NewReconciler(store, NewTable(), NopView{}, hooks, WithSettleDelay(5*time.Millisecond))
	return rec, hooks
}

func TestReconcileDeletionCompleteRemovesRowThenRefreshes(t *testing.T) {
	rec, hooks := newTestReconciler(t)
	rec.Table().Upsert("web01")

	rec.Reconcile(event("server_deletion", "Server web01 deletion completed", "server web01 was removed", ""))

	assert.Zero(t, rec.Table().Len(), "row removed immediately")
	servers, _ := hooks.counts()
	assert.Zero(t, servers, "refresh deferred until the settle delay")

	assert.Eventually(t, func() bool {
		servers, _ := hooks.counts()
		return servers == 1
	}, time.Second, time.Millisecond, "settle-delayed refresh fires")
}

func TestReconcileDeletionCompleteIdempotent(t *testing.T) {
	rec, _ := newTestReconciler(t)
	rec.Table().Upsert("web01")

	ev := event("server_deletion", "Server web01 deletion completed", "", "")
	rec.Reconcile(ev)
	rec.Reconcile(ev) // duplicate delivery
	assert.Zero(t, rec.Table().Len())
}

func TestReconcileCompletionRefreshesServers(t *testing.T) {
	rec, hooks := newTestReconciler(t)

	rec.Reconcile(event("server_start", "Server web02 start completed", "server web02 started successfully", ""))

	servers, backups := hooks.counts()
	assert.Equal(t, 1, servers)
	assert.Zero(t, backups)
}

func TestReconcileRoleAssignmentTreatedAsStart(t *testing.T) {
	rec, hooks := newTestReconciler(t)

	rec.Reconcile(event("role_assignment", "Role assignment completed for server web02", "", ""))

	servers, _ := hooks.counts()
	assert.Equal(t, 1, servers)
}

func TestReconcileFailureRestoresAllButtons(t *testing.T) {
	rec, hooks := newTestReconciler(t)
	table := rec.Table()
	table.Upsert("web03")
	table.SetButton("web03", ButtonStop, true, "Stopping...")
	table.SetButton("web03", ButtonReboot, true, "Rebooting...")

	rec.Reconcile(event("server_stop", "Server web03 stop failed", "could not stop server web03", ""))

	row, ok := table.Row("web03")
	require.True(t, ok)
	for _, kind := range ButtonKinds {
		btn := row.Buttons[kind]
		assert.False(t, btn.Disabled, "%s enabled after failure", kind)
		assert.Equal(t, DefaultLabel(kind), btn.Label, "%s label restored", kind)
	}
	servers, _ := hooks.counts()
	assert.Equal(t, 1, servers, "failure still refreshes the server list")
}

func TestReconcileBackupMentionTriggersBackupRefresh(t *testing.T) {
	rec, hooks := newTestReconciler(t)

	rec.Reconcile(event("notification", "Server web04 start completed", "backup of server web04 is now current", ""))

	servers, backups := hooks.counts()
	assert.Equal(t, 1, servers)
	assert.Equal(t, 1, backups)
}

func TestReconcileBulkTriggersFullRefresh(t *testing.T) {
	rec, hooks := newTestReconciler(t)

	rec.Reconcile(event("role_assignment", "Bulk role assignment completed", "", ""))

	servers, _ := hooks.counts()
	assert.Equal(t, 1, servers)
}

func TestReconcileUnresolvedTakesNoAction(t *testing.T) {
	rec, hooks := newTestReconciler(t)
	rec.Table().Upsert("web05")

	rec.Reconcile(event("notification", "Operation failed", "no reference here", ""))

	assert.Equal(t, 1, rec.Table().Len())
	servers, backups := hooks.counts()
	assert.Zero(t, servers)
	assert.Zero(t, backups)
}

func TestReconcilePanickingHookDoesNotAbortOtherBranches(t *testing.T) {
	rec, hooks := newTestReconciler(t)
	hooks.panicOn = "servers"

	assert.NotPanics(t, func() {
		rec.Reconcile(event("server_start", "Server web06 start completed", "backup of server web06 refreshed", ""))
	})
	_, backups := hooks.counts()
	assert.Equal(t, 1, backups, "backup branch still ran after the servers hook panicked")
}

func TestHandleBackupCompleted(t *testing.T) {
	rec, hooks := newTestReconciler(t)
	rec.TrackBackup("web01")

	rec.HandleBackup(event("backup", "Server web01 backup completed", "", ""))

	assert.False(t, rec.BackupInProgress("web01"))
	hooks.mu.Lock()
	inProgress, tracked := hooks.backupControls["web01"]
	hooks.mu.Unlock()
	require.True(t, tracked)
	assert.False(t, inProgress, "controls re-enabled")
	servers, backups := hooks.counts()
	assert.Equal(t, 1, servers)
	assert.Equal(t, 1, backups)
}

func TestHandleBackupFailed(t *testing.T) {
	rec, hooks := newTestReconciler(t)
	rec.TrackBackup("web01")

	rec.HandleBackup(event("backup", "Server web01 backup timeout", "", ""))

	assert.False(t, rec.BackupInProgress("web01"))
	servers, backups := hooks.counts()
	assert.Equal(t, 1, servers)
	assert.Zero(t, backups, "no backup-list refresh on failure")
}

func TestHandleBackupRestoreCompleted(t *testing.T) {
	rec, hooks := newTestReconciler(t)
	rec.TrackBackup("web01")

	rec.HandleBackup(event("backup", "Server web01 backup restore completed", "", ""))

	assert.True(t, rec.BackupInProgress("web01"), "restores do not touch the in-progress set")
	servers, backups := hooks.counts()
	assert.Equal(t, 1, servers)
	assert.Equal(t, 1, backups)
}

func TestHandleBackupNonTerminal(t *testing.T) {
	rec, hooks := newTestReconciler(t)

	rec.HandleBackup(event("backup", "Server web01 backup started", "", ""))

	servers, backups := hooks.counts()
	assert.Zero(t, servers)
	assert.Zero(t, backups)
}
