// Package actions implements user-initiated commands: optimistic local
// mutation first, server confirmation second, compensating notification on
// failure.
package actions

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"console-sync/internal/notify"
)

// Confirmer models the async yes/no dialog backing destructive commands.
// Confirm resolves true on explicit confirmation and false on any
// dismissal.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// AutoConfirm answers yes without asking. Used in headless runs.
type AutoConfirm struct{}

func (AutoConfirm) Confirm(context.Context, string) (bool, error) { return true, nil }

// TermConfirm prompts on a terminal. Anything other than y/yes dismisses.
type TermConfirm struct {
	In  io.Reader
	Out io.Writer
}

func (c TermConfirm) Confirm(ctx context.Context, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(c.Out, "%s [y/N]: ", message)
	line, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// ClearAPI is the server side of the clear-all command.
type ClearAPI interface {
	ClearAll(ctx context.Context) error
}

// Handler executes user-initiated notification commands against the store
// and the server.
type Handler struct {
	store   *notify.Store
	api     ClearAPI
	confirm Confirmer
	log     *slog.Logger
}

// NewHandler wires a Handler. A nil confirmer auto-confirms.
func NewHandler(store *notify.Store, api ClearAPI, confirm Confirmer) *Handler {
	if confirm == nil {
		confirm = AutoConfirm{}
	}
	return &Handler{
		store:   store,
		api:     api,
		confirm: confirm,
		log:     slog.Default().With("component", "Actions"),
	}
}

// ClearAll empties the local store immediately after confirmation, then
// asks the server to do the same. A server-side failure is itself
// newsworthy: it appears as a fresh error notification in the list the user
// just cleared.
func (h *Handler) ClearAll(ctx context.Context) error {
	ok, err := h.confirm.Confirm(ctx, "Delete all notifications?")
	if err != nil {
		return fmt.Errorf("confirm clear-all: %w", err)
	}
	if !ok {
		h.log.Debug("clear-all dismissed")
		return nil
	}

	h.store.Clear()

	if err := h.api.ClearAll(ctx); err != nil {
		h.log.Error("clear-all request failed", "error", err)
		h.store.Add(notify.SeverityError, "Failed to clear notifications", err.Error(), "", "")
		return err
	}
	h.log.Info("all notifications cleared")
	return nil
}
