// Package session owns the page-lifetime state of the sync layer and wires
// the components together: one store, one stream connection, one
// reconciler. Handlers get their collaborators injected from here instead
// of reaching for ambient globals.
package session

import (
	"context"
	"log/slog"

	"console-sync/internal/actions"
	"console-sync/internal/api"
	"console-sync/internal/config"
	"console-sync/internal/notify"
	"console-sync/internal/stream"
	"console-sync/internal/ui"
)

// Session is the owned context object for one run of the sync layer.
type Session struct {
	cfg *config.Config
	log *slog.Logger

	Store      *notify.Store
	API        *api.Client
	Reconciler *ui.Reconciler
	Stream     *stream.Client
	Actions    *actions.Handler
}

// New builds a fully wired Session. view, hooks, and confirm may be nil;
// the no-op implementations take their place.
func New(cfg *config.Config, view ui.View, hooks ui.Hooks, confirm actions.Confirmer) *Session {
	store := notify.NewStore(cfg.StoreCapacity)
	apiClient := api.New(cfg.Endpoint)

	rec := ui.NewReconciler(store, ui.NewTable(), view, hooks,
		ui.WithSettleDelay(cfg.SettleDelay))

	// Every store mutation re-renders the dropdown, so the visible list
	// cannot drift from the stored one.
	store.SetOnChange(rec.ForceRender)

	streamClient := stream.New(stream.Config{
		URL:            cfg.StreamURL(),
		ReconnectDelay: cfg.ReconnectDelay,
		RestartDelay:   cfg.RestartDelay,
	}, store, rec)

	return &Session{
		cfg:        cfg,
		log:        slog.Default().With("component", "Session"),
		Store:      store,
		API:        apiClient,
		Reconciler: rec,
		Stream:     streamClient,
		Actions:    actions.NewHandler(store, apiClient, confirm),
	}
}

// Init loads the initial notification list (best effort) and starts the
// push stream.
func (s *Session) Init(ctx context.Context) {
	if err := s.LoadInitial(ctx); err != nil {
		s.log.Warn("initial notification load failed", "error", err)
	}
	s.Stream.Start()
}

// LoadInitial replaces the store contents with the server-side list.
func (s *Session) LoadInitial(ctx context.Context) error {
	records, err := s.API.ListNotifications(ctx)
	if err != nil {
		return err
	}
	s.Store.Reset(records)
	s.log.Info("initial notifications loaded", "count", len(records))
	return nil
}

// Teardown stops the push stream. The session must not be reused after.
func (s *Session) Teardown() {
	s.Stream.Stop()
}
