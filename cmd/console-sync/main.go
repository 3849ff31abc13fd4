package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"console-sync/internal/actions"
	"console-sync/internal/config"
	"console-sync/internal/session"
	"console-sync/internal/ui"
)

// version is set at build time via -ldflags "-X main.version=v1.0.0"
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "console-sync",
		Short: "Notification and UI-synchronization client for the infrastructure console",
		Long: `console-sync follows the console's push-event stream and keeps a bounded
notification log, a dropdown/badge summary, and the server-row control state
consistent with the operations reported by the server. The stream reconnects
on its own after transport errors.`,
		Version: version,
		RunE:    run,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("endpoint", "", "Base URL of the management console (required)")
	flags.String("stream-path", "/notifications/stream", "Path of the push-stream endpoint")
	flags.Duration("reconnect-delay", 3*time.Second, "Wait before reconnecting after a transport error")
	flags.Duration("restart-delay", time.Second, "Wait before reconnecting on manual restart")
	flags.Duration("settle-delay", time.Second, "Wait between row removal and list refresh")
	flags.Int("capacity", 10, "Maximum notifications kept in the dropdown")
	flags.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	cobra.CheckErr(viper.BindPFlags(flags))

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all notifications, locally and on the server",
		RunE:  runClear,
	}
	clearCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	cobra.CheckErr(viper.BindPFlag("yes", clearCmd.Flags().Lookup("yes")))
	rootCmd.AddCommand(clearCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	slog.Info("Starting console-sync", "component", "Main", "version", version)
	slog.Info("Console endpoint", "component", "Main", "endpoint", cfg.Endpoint, "stream", cfg.StreamURL())

	sess := session.New(cfg,
		ui.NewTermView(os.Stdout),
		logHooks{},
		actions.TermConfirm{In: os.Stdin, Out: os.Stdout},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess.Init(ctx)
	defer sess.Teardown()

	// SIGHUP forces a close-then-reconnect cycle, for operator-triggered
	// recovery of a wedged stream.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	for {
		select {
		case <-hup:
			slog.Info("Restart requested", "component", "Main")
			sess.Stream.Restart()
		case <-ctx.Done():
			slog.Info("Shutting down gracefully", "component", "Main")
			return nil
		}
	}
}

func runClear(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	var confirm actions.Confirmer = actions.TermConfirm{In: os.Stdin, Out: os.Stdout}
	if viper.GetBool("yes") {
		confirm = actions.AutoConfirm{}
	}

	sess := session.New(cfg, ui.NewTermView(os.Stdout), nil, confirm)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return sess.Actions.ClearAll(ctx)
}

// logHooks stands in for the console views in a headless run: every
// refresh trigger becomes a log line.
type logHooks struct{}

func (logHooks) RefreshServers() {
	slog.Info("Server list refresh triggered", "component", "Hooks")
}

func (logHooks) RefreshBackups() {
	slog.Info("Backup list refresh triggered", "component", "Hooks")
}

func (logHooks) SetBackupControls(server string, inProgress bool) {
	slog.Info("Backup controls updated", "component", "Hooks", "server", server, "in_progress", inProgress)
}

// parseLogLevel converts a string log level to slog.Level
func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
