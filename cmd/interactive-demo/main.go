// Command interactive-demo connects a GameClient to one Interactive host,
// logs a selection of the events it publishes, and announces ready(true) so
// participant input starts flowing. It exists to exercise the root package
// from outside its own test suite, not as a production integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"codeberg.org/algopatterns/gameinteractive"
	"codeberg.org/algopatterns/gameinteractive/internal/logger"
)

var (
	token            string
	hostURL          string
	projectVersionID uint32
	clientID         string
)

func main() {
	root := &cobra.Command{
		Use:   "interactive-demo",
		Short: "Connect to an Interactive host and log events from it",
		RunE:  run,
	}

	flags := root.Flags()
	flags.StringVar(&token, "token", os.Getenv("INTERACTIVE_TOKEN"), "bearer token for the integration")
	flags.StringVar(&hostURL, "host-url", "", "skip discovery and dial this WebSocket URL directly")
	flags.Uint32Var(&projectVersionID, "project-version-id", 0, "the integration's project version ID")
	flags.StringVar(&clientID, "client-id", "", "stable client identifier for this run (defaults to a generated one)")

	if err := root.Execute(); err != nil {
		logger.Fatal("interactive-demo exited with error", "error", err)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := gameinteractive.LoadEnvironmentVariables()
	if err != nil {
		return err
	}
	if hostURL != "" {
		cfg.HostURL = hostURL
	}

	if clientID == "" {
		clientID = "interactive-demo-" + uuid.NewString()
	}
	if token == "" {
		logger.Fatal("a --token (or INTERACTIVE_TOKEN) is required")
	}

	client := gameinteractive.New(projectVersionID, clientID, cfg)
	subscribeDemoLogging(client.EventBus())

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ConnectTimeout)
	defer cancel()

	logger.Info("connecting", "client_id", clientID, "host_url", cfg.HostURL)
	if err := client.Connect(ctx, token, cfg.HostURL); err != nil {
		return err
	}

	if err := client.Ready(context.Background(), true); err != nil {
		logger.Error("ready(true) failed", "error", err)
	}

	logger.Info("connected, waiting for events (ctrl-c to stop)")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return client.Disconnect(shutdownCtx)
}

// subscribeDemoLogging logs connection established/closed/error, ready,
// participant join/leave, scene create/delete, control create, mouse-down
// and key-down input, and memory warnings. Participant updates, group
// events, scene updates, control delete/update, and the other input
// events are not logged.
func subscribeDemoLogging(bus *gameinteractive.Bus) {
	gameinteractive.Subscribe(bus, func(e gameinteractive.ConnectionEstablishedEvent) {
		logger.Info("connection established")
	})
	gameinteractive.Subscribe(bus, func(e gameinteractive.ConnectionClosedEvent) {
		logger.Warn("connection closed", "code", e.Code, "reason", e.Reason, "remote", e.Remote)
	})
	gameinteractive.Subscribe(bus, func(e gameinteractive.ConnectionErrorEvent) {
		logger.Error("connection error", "error", e.Err)
	})
	gameinteractive.Subscribe(bus, func(e gameinteractive.ReadyEvent) {
		logger.Info("server acknowledged readiness", "is_ready", e.IsReady)
	})
	gameinteractive.Subscribe(bus, func(e gameinteractive.ParticipantJoinEvent) {
		logger.Info("participants joined", "count", len(e.Participants))
	})
	gameinteractive.Subscribe(bus, func(e gameinteractive.ParticipantLeaveEvent) {
		logger.Info("participants left", "count", len(e.Participants))
	})
	gameinteractive.Subscribe(bus, func(e gameinteractive.SceneCreateEvent) {
		logger.Info("scenes created", "count", len(e.Scenes))
	})
	gameinteractive.Subscribe(bus, func(e gameinteractive.SceneDeleteEvent) {
		logger.Info("scenes deleted", "count", len(e.Scenes))
	})
	gameinteractive.Subscribe(bus, func(e gameinteractive.ControlCreateEvent) {
		logger.Info("controls created", "count", len(e.Controls))
	})
	gameinteractive.Subscribe(bus, func(e gameinteractive.ControlMouseDownInputEvent) {
		logger.Info("mousedown", "control_id", e.Input.ControlID, "participant_id", e.Input.ParticipantID)
	})
	gameinteractive.Subscribe(bus, func(e gameinteractive.ControlKeyDownInputEvent) {
		logger.Info("keydown", "control_id", e.Input.ControlID, "key", e.Input.Key)
	})
	gameinteractive.Subscribe(bus, func(e gameinteractive.MemoryWarningEvent) {
		logger.Warn("server issued a memory warning")
	})
}
