package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roost-io/roost/pkg/api"
	"github.com/roost-io/roost/pkg/config"
	"github.com/roost-io/roost/pkg/health"
	"github.com/roost-io/roost/pkg/heartbeat"
	"github.com/roost-io/roost/pkg/log"
	"github.com/roost-io/roost/pkg/manager"
	"github.com/roost-io/roost/pkg/metrics"
	"github.com/roost-io/roost/pkg/reconciler"
	"github.com/roost-io/roost/pkg/storage"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the roost control plane",
	Long: `Run the roost control plane: the HTTP API, the failure detector,
the rescheduler, and optionally the heartbeat simulator, over the
configured state store.

Examples:
  # Run with defaults (bolt store in ./roost-data)
  roost server

  # Run from a config file with a clean slate
  roost server --config roost.yaml --reset

  # Single-process demo: in-memory store, synthetic heartbeats
  roost server --store memory --simulate-heartbeats`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().String("config", "", "Path to a YAML config file")
	serverCmd.Flags().String("listen", "", "Listen address (overrides config)")
	serverCmd.Flags().String("store", "", "Store backend: bolt, memory, or redis (overrides config)")
	serverCmd.Flags().String("data-dir", "", "Data directory for the bolt store (overrides config)")
	serverCmd.Flags().Bool("reset", false, "Drop and recreate all state on boot")
	serverCmd.Flags().Bool("simulate-heartbeats", false, "Refresh every node's heartbeat periodically")

	rootCmd.AddCommand(serverCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyServerFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Init(log.Config{
		Level:      log.Level(cfg.LogLevel),
		JSONOutput: cfg.LogJSON,
	})
	metrics.SetVersion(Version)

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	metrics.RegisterComponent("store", true, "")

	mgr, err := manager.NewManager(&manager.Config{
		DefaultNodeCPU: cfg.DefaultNodeCPU,
		LivenessWindow: cfg.LivenessWindow(),
		ResetOnBoot:    cfg.ResetOnBoot,
	}, store, nil)
	if err != nil {
		return fmt.Errorf("failed to create manager: %w", err)
	}

	fmt.Println("Starting roost control plane...")
	fmt.Printf("  Listen Address: %s\n", cfg.ListenAddr)
	fmt.Printf("  Store Backend: %s\n", cfg.StoreBackend)
	fmt.Printf("  Liveness Window: %s\n", cfg.LivenessWindow())
	fmt.Println()

	detector := health.NewDetector(mgr, nil, cfg.DetectorInterval())
	detector.Start()
	fmt.Println("✓ Failure detector started")

	rescheduler := reconciler.NewRescheduler(mgr, nil, cfg.RescheduleInterval())
	rescheduler.Start()
	fmt.Println("✓ Rescheduler started")

	var simulator *heartbeat.Simulator
	if cfg.SimulateHeartbeats {
		simulator = heartbeat.NewSimulator(mgr, nil, cfg.HeartbeatInterval())
		simulator.Start()
		fmt.Println("✓ Heartbeat simulator started")
	}

	collector := manager.NewMetricsCollector(mgr)
	collector.Start()

	// Start API server in background
	apiServer := api.NewServer(mgr)
	errCh := make(chan error, 1)
	go func() {
		if err := apiServer.Start(cfg.ListenAddr); err != nil {
			errCh <- fmt.Errorf("API server error: %w", err)
		}
	}()

	fmt.Println()
	fmt.Println("Control plane is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal or API server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		fmt.Println("\nShutting down...")
	case err := <-errCh:
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
	}

	// Shutdown
	detector.Stop()
	rescheduler.Stop()
	if simulator != nil {
		simulator.Stop()
	}
	collector.Stop()
	apiServer.Stop()
	if err := mgr.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown: %w", err)
	}

	fmt.Println("✓ Shutdown complete")
	return nil
}

// applyServerFlags lets explicit flags win over the config file and
// environment.
func applyServerFlags(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetString("listen"); v != "" {
		cfg.ListenAddr = v
	}
	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.StoreBackend = v
	}
	if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
		cfg.DataDir = v
	}
	if cmd.Flags().Changed("reset") {
		cfg.ResetOnBoot, _ = cmd.Flags().GetBool("reset")
	}
	if cmd.Flags().Changed("simulate-heartbeats") {
		cfg.SimulateHeartbeats, _ = cmd.Flags().GetBool("simulate-heartbeats")
	}
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return storage.NewMemoryStore(), nil
	case config.BackendRedis:
		return storage.NewRedisStore(cfg.RedisURI)
	default:
		return storage.NewBoltStore(cfg.DataDir)
	}
}
