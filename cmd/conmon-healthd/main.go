package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/samifruit514/conmon/pkg/health"
	"github.com/samifruit514/conmon/pkg/log"
	"github.com/samifruit514/conmon/pkg/metrics"
	"github.com/samifruit514/conmon/pkg/monitor"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "conmon-healthd",
	Short:   "OCI container healthcheck engine",
	Long:    `conmon-healthd discovers a container's OCI healthcheck annotation, runs its probe on a schedule, and reports status transitions over a sync channel.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"conmon-healthd version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("bundle", "", "OCI bundle directory containing config.json")
	runCmd.Flags().String("container-id", "", "container id (defaults to a generated id)")
	runCmd.Flags().String("runtime", "/usr/bin/runc", "container runtime binary used to exec probes")
	runCmd.Flags().String("log-level", "info", "log level: debug, info, warn, error")
	runCmd.Flags().Bool("json-log", false, "emit logs as JSON")
	runCmd.Flags().String("status-out", "", "file to append framed status updates to (defaults to stdout)")
	runCmd.Flags().String("metrics-addr", "", "address to serve /metrics on, e.g. 127.0.0.1:9090 (disabled if empty)")
	runCmd.MarkFlagRequired("bundle")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Discover and supervise a single container's healthcheck",
	RunE:  runHealthd,
}

func runHealthd(cmd *cobra.Command, args []string) error {
	bundle, _ := cmd.Flags().GetString("bundle")
	containerID, _ := cmd.Flags().GetString("container-id")
	runtimePath, _ := cmd.Flags().GetString("runtime")
	logLevel, _ := cmd.Flags().GetString("log-level")
	jsonLog, _ := cmd.Flags().GetBool("json-log")
	statusOut, _ := cmd.Flags().GetString("status-out")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	log.Init(log.Config{Level: log.Level(logLevel), JSONOutput: jsonLog, Output: os.Stderr})

	if containerID == "" {
		containerID = uuid.NewString()
	}

	cfg, err := health.DiscoverFromBundle(bundle)
	if err != nil {
		if errors.Is(err, health.ErrDiscoveryMissing) {
			log.WithContainerID(containerID).Info().Msg("no healthcheck declared, nothing to supervise")
			return nil
		}
		return fmt.Errorf("failed to discover healthcheck config: %w", err)
	}

	out, err := openStatusOut(statusOut)
	if err != nil {
		return fmt.Errorf("failed to open status output: %w", err)
	}
	defer out.Close()

	mon := monitor.New(newFileFrameWriter(out), runtimePath)
	mon.Start()

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/health", metrics.HealthHandler())
		mux.Handle("/ready", metrics.ReadyHandler())
		mux.Handle("/live", metrics.LivenessHandler())
		go func() {
			if err := http.ListenAndServe(metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("metrics server exited: %v", err)
			}
		}()
	}

	if err := mon.StartContainer(containerID, cfg); err != nil {
		return fmt.Errorf("failed to start healthcheck supervision: %w", err)
	}

	log.WithContainerID(containerID).Info().
		Str("runtime", runtimePath).
		Int("interval_s", cfg.IntervalS).
		Msg("healthcheck supervision started, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	mon.Teardown()
	log.Info("shutdown complete")
	return nil
}

func openStatusOut(path string) (statusOutCloser, error) {
	if path == "" {
		return stdoutCloser{}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// statusOutCloser is the minimal io.WriteCloser surface runHealthd needs;
// a defined interface lets stdout (which must not be closed) and a real
// file share one code path.
type statusOutCloser interface {
	Write(p []byte) (int, error)
	Close() error
}

type stdoutCloser struct{}

func (stdoutCloser) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdoutCloser) Close() error                 { return nil }
