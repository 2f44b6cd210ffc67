// Package cmd provides the CLI commands for lantern.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/keystroke-labs/lantern/internal/logging"
	"github.com/keystroke-labs/lantern/internal/profiling"
	"github.com/keystroke-labs/lantern/pkg/version"
)

var (
	configPath string

	debugMode      bool
	loggingCleanup func()

	profileCPU string
	profileMem string
	cpuCleanup func()
)

// NewRootCmd creates the root command for the lantern CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lantern",
		Short: "Incrementally indexed command launcher backend",
		Long: `Lantern keeps a local search index over configured item sources
(directories, executables on PATH) and completes partial input against
it, learning from the choices you make.

Run 'lantern serve' for the interactive shell, or 'lantern query' for a
one-shot completion.`,
		Version: version.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.SetVersionTemplate("lantern version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: user config)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.lantern/logs/")
	cmd.PersistentFlags().StringVar(&profileCPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&profileMem, "profile-mem", "", "Write memory profile to file")

	cmd.PersistentPreRunE = startDiagnostics
	cmd.PersistentPostRunE = stopDiagnostics

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newQueryCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startDiagnostics enables debug logging and profiling when the
// matching flags are set.
func startDiagnostics(_ *cobra.Command, _ []string) error {
	if debugMode {
		logger, cleanup, err := logging.Setup(logging.DebugConfig())
		if err != nil {
			return fmt.Errorf("setup debug logging: %w", err)
		}
		loggingCleanup = cleanup
		slog.SetDefault(logger)
		slog.Info("debug_logging_enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Short()))
	}

	if profileCPU != "" {
		stop, err := profiling.StartCPU(profileCPU)
		if err != nil {
			return err
		}
		cpuCleanup = stop
	}
	return nil
}

func stopDiagnostics(_ *cobra.Command, _ []string) error {
	if cpuCleanup != nil {
		cpuCleanup()
		cpuCleanup = nil
	}
	if profileMem != "" {
		if err := profiling.WriteHeap(profileMem); err != nil {
			return err
		}
	}
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
