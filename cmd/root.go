package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	cfgFile string
	verbose bool
	caseID  string
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "hostmedic",
	Short: "Endpoint incident-response toolkit: find, fix and undo persistence",
	Long: `hostmedic inspects a Windows host's autostart surface, sweeps
user-writable locations for dropped artifacts, and stages reversible
remediations (quarantine, service disable, registry backup-and-delete)
with a per-case journal that makes every action undoable.

Get started:
  hostmedic case create   Open a new investigation case
  hostmedic doctor        Verify tools and system access
  hostmedic scan          Scan autostart persistence locations
  hostmedic sweep         Sweep for recently dropped artifacts
  hostmedic ui            Launch the terminal UI`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ~/.hostmedic/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable verbose/debug output")
	rootCmd.PersistentFlags().StringVar(&caseID, "case", "",
		"case id to operate in (defaults to the most recent open case)")

	rootCmd.Version = Version
	rootCmd.AddCommand(
		caseCmd,
		scanCmd,
		sweepCmd,
		focusCmd,
		queueCmd,
		runCmd,
		undoCmd,
		hardenCmd,
		watchCmd,
		uiCmd,
		configCmd,
		doctorCmd,
	)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		slog.Debug("Verbose logging enabled")
	}
}
