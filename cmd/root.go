package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/awxmon/awxmon/internal/api"
	"github.com/awxmon/awxmon/internal/config"
	"github.com/awxmon/awxmon/internal/telemetry"
	"github.com/awxmon/awxmon/internal/version"
)

var cfgFile string

// cfg is populated by PersistentPreRun before any command runs.
var cfg *config.Config

// skipTelemetry lists commands that handle their own telemetry or shouldn't be tracked
var skipTelemetry = map[string]bool{
	"mcp":        true, // runs for the whole agent session
	"tui":        true, // has own telemetry
	"completion": true, // shell completion
	"__complete": true, // internal completion
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "awxmon",
	Short: "Live job monitor for AWX and Ansible Automation Platform",
	Long: `Watch automation controller jobs from the terminal.

awxmon keeps a live view of the job list over the controller's websocket,
streams job output as it is produced, and records status transitions to a
local database for later inspection.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.SlogLevel(),
		})))

		name := cmd.Name()
		if skipTelemetry[name] {
			return nil
		}
		if parent := cmd.Parent(); parent != nil && parent.Name() == "completion" {
			return nil
		}
		telemetry.CLICommandStart(name)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		telemetry.CLICommandEnd()
	},
}

// newClient builds an API client from the loaded configuration.
func newClient() (*api.Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("no host configured: run 'awxmon login' or set AWXMON_HOST")
	}
	return api.New(cfg.Host, cfg.TokenProvider(), cfg.Insecure)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	telemetry.Init()
	defer telemetry.Flush()

	err := RootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.Version = version.Version

	// Don't show usage on errors - only show it when explicitly requested
	RootCmd.SilenceUsage = true

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/awxmon/config.toml)")
}
