// Package cli implements the mailpane command line interface.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mailpane/mailpane/internal/config"
	"github.com/mailpane/mailpane/internal/logging"
)

// Execute runs the root command.
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

func newRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mailpane",
		Short:         "Live unread-messages widget over an upstream mailbox",
		Long:          "mailpane mirrors an upstream mailbox's unread messages into a live HTML fragment and a terminal view, kept fresh by server push with a polling fallback.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	cmd.PersistentFlags().String("config", "", "config file (default is $HOME/.config/mailpane/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "override logging level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "", "override logging format (json, console)")

	cmd.AddCommand(
		newServeCmd(),
		newWatchCmd(),
		newStubCmd(),
		newVersionCmd(version),
	)

	return cmd
}

// loadConfig resolves configuration for a command run: file and env via
// the loader, then flag overrides, then logger initialization.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	loader := config.NewLoader()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loader.SetConfigFile(path)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		cfg.Logging.Format = format
	}

	logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		Output:       os.Stderr,
		EnableCaller: cfg.Logging.EnableCaller,
	})
	return cfg, nil
}
