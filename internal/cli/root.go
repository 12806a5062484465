// Package cli wires configuration, storage and the ranking service into the
// onetask command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/onetask/internal/model"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	dbPath     string
}

// loadConfig reads the config file and applies flag overrides.
func (o *rootOptions) loadConfig() (*model.AppConfig, error) {
	cfg, err := model.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		cfg.Storage.DBPath = o.dbPath
	}
	return cfg, nil
}

func newRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "onetask",
		Short: "One task at a time",
		Long: `onetask keeps an ordered list of tasks and shows you only the one you
should be doing now. Running it without a subcommand opens the interactive UI.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", model.DefaultConfigPath(), "path to the config file")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "path to the task database (overrides storage.db_path)")

	cmd.AddCommand(
		newAddCmd(opts),
		newListCmd(opts),
		newDoneCmd(opts),
		newMoveCmd(opts),
		newLinkCmd(opts),
		newPrioritizeCmd(opts),
		newSuggestCmd(opts),
		newStreakCmd(opts),
		newConfigCmd(opts),
		newTokenCmd(),
	)

	return cmd
}

// Execute runs the root command.
func Execute(version string) error {
	if err := newRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
