package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"blog-api/config"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "blogd",
		Short:         "Blog API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Version = version
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (.toml, .yaml); defaults to $"+config.ConfigPathEnvKey)
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
	)
	return cmd
}

// setup loads the config and installs the default logger.
func (o *rootOptions) setup() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	warning, err := configureLoggerForCLI(o.logLevel, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if warning != "" {
		fmt.Fprintln(os.Stderr, warning)
	}
	return cfg, nil
}
