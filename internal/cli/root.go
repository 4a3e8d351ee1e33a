// Package cli implements the logbot command line.
package cli

import (
	"fmt"
	"os"

	"github.com/logbot/logbot/internal/config"
	"github.com/logbot/logbot/internal/logging"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
	logLevel   string
	pretty     bool
}

// NewRootCmd builds the logbot command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "logbot",
		Short: "Ask questions about VPC, access and execution logs",
		Long: `logbot answers natural-language questions about three log tables
(vpc_logs, access_logs, execution_logs) by translating them to SQL, running
the query, summarizing the result and picking charts for it.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", os.Getenv(config.EnvPrefix+"_CONFIG"), "config file (json, yaml or toml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "human-readable console logs")

	root.AddCommand(
		newServeCmd(opts),
		newAskCmd(opts),
		newMigrateCmd(opts),
		newImportCmd(opts),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// load reads the config, validating it when full is set, and configures
// logging from it.
func (o *rootOptions) load(full bool) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if full {
		cfg, err = config.LoadFile(o.configFile)
	} else {
		cfg, err = config.Read(o.configFile)
	}
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.pretty {
		cfg.LogPretty = true
	}
	if err := logging.Init(cfg.LogLevel, cfg.LogPretty); err != nil {
		return nil, err
	}
	return cfg, nil
}
