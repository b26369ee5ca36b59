// Package commands defines all Cobra CLI commands for the hrai binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/54b3r/hrai-go/internal/audit"
	"github.com/54b3r/hrai-go/internal/config"
	"github.com/54b3r/hrai-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hrai",
		Short: "HRAI: hybrid candidate search and ranking",
		Long: `HRAI searches a pool of job candidates.

A free-text query runs a semantic search against the candidate vector index;
an empty query browses the candidate directory. Either way results are
hydrated from the relational store and re-ranked with academic and
experience bonuses.

Configuration comes from environment variables or a YAML config file
(~/.hrai/config.yaml). Environment variables always win.
See 'hrai --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.Load(configPath, logging.New())
			if err != nil {
				return err
			}

			// Rebuild so LOG_LEVEL / LOG_FORMAT from the YAML file apply.
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)
			cmd.SetContext(ctx)

			audit.LogCommandStart(ctx, log, cmd.Name(), path)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.hrai/config.yaml)")

	root.AddCommand(
		NewServeCmd(),
		NewSearchCmd(),
		NewSitesCmd(),
		NewCVCmd(),
		NewVersionCmd(),
	)

	return root
}
