package cmd

import (
	"github.com/spf13/cobra"
	configx "github.com/tanpawarit/chative-coordinator/pkg/config"
	logx "github.com/tanpawarit/chative-coordinator/pkg/logger"
)

type rootOptions struct {
	envFile string
	debug   bool
	pretty  bool
}

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "chative",
		Short: "Multi-agent coordinator with adaptive memory reuse",
		Long: "chative plans each query, recalls related memories, runs the research and analysis workers " +
			"(skipping research when memory already answers it) and stores every interaction for later reuse.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configx.SetEnvFile(opts.envFile)
			return initLogging(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.envFile, "env", "", "Path to a .env file (default: ./.env when present)")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flags.BoolVar(&opts.pretty, "pretty", false, "Human readable log output")

	rootCmd.AddCommand(
		newVersionCmd(),
		newAskCmd(),
		newMemoryCmd(),
		newServeCmd(),
		newMCPCmd(),
	)

	return rootCmd
}

// initLogging merges LOG_* settings with the flags; flags only ever raise
// verbosity or switch on the console writer.
func initLogging(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := configx.New[logx.Config]("LOG")
	if err != nil {
		return err
	}
	cfg.Debug = cfg.Debug || opts.debug
	cfg.PrettyFormat = cfg.PrettyFormat || opts.pretty
	logx.InitWithWriter(cmd.ErrOrStderr(), *cfg)
	return nil
}
