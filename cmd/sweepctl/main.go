package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/calligo/sweepctl/pkg/config"
	"github.com/calligo/sweepctl/pkg/errdefs"
	"github.com/calligo/sweepctl/pkg/log"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var (
	flagRoot     string
	flagLogLevel string
	flagLogJSON  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(errdefs.ExitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "sweepctl",
	Short: "sweepctl - package, test, and sweep experiments on remote clusters",
	Long: `sweepctl packages a research project, verifies it inside a container,
and expands parameter grids into batch scheduler jobs that run locally
or on a configured remote cluster.

All state lives in plain YAML records under the workspace root, so a
project directory can be synced to a cluster and driven there by the
same binary.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Init(log.Config{
			Level:      log.Level(flagLogLevel),
			JSONOutput: flagLogJSON,
		})
		log.Logger = log.Logger.With().Str("run_id", uuid.NewString()).Logger()
	},
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"sweepctl version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", config.DefaultRoot, "Workspace root directory")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", string(log.InfoLevel), "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "Emit logs as JSON")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(remoteCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(submitCmd)
}

func newStore() *config.Store {
	return config.NewStore(flagRoot)
}
