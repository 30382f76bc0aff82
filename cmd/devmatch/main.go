package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alimgiray/devmatch/internal/services"
	"github.com/alimgiray/devmatch/pkg/config"
	"github.com/alimgiray/devmatch/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version = "dev"

	verbose bool
	cfg     *config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "devmatch",
	Short: "Find developer identities that belong to the same person",
	Long: `devmatch collects author and committer identities from git history and
reports pairs of (name, email) identities that likely belong to one developer,
using the Bird et al. name and email heuristic.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Reports may go to stdout, so logs go to stderr
		logger.Init()
		logger.SetOutput(os.Stderr)
		if verbose {
			logger.SetLevel("debug")
		}

		if err := config.Load(); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = config.AppConfig
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(runCmd)
}

func newMatchService() *services.MatchService {
	return services.NewMatchService(
		services.NewNormalizerService(),
		services.NewTextSimilarityService(),
		services.NewCommonPrefixSet(cfg.Match.CommonPrefixes...),
		cfg.Match.Workers,
	)
}

// thresholdFlag returns the --threshold value when given, else the configured one
func thresholdFlag(cmd *cobra.Command, value float64) float64 {
	if cmd.Flags().Changed("threshold") {
		return value
	}
	return cfg.Match.Threshold
}

// createOutput opens path for writing; "-" selects stdout
func createOutput(path string) (*os.File, func() error, error) {
	if path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
