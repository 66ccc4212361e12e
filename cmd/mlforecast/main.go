package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rahul/mlforecast/internal/forecast"
	"github.com/rahul/mlforecast/internal/observability"
	"github.com/rahul/mlforecast/internal/sequencer"
	"github.com/rahul/mlforecast/pkg/config"
)

// app carries what every command needs once flags are parsed.
type app struct {
	configPath string
	seed       int64
	verbose    bool

	cfg    *config.Config
	logger *observability.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "mlforecast",
		Short: "ML Forecast - Platinum List Death Date Prediction",
		Long: `ML Forecast runs an advanced neural network analysis predicting the exact
date of platinum list termination.

There is no neural network. Each run walks through a fixed list of processing
steps and then reveals a random date, confidence level, cause of death and
set of contributing factors.

Run without arguments to start the interactive page.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInteractive(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "config.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().Int64Var(&a.seed, "seed", 0, "random seed for reproducible predictions (0 = random)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log every step event")

	rootCmd.AddCommand(newRunCmd(a), newPredictCmd(a), newNetworkCmd(a))
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		cfg.Random.Seed = a.seed
	}
	a.cfg = cfg

	logger, err := observability.NewLogger(observability.LoggerConfig{
		Enabled: cfg.Logging.Enabled,
		Path:    cfg.Logging.Path,
		MaxSize: cfg.MaxLogBytes(),
		Verbose: a.verbose,
	})
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func (a *app) generator() *forecast.Generator {
	return forecast.NewGenerator(forecast.NewSeededSource(a.cfg.Random.Seed))
}

func (a *app) newSequencer(observer func(sequencer.State)) *sequencer.Sequencer {
	// Durations were validated by config.LoadConfig.
	tick, completion, _ := a.cfg.Durations()
	return sequencer.New(a.generator(),
		sequencer.WithTickInterval(tick),
		sequencer.WithCompletionDelay(completion),
		sequencer.WithObserver(observer),
		sequencer.WithLogger(a.logger),
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
