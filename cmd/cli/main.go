package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dmerida/courtplan/internal/config"
	"github.com/dmerida/courtplan/pkg/core/prefparse"
	"github.com/dmerida/courtplan/pkg/core/scheduler"
	"github.com/dmerida/courtplan/pkg/utils/logging"
	"github.com/dmerida/courtplan/pkg/workbook"
)

// App holds the application dependencies
type App struct {
	cfg    *config.Options
	logger *zap.Logger
	ctx    context.Context
}

var (
	env string
	app *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "courtplan",
		Short: "courtplan - schedule multi-division round-robin tennis tournaments",
		Long: `A CLI tool that forms seeded round-robin groups per division, generates all
matches, and assigns them to court/time slots by solving a binary integer
program that honors availability, demand, and fatigue rules while maximizing
player preference satisfaction.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.logger != nil {
				app.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "prod", "Environment used to prefix run logs")

	rootCmd.AddCommand(scheduleCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up the logger and loads configuration defaults
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	app.logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting application", zap.String("environment", env))

	app.cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.logger.Debug("Configuration loaded successfully")

	return nil
}

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Build groups and matches and solve the slot assignment problem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.cfg
			applyFlagOverrides(cmd, opts)

			if err := config.Validate(opts); err != nil {
				return err
			}

			if opts.ParsePreferences {
				return runParsePreferences(opts)
			}
			return runSchedule(cmd, opts)
		},
	}

	cmd.Flags().String("input", "", "Path to the input workbook")
	cmd.Flags().Int("group-size", 0, "Maximum number of players in each group")
	cmd.Flags().String("output", "", "Path to the output workbook")
	cmd.Flags().Int("duration", 0, "Max solver runtime (in seconds)")
	cmd.Flags().Int("threads", 0, "Number of threads used by the solver")
	cmd.Flags().Int("dummy-penalty", -1, "Penalty for assigning a match to a dummy slot")
	cmd.Flags().Int("back-to-back-penalty", -1, "Penalty for assigning a match to a back-to-back slot")
	cmd.Flags().Bool("parse-preferences", false, "Only translate the raw preference sheet and exit")
	cmd.Flags().Int64("seed", 0, "Seed for the group-balancing shuffle (0 = time-based)")

	return cmd
}

// applyFlagOverrides copies explicitly set flags over the loaded config
func applyFlagOverrides(cmd *cobra.Command, opts *config.Options) {
	flags := cmd.Flags()
	if flags.Changed("input") {
		opts.Input, _ = flags.GetString("input")
	}
	if flags.Changed("group-size") {
		opts.GroupSize, _ = flags.GetInt("group-size")
	}
	if flags.Changed("output") {
		opts.Output, _ = flags.GetString("output")
	}
	if flags.Changed("duration") {
		opts.Duration, _ = flags.GetInt("duration")
	}
	if flags.Changed("threads") {
		opts.Threads, _ = flags.GetInt("threads")
	}
	if flags.Changed("dummy-penalty") {
		opts.DummyPenalty, _ = flags.GetInt("dummy-penalty")
	}
	if flags.Changed("back-to-back-penalty") {
		opts.BackToBackPenalty, _ = flags.GetInt("back-to-back-penalty")
	}
	if flags.Changed("parse-preferences") {
		opts.ParsePreferences, _ = flags.GetBool("parse-preferences")
	}
}

func runSchedule(cmd *cobra.Command, opts *config.Options) error {
	app.logger.Info("Reading input workbook", zap.String("path", opts.Input))
	tournament, err := workbook.Load(opts.Input, false)
	if err != nil {
		return err
	}
	app.logger.Info("Built input")

	seed, _ := cmd.Flags().GetInt64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	app.logger.Debug("Initialized random source", zap.Int64("seed", seed))

	result, err := scheduler.Schedule(app.ctx, tournament, scheduler.Options{
		GroupSize:         opts.GroupSize,
		TimeLimit:         time.Duration(opts.Duration) * time.Second,
		Threads:           opts.Threads,
		DummyPenalty:      opts.DummyPenalty,
		BackToBackPenalty: opts.BackToBackPenalty,
	}, rng, app.logger)
	if err != nil {
		return err
	}

	app.logger.Info("Writing output workbook", zap.String("path", opts.Output))
	if err := workbook.Write(opts.Output, result, tournament); err != nil {
		return err
	}

	fmt.Printf("\n✓ Schedule written to %s\n\n", opts.Output)
	fmt.Printf("Groups:      %d\n", len(result.Groups))
	fmt.Printf("Assignments: %d\n", len(result.Assignments))
	fmt.Printf("Status:      %s\n\n", result.Statistics.Status)

	stats, err := json.MarshalIndent(result.Statistics, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render statistics: %w", err)
	}
	fmt.Println(string(stats))

	return nil
}

func runParsePreferences(opts *config.Options) error {
	app.logger.Info("Processing raw preferences", zap.String("path", opts.Input))
	tournament, err := workbook.Load(opts.Input, true)
	if err != nil {
		return err
	}

	preferences, err := prefparse.Parse(tournament.RawPreferences, opts.Translation)
	if err != nil {
		return err
	}
	app.logger.Info("Processed preferences", zap.Int("count", len(preferences)))

	if err := workbook.WriteParsedPreferences(opts.Output, preferences); err != nil {
		return err
	}

	fmt.Printf("\n✓ Parsed %d preferences into %s\n", len(preferences), opts.Output)
	return nil
}
