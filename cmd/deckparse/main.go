package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shpitdev/deckschema/internal/app"
	"github.com/shpitdev/deckschema/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfigFromEnv()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config error: %s\n", err)
		os.Exit(2)
	}
	root := newRootCmd(&cfg)
	if err := root.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%s: %s\n", root.Name(), err)
		os.Exit(1)
	}
}

func newRootCmd(cfg *app.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "deckparse",
		Short: "Parse reservoir simulation decks against keyword schemas",
		Long: `deckparse loads keyword definitions (JSON or YAML) and parses simulation decks with them.

Environment:
  DECK_SCHEMA_DIR  Directory of keyword definitions (default: built-in)
  WORKERS          Concurrent workers (default: 10)
  RATE_LIMIT_RPS   Global rate limit, 0 disables
  FAIL_FAST        Stop at the first keyword or deck that fails
  LENIENT_REGEX    Ignore malformed deck_name_regex values with a warning
  UNIT_SYSTEM      Force METRIC or FIELD
  DECK_TIMEOUT     Per-deck timeout in batch runs`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	fl := root.PersistentFlags()
	fl.StringVar(&cfg.SchemaDir, "schemas", cfg.SchemaDir, "Directory of keyword definitions (env: DECK_SCHEMA_DIR)")
	fl.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of concurrent workers (env: WORKERS)")
	fl.Float64Var(&cfg.RateLimitRPS, "rate-limit-rps", cfg.RateLimitRPS, "Global rate limit (RPS), 0 disables (env: RATE_LIMIT_RPS)")
	fl.BoolVar(&cfg.FailFast, "fail-fast", cfg.FailFast, "Fail fast on the first parse error (env: FAIL_FAST)")
	fl.BoolVar(&cfg.LenientRegex, "lenient-regex", cfg.LenientRegex, "Warn about malformed deck name expressions instead of failing (env: LENIENT_REGEX)")
	fl.StringVar(&cfg.Units, "units", cfg.Units, "Force the METRIC or FIELD unit system (env: UNIT_SYSTEM)")

	root.AddCommand(
		newCheckCmd(cfg),
		newMatchCmd(cfg),
		newParseCmd(cfg),
		newBatchCmd(cfg),
		newVersionCmd(),
	)
	return root
}

func newCheckCmd(cfg *app.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load the keyword definitions and report problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Check(cmd.Context(), *cfg, cmd.ErrOrStderr())
		},
	}
}

func newMatchCmd(cfg *app.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "match NAME...",
		Short: "Show the schema selected by deck keyword names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Match(cmd.Context(), *cfg, args, cmd.OutOrStdout())
		},
	}
}

func newParseCmd(cfg *app.Config) *cobra.Command {
	var csvPath string
	cmd := &cobra.Command{
		Use:   "parse DECK",
		Short: "Parse one deck and print a keyword summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunParse(cmd.Context(), *cfg, args[0], csvPath, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write every parsed value to this CSV file instead of the summary")
	return cmd
}

func newBatchCmd(cfg *app.Config) *cobra.Command {
	var inputPath, outputPath string
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Parse every deck listed in a CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.RunBatch(cmd.Context(), *cfg, inputPath, outputPath, cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&inputPath, "input", "", "Input CSV file path (must include a 'deck' column)")
	cmd.Flags().StringVar(&outputPath, "output", "", "Output CSV file path")
	cmd.Flags().DurationVar(&cfg.DeckTimeout, "deck-timeout", cfg.DeckTimeout, "Per-deck timeout, 0 disables (env: DECK_TIMEOUT)")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.Current)
		},
	}
}

func loadConfigFromEnv() (app.Config, error) {
	workers, err := envInt("WORKERS", 10)
	if err != nil {
		return app.Config{}, err
	}
	rateLimitRPS, err := envFloat("RATE_LIMIT_RPS", 0)
	if err != nil {
		return app.Config{}, err
	}
	failFast, err := envBool("FAIL_FAST")
	if err != nil {
		return app.Config{}, err
	}
	lenient, err := envBool("LENIENT_REGEX")
	if err != nil {
		return app.Config{}, err
	}
	deckTimeout, err := envDuration("DECK_TIMEOUT", 0)
	if err != nil {
		return app.Config{}, err
	}

	return app.Config{
		SchemaDir:    strings.TrimSpace(os.Getenv("DECK_SCHEMA_DIR")),
		Workers:      workers,
		RateLimitRPS: rateLimitRPS,
		FailFast:     failFast,
		LenientRegex: lenient,
		Units:        strings.TrimSpace(os.Getenv("UNIT_SYSTEM")),
		DeckTimeout:  deckTimeout,
	}, nil
}

func envInt(varName string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return fallback, nil
	}
	out, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}

func envFloat(varName string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return fallback, nil
	}
	out, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}

func envDuration(varName string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return fallback, nil
	}
	out, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}

func envBool(varName string) (bool, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return false, nil
	}
	out, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}
