// Command simulate plays roulette matches with an autopilot shooter and logs
// the aggregate report.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"roulette/internal/autopilot"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
)

type simConfig struct {
	Matches   int    `env:"ROULETTE_MATCHES" envDefault:"1000"`
	Players   int    `env:"ROULETTE_PLAYERS" envDefault:"4"`
	MaxRounds int    `env:"ROULETTE_MAX_ROUNDS" envDefault:"10"`
	Seed      int64  `env:"ROULETTE_SEED"`
	Picker    string `env:"ROULETTE_PICKER" envDefault:"round_robin"`
	Verbose   bool   `env:"ROULETTE_VERBOSE"`
}

// parseConfig reads environment defaults, then lets flags override them.
func parseConfig(fs *flag.FlagSet, args []string, environ map[string]string) (simConfig, error) {
	var cfg simConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	fs.IntVar(&cfg.Matches, "matches", cfg.Matches, "number of matches to simulate")
	fs.IntVar(&cfg.Players, "players", cfg.Players, "players per match")
	fs.IntVar(&cfg.MaxRounds, "max-rounds", cfg.MaxRounds, "round cap per match")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed (0 = random)")
	fs.StringVar(&cfg.Picker, "picker", cfg.Picker, "shooter strategy (round_robin, random)")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "debug logging")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg simConfig, out io.Writer) error {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})).
		With("run_id", uuid.NewString())

	opts := autopilot.Options{
		Matches:   cfg.Matches,
		Players:   cfg.Players,
		MaxRounds: cfg.MaxRounds,
		Seed:      cfg.Seed,
		Picker:    autopilot.Kind(cfg.Picker),
	}
	logger.Debug("starting simulation", "matches", opts.Matches, "players", opts.Players, "max_rounds", opts.MaxRounds, "picker", opts.Picker)

	report, err := autopilot.Simulate(ctx, opts)
	if err != nil && report.Matches == 0 {
		return err
	}
	if err != nil {
		logger.Warn("simulation stopped early", "completed", report.Matches, "error", err)
	}

	logger.Info("simulation finished",
		"matches", report.Matches,
		"eliminations", report.Eliminations(),
		"capped_out", report.CappedOut,
		"avg_rounds", fmt.Sprintf("%.2f", report.AvgRounds),
	)
	for slot, n := range report.SlotCounts {
		logger.Info("elimination slot", "attempt", slot+1, "count", n)
	}
	for p := 0; p < cfg.Players; p++ {
		name := autopilot.PlayerName(p)
		logger.Info("wins", "player", name, "count", report.Wins[name])
	}
	return nil
}

func main() {
	cfg, err := parseConfig(flag.CommandLine, os.Args[1:], nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
