package autopilot

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"roulette/internal/app"
	"roulette/internal/domain"
)

// Options configures a simulation run.
type Options struct {
	Matches   int
	Players   int
	MaxRounds int
	Seed      int64 // 0 means time-seeded
	Picker    Kind
}

// Report aggregates the outcome of many simulated matches.
type Report struct {
	Matches    int
	SlotCounts [domain.AttemptsPerRound]int // eliminations by attempt position
	Wins       map[string]int
	CappedOut  int
	AvgRounds  float64
}

// Eliminations returns the total number of eliminations recorded.
func (r Report) Eliminations() int {
	total := 0
	for _, n := range r.SlotCounts {
		total += n
	}
	return total
}

// PlayerName returns the roster name used for the player at index.
func PlayerName(index int) string {
	return fmt.Sprintf("player-%d", index+1)
}

// Simulate plays opts.Matches matches back to back with no delay between
// attempts. A cancelled context stops the run between matches and returns
// the partial report alongside the context error.
func Simulate(ctx context.Context, opts Options) (Report, error) {
	if opts.Matches < 1 {
		return Report{}, fmt.Errorf("matches must be at least 1, got %d", opts.Matches)
	}
	if opts.Players < app.MinRosterSize || opts.Players > app.MaxRosterSize {
		return Report{}, fmt.Errorf("players must be within %d..%d, got %d: %w",
			app.MinRosterSize, app.MaxRosterSize, opts.Players, app.ErrRosterSizeOutOfRange)
	}
	if opts.Picker == "" {
		opts.Picker = KindRoundRobin
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	picker, err := NewPicker(opts.Picker, rng)
	if err != nil {
		return Report{}, err
	}
	agent := &Agent{Name: string(opts.Picker), Picker: picker}

	report := Report{Wins: make(map[string]int)}
	totalRounds := 0
	for i := 0; i < opts.Matches; i++ {
		if err := ctx.Err(); err != nil {
			return finalize(report, totalRounds), err
		}
		res, err := playOne(agent, rng, opts, &report)
		if err != nil {
			return finalize(report, totalRounds), fmt.Errorf("match %d: %w", i+1, err)
		}
		report.Matches++
		report.Wins[res.WinnerName]++
		if res.CappedOut {
			report.CappedOut++
		}
		totalRounds += res.RoundsPlayed
	}
	return finalize(report, totalRounds), nil
}

func playOne(agent *Agent, rng domain.RandomSource, opts Options, report *Report) (domain.MatchResult, error) {
	c := app.NewController(opts.MaxRounds, rng)
	if _, err := c.ConfigureRoster(opts.Players); err != nil {
		return domain.MatchResult{}, err
	}
	for p := 0; p < opts.Players; p++ {
		if _, err := c.AddPlayer(PlayerName(p)); err != nil {
			return domain.MatchResult{}, err
		}
	}
	if _, err := c.StartMatch(); err != nil {
		return domain.MatchResult{}, err
	}

	for {
		shot, err := agent.Turn(c)
		if err != nil {
			return domain.MatchResult{}, err
		}
		if shot.Result.Outcome == domain.OutcomeEliminated {
			report.SlotCounts[shot.Slot]++
		}
		if shot.Result.Finished {
			res, _ := c.Result()
			return res, nil
		}
	}
}

func finalize(r Report, totalRounds int) Report {
	if r.Matches > 0 {
		r.AvgRounds = float64(totalRounds) / float64(r.Matches)
	}
	return r
}
