package domain

import "time"

// Phase represents the lifecycle stage of a roulette match.
type Phase string

const (
	// PhaseSetup is the pre-game state where the roster is assembled.
	PhaseSetup Phase = "setup"
	// PhaseInProgress is the active game state where triggers are pulled.
	PhaseInProgress Phase = "in_progress"
	// PhaseFinished is the terminal state after a winner is decided.
	PhaseFinished Phase = "finished"
)

// Outcome is the result of a single attempt.
type Outcome string

const (
	OutcomeSurvive    Outcome = "survive"
	OutcomeEliminated Outcome = "eliminated"
)

// ShotRecord is one entry of a player's attempt history.
type ShotRecord struct {
	Round   int
	Outcome Outcome
	At      time.Time
}

// Match captures the domain state for a single match instance.
type Match struct {
	Phase Phase

	Players      []*Player // roster order; fixed once the match starts
	RosterTarget int       // requested roster size, 0 when unset

	CurrentIndex int
	Armed        bool // true between a selection and the next attempt

	Round     int
	MaxRounds int

	StartedAt time.Time
	Result    *MatchResult // nil until finished
}

// MatchResult is the end-of-match summary, captured at the moment of victory.
type MatchResult struct {
	WinnerIndex  int
	WinnerName   string
	RoundsPlayed int
	Duration     time.Duration
	Attempts     int
	SurvivalRate float64
	BestStreak   int
	CappedOut    bool // true when the round cap decided the winner
}

// NewMatch returns an empty match in the setup phase.
func NewMatch(maxRounds int) *Match {
	return &Match{
		Phase:     PhaseSetup,
		Round:     1,
		MaxRounds: maxRounds,
	}
}

// AliveCount returns the number of living players.
func (m *Match) AliveCount() int {
	n := 0
	for _, p := range m.Players {
		if p.Alive {
			n++
		}
	}
	return n
}

// LastAlive returns the index of the only living player, or -1 if there is not exactly one.
func (m *Match) LastAlive() int {
	idx := -1
	for i, p := range m.Players {
		if !p.Alive {
			continue
		}
		if idx >= 0 {
			return -1
		}
		idx = i
	}
	return idx
}

// AnyCanAttempt reports whether some living player still has attempts left this round.
func (m *Match) AnyCanAttempt() bool {
	for _, p := range m.Players {
		if p.CanAttempt() {
			return true
		}
	}
	return false
}

// IndexOf returns the roster index of the named player or -1.
func (m *Match) IndexOf(name string) int {
	for i, p := range m.Players {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// BestSurvivor returns the living player with the highest survival rate.
// Ties go to the earliest roster position. Returns -1 when nobody is alive.
func (m *Match) BestSurvivor() int {
	best := -1
	for i, p := range m.Players {
		if !p.Alive {
			continue
		}
		if best < 0 || p.SurvivalRate > m.Players[best].SurvivalRate {
			best = i
		}
	}
	return best
}
