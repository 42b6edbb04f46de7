package app

import (
	"time"

	"roulette/internal/domain"
)

// PlayerView is a read-only copy of a player with derived display values.
type PlayerView struct {
	domain.Player
	RemainingAttempts int
	Chance            float64 // elimination chance of the next attempt, 0 when dead
}

// Snapshot is a deep copy of the match for presentation and tests.
type Snapshot struct {
	Phase        domain.Phase
	Players      []PlayerView
	RosterTarget int
	CurrentIndex int
	Armed        bool
	Round        int
	MaxRounds    int
	StartedAt    time.Time
	Result       *domain.MatchResult
}

// Snapshot returns a copy of the current match state.
func (c *Controller) Snapshot() Snapshot {
	m := c.match
	snap := Snapshot{
		Phase:        m.Phase,
		Players:      make([]PlayerView, len(m.Players)),
		RosterTarget: m.RosterTarget,
		CurrentIndex: m.CurrentIndex,
		Armed:        m.Armed,
		Round:        m.Round,
		MaxRounds:    m.MaxRounds,
		StartedAt:    m.StartedAt,
	}
	for i, p := range m.Players {
		snap.Players[i] = viewOf(p)
	}
	if m.Result != nil {
		res := *m.Result
		snap.Result = &res
	}
	return snap
}

// PlayerDetails returns the post-game breakdown for the player at index.
func (c *Controller) PlayerDetails(index int) (domain.PlayerDetails, error) {
	if index < 0 || index >= len(c.match.Players) {
		return domain.PlayerDetails{}, ErrPlayerNotFound
	}
	return c.match.Players[index].Details(), nil
}

func viewOf(p *domain.Player) PlayerView {
	v := PlayerView{
		Player:            p.Clone(),
		RemainingAttempts: p.RemainingAttempts(),
	}
	if p.CanAttempt() {
		v.Chance = domain.EliminationChance(p.AttemptsThisRound)
	}
	return v
}
