package domain

import (
	"math"
	"time"
)

// Player holds the domain state for one participant in a match.
type Player struct {
	Name  string
	Alive bool

	AttemptsThisRound int
	LifeAttempts      int // attempts across all rounds of the current life

	SurvivalStreak     int
	BestSurvivalStreak int
	SurvivalRate       float64 // percent, one decimal

	History []ShotRecord
}

// PlayerDetails is the post-game breakdown shown for a single player.
type PlayerDetails struct {
	Name             string
	Alive            bool
	DeathRound       int // 0 while alive
	SurvivedAttempts int
	LifeAttempts     int
	SurvivalRate     float64
	BestStreak       int
}

// NewPlayer returns a living player with empty statistics.
func NewPlayer(name string) *Player {
	return &Player{Name: name, Alive: true}
}

// RecordAttempt folds one attempt outcome into the player's statistics.
// It does not change Alive; callers apply elimination with Eliminate.
func (p *Player) RecordAttempt(eliminated bool, round int, at time.Time) {
	outcome := OutcomeSurvive
	if eliminated {
		outcome = OutcomeEliminated
	}
	p.History = append(p.History, ShotRecord{Round: round, Outcome: outcome, At: at})

	p.AttemptsThisRound++
	p.LifeAttempts++

	if eliminated {
		p.SurvivalStreak = 0
	} else {
		p.SurvivalStreak++
		if p.SurvivalStreak > p.BestSurvivalStreak {
			p.BestSurvivalStreak = p.SurvivalStreak
		}
	}

	// Prior attempts over attempts so far, taken before this outcome is counted.
	p.SurvivalRate = roundOneDecimal(float64(p.LifeAttempts-1) / float64(p.LifeAttempts) * 100)
}

// Eliminate marks the player dead. It reports false if the player was already dead.
func (p *Player) Eliminate() bool {
	if !p.Alive {
		return false
	}
	p.Alive = false
	return true
}

// StartRound clears the per-round attempt counter for a living player.
func (p *Player) StartRound() {
	if p.Alive {
		p.AttemptsThisRound = 0
	}
}

// ResetForNewLife restores the player to a fresh, living state.
func (p *Player) ResetForNewLife() {
	p.Alive = true
	p.AttemptsThisRound = 0
	p.LifeAttempts = 0
	p.SurvivalStreak = 0
	p.BestSurvivalStreak = 0
	p.SurvivalRate = 0
	p.History = nil
}

// CanAttempt reports whether the player is alive and under the per-round cap.
func (p *Player) CanAttempt() bool {
	return p.Alive && p.AttemptsThisRound < AttemptsPerRound
}

// RemainingAttempts returns how many attempts are left this round.
func (p *Player) RemainingAttempts() int {
	if p.AttemptsThisRound >= AttemptsPerRound {
		return 0
	}
	return AttemptsPerRound - p.AttemptsThisRound
}

// Details summarizes the player's life for the post-game view.
func (p *Player) Details() PlayerDetails {
	d := PlayerDetails{
		Name:         p.Name,
		Alive:        p.Alive,
		LifeAttempts: p.LifeAttempts,
		SurvivalRate: p.SurvivalRate,
		BestStreak:   p.BestSurvivalStreak,
	}
	for _, rec := range p.History {
		switch rec.Outcome {
		case OutcomeSurvive:
			d.SurvivedAttempts++
		case OutcomeEliminated:
			if d.DeathRound == 0 {
				d.DeathRound = rec.Round
			}
		}
	}
	return d
}

// Clone returns a deep copy safe to hand to presentation code.
func (p *Player) Clone() Player {
	cp := *p
	cp.History = append([]ShotRecord(nil), p.History...)
	return cp
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
