package autopilot

import (
	"errors"

	"roulette/internal/app"
)

// ErrNoShooter is returned when a running match has nobody left to select.
var ErrNoShooter = errors.New("no eligible shooter")

// Shot describes one autopilot turn.
type Shot struct {
	Index  int
	Slot   int // zero-based attempt position within the round
	Result app.AttemptResult
}

// Agent drives a controller one turn at a time.
type Agent struct {
	Name   string
	Picker Picker
}

// Turn selects a shooter with the agent's picker and pulls the trigger.
func (a *Agent) Turn(c *app.Controller) (Shot, error) {
	snap := c.Snapshot()
	idx, ok := a.Picker.Pick(snap)
	if !ok {
		return Shot{}, ErrNoShooter
	}
	slot := snap.Players[idx].AttemptsThisRound

	if _, err := c.SelectPlayer(idx); err != nil {
		return Shot{}, err
	}
	res, _, err := c.PerformAttempt()
	if err != nil {
		return Shot{}, err
	}
	return Shot{Index: idx, Slot: slot, Result: res}, nil
}
