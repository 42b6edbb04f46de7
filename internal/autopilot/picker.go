package autopilot

import (
	"fmt"

	"roulette/internal/app"
	"roulette/internal/domain"
)

// Picker chooses the next shooter from a match snapshot.
type Picker interface {
	// Pick returns the roster index to select, or false when nobody can shoot.
	Pick(snap app.Snapshot) (int, bool)
}

// Kind names a picking strategy.
type Kind string

const (
	KindRoundRobin Kind = "round_robin"
	KindRandom     Kind = "random"
)

// NewPicker creates a picker for the given strategy. src is only used by KindRandom.
func NewPicker(kind Kind, src domain.RandomSource) (Picker, error) {
	switch kind {
	case KindRoundRobin:
		return RoundRobin{}, nil
	case KindRandom:
		if src == nil {
			return nil, fmt.Errorf("random picker needs a random source")
		}
		return &Random{src: src}, nil
	default:
		return nil, fmt.Errorf("unknown picker kind: %q", kind)
	}
}

// RoundRobin hands the gun to the next living player after the current one,
// skipping anyone out of attempts. A fresh match starts at index 0.
type RoundRobin struct{}

func (RoundRobin) Pick(snap app.Snapshot) (int, bool) {
	n := len(snap.Players)
	if n == 0 {
		return 0, false
	}

	start := snap.CurrentIndex + 1
	if freshMatch(snap) {
		start = snap.CurrentIndex
	}
	for step := 0; step < n; step++ {
		i := (start + step) % n
		if canShoot(snap.Players[i]) {
			return i, true
		}
	}
	return 0, false
}

// Random picks uniformly among players who can still shoot this round.
type Random struct {
	src domain.RandomSource
}

func (r *Random) Pick(snap app.Snapshot) (int, bool) {
	candidates := make([]int, 0, len(snap.Players))
	for i, p := range snap.Players {
		if canShoot(p) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}
	k := int(r.src.Float64() * float64(len(candidates)))
	if k >= len(candidates) {
		k = len(candidates) - 1
	}
	return candidates[k], true
}

func canShoot(p app.PlayerView) bool {
	return p.Alive && p.RemainingAttempts > 0
}

func freshMatch(snap app.Snapshot) bool {
	for _, p := range snap.Players {
		if p.LifeAttempts > 0 {
			return false
		}
	}
	return true
}
