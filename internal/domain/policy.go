package domain

// RandomSource yields uniform draws in [0,1). *math/rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// Policy decides whether the next attempt eliminates the player.
type Policy interface {
	Eliminates(attemptsThisRound int, src RandomSource) bool
}

// HazardPolicy eliminates with probability 1/remaining-chambers, so the
// fatal attempt is uniformly distributed over the six slots.
type HazardPolicy struct{}

// Eliminates draws once from src unless the attempt is forced.
func (HazardPolicy) Eliminates(attemptsThisRound int, src RandomSource) bool {
	if attemptsThisRound >= ForcedAttemptIndex {
		return true
	}
	return src.Float64() < EliminationChance(attemptsThisRound)
}

// EliminationChance returns the probability that the next attempt eliminates
// a player who has already made attemptsThisRound attempts this round.
func EliminationChance(attemptsThisRound int) float64 {
	if attemptsThisRound >= ForcedAttemptIndex {
		return 1
	}
	if attemptsThisRound < 0 {
		attemptsThisRound = 0
	}
	return 1 / float64(AttemptsPerRound-attemptsThisRound)
}
