package domain

const (
	// AttemptsPerRound is the number of chambers; the last one always fires.
	AttemptsPerRound = 6
	// ForcedAttemptIndex is the attemptsThisRound value at which elimination is certain.
	ForcedAttemptIndex = AttemptsPerRound - 1
)
