package app

const (
	// MinRosterSize is the smallest roster a match can start with.
	MinRosterSize = 2
	// MaxRosterSize is the largest roster the setup phase accepts.
	MaxRosterSize = 10
	// DefaultMaxRounds caps a match when no configuration overrides it.
	DefaultMaxRounds = 10
)
