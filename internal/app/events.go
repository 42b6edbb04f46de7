package app

import "roulette/internal/domain"

// EventKind identifies emitted match events for presentation dispatch.
type EventKind string

const (
	EventRosterConfigured EventKind = "roster_configured"
	EventPlayerAdded      EventKind = "player_added"
	EventMatchStarted     EventKind = "match_started"
	EventPlayerSelected   EventKind = "player_selected"
	EventAttemptResolved  EventKind = "attempt_resolved"
	EventRoundStarted     EventKind = "round_started"
	EventMatchEnded       EventKind = "match_ended"
	EventMatchReset       EventKind = "match_reset"
)

// Event is a controller event the presentation layer renders or forwards.
type Event struct {
	Kind    EventKind
	Payload any
}

type RosterConfiguredPayload struct {
	Target int
}

type PlayerAddedPayload struct {
	Index int
	Name  string
}

type MatchStartedPayload struct {
	Players   []string
	MaxRounds int
}

type PlayerSelectedPayload struct {
	Index             int
	Name              string
	Attempt           int // 1-based attempt number about to be made
	RemainingAttempts int
	Chance            float64
}

type AttemptResolvedPayload struct {
	Index   int
	Name    string
	Round   int
	Outcome domain.Outcome
}

type RoundStartedPayload struct {
	Round     int
	MaxRounds int
	Exhausted bool // true when no elimination triggered the round
}

type MatchEndedPayload struct {
	Result domain.MatchResult
}

type MatchResetPayload struct {
	KeptRoster bool
}
