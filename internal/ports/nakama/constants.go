package nakama

const (
	// RpcCreateMatch is the Nakama RPC id clients call to open a new hot-seat match.
	RpcCreateMatch = "roulette_create_match"

	// MatchNameRoulette is the authoritative match handler name registered with Nakama.
	MatchNameRoulette = "roulette_match"

	// ConfigPath is read at match init; a missing file falls back to defaults.
	ConfigPath = "data/roulette_config.json"

	gameLabel    = "roulette"
	maxPresences = 16
)

// Op codes for client messages and server events.
const (
	// Client -> Server (host only)
	OpConfigureRoster   int64 = 1
	OpAddPlayer         int64 = 2
	OpStartMatch        int64 = 3
	OpSelectPlayer      int64 = 4
	OpPullTrigger       int64 = 5
	OpRestartFull       int64 = 6
	OpRestartKeepRoster int64 = 7
	OpRequestMatchState int64 = 8

	// Server -> Client events
	OpMatchState       int64 = 100
	OpPlayerAdded      int64 = 101
	OpMatchStarted     int64 = 102
	OpPlayerSelected   int64 = 103
	OpAttemptResolved  int64 = 104
	OpRoundStarted     int64 = 105
	OpMatchEnded       int64 = 106
	OpMatchReset       int64 = 107
	OpRosterConfigured int64 = 108
	OpCue              int64 = 120 // deferred, fire-and-forget
	OpGameError        int64 = 199 // sent to the sender only
)

// Error codes produced by the adapter itself; controller errors use app.ErrorCode.
const (
	errCodeNotHost    = "not_host"
	errCodeBadRequest = "bad_request"
	errCodeUnknownOp  = "unknown_op"
)
