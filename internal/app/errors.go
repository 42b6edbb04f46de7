package app

import "errors"

var (
	ErrEmptyName            = errors.New("player name is empty")
	ErrDuplicateName        = errors.New("player name already taken")
	ErrInvalidPhase         = errors.New("command not valid in current phase")
	ErrPlayerDead           = errors.New("player already eliminated")
	ErrAttemptLimitReached  = errors.New("player reached the attempt limit for this round")
	ErrRosterSizeOutOfRange = errors.New("roster size out of range")
	ErrInsufficientPlayers  = errors.New("not enough players to start")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrNoPlayerSelected     = errors.New("no player selected")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrEmptyName, "empty_name"},
	{ErrDuplicateName, "duplicate_name"},
	{ErrInvalidPhase, "invalid_phase"},
	{ErrPlayerDead, "player_dead"},
	{ErrAttemptLimitReached, "attempt_limit_reached"},
	{ErrRosterSizeOutOfRange, "roster_size_out_of_range"},
	{ErrInsufficientPlayers, "insufficient_players"},
	{ErrPlayerNotFound, "player_not_found"},
	{ErrNoPlayerSelected, "no_player_selected"},
}

// ErrorCode maps a controller error to the stable tag sent to clients.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "unknown"
}
