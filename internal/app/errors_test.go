package app

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrEmptyName, "empty_name"},
		{ErrDuplicateName, "duplicate_name"},
		{ErrInvalidPhase, "invalid_phase"},
		{ErrPlayerDead, "player_dead"},
		{ErrAttemptLimitReached, "attempt_limit_reached"},
		{ErrRosterSizeOutOfRange, "roster_size_out_of_range"},
		{ErrInsufficientPlayers, "insufficient_players"},
		{ErrPlayerNotFound, "player_not_found"},
		{ErrNoPlayerSelected, "no_player_selected"},
		{fmt.Errorf("wrapped: %w", ErrPlayerDead), "player_dead"},
		{errors.New("boom"), "unknown"},
	}
	for _, tt := range tests {
		if got := ErrorCode(tt.err); got != tt.want {
			t.Fatalf("ErrorCode(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
