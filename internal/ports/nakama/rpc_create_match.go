package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"
)

// CreateMatchRequest is the optional RPC payload.
type CreateMatchRequest struct {
	MaxRounds int `json:"max_rounds"`
}

// CreateMatchResponse is returned to the host client.
type CreateMatchResponse struct {
	MatchID string `json:"match_id"`
}

// MatchCreator is the slice of runtime.NakamaModule the RPC needs.
type MatchCreator interface {
	MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error)
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	return initializer.RegisterRpc(RpcCreateMatch, rpcCreateMatch)
}

func rpcCreateMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return createMatch(ctx, logger, nk, payload)
}

// createMatch opens a new authoritative roulette match; every hot-seat session gets its own.
func createMatch(ctx context.Context, logger runtime.Logger, nk MatchCreator, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	var req CreateMatchRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError(fmt.Sprintf("invalid payload: %v", err), 3) // INVALID_ARGUMENT
		}
	}
	if req.MaxRounds < 0 {
		return "", runtime.NewError("max_rounds must not be negative", 3)
	}

	params := map[string]interface{}{}
	if req.MaxRounds > 0 {
		params["max_rounds"] = req.MaxRounds
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameRoulette, params)
	if err != nil {
		logger.Error("CreateMatch [User:%s]: Failed to create match: %v", userID, err)
		return "", fmt.Errorf("failed to create match: %w", err)
	}
	logger.Info("CreateMatch [User:%s]: Created match %s", userID, matchID)

	b, err := json.Marshal(CreateMatchResponse{MatchID: matchID})
	if err != nil {
		return "", fmt.Errorf("failed to marshal response: %w", err)
	}
	return string(b), nil
}
