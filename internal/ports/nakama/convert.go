package nakama

import (
	"time"

	"roulette/internal/app"
	"roulette/internal/domain"
)

// Client request payloads.

type configureRosterRequest struct {
	Target int `json:"target"`
}

type addPlayerRequest struct {
	Name string `json:"name"`
}

type selectPlayerRequest struct {
	Index int `json:"index"`
}

// Server payloads. Instants travel as unix milliseconds.

type shotPayload struct {
	Round    int    `json:"round"`
	Outcome  string `json:"outcome"`
	AtUnixMs int64  `json:"at_unix_ms"`
}

type playerPayload struct {
	Name               string        `json:"name"`
	Alive              bool          `json:"alive"`
	AttemptsThisRound  int           `json:"attempts_this_round"`
	LifeAttempts       int           `json:"life_attempts"`
	RemainingAttempts  int           `json:"remaining_attempts"`
	Chance             float64       `json:"chance"`
	SurvivalRate       float64       `json:"survival_rate"`
	SurvivalStreak     int           `json:"survival_streak"`
	BestSurvivalStreak int           `json:"best_survival_streak"`
	History            []shotPayload `json:"history"`
}

type resultPayload struct {
	WinnerIndex  int     `json:"winner_index"`
	WinnerName   string  `json:"winner_name"`
	RoundsPlayed int     `json:"rounds_played"`
	DurationMs   int64   `json:"duration_ms"`
	Attempts     int     `json:"attempts"`
	SurvivalRate float64 `json:"survival_rate"`
	BestStreak   int     `json:"best_streak"`
	CappedOut    bool    `json:"capped_out"`
}

type matchStatePayload struct {
	Phase           string          `json:"phase"`
	Host            string          `json:"host"`
	Players         []playerPayload `json:"players"`
	RosterTarget    int             `json:"roster_target"`
	CurrentIndex    int             `json:"current_index"`
	Armed           bool            `json:"armed"`
	Round           int             `json:"round"`
	MaxRounds       int             `json:"max_rounds"`
	StartedAtUnixMs int64           `json:"started_at_unix_ms"`
	Result          *resultPayload  `json:"result,omitempty"`
}

type errorPayload struct {
	Code string `json:"code"`
}

type cuePayload struct {
	Cue string `json:"cue"`
}

func unixMs(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func toResultPayload(r domain.MatchResult) *resultPayload {
	return &resultPayload{
		WinnerIndex:  r.WinnerIndex,
		WinnerName:   r.WinnerName,
		RoundsPlayed: r.RoundsPlayed,
		DurationMs:   r.Duration.Milliseconds(),
		Attempts:     r.Attempts,
		SurvivalRate: r.SurvivalRate,
		BestStreak:   r.BestStreak,
		CappedOut:    r.CappedOut,
	}
}

func toPlayerPayload(v app.PlayerView) playerPayload {
	history := make([]shotPayload, 0, len(v.History))
	for _, rec := range v.History {
		history = append(history, shotPayload{
			Round:    rec.Round,
			Outcome:  string(rec.Outcome),
			AtUnixMs: unixMs(rec.At),
		})
	}
	return playerPayload{
		Name:               v.Name,
		Alive:              v.Alive,
		AttemptsThisRound:  v.AttemptsThisRound,
		LifeAttempts:       v.LifeAttempts,
		RemainingAttempts:  v.RemainingAttempts,
		Chance:             v.Chance,
		SurvivalRate:       v.SurvivalRate,
		SurvivalStreak:     v.SurvivalStreak,
		BestSurvivalStreak: v.BestSurvivalStreak,
		History:            history,
	}
}

func toMatchStatePayload(snap app.Snapshot, host string) matchStatePayload {
	players := make([]playerPayload, 0, len(snap.Players))
	for _, v := range snap.Players {
		players = append(players, toPlayerPayload(v))
	}
	out := matchStatePayload{
		Phase:           string(snap.Phase),
		Host:            host,
		Players:         players,
		RosterTarget:    snap.RosterTarget,
		CurrentIndex:    snap.CurrentIndex,
		Armed:           snap.Armed,
		Round:           snap.Round,
		MaxRounds:       snap.MaxRounds,
		StartedAtUnixMs: unixMs(snap.StartedAt),
	}
	if snap.Result != nil {
		out.Result = toResultPayload(*snap.Result)
	}
	return out
}

// eventMessage maps an app event to its op code and wire payload.
func eventMessage(ev app.Event) (int64, any, bool) {
	switch p := ev.Payload.(type) {
	case app.RosterConfiguredPayload:
		return OpRosterConfigured, map[string]any{"target": p.Target}, true
	case app.PlayerAddedPayload:
		return OpPlayerAdded, map[string]any{"index": p.Index, "name": p.Name}, true
	case app.MatchStartedPayload:
		return OpMatchStarted, map[string]any{"players": p.Players, "max_rounds": p.MaxRounds}, true
	case app.PlayerSelectedPayload:
		return OpPlayerSelected, map[string]any{
			"index":              p.Index,
			"name":               p.Name,
			"attempt":            p.Attempt,
			"remaining_attempts": p.RemainingAttempts,
			"chance":             p.Chance,
		}, true
	case app.AttemptResolvedPayload:
		return OpAttemptResolved, map[string]any{
			"index":   p.Index,
			"name":    p.Name,
			"round":   p.Round,
			"outcome": string(p.Outcome),
		}, true
	case app.RoundStartedPayload:
		return OpRoundStarted, map[string]any{
			"round":      p.Round,
			"max_rounds": p.MaxRounds,
			"exhausted":  p.Exhausted,
		}, true
	case app.MatchEndedPayload:
		return OpMatchEnded, toResultPayload(p.Result), true
	case app.MatchResetPayload:
		return OpMatchReset, map[string]any{"kept_roster": p.KeptRoster}, true
	default:
		return 0, nil, false
	}
}
