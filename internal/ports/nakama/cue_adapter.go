package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"roulette/internal/app"
	"roulette/internal/domain"
	"roulette/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaCueAdapter implements ports.CuePort by deferring a cue message to every presence.
type NakamaCueAdapter struct {
	dispatcher runtime.MatchDispatcher
}

// NewNakamaCueAdapter creates a cue adapter bound to a match dispatcher.
func NewNakamaCueAdapter(dispatcher runtime.MatchDispatcher) *NakamaCueAdapter {
	return &NakamaCueAdapter{dispatcher: dispatcher}
}

// PlayCue queues the cue for the end of the current tick.
func (a *NakamaCueAdapter) PlayCue(ctx context.Context, cue ports.Cue) error {
	data, err := json.Marshal(cuePayload{Cue: string(cue)})
	if err != nil {
		return fmt.Errorf("failed to marshal cue: %w", err)
	}
	if err := a.dispatcher.BroadcastMessageDeferred(OpCue, data, nil, nil, false); err != nil {
		return fmt.Errorf("failed to defer cue %s: %w", cue, err)
	}
	return nil
}

// cueForEvent picks the sound that accompanies an event, if any.
func cueForEvent(ev app.Event) (ports.Cue, bool) {
	switch p := ev.Payload.(type) {
	case app.PlayerSelectedPayload:
		return ports.CueReload, true
	case app.AttemptResolvedPayload:
		if p.Outcome == domain.OutcomeEliminated {
			return ports.CueGunshot, true
		}
		return ports.CueEmpty, true
	default:
		return "", false
	}
}
