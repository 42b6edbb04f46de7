package nakama

import (
	"fmt"

	"roulette/internal/domain"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// buildLabel encodes the match label used by match listings.
func buildLabel(phase domain.Phase, presences int) (string, error) {
	label, err := structpb.NewStruct(map[string]any{
		"game":      gameLabel,
		"phase":     string(phase),
		"open":      phase == domain.PhaseSetup && presences < maxPresences,
		"presences": presences,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build label: %w", err)
	}
	b, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(label)
	if err != nil {
		return "", fmt.Errorf("failed to marshal label: %w", err)
	}
	return string(b), nil
}
