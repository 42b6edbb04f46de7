package ports

import "context"

// Cue identifies a sound effect the presentation layer may play.
type Cue string

const (
	// CueReload plays when a shooter is selected.
	CueReload Cue = "reload"
	// CueGunshot plays on elimination.
	CueGunshot Cue = "gunshot"
	// CueEmpty plays when the chamber is empty.
	CueEmpty Cue = "empty"
)

// CuePort delivers fire-and-forget sound cues.
type CuePort interface {
	// PlayCue requests playback. Implementations must not block on playback;
	// callers log and drop any returned error.
	PlayCue(ctx context.Context, cue Cue) error
}
