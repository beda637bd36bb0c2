package audio

import (
	"github.com/battlecast/battlecast/internal/telemetry"
	"github.com/battlecast/battlecast/internal/trigger"
)

// Cue is one configured sound for a trigger: either sample playback by file
// or spoken text.
type Cue struct {
	File string `json:"file,omitempty"`
	Text string `json:"text,omitempty"`
}

// Soundpack maps trigger ids to cues. Packs come from configuration; the
// engine treats a soundpack lookup as just another action.
type Soundpack struct {
	Name     string         `json:"name"`
	Triggers map[string]Cue `json:"triggers"`
}

// DefaultSoundpack is the built-in pack used when no pack file is
// configured. It supplies fallback cues for triggers whose actions
// produced no audio of their own.
func DefaultSoundpack() *Soundpack {
	return &Soundpack{
		Name: "default",
		Triggers: map[string]Cue{
			"first-blood":       {Text: "First blood"},
			"kill-streak":       {Text: "Kill streak"},
			"team-bleeding":     {Text: "We are taking heavy losses"},
			"resource-overflow": {Text: "Resources overflowing"},
		},
	}
}

// Cue returns the pack's cue for a trigger, if any.
func (sp *Soundpack) Cue(triggerID string) (Cue, bool) {
	if sp == nil {
		return Cue{}, false
	}
	cue, ok := sp.Triggers[triggerID]
	return cue, ok
}

// Action builds a trigger action that resolves this pack's cue for the
// given trigger id. Triggers with no configured cue produce no effect.
func (sp *Soundpack) Action(triggerID string) trigger.Action {
	return trigger.ActionFunc(func(rec *telemetry.Record) (*trigger.Effect, error) {
		cue, ok := sp.Cue(triggerID)
		if !ok {
			return nil, nil
		}
		if cue.Text != "" {
			return &trigger.Effect{Audio: cue.Text}, nil
		}
		return &trigger.Effect{Sample: cue.File}, nil
	})
}
