// Package audio is the playback collaborator: it consumes fired-trigger
// effects from the bus and dispatches audio cues with the host's volume
// settings applied. Playback failures are logged and never reach the
// pipeline.
package audio

import (
	"context"
	"log/slog"
	"sync"

	"github.com/battlecast/battlecast/internal/pipeline"
	"github.com/battlecast/battlecast/internal/pubsub"
	"github.com/battlecast/battlecast/internal/trigger"
)

// Playback performs the actual host-side output: text-to-speech for cue
// text, sample playback for files. Volume is 0..1 after master scaling.
type Playback interface {
	Speak(text string, volume float64) error
	PlaySample(file string, volume float64) error
}

// logPlayback is the default Playback: it logs what would be played. Real
// output is host-specific and injected by the embedding application.
type logPlayback struct{}

func (logPlayback) Speak(text string, volume float64) error {
	slog.Info("Speaking cue", "text", text, "volume", volume)
	return nil
}

func (logPlayback) PlaySample(file string, volume float64) error {
	slog.Info("Playing sample", "file", file, "volume", volume)
	return nil
}

// Player subscribes to trigger firings and plays their audio effects.
type Player struct {
	playback  Playback
	soundpack *Soundpack

	mu           sync.RWMutex
	masterVolume int // 0..100
}

// NewPlayer creates a player. A nil playback falls back to log-only output;
// a nil soundpack disables pack-based cues.
func NewPlayer(playback Playback, soundpack *Soundpack, masterVolume int) *Player {
	if playback == nil {
		playback = logPlayback{}
	}
	return &Player{
		playback:     playback,
		soundpack:    soundpack,
		masterVolume: clampVolume(masterVolume),
	}
}

// SetMasterVolume adjusts the 0..100 master volume.
func (p *Player) SetMasterVolume(volume int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.masterVolume = clampVolume(volume)
}

// MasterVolume returns the current 0..100 master volume.
func (p *Player) MasterVolume() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.masterVolume
}

// Start subscribes the player to fired-trigger messages on the bus.
func (p *Player) Start(ctx context.Context, subscriber pubsub.Subscriber) error {
	return pubsub.Subscribe(ctx, subscriber, pipeline.EventTriggerFired,
		func(ctx context.Context, fired pipeline.FiredTrigger) error {
			p.Play(fired.Firing)
			return nil
		})
}

// Play dispatches a firing's effects. When the firing carries no audio at
// all but the active soundpack has a cue for the trigger, the pack cue
// plays instead, mirroring the fallback the original soundpack design had.
func (p *Player) Play(firing trigger.Firing) {
	volume := p.gain()

	played := false
	for _, effect := range firing.Effects {
		if effect.Audio != "" {
			if err := p.playback.Speak(effect.Audio, volume); err != nil {
				slog.Error("Speech playback failed", "trigger", firing.TriggerID, "error", err)
			}
			played = true
		}
		if effect.Sample != "" {
			if err := p.playback.PlaySample(effect.Sample, volume); err != nil {
				slog.Error("Sample playback failed", "trigger", firing.TriggerID, "error", err)
			}
			played = true
		}
	}

	if !played {
		if cue, ok := p.soundpack.Cue(firing.TriggerID); ok {
			var err error
			if cue.Text != "" {
				err = p.playback.Speak(cue.Text, volume)
			} else if cue.File != "" {
				err = p.playback.PlaySample(cue.File, volume)
			}
			if err != nil {
				slog.Error("Soundpack playback failed", "trigger", firing.TriggerID, "error", err)
			}
		}
	}
}

// gain converts the master volume to a 0..1 gain, scaled by 0.8 to avoid
// clipping, matching the host overlay's behavior.
func (p *Player) gain() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return float64(p.masterVolume) / 100 * 0.8
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
