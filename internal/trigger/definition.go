// Package trigger implements the rule registry and the per-trigger firing
// state machine: a trigger is Idle until all its conditions pass for an
// event, fires its actions, then sits in CooldownActive until its cooldown
// elapses. Conditions and actions are opaque callables supplied by
// configuration; the engine only decides when and how often they run.
package trigger

import (
	"time"

	"github.com/battlecast/battlecast/internal/telemetry"
)

// Condition is a gating predicate evaluated against an event record.
// Conditions typically close over the game state store; they must not
// mutate it.
type Condition interface {
	Evaluate(rec *telemetry.Record) (bool, error)
}

// ConditionFunc adapts a plain function to the Condition interface.
type ConditionFunc func(rec *telemetry.Record) (bool, error)

func (f ConditionFunc) Evaluate(rec *telemetry.Record) (bool, error) {
	return f(rec)
}

// Effect is one action's result: an audio cue and/or a visual effect with a
// duration. Actions returning nil produce no effect.
type Effect struct {
	// Audio is cue text for text-to-speech playback.
	Audio string `json:"audio,omitempty"`
	// Sample is a sound file reference for sample playback.
	Sample string        `json:"sample,omitempty"`
	Visual *VisualEffect `json:"visual,omitempty"`
}

// VisualEffect describes a presentation-side effect to play.
type VisualEffect struct {
	Type      string        `json:"type"`
	UnitID    int           `json:"unitID,omitempty"`
	Color     string        `json:"color,omitempty"`
	Intensity string        `json:"intensity,omitempty"`
	Text      string        `json:"text,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// Action is one independent side effect executed when a trigger fires.
type Action interface {
	Execute(rec *telemetry.Record) (*Effect, error)
}

// ActionFunc adapts a plain function to the Action interface.
type ActionFunc func(rec *telemetry.Record) (*Effect, error)

func (f ActionFunc) Execute(rec *telemetry.Record) (*Effect, error) {
	return f(rec)
}

// Definition is a registered rule bundle. Immutable after registration
// except for the enabled flag and cooldown, which are user-adjustable at
// runtime through the engine.
type Definition struct {
	ID          string `validate:"required"`
	Name        string
	Description string
	Enabled     bool
	Cooldown    time.Duration
	Repeatable  bool
	Conditions  []Condition
	Actions     []Action
}

// Stats is the externally visible firing state of one trigger.
type Stats struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description,omitempty"`
	Enabled        bool          `json:"enabled"`
	Repeatable     bool          `json:"repeatable"`
	Cooldown       time.Duration `json:"cooldown"`
	FireCount      int           `json:"fireCount"`
	LastFired      time.Time     `json:"lastFired,omitzero"`
	CooldownActive bool          `json:"cooldownActive"`
}

// Firing is the outcome of one trigger firing: the trigger id and the
// non-nil effects its actions produced, in action order.
type Firing struct {
	TriggerID string   `json:"triggerId"`
	Name      string   `json:"name"`
	Effects   []Effect `json:"effects,omitempty"`
}
