package pipeline

import (
	"time"

	"github.com/battlecast/battlecast/internal/pubsub"
	"github.com/battlecast/battlecast/internal/telemetry"
	"github.com/battlecast/battlecast/internal/trigger"
)

// ProcessedEvent is published to the presentation collaborator for every
// message the pipeline accepts.
type ProcessedEvent struct {
	Record        telemetry.Record `json:"record"`
	EventType     string           `json:"eventType"`
	FiredTriggers []string         `json:"firedTriggers,omitempty"`
}

// FiredTrigger is published per firing; the audio/effect collaborator
// consumes the effects, the presentation collaborator the id.
type FiredTrigger struct {
	MessageID string         `json:"messageId"`
	Timestamp time.Time      `json:"timestamp"`
	Firing    trigger.Firing `json:"firing"`
	EventID   int64          `json:"eventId"`
}

// ConnectionStatus reports stream connectivity changes to the UI.
type ConnectionStatus struct {
	Connected bool      `json:"connected"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

var (
	// EventProcessed carries every normalized event after processing.
	EventProcessed = pubsub.NewEvent[ProcessedEvent]("tracker.event.processed")
	// EventTriggerFired carries one message per trigger firing.
	EventTriggerFired = pubsub.NewEvent[FiredTrigger]("tracker.trigger.fired")
	// EventConnection carries stream connect/disconnect notifications.
	EventConnection = pubsub.NewEvent[ConnectionStatus]("tracker.stream.status")
)
