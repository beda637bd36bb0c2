// Package pipeline is the single entry point from the external stream: it
// normalizes raw messages, mutates the state store, asks the trigger engine
// to evaluate, and forwards results to the presentation and audio
// collaborators over the bus. One message is fully processed before the
// next is accepted, so state mutations are linearized in arrival order.
package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/battlecast/battlecast/internal/gamestate"
	"github.com/battlecast/battlecast/internal/pubsub"
	"github.com/battlecast/battlecast/internal/telemetry"
	"github.com/battlecast/battlecast/internal/trigger"
)

// significantDamage is the threshold above which single damage events are
// worth a debug log line.
const significantDamage = 100

// Pipeline wires Source -> Store -> Engine -> bus.
type Pipeline struct {
	store     *gamestate.Store
	engine    *trigger.Engine
	publisher pubsub.Publisher
	history   *History

	mu          sync.Mutex // serializes HandleMessage
	initialized bool
	connected   atomic.Bool

	source   Source
	sourceMu sync.Mutex
}

// New creates a pipeline over the given store, engine and bus publisher.
func New(store *gamestate.Store, engine *trigger.Engine, publisher pubsub.Publisher, historyCapacity int) *Pipeline {
	return &Pipeline{
		store:     store,
		engine:    engine,
		publisher: publisher,
		history:   NewHistory(historyCapacity),
	}
}

// Connect opens the stream source and processes messages until the context
// is canceled or the stream fails. Connection failures are surfaced via the
// status topic and the returned error; the pipeline does not retry.
func (p *Pipeline) Connect(ctx context.Context, source Source) error {
	p.sourceMu.Lock()
	p.source = source
	p.sourceMu.Unlock()

	handlers := SourceHandlers{
		OnOpen: func() {
			p.connected.Store(true)
			slog.Info("Connected to event stream")
			p.publishStatus(ctx, ConnectionStatus{Connected: true, Timestamp: time.Now()})
		},
		OnMessage: p.HandleMessage,
		OnError: func(err error) {
			p.connected.Store(false)
			slog.Error("Event stream error", "error", err)
			p.publishStatus(ctx, ConnectionStatus{Connected: false, Error: err.Error(), Timestamp: time.Now()})
		},
	}

	return source.Connect(ctx, handlers)
}

// Disconnect closes the stream source. Already-scheduled cooldown timers
// keep running: a trigger that cools down while disconnected must be Idle
// again on reconnect.
func (p *Pipeline) Disconnect() error {
	p.sourceMu.Lock()
	source := p.source
	p.source = nil
	p.sourceMu.Unlock()

	p.connected.Store(false)
	if source == nil {
		return nil
	}
	return source.Close()
}

// Connected reports current stream connectivity.
func (p *Pipeline) Connected() bool {
	return p.connected.Load()
}

// Initialized reports whether the identity bootstrap has run for the
// current session.
func (p *Pipeline) Initialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

// History exposes the bounded processed-event ring.
func (p *Pipeline) History() *History {
	return p.history
}

// ResetSession clears the store and re-arms the identity bootstrap for a
// new game. Trigger definitions and their fire state are engine-owned and
// untouched here.
func (p *Pipeline) ResetSession() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.store.Reset()
	p.initialized = false
	slog.Info("Session reset")
}

// HandleMessage processes one raw stream message. Malformed payloads are
// logged and dropped; everything else runs the canonical order: mutate
// store, append to log, evaluate triggers, forward to collaborators,
// append to history.
func (p *Pipeline) HandleMessage(raw []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var data telemetry.Payload
	if err := json.Unmarshal(raw, &data); err != nil {
		slog.Warn("Dropping malformed message", "error", err)
		return
	}
	if data.Event == "" {
		slog.Warn("Dropping message without event tag")
		return
	}

	ctx := context.Background()

	// Identity bootstrap happens exactly once; later identity fields are ignored.
	if !p.initialized && data.MyTeamID != nil {
		p.store.InitGame(gamestate.PlayerInfo{
			MyTeamID:   *data.MyTeamID,
			MyPlayerID: data.MyPlayerID,
			AllyTeamID: data.AllyTeamID,
			PlayerName: data.PlayerName,
		})
		p.initialized = true
	}

	p.store.SetClock(data.Frame, data.GameTime)

	// Step 1: route the payload to the matching store mutation.
	p.route(data)

	// Step 2: append to the chronological log.
	rec := p.store.LogEvent(data)

	// Step 3: evaluate triggers against the stored record.
	firings := p.engine.EvaluateAll(rec)

	// Step 4: forward to the presentation and audio collaborators.
	p.forward(ctx, rec, firings)

	// Step 5: append to the bounded history ring.
	p.history.Append(*rec)
}

func (p *Pipeline) route(data telemetry.Payload) {
	switch data.Event {
	case telemetry.TypeUnitFinished:
		p.store.AddUnit(data.UnitID, data)

	case telemetry.TypeUnitDamaged:
		unit := p.store.DamageUnit(data.UnitID, data.Damage, data.AttackerID, data.AttackerTeam)
		if unit != nil && data.Damage > significantDamage {
			slog.Debug("Unit damaged", "unit", unit.Name, "damage", data.Damage, "totalTaken", unit.DamageTaken)
		}

	case telemetry.TypeUnitDestroyed:
		p.store.DestroyUnit(data.UnitID, data.AttackerID, data.AttackerTeam)

	case telemetry.TypeFullStatsUpdate:
		game := p.store.Game()
		if game.GameStarted {
			var metal, energy telemetry.ResourceFlow
			if data.Metal != nil {
				metal = *data.Metal
			}
			if data.Energy != nil {
				energy = *data.Energy
			}
			p.store.UpdateTeamStats(game.MyTeamID, metal, energy)
		}

	case telemetry.TypeOverflowStatusChanged:
		p.store.SetOverflow(data.Resource, data.Overflow == "1")

	case telemetry.TypeAllyStatsUpdate:
		for teamID, stats := range data.Teams {
			id, err := parseTeamID(teamID)
			if err != nil {
				slog.Warn("Skipping ally entry with bad team id", "teamID", teamID)
				continue
			}
			p.store.UpsertAllyStats(id, stats)
		}
	}
}

func (p *Pipeline) forward(ctx context.Context, rec *telemetry.Record, firings []trigger.Firing) {
	firedIDs := make([]string, 0, len(firings))
	for _, firing := range firings {
		firedIDs = append(firedIDs, firing.TriggerID)
	}

	processed := ProcessedEvent{
		Record:        *rec,
		EventType:     rec.Type,
		FiredTriggers: firedIDs,
	}
	if err := pubsub.Publish(ctx, p.publisher, EventProcessed, processed); err != nil {
		slog.Error("Failed to publish processed event", "error", err)
	}

	for _, firing := range firings {
		fired := FiredTrigger{
			MessageID: uuid.New().String(),
			Timestamp: time.Now(),
			Firing:    firing,
			EventID:   rec.ID,
		}
		if err := pubsub.Publish(ctx, p.publisher, EventTriggerFired, fired); err != nil {
			slog.Error("Failed to publish trigger firing", "trigger", firing.TriggerID, "error", err)
		}
	}
}

func (p *Pipeline) publishStatus(ctx context.Context, status ConnectionStatus) {
	if err := pubsub.Publish(ctx, p.publisher, EventConnection, status); err != nil {
		slog.Error("Failed to publish connection status", "error", err)
	}
}

func parseTeamID(s string) (int, error) {
	return strconv.Atoi(s)
}
