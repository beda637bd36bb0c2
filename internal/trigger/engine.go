package trigger

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/battlecast/battlecast/internal/telemetry"
)

// DefaultCooldown applies to definitions registered without a cooldown.
const DefaultCooldown = time.Second

// ErrUnknownTrigger is returned by runtime adjustments for ids never registered.
var ErrUnknownTrigger = errors.New("trigger: unknown trigger id")

// fireState is the mutable per-trigger record driving the state machine.
// cooldownActive=false is the Idle state, true is CooldownActive.
type fireState struct {
	lastFired      time.Time
	fireCount      int
	cooldownActive bool
	timer          *time.Timer
}

// Engine owns the trigger registry, per-trigger fire state, cooldown
// scheduling and action dispatch. Evaluation runs on the event pipeline's
// goroutine; only cooldown expiry callbacks touch state from elsewhere, and
// those can only ever flip a trigger back to Idle.
type Engine struct {
	mu       sync.Mutex
	defs     map[string]*Definition
	states   map[string]*fireState
	order    []string
	validate *validator.Validate
	now      func() time.Time
}

// NewEngine creates an empty trigger engine.
func NewEngine() *Engine {
	return &Engine{
		defs:     make(map[string]*Definition),
		states:   make(map[string]*fireState),
		validate: validator.New(),
		now:      time.Now,
	}
}

// Register stores a definition with a fresh fire state. A duplicate id
// overwrites the previous definition (last registration wins; this is how
// configuration reload works) while keeping its original evaluation slot.
// Any cooldown timer pending for the replaced definition is canceled so a
// stale timer cannot act on the new one.
func (e *Engine) Register(def Definition) error {
	if err := e.validate.Struct(def); err != nil {
		return fmt.Errorf("trigger: invalid definition: %w", err)
	}
	if def.Cooldown <= 0 {
		def.Cooldown = DefaultCooldown
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if old, ok := e.states[def.ID]; ok {
		if old.timer != nil {
			old.timer.Stop()
		}
	} else {
		e.order = append(e.order, def.ID)
	}

	e.defs[def.ID] = &def
	e.states[def.ID] = &fireState{}

	slog.Info("Trigger registered", "id", def.ID, "name", def.Name, "cooldown", def.Cooldown, "repeatable", def.Repeatable)
	return nil
}

// EvaluateAll evaluates every registered trigger against the event in
// registration order and fires those whose guard and conditions pass. The
// returned firings are in evaluation order, so the result is reproducible
// for a fixed event and trigger set.
func (e *Engine) EvaluateAll(rec *telemetry.Record) []Firing {
	e.mu.Lock()
	ids := make([]string, len(e.order))
	copy(ids, e.order)
	e.mu.Unlock()

	var fired []Firing
	for _, id := range ids {
		e.mu.Lock()
		def, ok := e.defs[id]
		state := e.states[id]
		if !ok || !e.mayFireLocked(def, state) {
			e.mu.Unlock()
			continue
		}
		conditions := def.Conditions
		e.mu.Unlock()

		if !e.conditionsPass(id, conditions, rec) {
			continue
		}

		if firing, ok := e.Fire(id, rec); ok {
			fired = append(fired, firing)
		}
	}
	return fired
}

// mayFireLocked is the state-machine guard: disabled triggers never fire,
// CooldownActive blocks, and a non-repeatable trigger is capped at one fire.
func (e *Engine) mayFireLocked(def *Definition, state *fireState) bool {
	if !def.Enabled {
		return false
	}
	if state.cooldownActive {
		return false
	}
	if !def.Repeatable && state.fireCount > 0 {
		return false
	}
	return true
}

// conditionsPass short-circuit-evaluates the condition list. A false result,
// an error or a panic aborts evaluation of this trigger; failures are logged
// and never propagated.
func (e *Engine) conditionsPass(id string, conditions []Condition, rec *telemetry.Record) (passed bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Trigger condition panicked", "trigger", id, "panic", r)
			passed = false
		}
	}()

	for _, cond := range conditions {
		ok, err := cond.Evaluate(rec)
		if err != nil {
			slog.Error("Trigger condition failed", "trigger", id, "error", err)
			return false
		}
		if !ok {
			return false
		}
	}
	return true
}

// Fire executes a trigger's actions in order, collecting non-nil effects.
// The state flips to CooldownActive before any action runs, so re-entrant
// evaluation from within an action cannot re-fire the same trigger. A
// failing action is logged and does not abort the remaining actions.
func (e *Engine) Fire(id string, rec *telemetry.Record) (Firing, bool) {
	e.mu.Lock()
	def, ok := e.defs[id]
	if !ok {
		e.mu.Unlock()
		slog.Warn("Fire requested for unknown trigger", "trigger", id)
		return Firing{}, false
	}
	state := e.states[id]
	if !e.mayFireLocked(def, state) {
		e.mu.Unlock()
		return Firing{}, false
	}

	state.lastFired = e.now()
	state.fireCount++
	state.cooldownActive = true

	// The expiry callback captures this state record; if the trigger is
	// re-registered meanwhile, the callback flips an orphaned record and the
	// live one is untouched.
	state.timer = time.AfterFunc(def.Cooldown, func() {
		e.mu.Lock()
		state.cooldownActive = false
		state.timer = nil
		e.mu.Unlock()
	})

	actions := def.Actions
	name := def.Name
	e.mu.Unlock()

	slog.Info("Trigger fired", "trigger", id, "name", name, "event", rec.Type)

	firing := Firing{TriggerID: id, Name: name}
	for i, action := range actions {
		if effect := e.runAction(id, i, action, rec); effect != nil {
			firing.Effects = append(firing.Effects, *effect)
		}
	}
	return firing, true
}

func (e *Engine) runAction(id string, idx int, action Action, rec *telemetry.Record) (effect *Effect) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Trigger action panicked", "trigger", id, "action", idx, "panic", r)
			effect = nil
		}
	}()

	effect, err := action.Execute(rec)
	if err != nil {
		slog.Error("Trigger action failed", "trigger", id, "action", idx, "error", err)
		return nil
	}
	return effect
}

// SetEnabled toggles a single trigger. Disabled triggers evaluate to false
// unconditionally regardless of state.
func (e *Engine) SetEnabled(id string, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	def, ok := e.defs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTrigger, id)
	}
	def.Enabled = enabled
	slog.Info("Trigger toggled", "trigger", id, "enabled", enabled)
	return nil
}

// SetAllEnabled toggles every registered trigger at once.
func (e *Engine) SetAllEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, def := range e.defs {
		def.Enabled = enabled
	}
	slog.Info("All triggers toggled", "enabled", enabled, "count", len(e.defs))
}

// SetCooldown adjusts a trigger's cooldown. A cooldown already in flight
// keeps its original deadline; the new value applies from the next fire.
func (e *Engine) SetCooldown(id string, cooldown time.Duration) error {
	if cooldown <= 0 {
		return fmt.Errorf("trigger: cooldown must be positive, got %v", cooldown)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	def, ok := e.defs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTrigger, id)
	}
	def.Cooldown = cooldown
	return nil
}

// Stats returns one trigger's firing statistics.
func (e *Engine) Stats(id string) (Stats, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	def, ok := e.defs[id]
	if !ok {
		return Stats{}, false
	}
	return e.statsLocked(def, e.states[id]), true
}

// AllStats returns every trigger's statistics in registration order.
func (e *Engine) AllStats() []Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := make([]Stats, 0, len(e.order))
	for _, id := range e.order {
		def, ok := e.defs[id]
		if !ok {
			continue
		}
		stats = append(stats, e.statsLocked(def, e.states[id]))
	}
	return stats
}

func (e *Engine) statsLocked(def *Definition, state *fireState) Stats {
	return Stats{
		ID:             def.ID,
		Name:           def.Name,
		Description:    def.Description,
		Enabled:        def.Enabled,
		Repeatable:     def.Repeatable,
		Cooldown:       def.Cooldown,
		FireCount:      state.fireCount,
		LastFired:      state.lastFired,
		CooldownActive: state.cooldownActive,
	}
}

// Shutdown stops all pending cooldown timers. Only meaningful at process
// exit; a stream disconnect must NOT call this, since a trigger that cools
// down during a disconnect should be Idle again on reconnect.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, state := range e.states {
		if state.timer != nil {
			state.timer.Stop()
			state.timer = nil
		}
	}
}
