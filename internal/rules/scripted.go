package rules

import (
	"context"
	"encoding/json"
	"time"

	"github.com/battlecast/battlecast/internal/script"
	"github.com/battlecast/battlecast/internal/telemetry"
	"github.com/battlecast/battlecast/internal/trigger"
)

// ScriptedCondition evaluates a Tengo script as a trigger condition. The
// script receives the event record as the global `event` and must assign a
// boolean `fire`.
type ScriptedCondition struct {
	engine   *script.Engine
	registry *script.Registry
	name     string
}

// NewScriptedCondition binds a condition to a named script in the registry.
// The script is resolved per evaluation, so hot reloads take effect
// immediately.
func NewScriptedCondition(engine *script.Engine, registry *script.Registry, name string) *ScriptedCondition {
	return &ScriptedCondition{engine: engine, registry: registry, name: name}
}

func (c *ScriptedCondition) Evaluate(rec *telemetry.Record) (bool, error) {
	sc, err := c.registry.Get(c.name)
	if err != nil {
		return false, err
	}

	out, err := c.engine.Run(context.Background(), sc, map[string]interface{}{
		"event": eventGlobal(rec),
	})
	if err != nil {
		return false, err
	}

	fire, _ := out["fire"].(bool)
	return fire, nil
}

// ScriptedAction executes a Tengo script as a trigger action. The script
// may assign `audio` (cue text) and/or `visual` (effect map); assigning
// neither produces no effect.
type ScriptedAction struct {
	engine   *script.Engine
	registry *script.Registry
	name     string
}

// NewScriptedAction binds an action to a named script in the registry.
func NewScriptedAction(engine *script.Engine, registry *script.Registry, name string) *ScriptedAction {
	return &ScriptedAction{engine: engine, registry: registry, name: name}
}

func (a *ScriptedAction) Execute(rec *telemetry.Record) (*trigger.Effect, error) {
	sc, err := a.registry.Get(a.name)
	if err != nil {
		return nil, err
	}

	out, err := a.engine.Run(context.Background(), sc, map[string]interface{}{
		"event": eventGlobal(rec),
	})
	if err != nil {
		return nil, err
	}

	effect := &trigger.Effect{}
	if audio, ok := out["audio"].(string); ok {
		effect.Audio = audio
	}
	if visual, ok := out["visual"].(map[string]interface{}); ok {
		effect.Visual = decodeVisual(visual)
	}

	if effect.Audio == "" && effect.Visual == nil {
		return nil, nil
	}
	return effect, nil
}

// eventGlobal converts a record into plain maps and scalars Tengo can hold.
func eventGlobal(rec *telemetry.Record) map[string]interface{} {
	data, err := json.Marshal(rec)
	if err != nil {
		return map[string]interface{}{"type": rec.Type}
	}

	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]interface{}{"type": rec.Type}
	}
	return out
}

func decodeVisual(m map[string]interface{}) *trigger.VisualEffect {
	v := &trigger.VisualEffect{}
	if s, ok := m["type"].(string); ok {
		v.Type = s
	}
	if s, ok := m["text"].(string); ok {
		v.Text = s
	}
	if s, ok := m["color"].(string); ok {
		v.Color = s
	}
	if s, ok := m["intensity"].(string); ok {
		v.Intensity = s
	}
	if n, ok := toFloat(m["unitID"]); ok {
		v.UnitID = int(n)
	}
	if n, ok := toFloat(m["durationMs"]); ok {
		v.Duration = time.Duration(n) * time.Millisecond
	}
	if v.Type == "" {
		return nil
	}
	return v
}

// toFloat accepts the numeric types Tengo scripts produce.
func toFloat(value interface{}) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
