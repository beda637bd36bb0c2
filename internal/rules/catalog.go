// Package rules defines the built-in trigger catalog: the rule bundles the
// engine evaluates against every inbound event. Conditions close over the
// game state store for derived queries; scripted rules delegate to Tengo
// scripts so users can override behavior without rebuilding.
package rules

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/battlecast/battlecast/internal/gamestate"
	"github.com/battlecast/battlecast/internal/script"
	"github.com/battlecast/battlecast/internal/telemetry"
	"github.com/battlecast/battlecast/internal/trigger"
)

var titler = cases.Title(language.English)

// DisplayName prettifies an internal unit name for spoken announcements,
// e.g. "arm_raider" -> "Arm Raider".
func DisplayName(unitName string) string {
	if unitName == "" {
		return "unit"
	}
	return titler.String(strings.ReplaceAll(unitName, "_", " "))
}

// Catalog returns the default trigger definitions, wired against the given
// store and script runtime.
func Catalog(store *gamestate.Store, engine *script.Engine, registry *script.Registry) []trigger.Definition {
	return []trigger.Definition{
		{
			ID:          "expensive-unit-destroyed",
			Name:        "Expensive Unit Destroyed",
			Description: "A unit worth at least 500 metal was destroyed",
			Enabled:     true,
			Cooldown:    5 * time.Second,
			Repeatable:  true,
			Conditions: []trigger.Condition{
				trigger.ConditionFunc(func(rec *telemetry.Record) (bool, error) {
					return rec.Type == telemetry.TypeUnitDestroyed && rec.Data.UnitMetalCost >= 500, nil
				}),
			},
			Actions: []trigger.Action{
				trigger.ActionFunc(func(rec *telemetry.Record) (*trigger.Effect, error) {
					name := DisplayName(rec.Data.UnitName)
					return &trigger.Effect{
						Audio: fmt.Sprintf("%s destroyed, worth %.0f metal", name, rec.Data.UnitMetalCost),
						Visual: &trigger.VisualEffect{
							Type:     "unit-highlight",
							UnitID:   rec.Data.UnitID,
							Color:    "gold",
							Duration: 2 * time.Second,
						},
					}, nil
				}),
			},
		},
		{
			ID:          "first-blood",
			Name:        "First Blood",
			Description: "The first unit of the game was destroyed",
			Enabled:     true,
			Cooldown:    time.Second,
			Repeatable:  false,
			Conditions: []trigger.Condition{
				trigger.ConditionFunc(func(rec *telemetry.Record) (bool, error) {
					return rec.Type == telemetry.TypeUnitDestroyed, nil
				}),
			},
			Actions: []trigger.Action{
				trigger.ActionFunc(func(rec *telemetry.Record) (*trigger.Effect, error) {
					return &trigger.Effect{Audio: "First blood"}, nil
				}),
			},
		},
		{
			ID:          "kill-streak",
			Name:        "Kill Streak",
			Description: "One unit scored three kills inside thirty seconds",
			Enabled:     true,
			Cooldown:    30 * time.Second,
			Repeatable:  true,
			Conditions: []trigger.Condition{
				trigger.ConditionFunc(func(rec *telemetry.Record) (bool, error) {
					if rec.Type != telemetry.TypeUnitDestroyed || rec.Data.AttackerID == 0 {
						return false, nil
					}
					return store.KillsInWindow(rec.Data.AttackerID, 30*time.Second) >= 3, nil
				}),
			},
			Actions: []trigger.Action{
				trigger.ActionFunc(func(rec *telemetry.Record) (*trigger.Effect, error) {
					attacker := store.Unit(rec.Data.AttackerID)
					name := "A unit"
					if attacker != nil {
						name = DisplayName(attacker.Name)
					}
					return &trigger.Effect{
						Audio: fmt.Sprintf("%s is on a kill streak", name),
						Visual: &trigger.VisualEffect{
							Type:     "unit-highlight",
							UnitID:   rec.Data.AttackerID,
							Color:    "crimson",
							Duration: 3 * time.Second,
						},
					}, nil
				}),
			},
		},
		{
			ID:          "team-bleeding",
			Name:        "Team Bleeding",
			Description: "Our team is taking sustained heavy damage",
			Enabled:     true,
			Cooldown:    time.Minute,
			Repeatable:  true,
			Conditions: []trigger.Condition{
				trigger.ConditionFunc(func(rec *telemetry.Record) (bool, error) {
					if rec.Type != telemetry.TypeUnitDamaged {
						return false, nil
					}
					game := store.Game()
					if !game.GameStarted {
						return false, nil
					}
					return store.IsTeamBleeding(game.MyTeamID, 50, 2*time.Minute), nil
				}),
			},
			Actions: []trigger.Action{
				trigger.ActionFunc(func(rec *telemetry.Record) (*trigger.Effect, error) {
					return &trigger.Effect{
						Audio: "We are bleeding units, regroup",
						Visual: &trigger.VisualEffect{
							Type:      "screen-pulse",
							Color:     "red",
							Intensity: "high",
							Duration:  2 * time.Second,
						},
					}, nil
				}),
			},
		},
		{
			ID:          "resource-overflow",
			Name:        "Resource Overflow",
			Description: "A resource started overflowing",
			Enabled:     true,
			Cooldown:    15 * time.Second,
			Repeatable:  true,
			Conditions: []trigger.Condition{
				trigger.ConditionFunc(func(rec *telemetry.Record) (bool, error) {
					return rec.Type == telemetry.TypeOverflowStatusChanged && rec.Data.Overflow == "1", nil
				}),
			},
			Actions: []trigger.Action{
				trigger.ActionFunc(func(rec *telemetry.Record) (*trigger.Effect, error) {
					return &trigger.Effect{
						Audio: fmt.Sprintf("%s is overflowing", rec.Data.Resource),
					}, nil
				}),
			},
		},
		{
			ID:          "enemy-tier-watch",
			Name:        "Enemy Tier Watch",
			Description: "An enemy finished a high-tier unit (scripted rule)",
			Enabled:     true,
			Cooldown:    20 * time.Second,
			Repeatable:  true,
			Conditions: []trigger.Condition{
				NewScriptedCondition(engine, registry, "tier_watch"),
			},
			Actions: []trigger.Action{
				NewScriptedAction(engine, registry, "tier_watch_action"),
			},
		},
	}
}

// RegisterAll registers the catalog with the engine in order.
func RegisterAll(eng *trigger.Engine, defs []trigger.Definition) error {
	for _, def := range defs {
		if err := eng.Register(def); err != nil {
			return fmt.Errorf("rules: registering %q: %w", def.ID, err)
		}
	}
	return nil
}
