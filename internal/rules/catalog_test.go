package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battlecast/battlecast/internal/gamestate"
	"github.com/battlecast/battlecast/internal/rules/scripts"
	"github.com/battlecast/battlecast/internal/script"
	"github.com/battlecast/battlecast/internal/telemetry"
	"github.com/battlecast/battlecast/internal/trigger"
)

func newCatalogFixture(t *testing.T) (*gamestate.Store, *trigger.Engine) {
	t.Helper()

	store := gamestate.New()
	registry := script.NewRegistry("")
	for name, content := range scripts.All() {
		registry.AddEmbedded(name, content)
	}

	engine := trigger.NewEngine()
	require.NoError(t, RegisterAll(engine, Catalog(store, script.NewEngine(script.DefaultTimeout), registry)))
	return store, engine
}

func destroyedRecord(store *gamestate.Store, payload telemetry.Payload) *telemetry.Record {
	payload.Event = telemetry.TypeUnitDestroyed
	return store.LogEvent(payload)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Arm Raider", DisplayName("arm_raider"))
	assert.Equal(t, "Pawn", DisplayName("pawn"))
	assert.Equal(t, "unit", DisplayName(""))
}

func TestCatalog_RegistersAllTriggers(t *testing.T) {
	_, engine := newCatalogFixture(t)

	stats := engine.AllStats()
	ids := make([]string, 0, len(stats))
	for _, s := range stats {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{
		"expensive-unit-destroyed",
		"first-blood",
		"kill-streak",
		"team-bleeding",
		"resource-overflow",
		"enemy-tier-watch",
	}, ids)
}

func TestCatalog_ExpensiveUnitDestroyed(t *testing.T) {
	store, engine := newCatalogFixture(t)

	rec := destroyedRecord(store, telemetry.Payload{
		UnitID:        7,
		UnitName:      "arm_fusion",
		UnitMetalCost: 900,
	})

	fired := engine.EvaluateAll(rec)
	ids := firedIDs(fired)
	require.Contains(t, ids, "expensive-unit-destroyed")

	firing := firingByID(t, fired, "expensive-unit-destroyed")
	require.Len(t, firing.Effects, 1)
	assert.Contains(t, firing.Effects[0].Audio, "Arm Fusion")
	require.NotNil(t, firing.Effects[0].Visual)
	assert.Equal(t, "unit-highlight", firing.Effects[0].Visual.Type)
	assert.Equal(t, 7, firing.Effects[0].Visual.UnitID)
}

func TestCatalog_CheapUnitDoesNotTripExpensiveTrigger(t *testing.T) {
	store, engine := newCatalogFixture(t)

	rec := destroyedRecord(store, telemetry.Payload{UnitMetalCost: 40})
	fired := engine.EvaluateAll(rec)
	assert.NotContains(t, firedIDs(fired), "expensive-unit-destroyed")
}

func TestCatalog_FirstBloodFiresOnce(t *testing.T) {
	store, engine := newCatalogFixture(t)

	first := engine.EvaluateAll(destroyedRecord(store, telemetry.Payload{UnitID: 1}))
	assert.Contains(t, firedIDs(first), "first-blood")

	time.Sleep(1100 * time.Millisecond)
	second := engine.EvaluateAll(destroyedRecord(store, telemetry.Payload{UnitID: 2}))
	assert.NotContains(t, firedIDs(second), "first-blood")
}

func TestCatalog_KillStreak(t *testing.T) {
	store, engine := newCatalogFixture(t)

	// Two prior kills in the log, the third trips the streak.
	destroyedRecord(store, telemetry.Payload{UnitID: 1, AttackerID: 9})
	destroyedRecord(store, telemetry.Payload{UnitID: 2, AttackerID: 9})
	rec := destroyedRecord(store, telemetry.Payload{UnitID: 3, AttackerID: 9})

	fired := engine.EvaluateAll(rec)
	assert.Contains(t, firedIDs(fired), "kill-streak")
}

func TestCatalog_ResourceOverflow(t *testing.T) {
	store, engine := newCatalogFixture(t)

	rec := store.LogEvent(telemetry.Payload{
		Event:    telemetry.TypeOverflowStatusChanged,
		Resource: "metal",
		Overflow: "1",
	})
	fired := engine.EvaluateAll(rec)

	firing := firingByID(t, fired, "resource-overflow")
	require.Len(t, firing.Effects, 1)
	assert.Equal(t, "metal is overflowing", firing.Effects[0].Audio)

	// The cleared flag must not fire.
	rec = store.LogEvent(telemetry.Payload{
		Event:    telemetry.TypeOverflowStatusChanged,
		Resource: "metal",
		Overflow: "0",
	})
	assert.NotContains(t, firedIDs(engine.EvaluateAll(rec)), "resource-overflow")
}

func TestCatalog_EnemyTierWatch_Scripted(t *testing.T) {
	store, engine := newCatalogFixture(t)

	rec := store.LogEvent(telemetry.Payload{
		Event:    telemetry.TypeUnitFinished,
		UnitID:   5,
		UnitName: "cor_karganeth",
		UnitTier: 3,
		Relation: telemetry.RelationEnemy,
	})
	fired := engine.EvaluateAll(rec)

	firing := firingByID(t, fired, "enemy-tier-watch")
	require.Len(t, firing.Effects, 1)
	assert.Contains(t, firing.Effects[0].Audio, "cor_karganeth")
	require.NotNil(t, firing.Effects[0].Visual)
	assert.Equal(t, "full-screen-notification", firing.Effects[0].Visual.Type)
	assert.Equal(t, 3*time.Second, firing.Effects[0].Visual.Duration)
}

func TestCatalog_EnemyTierWatch_IgnoresOwnUnits(t *testing.T) {
	store, engine := newCatalogFixture(t)

	rec := store.LogEvent(telemetry.Payload{
		Event:    telemetry.TypeUnitFinished,
		UnitTier: 3,
		Relation: telemetry.RelationSelf,
	})
	assert.NotContains(t, firedIDs(engine.EvaluateAll(rec)), "enemy-tier-watch")
}

func firedIDs(firings []trigger.Firing) []string {
	ids := make([]string, 0, len(firings))
	for _, f := range firings {
		ids = append(ids, f.TriggerID)
	}
	return ids
}

func firingByID(t *testing.T, firings []trigger.Firing, id string) trigger.Firing {
	t.Helper()
	for _, f := range firings {
		if f.TriggerID == id {
			return f
		}
	}
	t.Fatalf("trigger %q did not fire", id)
	return trigger.Firing{}
}
