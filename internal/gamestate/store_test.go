package gamestate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battlecast/battlecast/internal/telemetry"
)

func testPlayer() PlayerInfo {
	return PlayerInfo{
		MyTeamID:   1,
		MyPlayerID: 42,
		AllyTeamID: 0,
		PlayerName: "Ferret",
	}
}

func finishedUnit(unitID, teamID int, cost float64, rel telemetry.Relation) telemetry.Payload {
	return telemetry.Payload{
		Event:         telemetry.TypeUnitFinished,
		UnitID:        unitID,
		UnitDefID:     100 + unitID,
		UnitName:      "Pawn",
		UnitTeam:      teamID,
		UnitTier:      1,
		UnitMetalCost: cost,
		Relation:      rel,
	}
}

func TestStore_InitGame(t *testing.T) {
	s := New()
	s.InitGame(testPlayer())

	game := s.Game()
	assert.True(t, game.GameStarted)
	assert.Equal(t, 1, game.MyTeamID)
	assert.Equal(t, 42, game.MyPlayerID)

	team := s.MyTeam()
	require.NotNil(t, team)
	assert.True(t, team.IsMyTeam)
	assert.Equal(t, "Ferret", team.PlayerName)

	// Initialization is logged like any other event.
	assert.Equal(t, 1, s.EventCount())
}

func TestStore_InitGame_Idempotent(t *testing.T) {
	s := New()
	s.InitGame(testPlayer())
	s.InitGame(PlayerInfo{MyTeamID: 9, PlayerName: "Impostor"})

	game := s.Game()
	assert.Equal(t, 1, game.MyTeamID)
	assert.Equal(t, "Ferret", game.PlayerName)
	assert.Equal(t, 1, s.EventCount(), "second init must not log again")
}

func TestStore_LogEvent_AssignsSequentialIDs(t *testing.T) {
	s := New()

	first := s.LogEvent(telemetry.Payload{Event: telemetry.TypeUnitFinished})
	second := s.LogEvent(telemetry.Payload{Event: telemetry.TypeUnitDamaged})
	third := s.LogEvent(telemetry.Payload{Event: telemetry.TypeUnitFinished})

	assert.Equal(t, int64(0), first.ID)
	assert.Equal(t, int64(1), second.ID)
	assert.Equal(t, int64(2), third.ID)
}

func TestStore_SetClock(t *testing.T) {
	s := New()
	frame := 900
	s.SetClock(&frame, 30.0)

	rec := s.LogEvent(telemetry.Payload{Event: telemetry.TypeUnitFinished})
	assert.Equal(t, 900, rec.Frame)
	assert.Equal(t, 30.0, rec.GameTime)
}

func TestStore_AddUnit_SynthesizesTeam(t *testing.T) {
	s := New()
	s.InitGame(testPlayer())

	unit := s.AddUnit(7, finishedUnit(7, 2, 150, telemetry.RelationEnemy))
	require.NotNil(t, unit)
	assert.Equal(t, 2, unit.TeamID)

	team := s.Team(2)
	require.NotNil(t, team, "owning team must exist after AddUnit")
	assert.Equal(t, 1, team.UnitCount)
	assert.Equal(t, 150.0, team.TotalMetalCost)
	assert.False(t, team.IsMyTeam)
}

func TestStore_AddUnit_DefaultsTierToOne(t *testing.T) {
	s := New()
	payload := finishedUnit(3, 1, 50, telemetry.RelationSelf)
	payload.UnitTier = 0

	unit := s.AddUnit(3, payload)
	assert.Equal(t, 1, unit.Tier)
}

func TestStore_DamageUnit(t *testing.T) {
	s := New()
	s.InitGame(testPlayer())
	s.AddUnit(1, finishedUnit(1, 1, 100, telemetry.RelationSelf))
	s.AddUnit(2, finishedUnit(2, 2, 200, telemetry.RelationEnemy))

	unit := s.DamageUnit(1, 150, 2, 2)
	require.NotNil(t, unit)
	assert.Equal(t, 150.0, unit.DamageTaken)
	assert.Equal(t, 2, unit.LastDamagedBy)
	assert.True(t, unit.InCombat)

	assert.Equal(t, 150.0, s.Unit(2).DamageDealt)
	assert.Equal(t, 150.0, s.Team(2).TotalDamageDealt)
	assert.Equal(t, 150.0, s.Team(1).TotalDamageTaken)
}

func TestStore_DamageUnit_UnknownUnit(t *testing.T) {
	s := New()
	assert.Nil(t, s.DamageUnit(99, 50, 1, 1))
}

func TestStore_DestroyUnit(t *testing.T) {
	s := New()
	s.InitGame(testPlayer())
	s.AddUnit(1, finishedUnit(1, 1, 100, telemetry.RelationSelf))
	s.AddUnit(7, finishedUnit(7, 2, 400, telemetry.RelationEnemy))
	s.DamageUnit(1, 150, 7, 2)

	unit := s.DestroyUnit(1, 7, 2)
	require.NotNil(t, unit)
	assert.True(t, unit.Destroyed)
	assert.Equal(t, 7, unit.DestroyedBy)
	assert.Equal(t, 2, unit.DestroyedByTeam)
	assert.Equal(t, 150.0, unit.DamageTaken, "damage survives destruction")

	myTeam := s.Team(1)
	assert.Equal(t, 0, myTeam.UnitCount)
	assert.Equal(t, 0.0, myTeam.TotalMetalCost)
	assert.Equal(t, 1, myTeam.LostCount)

	enemy := s.Team(2)
	assert.Equal(t, 1, enemy.KilledCount)
	assert.Equal(t, 1, s.Unit(7).KillCount)
}

func TestStore_DestroyUnit_Idempotent(t *testing.T) {
	s := New()
	s.InitGame(testPlayer())
	s.AddUnit(1, finishedUnit(1, 1, 100, telemetry.RelationSelf))
	s.AddUnit(7, finishedUnit(7, 2, 400, telemetry.RelationEnemy))

	s.DestroyUnit(1, 7, 2)
	s.DestroyUnit(1, 7, 2)

	assert.Equal(t, 1, s.Team(1).LostCount)
	assert.Equal(t, 1, s.Team(2).KilledCount)
	assert.Equal(t, 1, s.Unit(7).KillCount)
}

func TestStore_UpdateTeamStats(t *testing.T) {
	s := New()
	s.InitGame(testPlayer())

	metal := telemetry.ResourceFlow{Income: 10, Usage: 8, Storage: 500, Excess: 0}
	energy := telemetry.ResourceFlow{Income: 100, Usage: 90, Storage: 2000, Excess: 5}
	s.UpdateTeamStats(1, metal, energy)

	team := s.Team(1)
	assert.Equal(t, metal, team.MetalStats)
	assert.Equal(t, energy, team.EnergyStats)
}

func TestStore_UpdateTeamStats_UnknownTeam(t *testing.T) {
	s := New()
	s.UpdateTeamStats(5, telemetry.ResourceFlow{Income: 1}, telemetry.ResourceFlow{})
	assert.Nil(t, s.Team(5), "stats for an unseen team must not create it")
}

func TestStore_UpsertAllyStats(t *testing.T) {
	s := New()
	s.InitGame(testPlayer())

	metal := telemetry.ResourceFlow{Income: 12}
	s.UpsertAllyStats(3, telemetry.AllyStats{PlayerName: "Badger", Metal: &metal})

	team := s.Team(3)
	require.NotNil(t, team)
	assert.True(t, team.IsMyAlly)
	assert.Equal(t, "Badger", team.PlayerName)
	assert.Equal(t, 12.0, team.MetalStats.Income)

	// A later broadcast without a name keeps the known one.
	s.UpsertAllyStats(3, telemetry.AllyStats{Metal: &metal})
	assert.Equal(t, "Badger", s.Team(3).PlayerName)
}

func TestStore_SetOverflow(t *testing.T) {
	s := New()
	s.SetOverflow("metal", true)
	assert.True(t, s.ResourceStatus("metal"))
	assert.False(t, s.ResourceStatus("energy"))

	s.SetOverflow("metal", false)
	assert.False(t, s.ResourceStatus("metal"))
}

func TestStore_Reset(t *testing.T) {
	s := New()
	s.InitGame(testPlayer())
	s.AddUnit(1, finishedUnit(1, 1, 100, telemetry.RelationSelf))
	s.SetOverflow("energy", true)

	s.Reset()

	assert.False(t, s.Game().GameStarted)
	assert.Nil(t, s.Unit(1))
	assert.Nil(t, s.MyTeam())
	assert.Equal(t, 0, s.EventCount())
	assert.False(t, s.ResourceStatus("energy"))
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := New()
	s.InitGame(testPlayer())
	s.AddUnit(1, finishedUnit(1, 1, 100, telemetry.RelationSelf))

	unit := s.Unit(1)
	unit.DamageTaken = 9999

	assert.Equal(t, 0.0, s.Unit(1).DamageTaken, "callers must not mutate store state")
}

func TestStore_TeamAggregatesStayConsistent(t *testing.T) {
	s := New()
	s.InitGame(testPlayer())

	for i := 1; i <= 5; i++ {
		s.AddUnit(i, finishedUnit(i, 1, 100, telemetry.RelationSelf))
	}
	s.AddUnit(10, finishedUnit(10, 2, 300, telemetry.RelationEnemy))
	s.DestroyUnit(2, 10, 2)
	s.DestroyUnit(4, 10, 2)

	team := s.Team(1)
	assert.Equal(t, 3, team.UnitCount)
	assert.Equal(t, 300.0, team.TotalMetalCost)
	assert.Equal(t, 2, team.LostCount)
	assert.Len(t, s.TeamUnits(1, false), 3)
	assert.Len(t, s.TeamUnits(1, true), 5)
}

func TestStore_ClockIsSwappable(t *testing.T) {
	s := New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	rec := s.LogEvent(telemetry.Payload{Event: telemetry.TypeUnitFinished})
	assert.Equal(t, base, rec.Timestamp)
}
