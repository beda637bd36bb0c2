// Package gamestate holds the single authoritative model of game entities
// and history. All mutations are serialized behind one lock; queries are
// cheap enough for trigger conditions to call on every event.
package gamestate

import (
	"log/slog"
	"sync"
	"time"

	"github.com/battlecast/battlecast/internal/telemetry"
)

// Store indexes and aggregates events into query-able entities. Mutations
// never fail on an unknown entity: they return nil instead, so condition
// callables running at high frequency need no error handling.
type Store struct {
	mu sync.RWMutex

	units      map[int]*Unit
	teams      map[int]*Team
	events     []*telemetry.Record
	eventIndex map[string][]int64

	statsHistory  []ResourceSample
	damageHistory []DamageSample

	game GameContext

	// now is swappable in tests for deterministic time-window queries.
	now func() time.Time
}

// New creates an empty store.
func New() *Store {
	s := &Store{now: time.Now}
	s.clear()
	return s
}

func (s *Store) clear() {
	s.units = make(map[int]*Unit)
	s.teams = make(map[int]*Team)
	s.events = nil
	s.eventIndex = make(map[string][]int64)
	s.statsHistory = nil
	s.damageHistory = nil
}

// InitGame primes identity for a new game: my team, ally team, player.
// Calling it a second time is a silent no-op so a re-broadcast of identity
// fields cannot duplicate the initial team record.
func (s *Store) InitGame(info PlayerInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game.GameStarted {
		return
	}

	s.game.MyTeamID = info.MyTeamID
	s.game.MyPlayerID = info.MyPlayerID
	s.game.AllyTeamID = info.AllyTeamID
	s.game.PlayerName = info.PlayerName
	s.game.GameStarted = true

	s.teams[info.MyTeamID] = &Team{
		TeamID:     info.MyTeamID,
		AllyTeamID: info.AllyTeamID,
		PlayerName: info.PlayerName,
		IsMyTeam:   true,
		IsMyAlly:   true,
		LastUpdate: s.now(),
	}

	s.logEventLocked(telemetry.Payload{
		Event:      telemetry.TypeGameInitialized,
		PlayerName: info.PlayerName,
		MyTeamID:   &info.MyTeamID,
		MyPlayerID: info.MyPlayerID,
		AllyTeamID: info.AllyTeamID,
	})

	slog.Info("Game initialized",
		"player", info.PlayerName,
		"team", info.MyTeamID,
		"ally", info.AllyTeamID,
	)
}

// LogEvent appends a payload to the chronological log and the type index,
// returning the stored record with its assigned sequence id.
func (s *Store) LogEvent(data telemetry.Payload) *telemetry.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logEventLocked(data)
}

func (s *Store) logEventLocked(data telemetry.Payload) *telemetry.Record {
	rec := &telemetry.Record{
		ID:        int64(len(s.events)),
		Timestamp: s.now(),
		Frame:     s.game.Frame,
		GameTime:  s.game.GameTime,
		Type:      data.Event,
		Data:      data,
	}

	s.events = append(s.events, rec)
	s.eventIndex[data.Event] = append(s.eventIndex[data.Event], rec.ID)

	out := *rec
	return &out
}

// SetClock updates the current simulation frame and game time. Records and
// time-series samples appended afterwards are stamped with these values.
func (s *Store) SetClock(frame *int, gameTime float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if frame != nil {
		s.game.Frame = *frame
	}
	if gameTime > 0 {
		s.game.GameTime = gameTime
	}
}

// AddUnit records a finished unit and credits its team's aggregates. The
// owning team is synthesized on demand so the unit/team invariant holds
// even when unit events race ahead of roster discovery.
func (s *Store) AddUnit(unitID int, data telemetry.Payload) *Unit {
	s.mu.Lock()
	defer s.mu.Unlock()

	tier := data.UnitTier
	if tier == 0 {
		tier = 1
	}

	unit := &Unit{
		UnitID:        unitID,
		UnitDefID:     data.UnitDefID,
		Name:          data.UnitName,
		Tier:          tier,
		MetalCost:     data.UnitMetalCost,
		TeamID:        data.UnitTeam,
		Relation:      data.Relation,
		CreatedAt:     s.game.GameTime,
		CreatorPlayer: data.PlayerName,
	}

	s.units[unitID] = unit

	team := s.ensureTeamLocked(unit.TeamID)
	team.UnitCount++
	team.TotalMetalCost += unit.MetalCost

	out := *unit
	return &out
}

// DamageUnit applies damage to a unit, updates both teams' damage aggregates
// and appends a damage sample. Returns nil when the unit was never seen.
func (s *Store) DamageUnit(unitID int, damage float64, attackerID, attackerTeam int) *Unit {
	s.mu.Lock()
	defer s.mu.Unlock()

	unit, ok := s.units[unitID]
	if !ok {
		return nil
	}

	unit.DamageTaken += damage
	unit.LastDamagedAt = s.game.GameTime
	unit.LastDamagedBy = attackerID
	unit.InCombat = true

	if attacker, ok := s.units[attackerID]; ok {
		attacker.DamageDealt += damage
	}
	if team, ok := s.teams[attackerTeam]; ok {
		team.TotalDamageDealt += damage
	}
	if team, ok := s.teams[unit.TeamID]; ok {
		team.TotalDamageTaken += damage
	}

	s.damageHistory = append(s.damageHistory, DamageSample{
		Timestamp:    s.now(),
		Frame:        s.game.Frame,
		AttackerID:   attackerID,
		AttackerTeam: attackerTeam,
		VictimID:     unitID,
		VictimTeam:   unit.TeamID,
		Damage:       damage,
	})

	out := *unit
	return &out
}

// DestroyUnit flags a unit destroyed, debits its team and credits the
// attacker's kill count. Returns nil when the unit was never seen.
func (s *Store) DestroyUnit(unitID, attackerID, attackerTeam int) *Unit {
	s.mu.Lock()
	defer s.mu.Unlock()

	unit, ok := s.units[unitID]
	if !ok {
		return nil
	}
	if unit.Destroyed {
		out := *unit
		return &out
	}

	unit.Destroyed = true
	unit.DestroyedAt = s.game.GameTime
	unit.DestroyedBy = attackerID
	unit.DestroyedByTeam = attackerTeam

	if attacker, ok := s.units[attackerID]; ok {
		attacker.KillCount++
	}

	if team, ok := s.teams[unit.TeamID]; ok {
		team.UnitCount--
		team.TotalMetalCost -= unit.MetalCost
		team.LostCount++
	}
	if team, ok := s.teams[attackerTeam]; ok {
		team.KilledCount++
	}

	out := *unit
	return &out
}

// UpdateTeamStats overwrites a team's current resource snapshot and appends
// a time-series sample. Unknown teams are a defensive no-op: resource events
// can race ahead of team discovery.
func (s *Store) UpdateTeamStats(teamID int, metal, energy telemetry.ResourceFlow) {
	s.mu.Lock()
	defer s.mu.Unlock()

	team, ok := s.teams[teamID]
	if !ok {
		return
	}

	team.MetalStats = metal
	team.EnergyStats = energy
	team.LastUpdate = s.now()

	s.statsHistory = append(s.statsHistory, ResourceSample{
		Timestamp: s.now(),
		Frame:     s.game.Frame,
		TeamID:    teamID,
		Metal:     metal,
		Energy:    energy,
	})
}

// UpsertAllyStats lazily creates ally team records from a roster broadcast
// and overlays their resource snapshots and player names.
func (s *Store) UpsertAllyStats(teamID int, stats telemetry.AllyStats) {
	s.mu.Lock()
	defer s.mu.Unlock()

	team := s.ensureTeamLocked(teamID)
	team.IsMyAlly = true
	if stats.PlayerName != "" {
		team.PlayerName = stats.PlayerName
	}
	if stats.Metal != nil {
		team.MetalStats = *stats.Metal
	}
	if stats.Energy != nil {
		team.EnergyStats = *stats.Energy
	}
	team.LastUpdate = s.now()
}

// SetOverflow records a resource's overflow flag.
func (s *Store) SetOverflow(resource string, overflowing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch resource {
	case "metal":
		s.game.OverflowMetal = overflowing
	case "energy":
		s.game.OverflowEnergy = overflowing
	}
}

// Reset clears all collections for a new game session. Trigger definitions
// live in the engine, not here, so no stale references remain.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
	s.game = GameContext{}
	slog.Info("Game state reset")
}

// ensureTeamLocked synthesizes a team record on first reference.
func (s *Store) ensureTeamLocked(teamID int) *Team {
	if team, ok := s.teams[teamID]; ok {
		return team
	}
	team := &Team{
		TeamID:     teamID,
		IsMyTeam:   s.game.GameStarted && teamID == s.game.MyTeamID,
		IsMyAlly:   s.game.GameStarted && teamID == s.game.AllyTeamID,
		LastUpdate: s.now(),
	}
	s.teams[teamID] = team
	return team
}
