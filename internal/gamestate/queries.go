package gamestate

import (
	"sort"
	"time"

	"github.com/battlecast/battlecast/internal/telemetry"
)

// Unit returns a copy of the unit, or nil when unknown.
func (s *Store) Unit(unitID int) *Unit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	unit, ok := s.units[unitID]
	if !ok {
		return nil
	}
	out := *unit
	return &out
}

// Team returns a copy of the team, or nil when unknown.
func (s *Store) Team(teamID int) *Team {
	s.mu.RLock()
	defer s.mu.RUnlock()

	team, ok := s.teams[teamID]
	if !ok {
		return nil
	}
	out := *team
	return &out
}

// MyTeam returns the tracked player's team, or nil before game init.
func (s *Store) MyTeam() *Team {
	s.mu.RLock()
	myTeamID := s.game.MyTeamID
	started := s.game.GameStarted
	s.mu.RUnlock()

	if !started {
		return nil
	}
	return s.Team(myTeamID)
}

// Game returns the current game context.
func (s *Store) Game() GameContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game
}

// QueryUnits returns all units matching the criteria, sorted by unit id so
// repeated queries over the same state are deterministic.
func (s *Store) QueryUnits(c Criteria) []Unit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []Unit
	for _, unit := range s.units {
		if matchesCriteria(unit, c) {
			results = append(results, *unit)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].UnitID < results[j].UnitID })
	return results
}

func matchesCriteria(u *Unit, c Criteria) bool {
	if c.TeamID != nil && u.TeamID != *c.TeamID {
		return false
	}
	if c.MinCost != nil && u.MetalCost < *c.MinCost {
		return false
	}
	if c.MaxCost != nil && u.MetalCost > *c.MaxCost {
		return false
	}
	if c.Tier != nil && u.Tier != *c.Tier {
		return false
	}
	if c.Relation != "" && u.Relation != c.Relation {
		return false
	}
	if c.InCombat != nil && u.InCombat != *c.InCombat {
		return false
	}
	return true
}

// TeamUnits returns a team's units, excluding destroyed ones unless asked.
func (s *Store) TeamUnits(teamID int, includeDestroyed bool) []Unit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []Unit
	for _, unit := range s.units {
		if unit.TeamID == teamID && (includeDestroyed || !unit.Destroyed) {
			results = append(results, *unit)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].UnitID < results[j].UnitID })
	return results
}

// RecentEvents returns events of a type within the window, newest first.
func (s *Store) RecentEvents(eventType string, window time.Duration) []telemetry.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.now().Add(-window)
	ids := s.eventIndex[eventType]

	var results []telemetry.Record
	for i := len(ids) - 1; i >= 0; i-- {
		rec := s.events[ids[i]]
		if rec.Timestamp.Before(cutoff) {
			break
		}
		results = append(results, *rec)
	}
	return results
}

// EventCount returns the length of the chronological log.
func (s *Store) EventCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// KillsInWindow counts destroy events credited to a unit within the window.
func (s *Store) KillsInWindow(unitID int, window time.Duration) int {
	recent := s.RecentEvents(telemetry.TypeUnitDestroyed, window)

	count := 0
	for _, rec := range recent {
		if rec.Data.AttackerID == unitID {
			count++
		}
	}
	return count
}

// KilledBy returns the units destroyed by a specific unit.
func (s *Store) KilledBy(unitID int) []Unit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []Unit
	for _, unit := range s.units {
		if unit.Destroyed && unit.DestroyedBy == unitID {
			results = append(results, *unit)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].UnitID < results[j].UnitID })
	return results
}

// DamageDealtBy sums all recorded damage attributed to a unit.
func (s *Store) DamageDealtBy(unitID int) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum float64
	for _, d := range s.damageHistory {
		if d.AttackerID == unitID {
			sum += d.Damage
		}
	}
	return sum
}

// DamageTakenBy returns a unit's cumulative damage taken, 0 when unknown.
func (s *Store) DamageTakenBy(unitID int) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if unit, ok := s.units[unitID]; ok {
		return unit.DamageTaken
	}
	return 0
}

// DamageRateInWindow returns a team's incoming damage per second over the window.
func (s *Store) DamageRateInWindow(teamID int, window time.Duration) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if window <= 0 {
		return 0
	}
	cutoff := s.now().Add(-window)

	var total float64
	found := false
	for i := len(s.damageHistory) - 1; i >= 0; i-- {
		d := s.damageHistory[i]
		if d.Timestamp.Before(cutoff) {
			break
		}
		if d.VictimTeam == teamID {
			total += d.Damage
			found = true
		}
	}
	if !found {
		return 0
	}
	return total / window.Seconds()
}

// IsTeamBleeding reports whether a team's incoming damage rate over the
// window exceeds the threshold (damage per second).
func (s *Store) IsTeamBleeding(teamID int, damagePerSec float64, window time.Duration) bool {
	return s.DamageRateInWindow(teamID, window) > damagePerSec
}

// ResourceTrend returns a team's resource samples within the window in
// chronological order, projected onto a single resource.
func (s *Store) ResourceTrend(teamID int, window time.Duration, resource string) []TrendPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.now().Add(-window)

	var results []TrendPoint
	for _, sample := range s.statsHistory {
		if sample.TeamID != teamID || sample.Timestamp.Before(cutoff) {
			continue
		}
		flow := sample.Metal
		if resource == "energy" {
			flow = sample.Energy
		}
		results = append(results, TrendPoint{
			Timestamp: sample.Timestamp,
			Income:    flow.Income,
			Usage:     flow.Usage,
			Storage:   flow.Storage,
			Excess:    flow.Excess,
		})
	}
	return results
}

// ResourceStatus reports whether a resource is currently overflowing.
func (s *Store) ResourceStatus(resource string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch resource {
	case "metal":
		return s.game.OverflowMetal
	case "energy":
		return s.game.OverflowEnergy
	}
	return false
}

// Summary returns a point-in-time snapshot of the tracked game.
func (s *Store) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := Summary{
		GameTime:   s.game.GameTime,
		Frame:      s.game.Frame,
		EventCount: len(s.events),
	}

	if team, ok := s.teams[s.game.MyTeamID]; ok && s.game.GameStarted {
		summary.MyTeam = &TeamSummary{
			Units:       team.UnitCount,
			TotalCost:   team.TotalMetalCost,
			DamageDealt: team.TotalDamageDealt,
			DamageTaken: team.TotalDamageTaken,
			Kills:       team.KilledCount,
			Losses:      team.LostCount,
		}
	}
	return summary
}
