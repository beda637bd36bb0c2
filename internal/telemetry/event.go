// Package telemetry defines the normalized representation of one inbound
// game event: the wire payload as the stream delivers it, and the
// sequence-numbered record the state store keeps.
package telemetry

import "time"

// Event type tags carried in the payload's "event" field.
const (
	TypeGameInitialized       = "GameInitialized"
	TypeUnitFinished          = "UnitFinished"
	TypeUnitDamaged           = "UnitDamaged"
	TypeUnitDestroyed         = "UnitDestroyed"
	TypeFullStatsUpdate       = "FullStatsUpdate"
	TypeOverflowStatusChanged = "OverflowStatusChanged"
	TypeAllyStatsUpdate       = "AllyStatsUpdate"
)

// Relation describes a unit's side relative to the tracked player.
type Relation string

const (
	RelationSelf  Relation = "self"
	RelationAlly  Relation = "ally"
	RelationEnemy Relation = "enemy"
)

// ResourceFlow is one resource's income/usage snapshot for a team.
type ResourceFlow struct {
	Income  float64 `json:"income"`
	Usage   float64 `json:"usage"`
	Storage float64 `json:"storage"`
	Excess  float64 `json:"excess"`
}

// AllyStats is one ally's entry in an AllyStatsUpdate broadcast.
type AllyStats struct {
	PlayerName string        `json:"playerName"`
	Metal      *ResourceFlow `json:"metal,omitempty"`
	Energy     *ResourceFlow `json:"energy,omitempty"`
}

// Payload is the superset of fields an inbound stream message may carry.
// The exact field set per event type is collaborator configuration; only
// the "event" tag is required.
type Payload struct {
	Event    string  `json:"event"`
	Frame    *int    `json:"frame,omitempty"`
	GameTime float64 `json:"gameTime,omitempty"`

	// Identity fields, present on the bootstrap message.
	MyTeamID   *int   `json:"myTeamID,omitempty"`
	MyPlayerID int    `json:"myPlayerID,omitempty"`
	AllyTeamID int    `json:"allyTeamID,omitempty"`
	PlayerName string `json:"playerName,omitempty"`

	// Unit lifecycle fields.
	UnitID        int      `json:"unitID,omitempty"`
	UnitDefID     int      `json:"unitDefID,omitempty"`
	UnitName      string   `json:"unitName,omitempty"`
	UnitTeam      int      `json:"unitTeam,omitempty"`
	UnitTier      int      `json:"unitTier,omitempty"`
	UnitMetalCost float64  `json:"unitMetalCost,omitempty"`
	Relation      Relation `json:"relation,omitempty"`

	// Combat fields.
	Damage       float64 `json:"damage,omitempty"`
	AttackerID   int     `json:"attackerID,omitempty"`
	AttackerTeam int     `json:"attackerTeam,omitempty"`
	AttackerName string  `json:"attackerName,omitempty"`

	// Resource fields.
	Metal    *ResourceFlow `json:"metal,omitempty"`
	Energy   *ResourceFlow `json:"energy,omitempty"`
	Resource string        `json:"resource,omitempty"`
	Overflow string        `json:"overflow,omitempty"`

	// Ally roster broadcast.
	Teams map[string]AllyStats `json:"teams,omitempty"`
}

// Record is one normalized, sequence-numbered event as stored in the
// chronological log. Immutable once appended.
type Record struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Frame     int       `json:"frame"`
	GameTime  float64   `json:"gameTime"`
	Type      string    `json:"type"`
	Data      Payload   `json:"data"`
}
