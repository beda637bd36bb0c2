package gamestate

import (
	"time"

	"github.com/battlecast/battlecast/internal/telemetry"
)

// Unit is the canonical record for a single tracked unit. Units are never
// removed from the store; destruction only flips the Destroyed flag so that
// post-hoc queries keep working.
type Unit struct {
	UnitID    int                `json:"unitID"`
	UnitDefID int                `json:"unitDefID"`
	Name      string             `json:"unitName"`
	Tier      int                `json:"unitTier"`
	MetalCost float64            `json:"metalCost"`
	TeamID    int                `json:"teamID"`
	Relation  telemetry.Relation `json:"relation"`

	CreatedAt     float64 `json:"createdAt"` // game time
	DamageTaken   float64 `json:"damageTaken"`
	DamageDealt   float64 `json:"damageDealt"`
	KillCount     int     `json:"killCount"`
	AssistCount   int     `json:"assistCount"`
	LastDamagedAt float64 `json:"lastDamagedAt,omitempty"`
	LastDamagedBy int     `json:"lastDamagedBy,omitempty"`
	InCombat      bool    `json:"inCombat"`

	Destroyed       bool    `json:"destroyed"`
	DestroyedAt     float64 `json:"destroyedAt,omitempty"`
	DestroyedBy     int     `json:"destroyedBy,omitempty"`
	DestroyedByTeam int     `json:"destroyedByTeam,omitempty"`
	CreatorPlayer   string  `json:"creatorPlayer,omitempty"`
}

// Team holds running aggregates and the latest resource snapshot for one team.
type Team struct {
	TeamID     int    `json:"teamID"`
	AllyTeamID int    `json:"allyTeamID"`
	PlayerName string `json:"playerName,omitempty"`
	IsMyTeam   bool   `json:"isMyTeam"`
	IsMyAlly   bool   `json:"isMyAlly"`

	UnitCount        int     `json:"unitCount"`
	TotalMetalCost   float64 `json:"totalMetalCost"`
	TotalDamageDealt float64 `json:"totalDamageDealt"`
	TotalDamageTaken float64 `json:"totalDamageTaken"`
	KilledCount      int     `json:"killedCount"`
	LostCount        int     `json:"lostCount"`

	MetalStats  telemetry.ResourceFlow `json:"metalStats"`
	EnergyStats telemetry.ResourceFlow `json:"energyStats"`
	LastUpdate  time.Time              `json:"lastUpdate"`
}

// ResourceSample is one appended snapshot of a team's resource flows,
// queried by time window for trend analysis. Never mutated after insertion.
type ResourceSample struct {
	Timestamp time.Time              `json:"timestamp"`
	Frame     int                    `json:"frame"`
	TeamID    int                    `json:"teamID"`
	Metal     telemetry.ResourceFlow `json:"metal"`
	Energy    telemetry.ResourceFlow `json:"energy"`
}

// DamageSample is one appended damage event for trend analysis.
type DamageSample struct {
	Timestamp    time.Time `json:"timestamp"`
	Frame        int       `json:"frame"`
	AttackerID   int       `json:"attacker"`
	AttackerTeam int       `json:"attackerTeam"`
	VictimID     int       `json:"victim"`
	VictimTeam   int       `json:"victimTeam"`
	Damage       float64   `json:"damage"`
}

// TrendPoint is one chronological entry of a team's resource trend.
type TrendPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Income    float64   `json:"income"`
	Usage     float64   `json:"usage"`
	Storage   float64   `json:"storage"`
	Excess    float64   `json:"excess"`
}

// GameContext is the current game-wide state: identity, clock, overflow flags.
type GameContext struct {
	Frame          int     `json:"frame"`
	GameTime       float64 `json:"gameTime"`
	MyTeamID       int     `json:"myTeamID"`
	MyPlayerID     int     `json:"myPlayerID"`
	AllyTeamID     int     `json:"allyTeamID"`
	PlayerName     string  `json:"playerName,omitempty"`
	GameStarted    bool    `json:"gameStarted"`
	GameEnded      bool    `json:"gameEnded"`
	OverflowMetal  bool    `json:"overflowMetal"`
	OverflowEnergy bool    `json:"overflowEnergy"`
}

// PlayerInfo primes the store's identity at game init.
type PlayerInfo struct {
	MyTeamID   int    `json:"myTeamID"`
	MyPlayerID int    `json:"myPlayerID"`
	AllyTeamID int    `json:"allyTeamID"`
	PlayerName string `json:"playerName"`
}

// Criteria filters unit queries. Nil fields are not applied.
type Criteria struct {
	TeamID   *int
	MinCost  *float64
	MaxCost  *float64
	Tier     *int
	Relation telemetry.Relation
	InCombat *bool
}

// TeamSummary is the per-team slice of a game summary.
type TeamSummary struct {
	Units       int     `json:"units"`
	TotalCost   float64 `json:"totalCost"`
	DamageDealt float64 `json:"damageDealt"`
	DamageTaken float64 `json:"damageTaken"`
	Kills       int     `json:"kills"`
	Losses      int     `json:"losses"`
}

// Summary is a point-in-time snapshot of the tracked game.
type Summary struct {
	GameTime   float64      `json:"gameTime"`
	Frame      int          `json:"frame"`
	MyTeam     *TeamSummary `json:"myTeam,omitempty"`
	EventCount int          `json:"eventCount"`
}
