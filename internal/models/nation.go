package models

import (
	"time"

	"github.com/google/uuid"
)

// Resource bounds. All four axes live on the same scale.
const (
	ResourceMin = 0
	ResourceMax = 100
)

// Resources are the four tracked axes of a nation's strength.
type Resources struct {
	Military  int `json:"military"`
	Economy   int `json:"economy"`
	Stability int `json:"stability"`
	Influence int `json:"influence"`
}

// Apply adds a set of deltas and clamps every axis into [ResourceMin, ResourceMax].
// Deltas arrive from AI output as floats and are truncated toward zero.
func (r Resources) Apply(deltas map[string]float64) Resources {
	out := r
	for key, delta := range deltas {
		switch key {
		case "military":
			out.Military = ClampResource(out.Military + int(delta))
		case "economy":
			out.Economy = ClampResource(out.Economy + int(delta))
		case "stability":
			out.Stability = ClampResource(out.Stability + int(delta))
		case "influence":
			out.Influence = ClampResource(out.Influence + int(delta))
		}
	}
	return out
}

// Clamped returns a copy with every axis forced into the valid range.
func (r Resources) Clamped() Resources {
	return Resources{
		Military:  ClampResource(r.Military),
		Economy:   ClampResource(r.Economy),
		Stability: ClampResource(r.Stability),
		Influence: ClampResource(r.Influence),
	}
}

// ClampResource forces a resource value into [0, 100].
func ClampResource(v int) int {
	if v < ResourceMin {
		return ResourceMin
	}
	if v > ResourceMax {
		return ResourceMax
	}
	return v
}

// Default attributes given to nations created on the fly during
// reconciliation when the AI names a nation that does not exist yet.
const DefaultGovernment = "Unknown"

// DefaultResources is the 50/50/50/50 baseline for auto-created nations.
func DefaultResources() Resources {
	return Resources{Military: 50, Economy: 50, Stability: 50, Influence: 50}
}

// Nation is a simulated actor inside a game. Nations spawned at runtime by
// AI output carry default resources until events move them.
type Nation struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	GameID             uuid.UUID `db:"game_id" json:"game_id"`
	Name               string    `db:"name" json:"name"`
	Government         string    `db:"government" json:"government"`
	Territories        []string  `db:"territories" json:"territories"`
	Resources          Resources `db:"resources" json:"resources"`
	IsPlayerControlled bool      `db:"is_player_controlled" json:"is_player_controlled"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}
