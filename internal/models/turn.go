package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AIResponse is the structured bundle persisted alongside a turn's raw
// player action. WorldStateChanges keeps the merged payload that drove
// reconciliation, stored opaquely for replay and debugging.
type AIResponse struct {
	Narrative         string          `json:"narrative"`
	Consequences      []string        `json:"consequences"`
	Events            []TurnEvent     `json:"events"`
	WorldStateChanges json.RawMessage `json:"world_state_changes,omitempty"`
}

// TurnEvent is the embedded copy of an event inside a turn record.
// Standalone Event rows are materialized from the same data.
type TurnEvent struct {
	Type            EventType          `json:"type"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	AffectedNations []string           `json:"affected_nations"`
	Impact          map[string]float64 `json:"impact,omitempty"`
}

// Turn is an append-only log record of one committed player action.
// TurnNumber equals the game's currentTurn after the commit.
type Turn struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	GameID       uuid.UUID  `db:"game_id" json:"game_id"`
	TurnNumber   int        `db:"turn_number" json:"turn_number"`
	PlayerAction string     `db:"player_action" json:"player_action"`
	AIResponse   AIResponse `db:"ai_response" json:"ai_response"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}
