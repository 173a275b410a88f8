package models

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus is the lifecycle state of a game session.
type GameStatus string

const (
	GameStatusActive    GameStatus = "active"
	GameStatusPaused    GameStatus = "paused"
	GameStatusCompleted GameStatus = "completed"
)

// Game is one running simulation session. CurrentTurn starts at 1 and
// advances only through turn commit.
type Game struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	ScenarioID     uuid.UUID     `db:"scenario_id" json:"scenario_id"`
	PlayerID       *string       `db:"player_id" json:"player_id,omitempty"`
	PlayerNationID uuid.NullUUID `db:"player_nation_id" json:"player_nation_id,omitempty"`
	CurrentTurn    int           `db:"current_turn" json:"current_turn"`
	Status         GameStatus    `db:"status" json:"status"`
	HistorySummary string        `db:"history_summary" json:"history_summary"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}
