package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType categorizes a world event.
type EventType string

const (
	EventPolitical  EventType = "political"
	EventMilitary   EventType = "military"
	EventDiplomatic EventType = "diplomatic"
	EventEconomic   EventType = "economic"
	EventOther      EventType = "other"
)

// NormalizeEventType maps unknown category strings to EventOther so an
// off-script AI label never fails a commit.
func NormalizeEventType(s string) EventType {
	switch EventType(s) {
	case EventPolitical, EventMilitary, EventDiplomatic, EventEconomic, EventOther:
		return EventType(s)
	}
	return EventOther
}

// Event is a standalone, independently queryable occurrence duplicated
// from its parent turn's embedded event list. Affected nations are stored
// as resolved identities.
type Event struct {
	ID              uuid.UUID          `db:"id" json:"id"`
	GameID          uuid.UUID          `db:"game_id" json:"game_id"`
	TurnID          uuid.UUID          `db:"turn_id" json:"turn_id"`
	TurnNumber      int                `db:"turn_number" json:"turn_number"`
	Type            EventType          `db:"type" json:"type"`
	Title           string             `db:"title" json:"title"`
	Description     string             `db:"description" json:"description"`
	AffectedNations []uuid.UUID        `db:"affected_nations" json:"affected_nations"`
	Impact          map[string]float64 `db:"impact" json:"impact,omitempty"`
	CreatedAt       time.Time          `db:"created_at" json:"created_at"`
}
