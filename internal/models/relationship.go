package models

import (
	"time"

	"github.com/google/uuid"
)

// Relationship score bounds: -100 is open war, +100 is full alliance.
const (
	RelationMin = -100
	RelationMax = 100
)

// RelationStatus is the coarse diplomatic label attached to a pair.
type RelationStatus string

const (
	RelationAllied  RelationStatus = "allied"
	RelationNeutral RelationStatus = "neutral"
	RelationHostile RelationStatus = "hostile"
	RelationAtWar   RelationStatus = "at_war"
)

// ValidRelationStatus reports whether s is one of the known labels.
func ValidRelationStatus(s RelationStatus) bool {
	switch s {
	case RelationAllied, RelationNeutral, RelationHostile, RelationAtWar:
		return true
	}
	return false
}

// Relationship links two distinct nations of the same game. The pair is
// stored with a stable (Nation1, Nation2) ordering but is queried
// bidirectionally; at most one row exists per unordered pair.
type Relationship struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	GameID           uuid.UUID      `db:"game_id" json:"game_id"`
	Nation1ID        uuid.UUID      `db:"nation1_id" json:"nation1_id"`
	Nation2ID        uuid.UUID      `db:"nation2_id" json:"nation2_id"`
	Status           RelationStatus `db:"status" json:"status"`
	Score            int            `db:"score" json:"score"`
	TradeAgreement   bool           `db:"trade_agreement" json:"trade_agreement"`
	MilitaryAlliance bool           `db:"military_alliance" json:"military_alliance"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// Involves reports whether the row connects the two given nations,
// in either order.
func (r *Relationship) Involves(a, b uuid.UUID) bool {
	return (r.Nation1ID == a && r.Nation2ID == b) || (r.Nation1ID == b && r.Nation2ID == a)
}

// ClampRelation forces a relationship score into [-100, 100].
func ClampRelation(v int) int {
	if v < RelationMin {
		return RelationMin
	}
	if v > RelationMax {
		return RelationMax
	}
	return v
}
