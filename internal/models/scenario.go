package models

import (
	"time"

	"github.com/google/uuid"
)

// SeedNation describes a nation inside a scenario's initial world state.
// Key is a scenario-local identifier used by seed relationships to refer
// to nations before real identities exist.
type SeedNation struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Government  string    `json:"government"`
	Territories []string  `json:"territories,omitempty"`
	Resources   Resources `json:"resources"`
}

// SeedRelationship links two seed nations by key.
type SeedRelationship struct {
	Nation1Key       string         `json:"nation1_key"`
	Nation2Key       string         `json:"nation2_key"`
	Status           RelationStatus `json:"status"`
	Score            int            `json:"score"`
	TradeAgreement   bool           `json:"trade_agreement,omitempty"`
	MilitaryAlliance bool           `json:"military_alliance,omitempty"`
}

// InitialWorldState is the seed bundle a game is populated from at
// creation time. GlobalEvents are free-text background facts fed into
// the first prompts.
type InitialWorldState struct {
	Nations       []SeedNation       `json:"nations"`
	Relationships []SeedRelationship `json:"relationships"`
	GlobalEvents  []string           `json:"global_events,omitempty"`
}

// Scenario is a historical starting-point template. Built-in scenarios
// are immutable; user-authored ones may be edited until a game uses them.
type Scenario struct {
	ID                uuid.UUID         `db:"id" json:"id"`
	Name              string            `db:"name" json:"name"`
	Description       string            `db:"description" json:"description"`
	Period            string            `db:"period" json:"period"`
	StartYear         int               `db:"start_year" json:"start_year"`
	AIContext         string            `db:"ai_context" json:"ai_context"`
	InitialWorldState InitialWorldState `db:"initial_world_state" json:"initial_world_state"`
	IsCustom          bool              `db:"is_custom" json:"is_custom"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
}

// SeedNationByKey returns the seed nation with the given key, if any.
func (s *InitialWorldState) SeedNationByKey(key string) (*SeedNation, bool) {
	for i := range s.Nations {
		if s.Nations[i].Key == key {
			return &s.Nations[i], true
		}
	}
	return nil, false
}
