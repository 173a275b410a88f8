package models

import "encoding/json"

// NationView is a prompt-facing snapshot of a nation.
type NationView struct {
	Name        string    `json:"name"`
	Government  string    `json:"government"`
	Territories []string  `json:"territories,omitempty"`
	Resources   Resources `json:"resources"`
	IsPlayer    bool      `json:"is_player"`
}

// RelationshipView pairs two nation names with the current diplomatic
// state, already resolved for prompt rendering.
type RelationshipView struct {
	Nation1 string         `json:"nation1"`
	Nation2 string         `json:"nation2"`
	Status  RelationStatus `json:"status"`
	Score   int            `json:"score"`
}

// TurnView is the per-turn record embedded in prompts: the action, its
// outcome and the consequences, events and resource changes it caused.
type TurnView struct {
	TurnNumber      int             `json:"turn_number"`
	Action          string          `json:"action"`
	Narrative       string          `json:"narrative"`
	Consequences    []string        `json:"consequences,omitempty"`
	Events          []TurnEvent     `json:"events,omitempty"`
	ResourceChanges json.RawMessage `json:"resource_changes,omitempty"`
}

// GameContext is everything the prompt builders need about a game:
// the player's nation, the rest of the world, diplomatic state, the
// last few turns (oldest first) and the running history summary.
type GameContext struct {
	PlayerNation   NationView         `json:"player_nation"`
	OtherNations   []NationView       `json:"other_nations"`
	Relationships  []RelationshipView `json:"relationships"`
	RecentTurns    []TurnView         `json:"recent_turns"`
	HistorySummary string             `json:"history_summary"`
	CurrentYear    int                `json:"current_year"`
	CurrentTurn    int                `json:"current_turn"`
	ScenarioHint   string             `json:"scenario_hint"`
	GlobalEvents   []string           `json:"global_events,omitempty"`
}

// WorldSnapshot is the read-model returned by world-state queries.
type WorldSnapshot struct {
	Game          *Game          `json:"game"`
	Nations       []Nation       `json:"nations"`
	Relationships []Relationship `json:"relationships"`
	RecentEvents  []Event        `json:"recent_events"`
}
