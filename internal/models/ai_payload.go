package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Feasibility is the AI's qualitative plausibility rating for a player
// action. Advisory only, never enforced mechanically.
type Feasibility string

const (
	FeasibilityHigh   Feasibility = "high"
	FeasibilityMedium Feasibility = "medium"
	FeasibilityLow    Feasibility = "low"
)

// NormalizeFeasibility maps unknown ratings to medium.
func NormalizeFeasibility(s string) Feasibility {
	switch Feasibility(s) {
	case FeasibilityHigh, FeasibilityMedium, FeasibilityLow:
		return Feasibility(s)
	}
	return FeasibilityMedium
}

// NationSeed is an AI-supplied definition of a nation not yet present in
// the game. Missing attributes fall back to auto-vivification defaults.
type NationSeed struct {
	Government  string    `json:"government,omitempty"`
	Territories []string  `json:"territories,omitempty"`
	Resources   Resources `json:"resources,omitempty"`
	HasResource bool      `json:"-"`
}

// UnmarshalJSON tracks whether the AI supplied explicit resources, so
// the reconciler can tell "all zero" apart from "unspecified".
func (n *NationSeed) UnmarshalJSON(data []byte) error {
	type raw struct {
		Government  string     `json:"government"`
		Territories []string   `json:"territories"`
		Resources   *Resources `json:"resources"`
	}
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	n.Government = r.Government
	n.Territories = r.Territories
	if r.Resources != nil {
		n.Resources = *r.Resources
		n.HasResource = true
	}
	return nil
}

// RelationshipChange is a per-pair score delta, with an optional status
// overwrite. Nations are named, not identified; resolution happens in
// the reconciler.
type RelationshipChange struct {
	Nation1     string  `json:"nation1"`
	Nation2     string  `json:"nation2"`
	ScoreChange float64 `json:"scoreChange"`
	Status      string  `json:"statusChange,omitempty"`
}

// ActionInterpretation is the parsed output of the interpretation stage.
type ActionInterpretation struct {
	Feasibility           Feasibility           `json:"feasibility"`
	ImmediateConsequences []string              `json:"immediate_consequences"`
	NationReactions       map[string]string     `json:"nation_reactions,omitempty"`
	ResourceChanges       map[string]float64    `json:"resource_changes,omitempty"`
	RelationshipChanges   []RelationshipChange  `json:"relationship_changes,omitempty"`
	NewNations            map[string]NationSeed `json:"new_nations,omitempty"`
	Narrative             string                `json:"narrative"`
}

// ProposedEvent is one event from the event-generation stage, still
// carrying nation names rather than identities.
type ProposedEvent struct {
	Type            string             `json:"type"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	AffectedNations []string           `json:"affected_nations"`
	Impact          map[string]float64 `json:"impact,omitempty"`
}

// EventBatch is the event-generation response. The model returns either a
// bare array of events (legacy shape) or an object with events plus
// optional new-nation definitions and per-nation resource update hints.
// Both shapes normalize into this one struct.
type EventBatch struct {
	Events        []ProposedEvent               `json:"events"`
	NewNations    map[string]NationSeed         `json:"new_nations,omitempty"`
	NationUpdates map[string]map[string]float64 `json:"nation_updates,omitempty"`
}

func (b *EventBatch) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var events []ProposedEvent
		if err := json.Unmarshal(data, &events); err != nil {
			return err
		}
		b.Events = events
		b.NewNations = nil
		b.NationUpdates = nil
		return nil
	}
	type alias EventBatch
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*b = EventBatch(obj)
	return nil
}

// MergedTurnPayload is the union of interpretation and event-generation
// output handed to the reconciler. New-nation definitions from the
// interpretation stage win over same-named ones from the event stage.
type MergedTurnPayload struct {
	Interpretation ActionInterpretation
	Events         []ProposedEvent
	NewNations     map[string]NationSeed
	NationUpdates  map[string]map[string]float64
	HistorySummary string
}

// MergeNewNations combines both stages' definitions, interpretation first.
func MergeNewNations(interp, events map[string]NationSeed) map[string]NationSeed {
	if len(interp) == 0 && len(events) == 0 {
		return nil
	}
	out := make(map[string]NationSeed, len(interp)+len(events))
	for name, seed := range events {
		out[name] = seed
	}
	for name, seed := range interp {
		out[name] = seed
	}
	return out
}

// TurnSummary is what a successful AI turn submission returns.
type TurnSummary struct {
	TurnID          uuid.UUID          `json:"turn_id"`
	TurnNumber      int                `json:"turn_number"`
	Narrative       string             `json:"narrative"`
	Consequences    []string           `json:"consequences"`
	ResourceChanges map[string]float64 `json:"resource_changes,omitempty"`
	Events          []Event            `json:"events"`
}

func (f Feasibility) String() string { return string(f) }

// Validate rejects structurally empty interpretations so retries can
// distinguish "parsed but useless" from genuine content.
func (a *ActionInterpretation) Validate() error {
	if a.Narrative == "" && len(a.ImmediateConsequences) == 0 {
		return fmt.Errorf("interpretation carries neither narrative nor consequences")
	}
	return nil
}
