package ai

import (
	"fmt"
	"sort"
	"strings"

	"chronoflux-server/internal/models"
)

// Prompt builders are pure functions over a GameContext snapshot. They
// are deterministic for identical inputs; every list with map-backed
// origin is sorted before rendering.

// BuildActionInterpretationPrompt renders the first-stage prompt. The
// recent-turn block lists the last five turns oldest first so the model
// reads history in chronological order.
func BuildActionInterpretationPrompt(gc models.GameContext, playerAction string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a historical simulation AI. A player controlling %s in %d has taken the following action:\n\n",
		gc.PlayerNation.Name, gc.CurrentYear)
	fmt.Fprintf(&b, "Action: %s\n\n", playerAction)

	b.WriteString("Current World State:\n")
	b.WriteString("- Nation Resources:\n")
	r := gc.PlayerNation.Resources
	fmt.Fprintf(&b, "  - Military: %d\n", r.Military)
	fmt.Fprintf(&b, "  - Economy: %d\n", r.Economy)
	fmt.Fprintf(&b, "  - Stability: %d\n", r.Stability)
	fmt.Fprintf(&b, "  - Influence: %d\n", r.Influence)

	b.WriteString("\n- Relationships:\n")
	b.WriteString(renderRelationships(gc))

	b.WriteString("\n- Other Known Nations:\n")
	b.WriteString(renderOtherNations(gc))

	b.WriteString("\n- Recent Turn History (Last 5 Turns):\n")
	b.WriteString(renderTurnHistory(gc.RecentTurns))

	b.WriteString("\n- Historical Summary (Previous Eras):\n")
	if gc.HistorySummary != "" {
		b.WriteString(gc.HistorySummary)
	} else {
		b.WriteString("No historical summary available yet.")
	}
	b.WriteString("\n")

	if gc.ScenarioHint != "" {
		fmt.Fprintf(&b, "\n- Scenario Context:\n%s\n", gc.ScenarioHint)
	}

	b.WriteString(`
Analyze this action IN THE CONTEXT OF THE RECENT HISTORY and determine:
1. Is it feasible given the nation's current state?
2. What are the immediate consequences?
3. How will other nations react?
4. What resources are required/affected?
5. How does this build upon or contradict recent actions?
6. If you introduce a NEW nation (one not listed in 'Relationships' or 'Other Known Nations'), you MUST provide its details (government, territories, resources) in the 'new_nations' field.

Respond in JSON format:
{
  "feasibility": "high|medium|low",
  "immediate_consequences": ["consequence1", "consequence2"],
  "nation_reactions": {"nationName": "reaction description"},
  "resource_changes": {"military": -10, "economy": 5, "stability": -2, "influence": 3},
  "relationship_changes": [{"nation1": "nation1Name", "nation2": "nation2Name", "scoreChange": -15}],
  "new_nations": {
    "NationName": {
      "government": "Republic",
      "territories": ["Region1", "Region2"],
      "resources": {"military": 50, "economy": 50, "stability": 50, "influence": 50}
    }
  },
  "narrative": "A detailed description of what happens as a result of this action"
}`)

	return b.String()
}

// BuildEventGenerationPrompt renders the second-stage prompt. It
// enumerates every nation known so far, player first, so the model can
// have non-player nations act on their own and knows which names would
// be new.
func BuildEventGenerationPrompt(gc models.GameContext, playerAction string, interp models.ActionInterpretation) string {
	var b strings.Builder

	b.WriteString("Based on the player's action and its consequences, generate 1-3 significant events that occur this turn.\n\n")
	b.WriteString("Context:\n")
	fmt.Fprintf(&b, "- Turn: %d\n", gc.CurrentTurn)
	fmt.Fprintf(&b, "- Year: %d\n", gc.CurrentYear)
	fmt.Fprintf(&b, "- Player Action: %s\n", playerAction)
	fmt.Fprintf(&b, "- Feasibility: %s\n", interp.Feasibility)
	fmt.Fprintf(&b, "- Consequences: %s\n", strings.Join(interp.ImmediateConsequences, ", "))

	b.WriteString("\nAll Known Nations:\n")
	b.WriteString(renderKnownNations(gc, interp))

	b.WriteString(`
Not every event has to involve the player: nations above may take autonomous actions of their own. If an event introduces a nation not listed above, declare it in "new_nations" with government, territories and resources. Use "nation_updates" for resource changes of non-player nations caused by your events.

Respond in JSON format:
{
  "events": [
    {
      "type": "political|military|diplomatic|economic|other",
      "title": "Brief event title",
      "description": "Detailed event description",
      "affected_nations": ["nation1", "nation2"],
      "impact": {"resourceType": changeAmount}
    }
  ],
  "new_nations": {"NationName": {"government": "...", "territories": [], "resources": {"military": 50, "economy": 50, "stability": 50, "influence": 50}}},
  "nation_updates": {"NationName": {"economy": -5}}
}

A bare JSON array of events is also accepted.`)

	return b.String()
}

// BuildSummarizationPrompt renders the periodic history condensation
// prompt from the current summary and the most recent turns.
func BuildSummarizationPrompt(currentSummary string, recentTurns []models.TurnView) string {
	var b strings.Builder

	b.WriteString("You are the official historian of this nation. Update the historical summary to include the events of the last few turns.\n\n")
	b.WriteString("Current Summary:\n")
	if currentSummary != "" {
		b.WriteString(currentSummary)
	} else {
		b.WriteString("The nation has just begun its journey.")
	}
	b.WriteString("\n\nRecent Events to Add:\n")
	for _, t := range recentTurns {
		fmt.Fprintf(&b, "\nTurn %d:\n  Action: %s\n  Outcome: %s", t.TurnNumber, t.Action, t.Narrative)
	}

	b.WriteString(`

Task:
Write a concise, updated summary (max 2 paragraphs) that integrates the recent events into the overall history. Focus on major trends, eras, and pivotal moments. Do not list every minor detail.

Response Format:
Just the updated summary text.`)

	return b.String()
}

// BuildAdvisorPrompt renders the in-character counsel prompt.
func BuildAdvisorPrompt(gc models.GameContext, question string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are the Royal Advisor to the leader of %s. The year is %d.\n", gc.PlayerNation.Name, gc.CurrentYear)
	b.WriteString("Your duty is to provide strategic counsel, analyze threats, and summarize the state of the realm.\n")
	b.WriteString("Speak in character: wise, loyal, and slightly formal, but clear and concise.\n\n")

	b.WriteString("Current State of the Realm:\n")
	b.WriteString("- Resources:\n")
	r := gc.PlayerNation.Resources
	fmt.Fprintf(&b, "  - Military: %d\n", r.Military)
	fmt.Fprintf(&b, "  - Economy: %d\n", r.Economy)
	fmt.Fprintf(&b, "  - Stability: %d\n", r.Stability)
	fmt.Fprintf(&b, "  - Influence: %d\n", r.Influence)

	b.WriteString("\n- Relationships:\n")
	b.WriteString(renderRelationships(gc))

	b.WriteString("\n- Other Known Nations:\n")
	b.WriteString(renderOtherNations(gc))

	b.WriteString("\n- Recent History:\n")
	b.WriteString(renderTurnHistory(gc.RecentTurns))

	b.WriteString("\n- Historical Context:\n")
	if gc.HistorySummary != "" {
		b.WriteString(gc.HistorySummary)
	} else {
		b.WriteString("The nation is in its early days.")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "\nThe leader asks: %q\n\n", question)
	b.WriteString("Provide your counsel. Keep it under 200 words. Focus on actionable advice or relevant analysis.\n")
	b.WriteString("Format your response using Markdown for better readability (use **bold** for emphasis, bullet points for lists, etc.).")

	return b.String()
}

func renderTurnHistory(turns []models.TurnView) string {
	if len(turns) == 0 {
		return "  No previous turns.\n"
	}
	var b strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&b, "  Turn %d:\n    Action: %s\n    Outcome: %s\n", t.TurnNumber, t.Action, t.Narrative)
		if len(t.Consequences) > 0 {
			fmt.Fprintf(&b, "    Consequences: %s\n", strings.Join(t.Consequences, "; "))
		}
		for _, e := range t.Events {
			fmt.Fprintf(&b, "    Event: %s: %s\n", e.Title, e.Description)
		}
		if len(t.ResourceChanges) > 0 {
			fmt.Fprintf(&b, "    Resource Changes: %s\n", t.ResourceChanges)
		}
	}
	return b.String()
}

func renderRelationships(gc models.GameContext) string {
	if len(gc.Relationships) == 0 {
		return "  None\n"
	}
	var b strings.Builder
	for _, rel := range gc.Relationships {
		other := rel.Nation2
		if other == gc.PlayerNation.Name {
			other = rel.Nation1
		}
		fmt.Fprintf(&b, "  - %s: %s (score: %d)\n", other, rel.Status, rel.Score)
	}
	return b.String()
}

func renderOtherNations(gc models.GameContext) string {
	if len(gc.OtherNations) == 0 {
		return "  None\n"
	}
	var b strings.Builder
	for _, n := range gc.OtherNations {
		fmt.Fprintf(&b, "  - %s (%s)\n", n.Name, n.Government)
	}
	return b.String()
}

// renderKnownNations deduplicates by name with first occurrence winning:
// the player, then known other nations, then any nation the
// interpretation stage introduced.
func renderKnownNations(gc models.GameContext, interp models.ActionInterpretation) string {
	var b strings.Builder
	seen := map[string]bool{}

	p := gc.PlayerNation
	fmt.Fprintf(&b, "  - %s (%s, player) [military %d, economy %d, stability %d, influence %d]\n",
		p.Name, p.Government, p.Resources.Military, p.Resources.Economy, p.Resources.Stability, p.Resources.Influence)
	seen[p.Name] = true

	for _, n := range gc.OtherNations {
		if seen[n.Name] {
			continue
		}
		seen[n.Name] = true
		fmt.Fprintf(&b, "  - %s (%s) [military %d, economy %d, stability %d, influence %d]\n",
			n.Name, n.Government, n.Resources.Military, n.Resources.Economy, n.Resources.Stability, n.Resources.Influence)
	}

	newNames := make([]string, 0, len(interp.NewNations))
	for name := range interp.NewNations {
		if !seen[name] {
			newNames = append(newNames, name)
		}
	}
	sort.Strings(newNames)
	for _, name := range newNames {
		seen[name] = true
		seed := interp.NewNations[name]
		gov := seed.Government
		if gov == "" {
			gov = models.DefaultGovernment
		}
		fmt.Fprintf(&b, "  - %s (%s, newly emerged)\n", name, gov)
	}

	return b.String()
}
