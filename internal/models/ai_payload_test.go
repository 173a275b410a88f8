package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResources_Apply(t *testing.T) {
	base := Resources{Military: 80, Economy: 70, Stability: 60, Influence: 70}

	t.Run("plain deltas", func(t *testing.T) {
		out := base.Apply(map[string]float64{"military": -5, "stability": -3})
		assert.Equal(t, 75, out.Military)
		assert.Equal(t, 57, out.Stability)
		assert.Equal(t, 70, out.Economy)
	})

	t.Run("clamps at zero", func(t *testing.T) {
		out := base.Apply(map[string]float64{"economy": -200})
		assert.Equal(t, 0, out.Economy)
	})

	t.Run("clamps at hundred", func(t *testing.T) {
		out := base.Apply(map[string]float64{"influence": 500})
		assert.Equal(t, 100, out.Influence)
	})

	t.Run("fractions truncate toward zero", func(t *testing.T) {
		out := base.Apply(map[string]float64{"military": -2.9, "economy": 3.7})
		assert.Equal(t, 78, out.Military)
		assert.Equal(t, 73, out.Economy)
	})

	t.Run("unknown keys ignored", func(t *testing.T) {
		out := base.Apply(map[string]float64{"morale": -50})
		assert.Equal(t, base, out)
	})
}

func TestNationSeed_TracksExplicitResources(t *testing.T) {
	t.Run("resources present", func(t *testing.T) {
		var seed NationSeed
		require.NoError(t, json.Unmarshal([]byte(`{"government": "Republic", "resources": {"military": 30}}`), &seed))
		assert.True(t, seed.HasResource)
		assert.Equal(t, 30, seed.Resources.Military)
	})

	t.Run("resources absent", func(t *testing.T) {
		var seed NationSeed
		require.NoError(t, json.Unmarshal([]byte(`{"government": "Republic", "territories": ["North"]}`), &seed))
		assert.False(t, seed.HasResource)
		assert.Equal(t, []string{"North"}, seed.Territories)
	})
}

func TestEventBatch_Unmarshal(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		var batch EventBatch
		require.NoError(t, json.Unmarshal([]byte(`[{"type": "military", "title": "Clash", "description": "d", "affected_nations": ["France"]}]`), &batch))
		require.Len(t, batch.Events, 1)
		assert.Equal(t, "Clash", batch.Events[0].Title)
		assert.Nil(t, batch.NewNations)
	})

	t.Run("object with updates", func(t *testing.T) {
		var batch EventBatch
		raw := `{"events": [], "new_nations": {"Belgium": {"government": "Monarchy"}}, "nation_updates": {"France": {"economy": -5}}}`
		require.NoError(t, json.Unmarshal([]byte(raw), &batch))
		assert.Empty(t, batch.Events)
		assert.Equal(t, "Monarchy", batch.NewNations["Belgium"].Government)
		assert.Equal(t, -5.0, batch.NationUpdates["France"]["economy"])
	})

	t.Run("leading whitespace before array", func(t *testing.T) {
		var batch EventBatch
		require.NoError(t, json.Unmarshal([]byte("\n\t []"), &batch))
		assert.Empty(t, batch.Events)
	})
}

func TestMergeNewNations(t *testing.T) {
	interp := map[string]NationSeed{"Belgium": {Government: "Monarchy"}}
	events := map[string]NationSeed{
		"Belgium": {Government: "Republic"},
		"Serbia":  {Government: "Kingdom"},
	}

	merged := MergeNewNations(interp, events)
	require.Len(t, merged, 2)
	assert.Equal(t, "Monarchy", merged["Belgium"].Government, "interpretation definition wins")
	assert.Equal(t, "Kingdom", merged["Serbia"].Government)

	assert.Nil(t, MergeNewNations(nil, nil))
}

func TestNormalizeFeasibility(t *testing.T) {
	assert.Equal(t, FeasibilityHigh, NormalizeFeasibility("high"))
	assert.Equal(t, FeasibilityMedium, NormalizeFeasibility("plausible"))
	assert.Equal(t, FeasibilityMedium, NormalizeFeasibility(""))
}

func TestNormalizeEventType(t *testing.T) {
	assert.Equal(t, EventMilitary, NormalizeEventType("military"))
	assert.Equal(t, EventOther, NormalizeEventType("catastrophic"))
}

func TestClampRelation(t *testing.T) {
	assert.Equal(t, -100, ClampRelation(-250))
	assert.Equal(t, 100, ClampRelation(150))
	assert.Equal(t, 42, ClampRelation(42))
}

func TestActionInterpretation_Validate(t *testing.T) {
	empty := ActionInterpretation{}
	assert.Error(t, empty.Validate())

	withNarrative := ActionInterpretation{Narrative: "something happens"}
	assert.NoError(t, withNarrative.Validate())

	withConsequences := ActionInterpretation{ImmediateConsequences: []string{"a"}}
	assert.NoError(t, withConsequences.Validate())
}
