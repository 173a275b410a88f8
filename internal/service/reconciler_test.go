package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chronoflux-server/internal/interfaces"
	"chronoflux-server/internal/models"
)

type reconcilerFixture struct {
	reconciler *Reconciler
	games      *fakeGameRepo
	nations    *fakeNationRepo
	rels       *fakeRelationshipRepo
	turns      *fakeTurnRepo
	events     *fakeEventRepo
	gameID     uuid.UUID
	playerID   uuid.UUID
	franceID   uuid.UUID
}

func newReconcilerFixture(t *testing.T) *reconcilerFixture {
	t.Helper()

	games := newFakeGameRepo()
	nations := newFakeNationRepo()
	rels := newFakeRelationshipRepo()
	turns := &fakeTurnRepo{}
	events := &fakeEventRepo{}

	f := &reconcilerFixture{
		reconciler: NewReconciler(games, nations, rels, turns, events, &fakeTxManager{}, zap.NewNop()),
		games:      games,
		nations:    nations,
		rels:       rels,
		turns:      turns,
		events:     events,
		gameID:     uuid.New(),
		playerID:   uuid.New(),
		franceID:   uuid.New(),
	}

	ctx := context.Background()
	now := time.Now()
	require.NoError(t, nations.Create(ctx, nil, &models.Nation{
		ID: f.playerID, GameID: f.gameID, Name: "Germany", Government: "Empire",
		Resources:          models.Resources{Military: 80, Economy: 70, Stability: 60, Influence: 70},
		IsPlayerControlled: true, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, nations.Create(ctx, nil, &models.Nation{
		ID: f.franceID, GameID: f.gameID, Name: "France", Government: "Republic",
		Resources: models.Resources{Military: 70, Economy: 60, Stability: 50, Influence: 60},
		CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, games.Create(ctx, nil, &models.Game{
		ID: f.gameID, ScenarioID: uuid.New(),
		PlayerNationID: uuid.NullUUID{UUID: f.playerID, Valid: true},
		CurrentTurn:    1, Status: models.GameStatusActive,
		CreatedAt: now, UpdatedAt: now,
	}))
	return f
}

func TestCommitTurn_AppliesResourceChanges(t *testing.T) {
	f := newReconcilerFixture(t)

	payload := models.MergedTurnPayload{
		Interpretation: models.ActionInterpretation{
			Feasibility:           models.FeasibilityHigh,
			ImmediateConsequences: []string{"Troops cross the border"},
			ResourceChanges:       map[string]float64{"military": -5, "stability": -3},
			Narrative:             "War begins.",
		},
		Events: []models.ProposedEvent{
			{Type: "military", Title: "Invasion", Description: "Germany invades.", AffectedNations: []string{"Germany", "France"}},
		},
	}

	summary, err := f.reconciler.CommitTurn(context.Background(), f.gameID, "Invade France", payload)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TurnNumber)
	assert.Equal(t, "War begins.", summary.Narrative)

	player, err := f.nations.GetByID(context.Background(), f.playerID)
	require.NoError(t, err)
	assert.Equal(t, 75, player.Resources.Military)
	assert.Equal(t, 57, player.Resources.Stability)

	game, err := f.games.GetByID(context.Background(), f.gameID)
	require.NoError(t, err)
	assert.Equal(t, 2, game.CurrentTurn)

	turns, err := f.turns.ListByGame(context.Background(), f.gameID)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "Invade France", turns[0].PlayerAction)
	require.Len(t, turns[0].AIResponse.Events, 1)

	events, err := f.events.ListByGame(context.Background(), f.gameID, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventMilitary, events[0].Type)
	assert.Len(t, events[0].AffectedNations, 2)
}

func TestCommitTurn_ClampsResources(t *testing.T) {
	f := newReconcilerFixture(t)

	payload := models.MergedTurnPayload{
		Interpretation: models.ActionInterpretation{
			ResourceChanges: map[string]float64{"military": 500, "economy": -500},
			Narrative:       "extremes",
		},
	}

	_, err := f.reconciler.CommitTurn(context.Background(), f.gameID, "do everything", payload)
	require.NoError(t, err)

	player, err := f.nations.GetByID(context.Background(), f.playerID)
	require.NoError(t, err)
	assert.Equal(t, 100, player.Resources.Military)
	assert.Equal(t, 0, player.Resources.Economy)
}

// racingTxManager advances the turn counter right before running the
// callback, simulating a concurrent commit that wins the race.
type racingTxManager struct {
	games  *fakeGameRepo
	gameID uuid.UUID
}

func (r *racingTxManager) WithTx(ctx context.Context, fn func(q interfaces.DBTX) error) error {
	game, err := r.games.GetByID(ctx, r.gameID)
	if err != nil {
		return err
	}
	if err := r.games.AdvanceTurn(ctx, nil, r.gameID, game.CurrentTurn+1, ""); err != nil {
		return err
	}
	return fn(nil)
}

func TestCommitTurn_TurnConflict(t *testing.T) {
	f := newReconcilerFixture(t)
	racing := NewReconciler(f.games, f.nations, f.rels, f.turns, f.events,
		&racingTxManager{games: f.games, gameID: f.gameID}, zap.NewNop())

	payload := models.MergedTurnPayload{
		Interpretation: models.ActionInterpretation{Narrative: "too slow"},
	}
	_, err := racing.CommitTurn(context.Background(), f.gameID, "act", payload)
	assert.ErrorIs(t, err, models.ErrTurnConflict)

	// The losing commit wrote nothing.
	turns, err := f.turns.ListByGame(context.Background(), f.gameID)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestCommitTurn_AutoCreatesNations(t *testing.T) {
	f := newReconcilerFixture(t)

	payload := models.MergedTurnPayload{
		Interpretation: models.ActionInterpretation{Narrative: "expansion"},
		NewNations: map[string]models.NationSeed{
			"Belgium": {Government: "Monarchy", Territories: []string{"Flanders"}},
		},
		Events: []models.ProposedEvent{
			{Type: "diplomatic", Title: "New Power", Description: "d", AffectedNations: []string{"Serbia"}},
		},
	}

	_, err := f.reconciler.CommitTurn(context.Background(), f.gameID, "recognize neighbors", payload)
	require.NoError(t, err)

	belgium := f.nations.byName(f.gameID, "Belgium")
	require.NotNil(t, belgium)
	assert.Equal(t, "Monarchy", belgium.Government)
	assert.Equal(t, []string{"Flanders"}, belgium.Territories)
	// No explicit resources in the seed, defaults apply.
	assert.Equal(t, models.DefaultResources(), belgium.Resources)

	serbia := f.nations.byName(f.gameID, "Serbia")
	require.NotNil(t, serbia)
	assert.Equal(t, models.DefaultGovernment, serbia.Government)
	assert.Equal(t, models.DefaultResources(), serbia.Resources)
}

func TestCommitTurn_AutoCreateUsesSeedResourcesOnce(t *testing.T) {
	f := newReconcilerFixture(t)

	payload := models.MergedTurnPayload{
		Interpretation: models.ActionInterpretation{
			Narrative: "alliances",
			RelationshipChanges: []models.RelationshipChange{
				{Nation1: "Germany", Nation2: "Belgium", ScoreChange: 10},
			},
		},
		NewNations: map[string]models.NationSeed{
			"Belgium": {Resources: models.Resources{Military: 150, Economy: 30, Stability: -5, Influence: 40}, HasResource: true},
		},
		NationUpdates: map[string]map[string]float64{
			"Belgium": {"economy": 5},
		},
	}

	_, err := f.reconciler.CommitTurn(context.Background(), f.gameID, "court Belgium", payload)
	require.NoError(t, err)

	// Created exactly once: seed resources clamped, then the update applied.
	belgium := f.nations.byName(f.gameID, "Belgium")
	require.NotNil(t, belgium)
	assert.Equal(t, 100, belgium.Resources.Military)
	assert.Equal(t, 35, belgium.Resources.Economy)
	assert.Equal(t, 0, belgium.Resources.Stability)

	count := 0
	all, _ := f.nations.ListByGame(context.Background(), nil, f.gameID)
	for _, n := range all {
		if n.Name == "Belgium" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestCommitTurn_RelationshipCreateAndUpdate(t *testing.T) {
	f := newReconcilerFixture(t)

	create := models.MergedTurnPayload{
		Interpretation: models.ActionInterpretation{
			Narrative: "tension",
			RelationshipChanges: []models.RelationshipChange{
				{Nation1: "Germany", Nation2: "France", ScoreChange: -30},
			},
		},
	}
	_, err := f.reconciler.CommitTurn(context.Background(), f.gameID, "provoke France", create)
	require.NoError(t, err)

	rel, err := f.rels.FindBetween(context.Background(), nil, f.gameID, f.playerID, f.franceID)
	require.NoError(t, err)
	require.NotNil(t, rel)
	assert.Equal(t, -30, rel.Score)
	assert.Equal(t, models.RelationNeutral, rel.Status, "missing status defaults to neutral")

	// A later change finds the same pair with the nations reversed.
	update := models.MergedTurnPayload{
		Interpretation: models.ActionInterpretation{
			Narrative: "escalation",
			RelationshipChanges: []models.RelationshipChange{
				{Nation1: "France", Nation2: "Germany", ScoreChange: -80, Status: "at_war"},
			},
		},
	}
	_, err = f.reconciler.CommitTurn(context.Background(), f.gameID, "declare war", update)
	require.NoError(t, err)

	rel, err = f.rels.FindBetween(context.Background(), nil, f.gameID, f.franceID, f.playerID)
	require.NoError(t, err)
	require.NotNil(t, rel)
	assert.Equal(t, -100, rel.Score, "score clamps at -100")
	assert.Equal(t, models.RelationAtWar, rel.Status)
}

func TestCommitTurn_SkipsSelfAndEmptyRelationships(t *testing.T) {
	f := newReconcilerFixture(t)

	payload := models.MergedTurnPayload{
		Interpretation: models.ActionInterpretation{
			Narrative: "noise",
			RelationshipChanges: []models.RelationshipChange{
				{Nation1: "Germany", Nation2: "Germany", ScoreChange: 10},
				{Nation1: "", Nation2: "France", ScoreChange: 10},
			},
		},
	}
	_, err := f.reconciler.CommitTurn(context.Background(), f.gameID, "nothing real", payload)
	require.NoError(t, err)

	rels, err := f.rels.ListByGame(context.Background(), nil, f.gameID)
	require.NoError(t, err)
	assert.Empty(t, rels)
}

func TestCommitTurn_NationUpdatesSkipPlayer(t *testing.T) {
	f := newReconcilerFixture(t)

	payload := models.MergedTurnPayload{
		Interpretation: models.ActionInterpretation{
			Narrative:       "economics",
			ResourceChanges: map[string]float64{"economy": 5},
		},
		NationUpdates: map[string]map[string]float64{
			"Germany": {"economy": -50},
			"France":  {"economy": -10},
		},
	}
	_, err := f.reconciler.CommitTurn(context.Background(), f.gameID, "trade embargo", payload)
	require.NoError(t, err)

	player, err := f.nations.GetByID(context.Background(), f.playerID)
	require.NoError(t, err)
	assert.Equal(t, 75, player.Resources.Economy, "only the interpretation delta touches the player")

	france, err := f.nations.GetByID(context.Background(), f.franceID)
	require.NoError(t, err)
	assert.Equal(t, 50, france.Resources.Economy)
}

func TestCommitTurn_PlayerNationRequired(t *testing.T) {
	f := newReconcilerFixture(t)

	game, err := f.games.GetByID(context.Background(), f.gameID)
	require.NoError(t, err)
	game.PlayerNationID = uuid.NullUUID{}
	require.NoError(t, f.games.Create(context.Background(), nil, game))

	_, err = f.reconciler.CommitTurn(context.Background(), f.gameID, "act", models.MergedTurnPayload{})
	assert.ErrorIs(t, err, models.ErrPlayerNationUnset)
}

func TestCommitTurn_StoresHistorySummary(t *testing.T) {
	f := newReconcilerFixture(t)

	payload := models.MergedTurnPayload{
		Interpretation: models.ActionInterpretation{Narrative: "an era ends"},
		HistorySummary: "The early war years were brutal.",
	}
	_, err := f.reconciler.CommitTurn(context.Background(), f.gameID, "pause and reflect", payload)
	require.NoError(t, err)

	game, err := f.games.GetByID(context.Background(), f.gameID)
	require.NoError(t, err)
	assert.Equal(t, "The early war years were brutal.", game.HistorySummary)
}
