package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chronoflux-server/internal/ai"
	"chronoflux-server/internal/models"
)

// scriptedGateway replays canned responses in call order.
type scriptedGateway struct {
	responses []string
	errs      []error
	prompts   []string
}

func (g *scriptedGateway) Generate(ctx context.Context, prompt string, opts ai.GenerateOptions) (string, error) {
	i := len(g.prompts)
	g.prompts = append(g.prompts, prompt)
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.responses) {
		return g.responses[i], nil
	}
	return "", fmt.Errorf("unexpected call %d", i)
}

func (g *scriptedGateway) ProviderName() string { return "scripted" }
func (g *scriptedGateway) ModelName() string    { return "scripted-model" }

type turnServiceFixture struct {
	*gameServiceFixture
	turnService *TurnService
	gateway     *scriptedGateway
	gameID      uuid.UUID
	playerID    uuid.UUID
}

func newTurnServiceFixture(t *testing.T) *turnServiceFixture {
	t.Helper()
	gsf := newGameServiceFixture(t)
	gateway := &scriptedGateway{}

	scenario, err := gsf.scenarios.GetByName(context.Background(), "World War I")
	require.NoError(t, err)
	game, err := gsf.service.CreateGame(context.Background(), scenario.ID, "germany", nil)
	require.NoError(t, err)

	reconciler := NewReconciler(gsf.games, gsf.nations, gsf.rels, gsf.turns, gsf.events, &fakeTxManager{}, zap.NewNop())
	factory := func(settings models.AISettings) (ai.Gateway, error) { return gateway, nil }
	turnService := NewTurnService(gsf.service, reconciler, gsf.games, gsf.turns, &fakeSettingsRepo{},
		&fakeTxManager{}, nil, factory, 1, zap.NewNop())

	return &turnServiceFixture{
		gameServiceFixture: gsf,
		turnService:        turnService,
		gateway:            gateway,
		gameID:             game.ID,
		playerID:           game.PlayerNationID.UUID,
	}
}

const interpretationResponse = `{
	"feasibility": "high",
	"immediate_consequences": ["France mobilizes"],
	"resource_changes": {"military": -5, "stability": -3},
	"relationship_changes": [{"nation1": "Germany", "nation2": "France", "scoreChange": -40, "statusChange": "at_war"}],
	"narrative": "German troops pour across the border."
}`

const eventResponse = `{
	"events": [
		{"type": "military", "title": "Invasion of France", "description": "The war begins.", "affected_nations": ["Germany", "France"], "impact": {"stability": -2}}
	]
}`

func TestSubmitTurnWithAI(t *testing.T) {
	f := newTurnServiceFixture(t)
	f.gateway.responses = []string{interpretationResponse, eventResponse}

	summary, err := f.turnService.SubmitTurnWithAI(context.Background(), f.gameID, "Invade France")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TurnNumber)
	assert.Equal(t, "German troops pour across the border.", summary.Narrative)
	require.Len(t, summary.Events, 1)
	assert.Equal(t, "Invasion of France", summary.Events[0].Title)

	player, err := f.nations.GetByID(context.Background(), f.playerID)
	require.NoError(t, err)
	assert.Equal(t, 75, player.Resources.Military)
	assert.Equal(t, 57, player.Resources.Stability)

	game, err := f.games.GetByID(context.Background(), f.gameID)
	require.NoError(t, err)
	assert.Equal(t, 2, game.CurrentTurn)

	france := f.nations.byName(f.gameID, "France")
	require.NotNil(t, france)
	rel, err := f.rels.FindBetween(context.Background(), nil, f.gameID, f.playerID, france.ID)
	require.NoError(t, err)
	require.NotNil(t, rel)
	assert.Equal(t, models.RelationAtWar, rel.Status)
	assert.Equal(t, -40, rel.Score)

	// Two AI calls only: no summarization before the interval.
	assert.Len(t, f.gateway.prompts, 2)
}

func TestSubmitTurnWithAI_FallbackOnUnparseableOutput(t *testing.T) {
	f := newTurnServiceFixture(t)
	f.gateway.responses = []string{"I refuse to answer in JSON.", "Still just prose."}

	summary, err := f.turnService.SubmitTurnWithAI(context.Background(), f.gameID, "negotiate peace")
	require.NoError(t, err, "parse failures degrade, they do not abort")
	assert.Equal(t, 2, summary.TurnNumber)
	assert.Contains(t, summary.Narrative, "Germany attempts to negotiate peace")
	require.Len(t, summary.Events, 1)
	assert.Equal(t, "Germany's Action", summary.Events[0].Title)
	assert.Equal(t, models.EventOther, summary.Events[0].Type)

	// The fallback leaves resources untouched.
	player, err := f.nations.GetByID(context.Background(), f.playerID)
	require.NoError(t, err)
	assert.Equal(t, 80, player.Resources.Military)
}

func TestSubmitTurnWithAI_ConnectivityAborts(t *testing.T) {
	f := newTurnServiceFixture(t)
	f.gateway.errs = []error{fmt.Errorf("dial tcp: %w", ai.ErrConnectivity)}

	_, err := f.turnService.SubmitTurnWithAI(context.Background(), f.gameID, "act")
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrConnectivity)

	// Nothing was committed.
	game, err := f.games.GetByID(context.Background(), f.gameID)
	require.NoError(t, err)
	assert.Equal(t, 1, game.CurrentTurn)
	turns, err := f.turns.ListByGame(context.Background(), f.gameID)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestSubmitTurnWithAI_SummarizesOnInterval(t *testing.T) {
	f := newTurnServiceFixture(t)

	// Advance to turn 4; the next committed turn is 5.
	for turn := 2; turn <= 4; turn++ {
		require.NoError(t, f.games.AdvanceTurn(context.Background(), nil, f.gameID, turn, ""))
	}

	f.gateway.responses = []string{
		interpretationResponse,
		eventResponse,
		"  An era of escalation: Germany went to war and Europe followed.  ",
	}

	_, err := f.turnService.SubmitTurnWithAI(context.Background(), f.gameID, "press the advantage")
	require.NoError(t, err)

	require.Len(t, f.gateway.prompts, 3)
	assert.Contains(t, f.gateway.prompts[2], "official historian")

	game, err := f.games.GetByID(context.Background(), f.gameID)
	require.NoError(t, err)
	assert.Equal(t, 5, game.CurrentTurn)
	assert.Equal(t, "An era of escalation: Germany went to war and Europe followed.", game.HistorySummary)
}

func TestSubmitTurnWithAI_SummaryFailureIsSwallowed(t *testing.T) {
	f := newTurnServiceFixture(t)
	for turn := 2; turn <= 4; turn++ {
		require.NoError(t, f.games.AdvanceTurn(context.Background(), nil, f.gameID, turn, ""))
	}

	f.gateway.responses = []string{interpretationResponse, eventResponse}
	f.gateway.errs = []error{nil, nil, fmt.Errorf("500: %w", ai.ErrProvider)}

	_, err := f.turnService.SubmitTurnWithAI(context.Background(), f.gameID, "push on")
	require.NoError(t, err, "summarization must never block a turn")

	game, err := f.games.GetByID(context.Background(), f.gameID)
	require.NoError(t, err)
	assert.Equal(t, 5, game.CurrentTurn)
	assert.Equal(t, "", game.HistorySummary)
}

func TestSubmitTurnWithAI_InactiveGame(t *testing.T) {
	f := newTurnServiceFixture(t)
	require.NoError(t, f.games.SetStatus(context.Background(), f.gameID, models.GameStatusPaused))

	_, err := f.turnService.SubmitTurnWithAI(context.Background(), f.gameID, "act")
	assert.ErrorIs(t, err, models.ErrGameNotActive)
}

func TestSubmitTurn_SkipsAI(t *testing.T) {
	f := newTurnServiceFixture(t)

	result, err := f.turnService.SubmitTurn(context.Background(), f.gameID, "wait")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.TurnNumber)

	turns, err := f.turns.ListByGame(context.Background(), f.gameID)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "wait", turns[0].PlayerAction)
	assert.Contains(t, turns[0].AIResponse.Consequences[0], "AI processing")
	assert.Empty(t, f.gateway.prompts, "no model call in skip mode")
}

func TestAskAdvisor(t *testing.T) {
	f := newTurnServiceFixture(t)
	f.gateway.responses = []string{"  **My liege**, strengthen the eastern front.  "}

	advice, err := f.turnService.AskAdvisor(context.Background(), f.gameID, "Where are we weakest?")
	require.NoError(t, err)
	assert.Equal(t, "**My liege**, strengthen the eastern front.", advice)
	require.Len(t, f.gateway.prompts, 1)
	assert.Contains(t, f.gateway.prompts[0], "Royal Advisor")
}

func TestAskAdvisor_FallbackOnProviderError(t *testing.T) {
	f := newTurnServiceFixture(t)
	f.gateway.errs = []error{fmt.Errorf("503: %w", ai.ErrProvider)}

	advice, err := f.turnService.AskAdvisor(context.Background(), f.gameID, "Counsel me.")
	require.NoError(t, err)
	assert.Contains(t, advice, "My apologies, my liege")
}

func TestAskAdvisor_ConnectivityAborts(t *testing.T) {
	f := newTurnServiceFixture(t)
	f.gateway.errs = []error{fmt.Errorf("dial tcp: %w", ai.ErrConnectivity)}

	_, err := f.turnService.AskAdvisor(context.Background(), f.gameID, "Counsel me.")
	assert.ErrorIs(t, err, ai.ErrConnectivity)
}
