package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chronoflux-server/internal/ai"
	"chronoflux-server/internal/interfaces"
	"chronoflux-server/internal/messaging"
	"chronoflux-server/internal/models"
)

const (
	interpretTemperature = 0.7
	eventTemperature     = 0.8
	summaryTemperature   = 0.6
	advisorTemperature   = 0.7
	maxResponseTokens    = 2000

	// History is condensed whenever the committed turn number is a
	// multiple of this.
	summaryInterval = 5

	placeholderConsequence = "AI processing - consequences will be generated"
	placeholderNarrative   = "AI processing - narrative will be generated"
	advisorFallback        = "My apologies, my liege. My mind is clouded (AI Error). Please try again later."
)

// GatewayFactory builds a gateway for the settings resolved at the
// request boundary. Injected so tests can substitute a stub provider.
type GatewayFactory func(settings models.AISettings) (ai.Gateway, error)

// TurnService orchestrates turn submission: the staged AI pipeline with
// per-stage fallbacks, the no-AI placeholder path and the advisor.
type TurnService struct {
	gameService *GameService
	reconciler  *Reconciler
	games       interfaces.GameRepository
	turns       interfaces.TurnRepository
	settings    interfaces.SettingsRepository
	txManager   interfaces.TxManager
	publisher   messaging.TurnEventPublisher
	newGateway  GatewayFactory
	maxRetries  int
	logger      *zap.Logger
}

func NewTurnService(
	gameService *GameService,
	reconciler *Reconciler,
	games interfaces.GameRepository,
	turns interfaces.TurnRepository,
	settings interfaces.SettingsRepository,
	txManager interfaces.TxManager,
	publisher messaging.TurnEventPublisher,
	newGateway GatewayFactory,
	maxRetries int,
	logger *zap.Logger,
) *TurnService {
	return &TurnService{
		gameService: gameService,
		reconciler:  reconciler,
		games:       games,
		turns:       turns,
		settings:    settings,
		txManager:   txManager,
		publisher:   publisher,
		newGateway:  newGateway,
		maxRetries:  maxRetries,
		logger:      logger.Named("TurnService"),
	}
}

// SubmitTurnResult is returned by the no-AI path.
type SubmitTurnResult struct {
	Success    bool `json:"success"`
	TurnNumber int  `json:"turn_number"`
}

// SubmitTurn is the explicit skip-AI mode: it records the action with
// placeholder content and advances the counter, performing no
// reconciliation at all.
func (s *TurnService) SubmitTurn(ctx context.Context, gameID uuid.UUID, playerAction string) (*SubmitTurnResult, error) {
	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	turnNumber := game.CurrentTurn + 1

	err = s.txManager.WithTx(ctx, func(q interfaces.DBTX) error {
		if err := s.games.AdvanceTurn(ctx, q, gameID, turnNumber, ""); err != nil {
			return err
		}
		return s.turns.Create(ctx, q, &models.Turn{
			ID:           uuid.New(),
			GameID:       gameID,
			TurnNumber:   turnNumber,
			PlayerAction: playerAction,
			AIResponse: models.AIResponse{
				Narrative:    placeholderNarrative,
				Consequences: []string{placeholderConsequence},
				Events:       []models.TurnEvent{},
			},
			CreatedAt: time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Turn submitted without AI",
		zap.String("gameID", gameID.String()),
		zap.Int("turnNumber", turnNumber))
	return &SubmitTurnResult{Success: true, TurnNumber: turnNumber}, nil
}

// SubmitTurnWithAI runs the full pipeline: interpretation, event
// generation, periodic summarization, then one atomic commit.
// Connectivity and auth failures abort the turn; any other stage
// failure degrades to synthetic content so the turn still completes.
func (s *TurnService) SubmitTurnWithAI(ctx context.Context, gameID uuid.UUID, playerAction string) (*models.TurnSummary, error) {
	log := s.logger.With(zap.String("gameID", gameID.String()))

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	gw, err := s.newGateway(settings)
	if err != nil {
		return nil, err
	}

	gc, game, err := s.gameService.BuildGameContext(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.Status != models.GameStatusActive {
		return nil, models.ErrGameNotActive
	}
	turnNumber := game.CurrentTurn + 1

	interp, err := s.interpretAction(ctx, gw, gc, playerAction)
	if err != nil {
		return nil, err
	}

	batch, err := s.generateEvents(ctx, gw, gc, playerAction, interp)
	if err != nil {
		return nil, err
	}

	var historySummary string
	if turnNumber%summaryInterval == 0 {
		historySummary = s.summarizeHistory(ctx, gw, gc)
	}

	payload := models.MergedTurnPayload{
		Interpretation: interp,
		Events:         batch.Events,
		NewNations:     models.MergeNewNations(interp.NewNations, batch.NewNations),
		NationUpdates:  batch.NationUpdates,
		HistorySummary: historySummary,
	}

	summary, err := s.reconciler.CommitTurn(ctx, gameID, playerAction, payload)
	if err != nil {
		return nil, err
	}

	s.publishTurnCommitted(ctx, gameID, playerAction, summary)
	log.Info("AI turn completed", zap.Int("turnNumber", summary.TurnNumber))
	return summary, nil
}

func (s *TurnService) interpretAction(ctx context.Context, gw ai.Gateway, gc models.GameContext, playerAction string) (models.ActionInterpretation, error) {
	prompt := ai.BuildActionInterpretationPrompt(gc, playerAction)
	opts := ai.GenerateOptions{Temperature: interpretTemperature, MaxTokens: maxResponseTokens}

	interp, attempts, err := ai.GenerateParsed[models.ActionInterpretation](ctx, gw, prompt, opts, s.maxRetries, s.retryObserver("interpretation"))
	if err != nil {
		if ai.IsFatal(err) {
			return models.ActionInterpretation{}, err
		}
		s.logger.Warn("Interpretation failed, using fallback",
			zap.Int("attempts", attempts), zap.Error(err))
		return fallbackInterpretation(gc.PlayerNation.Name, playerAction), nil
	}
	interp.Feasibility = models.NormalizeFeasibility(string(interp.Feasibility))
	return interp, nil
}

func (s *TurnService) generateEvents(ctx context.Context, gw ai.Gateway, gc models.GameContext, playerAction string, interp models.ActionInterpretation) (models.EventBatch, error) {
	prompt := ai.BuildEventGenerationPrompt(gc, playerAction, interp)
	opts := ai.GenerateOptions{Temperature: eventTemperature, MaxTokens: maxResponseTokens}

	batch, attempts, err := ai.GenerateParsed[models.EventBatch](ctx, gw, prompt, opts, s.maxRetries, s.retryObserver("events"))
	if err != nil {
		if ai.IsFatal(err) {
			return models.EventBatch{}, err
		}
		s.logger.Warn("Event generation failed, using fallback",
			zap.Int("attempts", attempts), zap.Error(err))
		return fallbackEventBatch(gc.PlayerNation.Name, interp), nil
	}
	return batch, nil
}

// summarizeHistory is a single best-effort call. Its failure is logged
// and swallowed: summarization must never block a turn.
func (s *TurnService) summarizeHistory(ctx context.Context, gw ai.Gateway, gc models.GameContext) string {
	prompt := ai.BuildSummarizationPrompt(gc.HistorySummary, gc.RecentTurns)
	raw, err := gw.Generate(ctx, prompt, ai.GenerateOptions{Temperature: summaryTemperature, MaxTokens: maxResponseTokens})
	if err != nil {
		s.logger.Warn("History summarization failed, keeping previous summary", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(raw)
}

// AskAdvisor answers an in-character strategy question against the
// current world state. Non-fatal failures degrade to an apology.
func (s *TurnService) AskAdvisor(ctx context.Context, gameID uuid.UUID, question string) (string, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return "", err
	}
	gw, err := s.newGateway(settings)
	if err != nil {
		return "", err
	}

	gc, _, err := s.gameService.BuildGameContext(ctx, gameID)
	if err != nil {
		return "", err
	}

	prompt := ai.BuildAdvisorPrompt(gc, question)
	answer, err := gw.Generate(ctx, prompt, ai.GenerateOptions{Temperature: advisorTemperature, MaxTokens: maxResponseTokens})
	if err != nil {
		if ai.IsFatal(err) {
			return "", err
		}
		s.logger.Warn("Advisor call failed", zap.Error(err))
		return advisorFallback, nil
	}
	return strings.TrimSpace(answer), nil
}

func (s *TurnService) retryObserver(stage string) ai.RetryObserver {
	return func(attempt int, err error) {
		s.logger.Warn("AI stage attempt failed",
			zap.String("stage", stage),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
}

// publishTurnCommitted is best effort; the turn is already durable.
func (s *TurnService) publishTurnCommitted(ctx context.Context, gameID uuid.UUID, playerAction string, summary *models.TurnSummary) {
	if s.publisher == nil {
		return
	}
	payload := messaging.TurnCommittedPayload{
		GameID:     gameID.String(),
		TurnID:     summary.TurnID.String(),
		TurnNumber: summary.TurnNumber,
		Action:     playerAction,
		Narrative:  summary.Narrative,
		Events:     summary.Events,
		Timestamp:  time.Now(),
	}
	if err := s.publisher.PublishTurnCommitted(ctx, payload); err != nil {
		s.logger.Warn("Turn event publish failed", zap.Error(err))
	}
}

func fallbackInterpretation(playerNation, playerAction string) models.ActionInterpretation {
	return models.ActionInterpretation{
		Feasibility:           models.FeasibilityMedium,
		ImmediateConsequences: []string{"Action being evaluated..."},
		NationReactions:       map[string]string{},
		ResourceChanges:       map[string]float64{},
		Narrative:             fmt.Sprintf("%s attempts to %s. The consequences are still unfolding.", playerNation, playerAction),
	}
}

func fallbackEventBatch(playerNation string, interp models.ActionInterpretation) models.EventBatch {
	return models.EventBatch{
		Events: []models.ProposedEvent{
			{
				Type:            string(models.EventOther),
				Title:           fmt.Sprintf("%s's Action", playerNation),
				Description:     interp.Narrative,
				AffectedNations: []string{playerNation},
				Impact:          interp.ResourceChanges,
			},
		},
	}
}
