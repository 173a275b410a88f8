package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chronoflux-server/internal/interfaces"
	"chronoflux-server/internal/models"
)

const recentTurnWindow = 5

// GameService owns game lifecycle and read models: creation from a
// scenario template, world-state queries, prompt context assembly and
// whole-game deletion.
type GameService struct {
	games         interfaces.GameRepository
	nations       interfaces.NationRepository
	relationships interfaces.RelationshipRepository
	turns         interfaces.TurnRepository
	events        interfaces.EventRepository
	scenarios     interfaces.ScenarioRepository
	txManager     interfaces.TxManager
	logger        *zap.Logger
}

func NewGameService(
	games interfaces.GameRepository,
	nations interfaces.NationRepository,
	relationships interfaces.RelationshipRepository,
	turns interfaces.TurnRepository,
	events interfaces.EventRepository,
	scenarios interfaces.ScenarioRepository,
	txManager interfaces.TxManager,
	logger *zap.Logger,
) *GameService {
	return &GameService{
		games:         games,
		nations:       nations,
		relationships: relationships,
		turns:         turns,
		events:        events,
		scenarios:     scenarios,
		txManager:     txManager,
		logger:        logger.Named("GameService"),
	}
}

// EnsureBuiltinScenarios seeds the shipped scenarios. Safe to call on
// every startup.
func (s *GameService) EnsureBuiltinScenarios(ctx context.Context) error {
	now := time.Now()
	for _, sc := range builtinScenarios() {
		sc.ID = uuid.New()
		sc.CreatedAt = now
		sc.UpdatedAt = now
		if err := s.scenarios.Create(ctx, &sc); err != nil {
			return fmt.Errorf("failed to seed scenario %q: %w", sc.Name, err)
		}
	}
	s.logger.Info("Builtin scenarios ensured")
	return nil
}

// CreateGame instantiates a game from a scenario template. All seed
// nations and relationships are inserted in one transaction; the nation
// whose seed key equals playerNationKey becomes the player's.
func (s *GameService) CreateGame(ctx context.Context, scenarioID uuid.UUID, playerNationKey string, playerID *string) (*models.Game, error) {
	log := s.logger.With(zap.String("scenarioID", scenarioID.String()), zap.String("playerNationKey", playerNationKey))

	scenario, err := s.scenarios.GetByID(ctx, scenarioID)
	if err != nil {
		return nil, err
	}

	if _, ok := scenario.InitialWorldState.SeedNationByKey(playerNationKey); !ok {
		return nil, models.ErrSeedNationMissing
	}

	now := time.Now()
	game := &models.Game{
		ID:             uuid.New(),
		ScenarioID:     scenario.ID,
		PlayerID:       playerID,
		CurrentTurn:    1,
		Status:         models.GameStatusActive,
		HistorySummary: "",
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.txManager.WithTx(ctx, func(q interfaces.DBTX) error {
		if err := s.games.Create(ctx, q, game); err != nil {
			return err
		}

		keyToID := make(map[string]uuid.UUID, len(scenario.InitialWorldState.Nations))
		for _, seed := range scenario.InitialWorldState.Nations {
			nation := &models.Nation{
				ID:                 uuid.New(),
				GameID:             game.ID,
				Name:               seed.Name,
				Government:         seed.Government,
				Territories:        seed.Territories,
				Resources:          seed.Resources.Clamped(),
				IsPlayerControlled: seed.Key == playerNationKey,
				CreatedAt:          now,
				UpdatedAt:          now,
			}
			if nation.Territories == nil {
				nation.Territories = []string{}
			}
			if err := s.nations.Create(ctx, q, nation); err != nil {
				return err
			}
			keyToID[seed.Key] = nation.ID
			if nation.IsPlayerControlled {
				game.PlayerNationID = uuid.NullUUID{UUID: nation.ID, Valid: true}
			}
		}

		for _, rel := range scenario.InitialWorldState.Relationships {
			id1, ok1 := keyToID[rel.Nation1Key]
			id2, ok2 := keyToID[rel.Nation2Key]
			if !ok1 || !ok2 || id1 == id2 {
				continue
			}
			status := rel.Status
			if !models.ValidRelationStatus(status) {
				status = models.RelationNeutral
			}
			row := &models.Relationship{
				ID:               uuid.New(),
				GameID:           game.ID,
				Nation1ID:        id1,
				Nation2ID:        id2,
				Status:           status,
				Score:            models.ClampRelation(rel.Score),
				TradeAgreement:   rel.TradeAgreement,
				MilitaryAlliance: rel.MilitaryAlliance,
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			if err := s.relationships.Create(ctx, q, row); err != nil {
				return err
			}
		}

		return s.games.SetPlayerNation(ctx, q, game.ID, game.PlayerNationID.UUID)
	})
	if err != nil {
		log.Error("Failed to create game", zap.Error(err))
		return nil, err
	}

	log.Info("Game created", zap.String("gameID", game.ID.String()))
	return game, nil
}

func (s *GameService) GetGame(ctx context.Context, gameID uuid.UUID) (*models.Game, error) {
	return s.games.GetByID(ctx, gameID)
}

func (s *GameService) ListGames(ctx context.Context, playerID string) ([]models.Game, error) {
	return s.games.ListByPlayer(ctx, playerID)
}

func (s *GameService) SetGameStatus(ctx context.Context, gameID uuid.UUID, status models.GameStatus) error {
	return s.games.SetStatus(ctx, gameID, status)
}

// DeleteGame removes the game and everything owned by it in one
// transaction. Children go first so the rows are gone even if a
// migration drifted from ON DELETE CASCADE.
func (s *GameService) DeleteGame(ctx context.Context, gameID uuid.UUID) error {
	if _, err := s.games.GetByID(ctx, gameID); err != nil {
		return err
	}
	return s.txManager.WithTx(ctx, func(q interfaces.DBTX) error {
		if err := s.events.DeleteByGame(ctx, q, gameID); err != nil {
			return err
		}
		if err := s.turns.DeleteByGame(ctx, q, gameID); err != nil {
			return err
		}
		if err := s.relationships.DeleteByGame(ctx, q, gameID); err != nil {
			return err
		}
		if err := s.nations.DeleteByGame(ctx, q, gameID); err != nil {
			return err
		}
		return s.games.Delete(ctx, q, gameID)
	})
}

// GetWorldState returns the combined read model for a game.
func (s *GameService) GetWorldState(ctx context.Context, gameID uuid.UUID) (*models.WorldSnapshot, error) {
	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	nations, err := s.nations.ListByGame(ctx, nil, gameID)
	if err != nil {
		return nil, err
	}
	relationships, err := s.relationships.ListByGame(ctx, nil, gameID)
	if err != nil {
		return nil, err
	}
	events, err := s.events.ListByGame(ctx, gameID, 20)
	if err != nil {
		return nil, err
	}
	return &models.WorldSnapshot{
		Game:          game,
		Nations:       nations,
		Relationships: relationships,
		RecentEvents:  events,
	}, nil
}

func (s *GameService) ListTurns(ctx context.Context, gameID uuid.UUID) ([]models.Turn, error) {
	return s.turns.ListByGame(ctx, gameID)
}

// SetNationResources overwrites a nation's resources directly, clamped
// to the valid range. The nation must belong to the given game.
func (s *GameService) SetNationResources(ctx context.Context, gameID, nationID uuid.UUID, resources models.Resources) (*models.Nation, error) {
	nation, err := s.nations.GetByID(ctx, nationID)
	if err != nil {
		return nil, err
	}
	if nation.GameID != gameID {
		return nil, models.ErrNationNotInGame
	}

	nation.Resources = resources.Clamped()
	if err := s.nations.UpdateResources(ctx, nil, nation.ID, nation.Resources); err != nil {
		return nil, err
	}
	nation.UpdatedAt = time.Now()

	s.logger.Info("Nation resources set",
		zap.String("gameID", gameID.String()),
		zap.String("nationID", nation.ID.String()))
	return nation, nil
}

// SetRelationshipStatus sets the diplomatic status and score between two
// nations of a game. The pair is looked up in either order; a missing
// row is created. The score is clamped to [-100, 100].
func (s *GameService) SetRelationshipStatus(ctx context.Context, gameID, nation1ID, nation2ID uuid.UUID, status models.RelationStatus, score int) (*models.Relationship, error) {
	if nation1ID == nation2ID {
		return nil, models.ErrNationNotFound
	}
	for _, id := range []uuid.UUID{nation1ID, nation2ID} {
		nation, err := s.nations.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if nation.GameID != gameID {
			return nil, models.ErrNationNotInGame
		}
	}

	rel, err := s.relationships.FindBetween(ctx, nil, gameID, nation1ID, nation2ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if rel == nil {
		rel = &models.Relationship{
			ID:        uuid.New(),
			GameID:    gameID,
			Nation1ID: nation1ID,
			Nation2ID: nation2ID,
			Status:    status,
			Score:     models.ClampRelation(score),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.relationships.Create(ctx, nil, rel); err != nil {
			return nil, err
		}
	} else {
		rel.Status = status
		rel.Score = models.ClampRelation(score)
		rel.UpdatedAt = now
		if err := s.relationships.Update(ctx, nil, rel); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Relationship status set",
		zap.String("gameID", gameID.String()),
		zap.String("status", string(status)))
	return rel, nil
}

// BuildGameContext assembles the prompt-facing snapshot: player nation,
// the rest of the world, diplomacy, the last five turns oldest first and
// the running summary.
func (s *GameService) BuildGameContext(ctx context.Context, gameID uuid.UUID) (models.GameContext, *models.Game, error) {
	var gc models.GameContext

	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return gc, nil, err
	}
	if !game.PlayerNationID.Valid {
		return gc, nil, models.ErrPlayerNationUnset
	}

	scenario, err := s.scenarios.GetByID(ctx, game.ScenarioID)
	if err != nil {
		return gc, nil, err
	}

	nations, err := s.nations.ListByGame(ctx, nil, gameID)
	if err != nil {
		return gc, nil, err
	}

	nameByID := make(map[uuid.UUID]string, len(nations))
	var playerFound bool
	for _, n := range nations {
		nameByID[n.ID] = n.Name
		view := models.NationView{
			Name:        n.Name,
			Government:  n.Government,
			Territories: n.Territories,
			Resources:   n.Resources,
			IsPlayer:    n.ID == game.PlayerNationID.UUID,
		}
		if view.IsPlayer {
			gc.PlayerNation = view
			playerFound = true
		} else {
			gc.OtherNations = append(gc.OtherNations, view)
		}
	}
	if !playerFound {
		return gc, nil, models.ErrNationNotFound
	}

	relationships, err := s.relationships.ListByGame(ctx, nil, gameID)
	if err != nil {
		return gc, nil, err
	}
	// Prompts present diplomacy from the player's side; rows between two
	// non-player nations stay out of the snapshot.
	for _, rel := range relationships {
		if rel.Nation1ID != game.PlayerNationID.UUID && rel.Nation2ID != game.PlayerNationID.UUID {
			continue
		}
		gc.Relationships = append(gc.Relationships, models.RelationshipView{
			Nation1: nameByID[rel.Nation1ID],
			Nation2: nameByID[rel.Nation2ID],
			Status:  rel.Status,
			Score:   rel.Score,
		})
	}

	recent, err := s.turns.ListRecent(ctx, gameID, recentTurnWindow)
	if err != nil {
		return gc, nil, err
	}
	// ListRecent is newest first; prompts want chronological order.
	for i := len(recent) - 1; i >= 0; i-- {
		t := recent[i]
		gc.RecentTurns = append(gc.RecentTurns, models.TurnView{
			TurnNumber:      t.TurnNumber,
			Action:          t.PlayerAction,
			Narrative:       t.AIResponse.Narrative,
			Consequences:    t.AIResponse.Consequences,
			Events:          t.AIResponse.Events,
			ResourceChanges: t.AIResponse.WorldStateChanges,
		})
	}

	gc.HistorySummary = game.HistorySummary
	gc.CurrentTurn = game.CurrentTurn
	gc.CurrentYear = scenario.StartYear + game.CurrentTurn - 1
	gc.ScenarioHint = scenario.AIContext
	gc.GlobalEvents = scenario.InitialWorldState.GlobalEvents

	return gc, game, nil
}

// Scenario CRUD. Built-in scenarios are immutable; only user-authored
// ones can change.

func (s *GameService) ListScenarios(ctx context.Context) ([]models.Scenario, error) {
	return s.scenarios.List(ctx)
}

func (s *GameService) GetScenario(ctx context.Context, id uuid.UUID) (*models.Scenario, error) {
	return s.scenarios.GetByID(ctx, id)
}

func (s *GameService) CreateScenario(ctx context.Context, scenario *models.Scenario) error {
	now := time.Now()
	scenario.ID = uuid.New()
	scenario.IsCustom = true
	scenario.CreatedAt = now
	scenario.UpdatedAt = now
	return s.scenarios.Create(ctx, scenario)
}

func (s *GameService) UpdateScenario(ctx context.Context, scenario *models.Scenario) error {
	return s.scenarios.Update(ctx, scenario)
}

func (s *GameService) DeleteScenario(ctx context.Context, id uuid.UUID) error {
	return s.scenarios.Delete(ctx, id)
}
