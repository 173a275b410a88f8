package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chronoflux-server/internal/interfaces"
	"chronoflux-server/internal/models"
)

// Reconciler turns a merged AI payload into one atomic world-state
// transition: resource deltas, relationship changes, event rows, the
// turn record and the counter advance all commit or roll back together.
type Reconciler struct {
	games         interfaces.GameRepository
	nations       interfaces.NationRepository
	relationships interfaces.RelationshipRepository
	turns         interfaces.TurnRepository
	events        interfaces.EventRepository
	txManager     interfaces.TxManager
	logger        *zap.Logger
}

func NewReconciler(
	games interfaces.GameRepository,
	nations interfaces.NationRepository,
	relationships interfaces.RelationshipRepository,
	turns interfaces.TurnRepository,
	events interfaces.EventRepository,
	txManager interfaces.TxManager,
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		games:         games,
		nations:       nations,
		relationships: relationships,
		turns:         turns,
		events:        events,
		txManager:     txManager,
		logger:        logger.Named("Reconciler"),
	}
}

// nationResolver maps free-text nation names from AI payloads to stable
// identities. The cache lives for exactly one turn, so a nation
// mentioned in several places is auto-created once.
type nationResolver struct {
	ctx     context.Context
	q       interfaces.DBTX
	repo    interfaces.NationRepository
	gameID  uuid.UUID
	byName  map[string]*models.Nation
	seeds   map[string]models.NationSeed
	created []string
	logger  *zap.Logger
}

func newNationResolver(ctx context.Context, q interfaces.DBTX, repo interfaces.NationRepository, gameID uuid.UUID, existing []models.Nation, seeds map[string]models.NationSeed, logger *zap.Logger) *nationResolver {
	byName := make(map[string]*models.Nation, len(existing))
	for i := range existing {
		byName[existing[i].Name] = &existing[i]
	}
	return &nationResolver{
		ctx:    ctx,
		q:      q,
		repo:   repo,
		gameID: gameID,
		byName: byName,
		seeds:  seeds,
		logger: logger,
	}
}

// resolve returns the nation for a name, auto-creating it on first
// sight. Matching is exact; two spellings of the same intended nation
// produce two rows, which is a known limit of name-keyed AI output.
func (nr *nationResolver) resolve(name string) (*models.Nation, error) {
	if nation, ok := nr.byName[name]; ok {
		return nation, nil
	}

	now := time.Now()
	nation := &models.Nation{
		ID:          uuid.New(),
		GameID:      nr.gameID,
		Name:        name,
		Government:  models.DefaultGovernment,
		Territories: []string{},
		Resources:   models.DefaultResources(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if seed, ok := nr.seeds[name]; ok {
		if seed.Government != "" {
			nation.Government = seed.Government
		}
		if seed.Territories != nil {
			nation.Territories = seed.Territories
		}
		if seed.HasResource {
			nation.Resources = seed.Resources.Clamped()
		}
	}

	if err := nr.repo.Create(nr.ctx, nr.q, nation); err != nil {
		return nil, err
	}
	nr.byName[name] = nation
	nr.created = append(nr.created, name)
	nr.logger.Info("Nation auto-created from AI payload",
		zap.String("gameID", nr.gameID.String()),
		zap.String("name", name))
	return nation, nil
}

// CommitTurn applies the merged payload for one player action. The
// turn counter is advanced with a guard on its previous value, so of
// two concurrent commits reading the same base turn exactly one
// succeeds and the other returns ErrTurnConflict.
func (r *Reconciler) CommitTurn(ctx context.Context, gameID uuid.UUID, playerAction string, payload models.MergedTurnPayload) (*models.TurnSummary, error) {
	game, err := r.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !game.PlayerNationID.Valid {
		return nil, models.ErrPlayerNationUnset
	}

	baseTurn := game.CurrentTurn
	turnNumber := baseTurn + 1
	log := r.logger.With(zap.String("gameID", gameID.String()), zap.Int("turnNumber", turnNumber))

	var summary *models.TurnSummary
	err = r.txManager.WithTx(ctx, func(q interfaces.DBTX) error {
		// Fail fast before any writes when another commit already
		// advanced the counter.
		current, err := r.games.CurrentTurn(ctx, q, gameID)
		if err != nil {
			return err
		}
		if current != baseTurn {
			return models.ErrTurnConflict
		}

		existing, err := r.nations.ListByGame(ctx, q, gameID)
		if err != nil {
			return err
		}
		resolver := newNationResolver(ctx, q, r.nations, gameID, existing, payload.NewNations, r.logger)

		player, err := resolver.byID(game.PlayerNationID.UUID)
		if err != nil {
			return err
		}

		// Player resource delta, clamp after add per channel.
		if len(payload.Interpretation.ResourceChanges) > 0 {
			player.Resources = player.Resources.Apply(payload.Interpretation.ResourceChanges)
			if err := r.nations.UpdateResources(ctx, q, player.ID, player.Resources); err != nil {
				return err
			}
		}

		// New nations declared but not otherwise referenced still get
		// created this turn.
		for _, name := range sortedKeys(payload.NewNations) {
			if _, err := resolver.resolve(name); err != nil {
				return err
			}
		}

		if err := r.applyRelationshipChanges(ctx, q, resolver, gameID, payload.Interpretation.RelationshipChanges); err != nil {
			return err
		}

		if err := r.applyNationUpdates(ctx, q, resolver, player.ID, payload.NationUpdates); err != nil {
			return err
		}

		// Advance the counter before inserting the turn row: the guard
		// in AdvanceTurn is the authoritative conflict check and must
		// run before a row with this sequence number exists.
		if err := r.games.AdvanceTurn(ctx, q, gameID, turnNumber, payload.HistorySummary); err != nil {
			return err
		}

		turn, eventRows, err := r.materializeTurn(ctx, q, resolver, game, turnNumber, playerAction, payload)
		if err != nil {
			return err
		}

		summary = &models.TurnSummary{
			TurnID:          turn.ID,
			TurnNumber:      turnNumber,
			Narrative:       payload.Interpretation.Narrative,
			Consequences:    payload.Interpretation.ImmediateConsequences,
			ResourceChanges: payload.Interpretation.ResourceChanges,
			Events:          eventRows,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("Turn committed", zap.Int("events", len(summary.Events)))
	return summary, nil
}

// byID finds an already-listed nation by identity.
func (nr *nationResolver) byID(id uuid.UUID) (*models.Nation, error) {
	for _, nation := range nr.byName {
		if nation.ID == id {
			return nation, nil
		}
	}
	return nil, models.ErrNationNotFound
}

func (r *Reconciler) applyRelationshipChanges(ctx context.Context, q interfaces.DBTX, resolver *nationResolver, gameID uuid.UUID, changes []models.RelationshipChange) error {
	now := time.Now()
	for _, change := range changes {
		if change.Nation1 == "" || change.Nation2 == "" || change.Nation1 == change.Nation2 {
			continue
		}
		n1, err := resolver.resolve(change.Nation1)
		if err != nil {
			return err
		}
		n2, err := resolver.resolve(change.Nation2)
		if err != nil {
			return err
		}

		status := models.RelationStatus(change.Status)
		rel, err := r.relationships.FindBetween(ctx, q, gameID, n1.ID, n2.ID)
		if err != nil {
			return err
		}
		if rel != nil {
			rel.Score = models.ClampRelation(rel.Score + int(change.ScoreChange))
			if models.ValidRelationStatus(status) {
				rel.Status = status
			}
			if err := r.relationships.Update(ctx, q, rel); err != nil {
				return err
			}
			continue
		}

		if !models.ValidRelationStatus(status) {
			status = models.RelationNeutral
		}
		rel = &models.Relationship{
			ID:        uuid.New(),
			GameID:    gameID,
			Nation1ID: n1.ID,
			Nation2ID: n2.ID,
			Status:    status,
			Score:     models.ClampRelation(int(change.ScoreChange)),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := r.relationships.Create(ctx, q, rel); err != nil {
			return err
		}
	}
	return nil
}

// applyNationUpdates applies event-stage resource hints to non-player
// nations. The player is skipped: its delta already arrived through the
// interpretation stage.
func (r *Reconciler) applyNationUpdates(ctx context.Context, q interfaces.DBTX, resolver *nationResolver, playerID uuid.UUID, updates map[string]map[string]float64) error {
	for _, name := range sortedKeys(updates) {
		nation, err := resolver.resolve(name)
		if err != nil {
			return err
		}
		if nation.ID == playerID {
			continue
		}
		nation.Resources = nation.Resources.Apply(updates[name])
		if err := r.nations.UpdateResources(ctx, q, nation.ID, nation.Resources); err != nil {
			return err
		}
	}
	return nil
}

// materializeTurn writes the turn record and duplicates its events into
// standalone rows with resolved nation identities.
func (r *Reconciler) materializeTurn(ctx context.Context, q interfaces.DBTX, resolver *nationResolver, game *models.Game, turnNumber int, playerAction string, payload models.MergedTurnPayload) (*models.Turn, []models.Event, error) {
	now := time.Now()

	changes, err := json.Marshal(payload.Interpretation.ResourceChanges)
	if err != nil {
		changes = []byte("{}")
	}

	turn := &models.Turn{
		ID:           uuid.New(),
		GameID:       game.ID,
		TurnNumber:   turnNumber,
		PlayerAction: playerAction,
		AIResponse: models.AIResponse{
			Narrative:         payload.Interpretation.Narrative,
			Consequences:      payload.Interpretation.ImmediateConsequences,
			Events:            make([]models.TurnEvent, 0, len(payload.Events)),
			WorldStateChanges: changes,
		},
		CreatedAt: now,
	}

	eventRows := make([]models.Event, 0, len(payload.Events))
	for _, proposed := range payload.Events {
		affected := make([]uuid.UUID, 0, len(proposed.AffectedNations))
		seen := make(map[uuid.UUID]bool, len(proposed.AffectedNations))
		for _, name := range proposed.AffectedNations {
			if name == "" {
				continue
			}
			nation, err := resolver.resolve(name)
			if err != nil {
				return nil, nil, err
			}
			if !seen[nation.ID] {
				seen[nation.ID] = true
				affected = append(affected, nation.ID)
			}
		}

		turn.AIResponse.Events = append(turn.AIResponse.Events, models.TurnEvent{
			Type:            models.NormalizeEventType(proposed.Type),
			Title:           proposed.Title,
			Description:     proposed.Description,
			AffectedNations: proposed.AffectedNations,
			Impact:          proposed.Impact,
		})
		eventRows = append(eventRows, models.Event{
			ID:              uuid.New(),
			GameID:          game.ID,
			TurnID:          turn.ID,
			TurnNumber:      turnNumber,
			Type:            models.NormalizeEventType(proposed.Type),
			Title:           proposed.Title,
			Description:     proposed.Description,
			AffectedNations: affected,
			Impact:          proposed.Impact,
			CreatedAt:       now,
		})
	}

	if err := r.turns.Create(ctx, q, turn); err != nil {
		return nil, nil, err
	}
	for i := range eventRows {
		if err := r.events.Create(ctx, q, &eventRows[i]); err != nil {
			return nil, nil, err
		}
	}
	return turn, eventRows, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
