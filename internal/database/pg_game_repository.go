package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"chronoflux-server/internal/interfaces"
	"chronoflux-server/internal/models"
)

// Compile-time check
var _ interfaces.GameRepository = (*pgGameRepository)(nil)

const gameColumns = `id, scenario_id, player_id, player_nation_id, current_turn, status, history_summary, created_at, updated_at`

type pgGameRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

func NewPgGameRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.GameRepository {
	return &pgGameRepository{
		db:     db,
		logger: logger.Named("PgGameRepo"),
	}
}

// querier prefers the transaction-scoped handle when one is supplied.
func (r *pgGameRepository) querier(q interfaces.DBTX) interfaces.DBTX {
	if q != nil {
		return q
	}
	return r.db
}

func (r *pgGameRepository) Create(ctx context.Context, q interfaces.DBTX, game *models.Game) error {
	query := `
        INSERT INTO games
            (id, scenario_id, player_id, player_nation_id, current_turn, status, history_summary, created_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	logFields := []zap.Field{zap.String("gameID", game.ID.String())}
	r.logger.Debug("Creating game", logFields...)

	_, err := r.querier(q).Exec(ctx, query,
		game.ID,
		game.ScenarioID,
		game.PlayerID,
		game.PlayerNationID,
		game.CurrentTurn,
		game.Status,
		game.HistorySummary,
		game.CreatedAt,
		game.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create game", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to create game: %w", err)
	}
	r.logger.Info("Game created", logFields...)
	return nil
}

func (r *pgGameRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`
	game := &models.Game{}
	err := pgxscan.Get(ctx, r.db, game, query, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrGameNotFound
		}
		r.logger.Error("Failed to get game", zap.String("gameID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get game %s: %w", id, err)
	}
	return game, nil
}

func (r *pgGameRepository) ListByPlayer(ctx context.Context, playerID string) ([]models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE player_id = $1 ORDER BY updated_at DESC`
	var games []models.Game
	if err := pgxscan.Select(ctx, r.db, &games, query, playerID); err != nil {
		r.logger.Error("Failed to list games", zap.String("playerID", playerID), zap.Error(err))
		return nil, fmt.Errorf("failed to list games for player %s: %w", playerID, err)
	}
	return games, nil
}

func (r *pgGameRepository) SetPlayerID(ctx context.Context, id uuid.UUID, playerID string) error {
	query := `UPDATE games SET player_id = $2, updated_at = now() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, playerID)
	if err != nil {
		return fmt.Errorf("failed to set player for game %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrGameNotFound
	}
	return nil
}

// SetPlayerNation binds the player's nation once; a second bind to a
// different nation is rejected.
func (r *pgGameRepository) SetPlayerNation(ctx context.Context, q interfaces.DBTX, id, nationID uuid.UUID) error {
	query := `
        UPDATE games SET player_nation_id = $2, updated_at = now()
        WHERE id = $1 AND (player_nation_id IS NULL OR player_nation_id = $2)
    `
	tag, err := r.querier(q).Exec(ctx, query, id, nationID)
	if err != nil {
		return fmt.Errorf("failed to set player nation for game %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if scanErr := r.querier(q).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM games WHERE id = $1)`, id).Scan(&exists); scanErr == nil && !exists {
			return models.ErrGameNotFound
		}
		return models.ErrPlayerNationFixed
	}
	return nil
}

func (r *pgGameRepository) SetStatus(ctx context.Context, id uuid.UUID, status models.GameStatus) error {
	query := `UPDATE games SET status = $2, updated_at = now() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to set status for game %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrGameNotFound
	}
	return nil
}

func (r *pgGameRepository) CurrentTurn(ctx context.Context, q interfaces.DBTX, id uuid.UUID) (int, error) {
	var turn int
	err := r.querier(q).QueryRow(ctx, `SELECT current_turn FROM games WHERE id = $1`, id).Scan(&turn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, models.ErrGameNotFound
		}
		return 0, fmt.Errorf("failed to read current turn of game %s: %w", id, err)
	}
	return turn, nil
}

// AdvanceTurn moves the counter to turnNumber. The WHERE clause pins the
// previous value, so of two concurrent commits from the same base turn
// exactly one succeeds and the other gets ErrTurnConflict.
func (r *pgGameRepository) AdvanceTurn(ctx context.Context, q interfaces.DBTX, id uuid.UUID, turnNumber int, historySummary string) error {
	query := `
        UPDATE games
        SET current_turn = $2,
            history_summary = CASE WHEN $3 <> '' THEN $3 ELSE history_summary END,
            updated_at = now()
        WHERE id = $1 AND current_turn = $2 - 1
    `
	tag, err := r.querier(q).Exec(ctx, query, id, turnNumber, historySummary)
	if err != nil {
		return fmt.Errorf("failed to advance turn of game %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn("Turn advance lost the race",
			zap.String("gameID", id.String()),
			zap.Int("turnNumber", turnNumber))
		return models.ErrTurnConflict
	}
	return nil
}

func (r *pgGameRepository) Delete(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	tag, err := r.querier(q).Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete game %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrGameNotFound
	}
	r.logger.Info("Game deleted", zap.String("gameID", id.String()))
	return nil
}
