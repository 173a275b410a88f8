package database

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"chronoflux-server/internal/interfaces"
	"chronoflux-server/internal/models"
)

// Compile-time check
var _ interfaces.TurnRepository = (*pgTurnRepository)(nil)

const turnColumns = `id, game_id, turn_number, player_action, ai_response, created_at`

type pgTurnRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

func NewPgTurnRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.TurnRepository {
	return &pgTurnRepository{
		db:     db,
		logger: logger.Named("PgTurnRepo"),
	}
}

func (r *pgTurnRepository) querier(q interfaces.DBTX) interfaces.DBTX {
	if q != nil {
		return q
	}
	return r.db
}

func (r *pgTurnRepository) Create(ctx context.Context, q interfaces.DBTX, turn *models.Turn) error {
	query := `
        INSERT INTO turns
            (id, game_id, turn_number, player_action, ai_response, created_at)
        VALUES
            ($1, $2, $3, $4, $5, $6)
    `
	logFields := []zap.Field{
		zap.String("gameID", turn.GameID.String()),
		zap.Int("turnNumber", turn.TurnNumber),
	}
	r.logger.Debug("Recording turn", logFields...)

	_, err := r.querier(q).Exec(ctx, query,
		turn.ID,
		turn.GameID,
		turn.TurnNumber,
		turn.PlayerAction,
		turn.AIResponse,
		turn.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to record turn", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to record turn %d: %w", turn.TurnNumber, err)
	}
	return nil
}

func (r *pgTurnRepository) ListByGame(ctx context.Context, gameID uuid.UUID) ([]models.Turn, error) {
	query := `SELECT ` + turnColumns + ` FROM turns WHERE game_id = $1 ORDER BY turn_number DESC`
	var turns []models.Turn
	if err := pgxscan.Select(ctx, r.db, &turns, query, gameID); err != nil {
		return nil, fmt.Errorf("failed to list turns of game %s: %w", gameID, err)
	}
	return turns, nil
}

func (r *pgTurnRepository) ListRecent(ctx context.Context, gameID uuid.UUID, n int) ([]models.Turn, error) {
	query := `SELECT ` + turnColumns + ` FROM turns WHERE game_id = $1 ORDER BY turn_number DESC LIMIT $2`
	var turns []models.Turn
	if err := pgxscan.Select(ctx, r.db, &turns, query, gameID, n); err != nil {
		return nil, fmt.Errorf("failed to list recent turns of game %s: %w", gameID, err)
	}
	return turns, nil
}

func (r *pgTurnRepository) DeleteByGame(ctx context.Context, q interfaces.DBTX, gameID uuid.UUID) error {
	if _, err := r.querier(q).Exec(ctx, `DELETE FROM turns WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("failed to delete turns of game %s: %w", gameID, err)
	}
	return nil
}
