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
var _ interfaces.NationRepository = (*pgNationRepository)(nil)

const nationColumns = `id, game_id, name, government, territories, resources, is_player_controlled, created_at, updated_at`

type pgNationRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

func NewPgNationRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.NationRepository {
	return &pgNationRepository{
		db:     db,
		logger: logger.Named("PgNationRepo"),
	}
}

func (r *pgNationRepository) querier(q interfaces.DBTX) interfaces.DBTX {
	if q != nil {
		return q
	}
	return r.db
}

func (r *pgNationRepository) Create(ctx context.Context, q interfaces.DBTX, nation *models.Nation) error {
	query := `
        INSERT INTO nations
            (id, game_id, name, government, territories, resources, is_player_controlled, created_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	logFields := []zap.Field{
		zap.String("nationID", nation.ID.String()),
		zap.String("gameID", nation.GameID.String()),
		zap.String("name", nation.Name),
	}
	r.logger.Debug("Creating nation", logFields...)

	_, err := r.querier(q).Exec(ctx, query,
		nation.ID,
		nation.GameID,
		nation.Name,
		nation.Government,
		nation.Territories,
		nation.Resources,
		nation.IsPlayerControlled,
		nation.CreatedAt,
		nation.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create nation", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to create nation %s: %w", nation.Name, err)
	}
	return nil
}

func (r *pgNationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Nation, error) {
	query := `SELECT ` + nationColumns + ` FROM nations WHERE id = $1`
	nation := &models.Nation{}
	err := pgxscan.Get(ctx, r.db, nation, query, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNationNotFound
		}
		return nil, fmt.Errorf("failed to get nation %s: %w", id, err)
	}
	return nation, nil
}

func (r *pgNationRepository) ListByGame(ctx context.Context, q interfaces.DBTX, gameID uuid.UUID) ([]models.Nation, error) {
	query := `SELECT ` + nationColumns + ` FROM nations WHERE game_id = $1 ORDER BY created_at`
	var nations []models.Nation
	if err := pgxscan.Select(ctx, r.querier(q), &nations, query, gameID); err != nil {
		r.logger.Error("Failed to list nations", zap.String("gameID", gameID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list nations of game %s: %w", gameID, err)
	}
	return nations, nil
}

func (r *pgNationRepository) UpdateResources(ctx context.Context, q interfaces.DBTX, id uuid.UUID, resources models.Resources) error {
	query := `UPDATE nations SET resources = $2, updated_at = now() WHERE id = $1`
	tag, err := r.querier(q).Exec(ctx, query, id, resources)
	if err != nil {
		return fmt.Errorf("failed to update resources of nation %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNationNotFound
	}
	return nil
}

func (r *pgNationRepository) DeleteByGame(ctx context.Context, q interfaces.DBTX, gameID uuid.UUID) error {
	if _, err := r.querier(q).Exec(ctx, `DELETE FROM nations WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("failed to delete nations of game %s: %w", gameID, err)
	}
	return nil
}
