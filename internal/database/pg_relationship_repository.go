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
var _ interfaces.RelationshipRepository = (*pgRelationshipRepository)(nil)

const relationshipColumns = `id, game_id, nation1_id, nation2_id, status, score, trade_agreement, military_alliance, created_at, updated_at`

type pgRelationshipRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

func NewPgRelationshipRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.RelationshipRepository {
	return &pgRelationshipRepository{
		db:     db,
		logger: logger.Named("PgRelationshipRepo"),
	}
}

func (r *pgRelationshipRepository) querier(q interfaces.DBTX) interfaces.DBTX {
	if q != nil {
		return q
	}
	return r.db
}

func (r *pgRelationshipRepository) Create(ctx context.Context, q interfaces.DBTX, rel *models.Relationship) error {
	query := `
        INSERT INTO relationships
            (id, game_id, nation1_id, nation2_id, status, score, trade_agreement, military_alliance, created_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := r.querier(q).Exec(ctx, query,
		rel.ID,
		rel.GameID,
		rel.Nation1ID,
		rel.Nation2ID,
		rel.Status,
		rel.Score,
		rel.TradeAgreement,
		rel.MilitaryAlliance,
		rel.CreatedAt,
		rel.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create relationship",
			zap.String("gameID", rel.GameID.String()), zap.Error(err))
		return fmt.Errorf("failed to create relationship: %w", err)
	}
	return nil
}

func (r *pgRelationshipRepository) ListByGame(ctx context.Context, q interfaces.DBTX, gameID uuid.UUID) ([]models.Relationship, error) {
	query := `SELECT ` + relationshipColumns + ` FROM relationships WHERE game_id = $1 ORDER BY created_at`
	var rels []models.Relationship
	if err := pgxscan.Select(ctx, r.querier(q), &rels, query, gameID); err != nil {
		return nil, fmt.Errorf("failed to list relationships of game %s: %w", gameID, err)
	}
	return rels, nil
}

// FindBetween is symmetric in its nation arguments: the stored
// (nation1, nation2) ordering is an implementation detail.
func (r *pgRelationshipRepository) FindBetween(ctx context.Context, q interfaces.DBTX, gameID, nationA, nationB uuid.UUID) (*models.Relationship, error) {
	query := `
        SELECT ` + relationshipColumns + `
        FROM relationships
        WHERE game_id = $1
          AND ((nation1_id = $2 AND nation2_id = $3) OR (nation1_id = $3 AND nation2_id = $2))
    `
	rel := &models.Relationship{}
	err := pgxscan.Get(ctx, r.querier(q), rel, query, gameID, nationA, nationB)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find relationship: %w", err)
	}
	return rel, nil
}

func (r *pgRelationshipRepository) Update(ctx context.Context, q interfaces.DBTX, rel *models.Relationship) error {
	query := `
        UPDATE relationships
        SET status = $2, score = $3, trade_agreement = $4, military_alliance = $5, updated_at = now()
        WHERE id = $1
    `
	tag, err := r.querier(q).Exec(ctx, query,
		rel.ID, rel.Status, rel.Score, rel.TradeAgreement, rel.MilitaryAlliance)
	if err != nil {
		return fmt.Errorf("failed to update relationship %s: %w", rel.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("relationship %s not found", rel.ID)
	}
	return nil
}

func (r *pgRelationshipRepository) DeleteByGame(ctx context.Context, q interfaces.DBTX, gameID uuid.UUID) error {
	if _, err := r.querier(q).Exec(ctx, `DELETE FROM relationships WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("failed to delete relationships of game %s: %w", gameID, err)
	}
	return nil
}
