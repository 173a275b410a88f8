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
var _ interfaces.EventRepository = (*pgEventRepository)(nil)

const eventColumns = `id, game_id, turn_id, turn_number, type, title, description, affected_nations, impact, created_at`

type pgEventRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

func NewPgEventRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.EventRepository {
	return &pgEventRepository{
		db:     db,
		logger: logger.Named("PgEventRepo"),
	}
}

func (r *pgEventRepository) querier(q interfaces.DBTX) interfaces.DBTX {
	if q != nil {
		return q
	}
	return r.db
}

func (r *pgEventRepository) Create(ctx context.Context, q interfaces.DBTX, event *models.Event) error {
	query := `
        INSERT INTO events
            (id, game_id, turn_id, turn_number, type, title, description, affected_nations, impact, created_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := r.querier(q).Exec(ctx, query,
		event.ID,
		event.GameID,
		event.TurnID,
		event.TurnNumber,
		event.Type,
		event.Title,
		event.Description,
		event.AffectedNations,
		event.Impact,
		event.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create event",
			zap.String("gameID", event.GameID.String()),
			zap.String("title", event.Title),
			zap.Error(err))
		return fmt.Errorf("failed to create event %q: %w", event.Title, err)
	}
	return nil
}

func (r *pgEventRepository) ListByGame(ctx context.Context, gameID uuid.UUID, limit int) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE game_id = $1 ORDER BY turn_number DESC, created_at DESC LIMIT $2`
	var events []models.Event
	if err := pgxscan.Select(ctx, r.db, &events, query, gameID, limit); err != nil {
		return nil, fmt.Errorf("failed to list events of game %s: %w", gameID, err)
	}
	return events, nil
}

func (r *pgEventRepository) DeleteByGame(ctx context.Context, q interfaces.DBTX, gameID uuid.UUID) error {
	if _, err := r.querier(q).Exec(ctx, `DELETE FROM events WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("failed to delete events of game %s: %w", gameID, err)
	}
	return nil
}
