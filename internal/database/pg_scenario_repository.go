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
var _ interfaces.ScenarioRepository = (*pgScenarioRepository)(nil)

const scenarioColumns = `id, name, description, period, start_year, ai_context, initial_world_state, is_custom, created_at, updated_at`

type pgScenarioRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

func NewPgScenarioRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.ScenarioRepository {
	return &pgScenarioRepository{
		db:     db,
		logger: logger.Named("PgScenarioRepo"),
	}
}

func (r *pgScenarioRepository) Create(ctx context.Context, scenario *models.Scenario) error {
	query := `
        INSERT INTO scenarios
            (id, name, description, period, start_year, ai_context, initial_world_state, is_custom, created_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (name) DO NOTHING
    `
	_, err := r.db.Exec(ctx, query,
		scenario.ID,
		scenario.Name,
		scenario.Description,
		scenario.Period,
		scenario.StartYear,
		scenario.AIContext,
		scenario.InitialWorldState,
		scenario.IsCustom,
		scenario.CreatedAt,
		scenario.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create scenario", zap.String("name", scenario.Name), zap.Error(err))
		return fmt.Errorf("failed to create scenario %q: %w", scenario.Name, err)
	}
	return nil
}

func (r *pgScenarioRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Scenario, error) {
	query := `SELECT ` + scenarioColumns + ` FROM scenarios WHERE id = $1`
	scenario := &models.Scenario{}
	err := pgxscan.Get(ctx, r.db, scenario, query, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrScenarioNotFound
		}
		return nil, fmt.Errorf("failed to get scenario %s: %w", id, err)
	}
	return scenario, nil
}

func (r *pgScenarioRepository) GetByName(ctx context.Context, name string) (*models.Scenario, error) {
	query := `SELECT ` + scenarioColumns + ` FROM scenarios WHERE name = $1`
	scenario := &models.Scenario{}
	err := pgxscan.Get(ctx, r.db, scenario, query, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrScenarioNotFound
		}
		return nil, fmt.Errorf("failed to get scenario %q: %w", name, err)
	}
	return scenario, nil
}

func (r *pgScenarioRepository) List(ctx context.Context) ([]models.Scenario, error) {
	query := `SELECT ` + scenarioColumns + ` FROM scenarios ORDER BY is_custom, name`
	var scenarios []models.Scenario
	if err := pgxscan.Select(ctx, r.db, &scenarios, query); err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	return scenarios, nil
}

func (r *pgScenarioRepository) Update(ctx context.Context, scenario *models.Scenario) error {
	query := `
        UPDATE scenarios
        SET name = $2, description = $3, period = $4, start_year = $5,
            ai_context = $6, initial_world_state = $7, updated_at = now()
        WHERE id = $1 AND is_custom
    `
	tag, err := r.db.Exec(ctx, query,
		scenario.ID,
		scenario.Name,
		scenario.Description,
		scenario.Period,
		scenario.StartYear,
		scenario.AIContext,
		scenario.InitialWorldState,
	)
	if err != nil {
		return fmt.Errorf("failed to update scenario %s: %w", scenario.ID, err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, scenario.ID); getErr != nil {
			return getErr
		}
		return models.ErrScenarioImmutable
	}
	return nil
}

func (r *pgScenarioRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM scenarios WHERE id = $1 AND is_custom`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scenario %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return models.ErrScenarioImmutable
	}
	return nil
}
