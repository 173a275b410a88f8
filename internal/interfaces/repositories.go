package interfaces

import (
	"context"

	"github.com/google/uuid"

	"chronoflux-server/internal/models"
)

// GameRepository persists game sessions. Write methods take an explicit
// querier so the reconciler can group them into one transaction.
type GameRepository interface {
	Create(ctx context.Context, q DBTX, game *models.Game) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error)
	ListByPlayer(ctx context.Context, playerID string) ([]models.Game, error)
	SetPlayerID(ctx context.Context, id uuid.UUID, playerID string) error
	SetPlayerNation(ctx context.Context, q DBTX, id, nationID uuid.UUID) error
	SetStatus(ctx context.Context, id uuid.UUID, status models.GameStatus) error
	// CurrentTurn reads the live counter, through q when mid-transaction.
	CurrentTurn(ctx context.Context, q DBTX, id uuid.UUID) (int, error)
	// AdvanceTurn bumps the counter to turnNumber and stores the summary,
	// guarded so a concurrent commit from the same base turn loses.
	AdvanceTurn(ctx context.Context, q DBTX, id uuid.UUID, turnNumber int, historySummary string) error
	Delete(ctx context.Context, q DBTX, id uuid.UUID) error
}

// NationRepository persists per-game nations.
type NationRepository interface {
	Create(ctx context.Context, q DBTX, nation *models.Nation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Nation, error)
	ListByGame(ctx context.Context, q DBTX, gameID uuid.UUID) ([]models.Nation, error)
	UpdateResources(ctx context.Context, q DBTX, id uuid.UUID, resources models.Resources) error
	DeleteByGame(ctx context.Context, q DBTX, gameID uuid.UUID) error
}

// RelationshipRepository persists diplomatic links. FindBetween is
// symmetric in its nation arguments.
type RelationshipRepository interface {
	Create(ctx context.Context, q DBTX, rel *models.Relationship) error
	ListByGame(ctx context.Context, q DBTX, gameID uuid.UUID) ([]models.Relationship, error)
	FindBetween(ctx context.Context, q DBTX, gameID, nationA, nationB uuid.UUID) (*models.Relationship, error)
	Update(ctx context.Context, q DBTX, rel *models.Relationship) error
	DeleteByGame(ctx context.Context, q DBTX, gameID uuid.UUID) error
}

// TurnRepository persists the append-only turn log.
type TurnRepository interface {
	Create(ctx context.Context, q DBTX, turn *models.Turn) error
	ListByGame(ctx context.Context, gameID uuid.UUID) ([]models.Turn, error)
	// ListRecent returns up to n latest turns, newest first.
	ListRecent(ctx context.Context, gameID uuid.UUID, n int) ([]models.Turn, error)
	DeleteByGame(ctx context.Context, q DBTX, gameID uuid.UUID) error
}

// EventRepository persists the denormalized event stream.
type EventRepository interface {
	Create(ctx context.Context, q DBTX, event *models.Event) error
	ListByGame(ctx context.Context, gameID uuid.UUID, limit int) ([]models.Event, error)
	DeleteByGame(ctx context.Context, q DBTX, gameID uuid.UUID) error
}

// ScenarioRepository persists scenario templates.
type ScenarioRepository interface {
	Create(ctx context.Context, scenario *models.Scenario) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Scenario, error)
	GetByName(ctx context.Context, name string) (*models.Scenario, error)
	List(ctx context.Context) ([]models.Scenario, error)
	Update(ctx context.Context, scenario *models.Scenario) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SettingsRepository is the persisted AI provider configuration.
type SettingsRepository interface {
	Get(ctx context.Context) (models.AISettings, error)
	Save(ctx context.Context, settings models.AISettings) error
}
