package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"chronoflux-server/internal/interfaces"
	"chronoflux-server/internal/models"
)

// In-memory repository fakes. They run every transactional callback with
// a nil querier, which the repositories under test never dereference.

type fakeTxManager struct{}

func (f *fakeTxManager) WithTx(ctx context.Context, fn func(q interfaces.DBTX) error) error {
	return fn(nil)
}

type fakeGameRepo struct {
	mu    sync.Mutex
	games map[uuid.UUID]*models.Game
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{games: make(map[uuid.UUID]*models.Game)}
}

func (f *fakeGameRepo) Create(ctx context.Context, q interfaces.DBTX, game *models.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *game
	f.games[game.ID] = &copied
	return nil
}

func (f *fakeGameRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[id]
	if !ok {
		return nil, models.ErrGameNotFound
	}
	copied := *game
	return &copied, nil
}

func (f *fakeGameRepo) ListByPlayer(ctx context.Context, playerID string) ([]models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Game
	for _, g := range f.games {
		if g.PlayerID != nil && *g.PlayerID == playerID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (f *fakeGameRepo) SetPlayerID(ctx context.Context, id uuid.UUID, playerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[id]
	if !ok {
		return models.ErrGameNotFound
	}
	game.PlayerID = &playerID
	return nil
}

func (f *fakeGameRepo) SetPlayerNation(ctx context.Context, q interfaces.DBTX, id, nationID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[id]
	if !ok {
		return models.ErrGameNotFound
	}
	if game.PlayerNationID.Valid && game.PlayerNationID.UUID != nationID {
		return models.ErrPlayerNationFixed
	}
	game.PlayerNationID = uuid.NullUUID{UUID: nationID, Valid: true}
	return nil
}

func (f *fakeGameRepo) SetStatus(ctx context.Context, id uuid.UUID, status models.GameStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[id]
	if !ok {
		return models.ErrGameNotFound
	}
	game.Status = status
	return nil
}

func (f *fakeGameRepo) CurrentTurn(ctx context.Context, q interfaces.DBTX, id uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[id]
	if !ok {
		return 0, models.ErrGameNotFound
	}
	return game.CurrentTurn, nil
}

func (f *fakeGameRepo) AdvanceTurn(ctx context.Context, q interfaces.DBTX, id uuid.UUID, turnNumber int, historySummary string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[id]
	if !ok {
		return models.ErrGameNotFound
	}
	if game.CurrentTurn != turnNumber-1 {
		return models.ErrTurnConflict
	}
	game.CurrentTurn = turnNumber
	if historySummary != "" {
		game.HistorySummary = historySummary
	}
	return nil
}

func (f *fakeGameRepo) Delete(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.games[id]; !ok {
		return models.ErrGameNotFound
	}
	delete(f.games, id)
	return nil
}

type fakeNationRepo struct {
	mu      sync.Mutex
	nations map[uuid.UUID]*models.Nation
}

func newFakeNationRepo() *fakeNationRepo {
	return &fakeNationRepo{nations: make(map[uuid.UUID]*models.Nation)}
}

func (f *fakeNationRepo) Create(ctx context.Context, q interfaces.DBTX, nation *models.Nation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *nation
	f.nations[nation.ID] = &copied
	return nil
}

func (f *fakeNationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Nation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	nation, ok := f.nations[id]
	if !ok {
		return nil, models.ErrNationNotFound
	}
	copied := *nation
	return &copied, nil
}

func (f *fakeNationRepo) ListByGame(ctx context.Context, q interfaces.DBTX, gameID uuid.UUID) ([]models.Nation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Nation
	for _, n := range f.nations {
		if n.GameID == gameID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeNationRepo) UpdateResources(ctx context.Context, q interfaces.DBTX, id uuid.UUID, resources models.Resources) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	nation, ok := f.nations[id]
	if !ok {
		return models.ErrNationNotFound
	}
	nation.Resources = resources
	return nil
}

func (f *fakeNationRepo) DeleteByGame(ctx context.Context, q interfaces.DBTX, gameID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, n := range f.nations {
		if n.GameID == gameID {
			delete(f.nations, id)
		}
	}
	return nil
}

func (f *fakeNationRepo) byName(gameID uuid.UUID, name string) *models.Nation {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.nations {
		if n.GameID == gameID && n.Name == name {
			copied := *n
			return &copied
		}
	}
	return nil
}

type fakeRelationshipRepo struct {
	mu   sync.Mutex
	rels map[uuid.UUID]*models.Relationship
}

func newFakeRelationshipRepo() *fakeRelationshipRepo {
	return &fakeRelationshipRepo{rels: make(map[uuid.UUID]*models.Relationship)}
}

func (f *fakeRelationshipRepo) Create(ctx context.Context, q interfaces.DBTX, rel *models.Relationship) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *rel
	f.rels[rel.ID] = &copied
	return nil
}

func (f *fakeRelationshipRepo) ListByGame(ctx context.Context, q interfaces.DBTX, gameID uuid.UUID) ([]models.Relationship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Relationship
	for _, rel := range f.rels {
		if rel.GameID == gameID {
			out = append(out, *rel)
		}
	}
	return out, nil
}

func (f *fakeRelationshipRepo) FindBetween(ctx context.Context, q interfaces.DBTX, gameID, nationA, nationB uuid.UUID) (*models.Relationship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rel := range f.rels {
		if rel.GameID != gameID {
			continue
		}
		if (rel.Nation1ID == nationA && rel.Nation2ID == nationB) ||
			(rel.Nation1ID == nationB && rel.Nation2ID == nationA) {
			copied := *rel
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeRelationshipRepo) Update(ctx context.Context, q interfaces.DBTX, rel *models.Relationship) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rels[rel.ID]; !ok {
		return models.ErrNationNotFound
	}
	copied := *rel
	f.rels[rel.ID] = &copied
	return nil
}

func (f *fakeRelationshipRepo) DeleteByGame(ctx context.Context, q interfaces.DBTX, gameID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, rel := range f.rels {
		if rel.GameID == gameID {
			delete(f.rels, id)
		}
	}
	return nil
}

type fakeTurnRepo struct {
	mu    sync.Mutex
	turns []models.Turn
}

func (f *fakeTurnRepo) Create(ctx context.Context, q interfaces.DBTX, turn *models.Turn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turns = append(f.turns, *turn)
	return nil
}

func (f *fakeTurnRepo) ListByGame(ctx context.Context, gameID uuid.UUID) ([]models.Turn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Turn
	for _, t := range f.turns {
		if t.GameID == gameID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTurnRepo) ListRecent(ctx context.Context, gameID uuid.UUID, n int) ([]models.Turn, error) {
	all, _ := f.ListByGame(ctx, gameID)
	// Newest first.
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

func (f *fakeTurnRepo) DeleteByGame(ctx context.Context, q interfaces.DBTX, gameID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []models.Turn
	for _, t := range f.turns {
		if t.GameID != gameID {
			kept = append(kept, t)
		}
	}
	f.turns = kept
	return nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []models.Event
}

func (f *fakeEventRepo) Create(ctx context.Context, q interfaces.DBTX, event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeEventRepo) ListByGame(ctx context.Context, gameID uuid.UUID, limit int) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Event
	for _, e := range f.events {
		if e.GameID == gameID {
			out = append(out, e)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeEventRepo) DeleteByGame(ctx context.Context, q interfaces.DBTX, gameID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []models.Event
	for _, e := range f.events {
		if e.GameID != gameID {
			kept = append(kept, e)
		}
	}
	f.events = kept
	return nil
}

type fakeScenarioRepo struct {
	mu        sync.Mutex
	scenarios map[uuid.UUID]*models.Scenario
}

func newFakeScenarioRepo() *fakeScenarioRepo {
	return &fakeScenarioRepo{scenarios: make(map[uuid.UUID]*models.Scenario)}
}

func (f *fakeScenarioRepo) Create(ctx context.Context, scenario *models.Scenario) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Name collisions are silently skipped, like ON CONFLICT DO NOTHING.
	for _, sc := range f.scenarios {
		if sc.Name == scenario.Name {
			return nil
		}
	}
	copied := *scenario
	f.scenarios[scenario.ID] = &copied
	return nil
}

func (f *fakeScenarioRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Scenario, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sc, ok := f.scenarios[id]
	if !ok {
		return nil, models.ErrScenarioNotFound
	}
	copied := *sc
	return &copied, nil
}

func (f *fakeScenarioRepo) GetByName(ctx context.Context, name string) (*models.Scenario, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sc := range f.scenarios {
		if sc.Name == name {
			copied := *sc
			return &copied, nil
		}
	}
	return nil, models.ErrScenarioNotFound
}

func (f *fakeScenarioRepo) List(ctx context.Context) ([]models.Scenario, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Scenario, 0, len(f.scenarios))
	for _, sc := range f.scenarios {
		out = append(out, *sc)
	}
	return out, nil
}

func (f *fakeScenarioRepo) Update(ctx context.Context, scenario *models.Scenario) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.scenarios[scenario.ID]
	if !ok {
		return models.ErrScenarioNotFound
	}
	if !existing.IsCustom {
		return models.ErrScenarioImmutable
	}
	copied := *scenario
	copied.IsCustom = true
	f.scenarios[scenario.ID] = &copied
	return nil
}

func (f *fakeScenarioRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.scenarios[id]
	if !ok {
		return models.ErrScenarioNotFound
	}
	if !existing.IsCustom {
		return models.ErrScenarioImmutable
	}
	delete(f.scenarios, id)
	return nil
}

type fakeSettingsRepo struct {
	settings models.AISettings
}

func (f *fakeSettingsRepo) Get(ctx context.Context) (models.AISettings, error) {
	return f.settings, nil
}

func (f *fakeSettingsRepo) Save(ctx context.Context, settings models.AISettings) error {
	f.settings = settings
	return nil
}

// Compile-time interface checks for the fakes.
var (
	_ interfaces.TxManager              = (*fakeTxManager)(nil)
	_ interfaces.GameRepository         = (*fakeGameRepo)(nil)
	_ interfaces.NationRepository       = (*fakeNationRepo)(nil)
	_ interfaces.RelationshipRepository = (*fakeRelationshipRepo)(nil)
	_ interfaces.TurnRepository         = (*fakeTurnRepo)(nil)
	_ interfaces.EventRepository        = (*fakeEventRepo)(nil)
	_ interfaces.ScenarioRepository     = (*fakeScenarioRepo)(nil)
	_ interfaces.SettingsRepository     = (*fakeSettingsRepo)(nil)
)
