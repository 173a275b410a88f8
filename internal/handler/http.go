package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"chronoflux-server/internal/ai"
	"chronoflux-server/internal/interfaces"
	"chronoflux-server/internal/models"
	"chronoflux-server/internal/service"
)

// GameHandler exposes the HTTP API: games, turns, world state,
// scenarios, advisor and AI settings.
type GameHandler struct {
	gameService *service.GameService
	turnService *service.TurnService
	settings    interfaces.SettingsRepository
	logger      *zap.Logger
}

func NewGameHandler(gameService *service.GameService, turnService *service.TurnService, settings interfaces.SettingsRepository, logger *zap.Logger) *GameHandler {
	return &GameHandler{
		gameService: gameService,
		turnService: turnService,
		settings:    settings,
		logger:      logger.Named("GameHandler"),
	}
}

func (h *GameHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.POST("/games", h.createGame)
		api.GET("/games", h.listGames)
		api.GET("/games/:game_id", h.getGame)
		api.DELETE("/games/:game_id", h.deleteGame)
		api.PATCH("/games/:game_id/status", h.setGameStatus)
		api.GET("/games/:game_id/world", h.getWorldState)
		api.PUT("/games/:game_id/nations/:nation_id/resources", h.setNationResources)
		api.PUT("/games/:game_id/relationships", h.setRelationshipStatus)
		api.GET("/games/:game_id/turns", h.listTurns)
		api.POST("/games/:game_id/turns", h.submitTurn)
		api.POST("/games/:game_id/turns/ai", h.submitTurnWithAI)
		api.POST("/games/:game_id/advisor", h.askAdvisor)

		api.GET("/scenarios", h.listScenarios)
		api.POST("/scenarios", h.createScenario)
		api.GET("/scenarios/:scenario_id", h.getScenario)
		api.PUT("/scenarios/:scenario_id", h.updateScenario)
		api.DELETE("/scenarios/:scenario_id", h.deleteScenario)

		api.GET("/settings/ai", h.getSettings)
		api.PUT("/settings/ai", h.saveSettings)
	}
}

func (h *GameHandler) createGame(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	scenarioID, err := uuid.Parse(req.ScenarioID)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid scenario_id"})
		return
	}

	game, err := h.gameService.CreateGame(c.Request.Context(), scenarioID, req.PlayerNationKey, req.PlayerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, game)
}

func (h *GameHandler) listGames(c *gin.Context) {
	playerID := c.Query("player_id")
	if playerID == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "player_id query parameter is required"})
		return
	}
	games, err := h.gameService.ListGames(c.Request.Context(), playerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, games)
}

func (h *GameHandler) getGame(c *gin.Context) {
	gameID, ok := h.parseID(c, "game_id")
	if !ok {
		return
	}
	game, err := h.gameService.GetGame(c.Request.Context(), gameID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, game)
}

func (h *GameHandler) deleteGame(c *gin.Context) {
	gameID, ok := h.parseID(c, "game_id")
	if !ok {
		return
	}
	if err := h.gameService.DeleteGame(c.Request.Context(), gameID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GameHandler) setGameStatus(c *gin.Context) {
	gameID, ok := h.parseID(c, "game_id")
	if !ok {
		return
	}
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	switch req.Status {
	case models.GameStatusActive, models.GameStatusPaused, models.GameStatusCompleted:
	default:
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid status"})
		return
	}
	if err := h.gameService.SetGameStatus(c.Request.Context(), gameID, req.Status); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GameHandler) getWorldState(c *gin.Context) {
	gameID, ok := h.parseID(c, "game_id")
	if !ok {
		return
	}
	snapshot, err := h.gameService.GetWorldState(c.Request.Context(), gameID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (h *GameHandler) setNationResources(c *gin.Context) {
	gameID, ok := h.parseID(c, "game_id")
	if !ok {
		return
	}
	nationID, ok := h.parseID(c, "nation_id")
	if !ok {
		return
	}
	var req setResourcesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	nation, err := h.gameService.SetNationResources(c.Request.Context(), gameID, nationID, req.Resources)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nation)
}

func (h *GameHandler) setRelationshipStatus(c *gin.Context) {
	gameID, ok := h.parseID(c, "game_id")
	if !ok {
		return
	}
	var req setRelationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	nation1ID, err := uuid.Parse(req.Nation1ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid nation1_id"})
		return
	}
	nation2ID, err := uuid.Parse(req.Nation2ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid nation2_id"})
		return
	}
	if !models.ValidRelationStatus(req.Status) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid status"})
		return
	}
	rel, err := h.gameService.SetRelationshipStatus(c.Request.Context(), gameID, nation1ID, nation2ID, req.Status, req.Score)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rel)
}

func (h *GameHandler) listTurns(c *gin.Context) {
	gameID, ok := h.parseID(c, "game_id")
	if !ok {
		return
	}
	turns, err := h.gameService.ListTurns(c.Request.Context(), gameID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, turns)
}

func (h *GameHandler) submitTurn(c *gin.Context) {
	gameID, ok := h.parseID(c, "game_id")
	if !ok {
		return
	}
	var req submitTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	result, err := h.turnService.SubmitTurn(c.Request.Context(), gameID, req.Action)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *GameHandler) submitTurnWithAI(c *gin.Context) {
	gameID, ok := h.parseID(c, "game_id")
	if !ok {
		return
	}
	var req submitTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	summary, err := h.turnService.SubmitTurnWithAI(c.Request.Context(), gameID, req.Action)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *GameHandler) askAdvisor(c *gin.Context) {
	gameID, ok := h.parseID(c, "game_id")
	if !ok {
		return
	}
	var req askAdvisorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	advice, err := h.turnService.AskAdvisor(c.Request.Context(), gameID, req.Question)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, advisorResponse{Advice: advice})
}

func (h *GameHandler) listScenarios(c *gin.Context) {
	scenarios, err := h.gameService.ListScenarios(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scenarios)
}

func (h *GameHandler) getScenario(c *gin.Context) {
	id, ok := h.parseID(c, "scenario_id")
	if !ok {
		return
	}
	scenario, err := h.gameService.GetScenario(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scenario)
}

func (h *GameHandler) createScenario(c *gin.Context) {
	var req scenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	scenario := &models.Scenario{
		Name:              req.Name,
		Description:       req.Description,
		Period:            req.Period,
		StartYear:         req.StartYear,
		AIContext:         req.AIContext,
		InitialWorldState: req.InitialWorldState,
	}
	if err := h.gameService.CreateScenario(c.Request.Context(), scenario); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, scenario)
}

func (h *GameHandler) updateScenario(c *gin.Context) {
	id, ok := h.parseID(c, "scenario_id")
	if !ok {
		return
	}
	var req scenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	scenario := &models.Scenario{
		ID:                id,
		Name:              req.Name,
		Description:       req.Description,
		Period:            req.Period,
		StartYear:         req.StartYear,
		AIContext:         req.AIContext,
		InitialWorldState: req.InitialWorldState,
	}
	if err := h.gameService.UpdateScenario(c.Request.Context(), scenario); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scenario)
}

func (h *GameHandler) deleteScenario(c *gin.Context) {
	id, ok := h.parseID(c, "scenario_id")
	if !ok {
		return
	}
	if err := h.gameService.DeleteScenario(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GameHandler) getSettings(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	// The key never leaves the server.
	settings.OpenRouterKey = ""
	c.JSON(http.StatusOK, settings)
}

func (h *GameHandler) saveSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if req.Provider != models.ProviderOllama && req.Provider != models.ProviderOpenRouter {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "unknown provider"})
		return
	}

	settings := models.AISettings{
		Provider:        req.Provider,
		OllamaURL:       req.OllamaURL,
		OllamaModel:     req.OllamaModel,
		OpenRouterKey:   req.OpenRouterKey,
		OpenRouterModel: req.OpenRouterModel,
		DebugLogging:    req.DebugLogging,
	}
	defaults := models.DefaultAISettings()
	if settings.OllamaURL == "" {
		settings.OllamaURL = defaults.OllamaURL
	}
	if settings.OllamaModel == "" {
		settings.OllamaModel = defaults.OllamaModel
	}
	if settings.OpenRouterModel == "" {
		settings.OpenRouterModel = defaults.OpenRouterModel
	}
	// An empty key keeps the previously stored one.
	if settings.OpenRouterKey == "" {
		if prev, err := h.settings.Get(c.Request.Context()); err == nil {
			settings.OpenRouterKey = prev.OpenRouterKey
		}
	}

	if err := h.settings.Save(c.Request.Context(), settings); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GameHandler) parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid " + param})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps domain and AI errors onto HTTP statuses. Concurrency
// conflicts are 409 so clients know to retry the whole submission.
func (h *GameHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrGameNotFound),
		errors.Is(err, models.ErrScenarioNotFound),
		errors.Is(err, models.ErrNationNotFound),
		errors.Is(err, models.ErrTurnNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrTurnConflict):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrPlayerNationUnset),
		errors.Is(err, models.ErrSeedNationMissing),
		errors.Is(err, models.ErrPlayerNationFixed),
		errors.Is(err, models.ErrScenarioImmutable),
		errors.Is(err, models.ErrGameNotActive),
		errors.Is(err, models.ErrNationNotInGame):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, ai.ErrConnectivity), errors.Is(err, ai.ErrAuth):
		c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	case errors.Is(err, ai.ErrTimeout):
		c.JSON(http.StatusGatewayTimeout, errorResponse{Error: err.Error()})
	default:
		h.logger.Error("Unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

// HealthHandler reports liveness; registered on /health.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}
