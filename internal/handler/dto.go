package handler

import "chronoflux-server/internal/models"

type createGameRequest struct {
	ScenarioID      string  `json:"scenario_id" binding:"required"`
	PlayerNationKey string  `json:"player_nation_key" binding:"required"`
	PlayerID        *string `json:"player_id,omitempty"`
}

type submitTurnRequest struct {
	Action string `json:"action" binding:"required"`
}

type askAdvisorRequest struct {
	Question string `json:"question" binding:"required"`
}

type setStatusRequest struct {
	Status models.GameStatus `json:"status" binding:"required"`
}

type setResourcesRequest struct {
	Resources models.Resources `json:"resources"`
}

type setRelationshipRequest struct {
	Nation1ID string                `json:"nation1_id" binding:"required"`
	Nation2ID string                `json:"nation2_id" binding:"required"`
	Status    models.RelationStatus `json:"status" binding:"required"`
	Score     int                   `json:"score"`
}

type scenarioRequest struct {
	Name              string                   `json:"name" binding:"required"`
	Description       string                   `json:"description"`
	Period            string                   `json:"period"`
	StartYear         int                      `json:"start_year"`
	AIContext         string                   `json:"ai_context"`
	InitialWorldState models.InitialWorldState `json:"initial_world_state"`
}

type settingsRequest struct {
	Provider        models.AIProvider `json:"provider" binding:"required"`
	OllamaURL       string            `json:"ollama_url"`
	OllamaModel     string            `json:"ollama_model"`
	OpenRouterKey   string            `json:"openrouter_key"`
	OpenRouterModel string            `json:"openrouter_model"`
	DebugLogging    bool              `json:"debug_logging"`
}

type advisorResponse struct {
	Advice string `json:"advice"`
}

type errorResponse struct {
	Error string `json:"error"`
}
