package models

// AIProvider selects which gateway implementation serves a request.
type AIProvider string

const (
	ProviderOllama     AIProvider = "ollama"
	ProviderOpenRouter AIProvider = "openrouter"
)

// AISettings is the persisted provider configuration, read once per
// gateway invocation and passed explicitly into the pipeline.
type AISettings struct {
	Provider        AIProvider `json:"provider"`
	OllamaURL       string     `json:"ollama_url"`
	OllamaModel     string     `json:"ollama_model"`
	OpenRouterKey   string     `json:"openrouter_key,omitempty"`
	OpenRouterModel string     `json:"openrouter_model"`
	DebugLogging    bool       `json:"debug_logging"`
}

// DefaultAISettings returns the local-first defaults used when no
// settings row has been saved yet.
func DefaultAISettings() AISettings {
	return AISettings{
		Provider:        ProviderOllama,
		OllamaURL:       "http://localhost:11434",
		OllamaModel:     "qwen3:8b",
		OpenRouterModel: "openai/gpt-5-mini",
	}
}
