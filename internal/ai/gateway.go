package ai

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"chronoflux-server/internal/models"
)

// GenerateOptions tune a single completion call.
type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
}

// Gateway is a single-call text completion client over one concrete
// provider. Implementations classify transport failures into the package
// error taxonomy; they never retry.
type Gateway interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	ProviderName() string
	ModelName() string
}

// NewGateway builds the gateway matching the persisted settings. The
// settings value is resolved once per request at the boundary and passed
// in explicitly.
func NewGateway(settings models.AISettings, timeout time.Duration, logger *zap.Logger) (Gateway, error) {
	switch settings.Provider {
	case models.ProviderOllama:
		return newOllamaGateway(settings, timeout, logger)
	case models.ProviderOpenRouter:
		return newOpenRouterGateway(settings, timeout, logger)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", settings.Provider)
	}
}
