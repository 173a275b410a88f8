package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"

	"chronoflux-server/internal/models"
)

// Compile-time check
var _ Gateway = (*ollamaGateway)(nil)

type ollamaGateway struct {
	client  *api.Client
	model   string
	baseURL string
	timeout time.Duration
	debug   bool
	logger  *zap.Logger
}

func newOllamaGateway(settings models.AISettings, timeout time.Duration, logger *zap.Logger) (*ollamaGateway, error) {
	base, err := url.Parse(settings.OllamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama URL %q: %w", settings.OllamaURL, err)
	}
	// No client-level timeout; the per-call context deadline governs,
	// so slow generations surface as context.DeadlineExceeded.
	return &ollamaGateway{
		client:  api.NewClient(base, http.DefaultClient),
		model:   settings.OllamaModel,
		baseURL: settings.OllamaURL,
		timeout: timeout,
		debug:   settings.DebugLogging,
		logger:  logger.Named("OllamaGateway"),
	}, nil
}

func (g *ollamaGateway) ProviderName() string { return string(models.ProviderOllama) }
func (g *ollamaGateway) ModelName() string    { return g.model }

func (g *ollamaGateway) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	stream := false
	req := &api.GenerateRequest{
		Model:  g.model,
		Prompt: prompt,
		Stream: &stream,
		Options: map[string]any{
			"temperature": opts.Temperature,
		},
	}
	if opts.MaxTokens > 0 {
		req.Options["num_predict"] = opts.MaxTokens
	}

	if g.debug {
		g.logger.Debug("Sending prompt to ollama",
			zap.String("model", g.model),
			zap.Int("promptLength", len(prompt)))
	}

	start := time.Now()
	var sb strings.Builder
	err := g.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	observeRequest(string(models.ProviderOllama), g.model, time.Since(start), err)
	if err != nil {
		return "", g.classify(err)
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	observeTokens(string(models.ProviderOllama), g.model, prompt, text)
	return text, nil
}

// classify maps transport failures onto the package taxonomy. A local
// model that is down shows up as a url.Error, which users fix by
// starting ollama, so the message says exactly that.
func (g *ollamaGateway) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s (model %s)", ErrTimeout, g.timeout, g.model)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: cannot reach ollama at %s, make sure it is running (ollama serve): %v",
			ErrConnectivity, g.baseURL, err)
	}
	return fmt.Errorf("%w: %v", ErrProvider, err)
}
