package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"chronoflux-server/internal/models"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// Compile-time check
var _ Gateway = (*openRouterGateway)(nil)

type openRouterGateway struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	debug   bool
	logger  *zap.Logger
}

func newOpenRouterGateway(settings models.AISettings, timeout time.Duration, logger *zap.Logger) (*openRouterGateway, error) {
	if settings.OpenRouterKey == "" {
		return nil, fmt.Errorf("%w: OpenRouter API key is not configured", ErrAuth)
	}
	cfg := openai.DefaultConfig(settings.OpenRouterKey)
	cfg.BaseURL = openRouterBaseURL
	return &openRouterGateway{
		client:  openai.NewClientWithConfig(cfg),
		model:   settings.OpenRouterModel,
		timeout: timeout,
		debug:   settings.DebugLogging,
		logger:  logger.Named("OpenRouterGateway"),
	}, nil
}

func (g *openRouterGateway) ProviderName() string { return string(models.ProviderOpenRouter) }
func (g *openRouterGateway) ModelName() string    { return g.model }

func (g *openRouterGateway) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}

	if g.debug {
		g.logger.Debug("Sending prompt to OpenRouter",
			zap.String("model", g.model),
			zap.Int("promptLength", len(prompt)))
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, req)
	observeRequest(string(models.ProviderOpenRouter), g.model, time.Since(start), err)
	if err != nil {
		return "", g.classify(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	text := resp.Choices[0].Message.Content
	observeTokens(string(models.ProviderOpenRouter), g.model, prompt, text)
	return text, nil
}

func (g *openRouterGateway) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s (model %s)", ErrTimeout, g.timeout, g.model)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401:
			return fmt.Errorf("%w: check the OpenRouter API key: %v", ErrAuth, err)
		case 402:
			return fmt.Errorf("%w: OpenRouter balance is exhausted: %v", ErrQuota, err)
		case 429:
			return fmt.Errorf("%w: %v", ErrRateLimit, err)
		default:
			return fmt.Errorf("%w: %v", ErrProvider, err)
		}
	}
	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: cannot reach OpenRouter, check the network connection: %v", ErrConnectivity, err)
	}
	return fmt.Errorf("%w: %v", ErrProvider, err)
}
