package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"chronoflux-server/internal/interfaces"
	"chronoflux-server/internal/models"
)

// Compile-time check
var _ interfaces.SettingsRepository = (*redisSettingsRepository)(nil)

const settingsKey = "chronoflux:ai_settings"

type redisSettingsRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisSettingsRepository(client *redis.Client, logger *zap.Logger) interfaces.SettingsRepository {
	return &redisSettingsRepository{
		client: client,
		logger: logger.Named("RedisSettingsRepo"),
	}
}

// Get returns the saved AI settings, or the defaults when nothing has
// been saved yet.
func (r *redisSettingsRepository) Get(ctx context.Context) (models.AISettings, error) {
	raw, err := r.client.Get(ctx, settingsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.DefaultAISettings(), nil
		}
		r.logger.Error("Failed to read AI settings", zap.Error(err))
		return models.AISettings{}, fmt.Errorf("failed to read AI settings: %w", err)
	}

	var settings models.AISettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		r.logger.Warn("Stored AI settings are corrupt, using defaults", zap.Error(err))
		return models.DefaultAISettings(), nil
	}
	return settings, nil
}

func (r *redisSettingsRepository) Save(ctx context.Context, settings models.AISettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode AI settings: %w", err)
	}
	if err := r.client.Set(ctx, settingsKey, raw, 0).Err(); err != nil {
		r.logger.Error("Failed to save AI settings", zap.Error(err))
		return fmt.Errorf("failed to save AI settings: %w", err)
	}
	r.logger.Info("AI settings saved", zap.String("provider", string(settings.Provider)))
	return nil
}
