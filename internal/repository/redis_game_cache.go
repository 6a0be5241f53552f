package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/models"
)

// Compile-time check to ensure redisGameCache implements GameCache
var _ GameCache = (*redisGameCache)(nil)

type redisGameCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisGameCache creates a Redis-backed game cache. Entries expire after
// ttl so a stale artifact never outlives the day it was built.
func NewRedisGameCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) GameCache {
	return &redisGameCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisGameCache"),
	}
}

func gameCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("forge:game:%s", id.String())
}

// Get returns the cached game or models.ErrNotFound on a miss.
func (r *redisGameCache) Get(ctx context.Context, id uuid.UUID) (*models.GeneratedGame, error) {
	key := gameCacheKey(id)
	r.logger.Debug("Getting game from cache", zap.String("key", key))

	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			r.logger.Debug("Game not found in cache", zap.String("gameID", id.String()))
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get game from cache", zap.Error(err), zap.String("key", key))
		return nil, fmt.Errorf("failed to get game from cache: %w", err)
	}

	var game models.GeneratedGame
	if err := json.Unmarshal([]byte(data), &game); err != nil {
		r.logger.Error("Failed to decode cached game, dropping entry",
			zap.Error(err),
			zap.String("key", key),
		)
		// A corrupted entry must not shadow the database copy.
		r.client.Del(ctx, key)
		return nil, models.ErrNotFound
	}
	return &game, nil
}

// Set stores the game under its ID for the configured TTL.
func (r *redisGameCache) Set(ctx context.Context, game *models.GeneratedGame) error {
	key := gameCacheKey(game.ID)
	data, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("failed to encode game for cache: %w", err)
	}

	r.logger.Debug("Caching game",
		zap.String("key", key),
		zap.Int("bytes", len(data)),
		zap.Duration("ttl", r.ttl),
	)
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to cache game", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to cache game %s: %w", game.ID, err)
	}
	return nil
}

// Invalidate drops the cached entry for a game.
func (r *redisGameCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	key := gameCacheKey(id)
	r.logger.Debug("Invalidating cached game", zap.String("key", key))

	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Failed to invalidate cached game", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to invalidate cached game %s: %w", id, err)
	}
	return nil
}
