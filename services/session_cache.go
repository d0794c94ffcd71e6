package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"quizpanel/models"
	"quizpanel/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// SessionCache keeps active sessions addressable by their public unique id.
type SessionCache interface {
	Get(ctx context.Context, uniqueID string) (*models.QuizSession, bool)
	Set(ctx context.Context, session *models.QuizSession)
	Delete(ctx context.Context, uniqueID string)
}

type noopSessionCache struct{}

func (noopSessionCache) Get(context.Context, string) (*models.QuizSession, bool) { return nil, false }
func (noopSessionCache) Set(context.Context, *models.QuizSession)                {}
func (noopSessionCache) Delete(context.Context, string)                          {}

// RedisSessionCache stores sessions as JSON under quiz_session:{unique_id}.
// Redis failures are logged and treated as cache misses.
type RedisSessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionCache(client *redis.Client, ttl time.Duration) *RedisSessionCache {
	return &RedisSessionCache{client: client, ttl: ttl}
}

func (c *RedisSessionCache) Get(ctx context.Context, uniqueID string) (*models.QuizSession, bool) {
	data, err := c.client.Get(ctx, sessionKey(uniqueID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("Session cache read failed", "unique_id", uniqueID, "error", err)
		}
		return nil, false
	}

	var session models.QuizSession
	if err := json.Unmarshal(data, &session); err != nil {
		logger.Warn("Session cache entry is corrupt", "unique_id", uniqueID, "error", err)
		c.Delete(ctx, uniqueID)
		return nil, false
	}
	return &session, true
}

func (c *RedisSessionCache) Set(ctx context.Context, session *models.QuizSession) {
	data, err := json.Marshal(session)
	if err != nil {
		logger.Warn("Failed to encode session for cache", "unique_id", session.UniqueID, "error", err)
		return
	}
	if err := c.client.Set(ctx, sessionKey(session.UniqueID), data, c.ttl).Err(); err != nil {
		logger.Warn("Session cache write failed", "unique_id", session.UniqueID, "error", err)
	}
}

func (c *RedisSessionCache) Delete(ctx context.Context, uniqueID string) {
	if err := c.client.Del(ctx, sessionKey(uniqueID)).Err(); err != nil {
		logger.Warn("Session cache delete failed", "unique_id", uniqueID, "error", err)
	}
}

func sessionKey(uniqueID string) string {
	return "quiz_session:" + uniqueID
}
