package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/case-service/internal/domain"
)

const statusCatalogKey = "case-service:case-statuses:v1"

// StatusSource loads the authoritative status catalog.
type StatusSource interface {
	List(ctx context.Context) ([]domain.CaseStatus, error)
}

// StatusCatalog is a Redis read-through cache in front of a StatusSource.
// With no client or a non-positive TTL it reads the source directly.
type StatusCatalog struct {
	source StatusSource
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

type cachedStatus struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// NewStatusCatalog builds the cache.
func NewStatusCatalog(source StatusSource, client *redis.Client, ttl time.Duration, logger *zap.Logger) *StatusCatalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusCatalog{source: source, client: client, ttl: ttl, logger: logger}
}

// List returns statuses ordered by ID. Redis failures degrade to the source.
func (c *StatusCatalog) List(ctx context.Context) ([]domain.CaseStatus, error) {
	if c.client == nil || c.ttl <= 0 {
		return c.source.List(ctx)
	}

	raw, err := c.client.Get(ctx, statusCatalogKey).Bytes()
	switch {
	case err == nil:
		var cached []cachedStatus
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr != nil {
			c.logger.Warn("discarding corrupt status cache entry", zap.Error(jsonErr))
			break
		}
		out := make([]domain.CaseStatus, len(cached))
		for i, entry := range cached {
			out[i] = domain.CaseStatus{ID: entry.ID, Name: domain.CaseStatusName(entry.Name)}
		}
		return out, nil
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("status cache read failed", zap.Error(err))
	}

	statuses, err := c.source.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		return statuses, nil
	}

	entries := make([]cachedStatus, len(statuses))
	for i, status := range statuses {
		entries[i] = cachedStatus{ID: status.ID, Name: string(status.Name)}
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return statuses, nil
	}
	if err := c.client.Set(ctx, statusCatalogKey, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("status cache write failed", zap.Error(err))
	}
	return statuses, nil
}

// Invalidate drops the cached catalog.
func (c *StatusCatalog) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, statusCatalogKey).Err()
}
