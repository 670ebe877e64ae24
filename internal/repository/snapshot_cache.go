package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aquanqa/ticketera/internal/domain"
)

const snapshotKey = "ticketera:tickets:snapshot"

// SnapshotCache is a read-through cache in front of a TicketRepository.
// ListAll serves the last snapshot from Redis until any mutation invalidates
// it. Cache failures degrade to direct reads; they are logged, never surfaced.
type SnapshotCache struct {
	inner  TicketRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewSnapshotCache wraps inner with a Redis snapshot cache.
func NewSnapshotCache(inner TicketRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *SnapshotCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SnapshotCache{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (c *SnapshotCache) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	if c.client != nil {
		raw, err := c.client.Get(ctx, snapshotKey).Bytes()
		if err == nil {
			var tickets []domain.Ticket
			if err := json.Unmarshal(raw, &tickets); err == nil {
				return tickets, nil
			}
			c.invalidate(ctx)
		} else if !errors.Is(err, redis.Nil) {
			c.logger.Warn("snapshot cache read failed", zap.Error(err))
		}
	}

	tickets, err := c.inner.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if c.client != nil {
		if raw, err := json.Marshal(tickets); err == nil {
			if err := c.client.Set(ctx, snapshotKey, raw, c.ttl).Err(); err != nil {
				c.logger.Warn("snapshot cache write failed", zap.Error(err))
			}
		}
	}
	return tickets, nil
}

func (c *SnapshotCache) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return c.inner.GetByID(ctx, id)
}

func (c *SnapshotCache) Create(ctx context.Context, ticket *domain.Ticket) error {
	if err := c.inner.Create(ctx, ticket); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *SnapshotCache) UpdateState(ctx context.Context, id string, state domain.TicketState, updatedAt time.Time) error {
	if err := c.inner.UpdateState(ctx, id, state, updatedAt); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *SnapshotCache) AppendComment(ctx context.Context, id string, comment domain.Comment) error {
	if err := c.inner.AppendComment(ctx, id, comment); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *SnapshotCache) Delete(ctx context.Context, id string) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *SnapshotCache) invalidate(ctx context.Context) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, snapshotKey).Err(); err != nil {
		c.logger.Warn("snapshot cache invalidation failed", zap.Error(err))
	}
}
