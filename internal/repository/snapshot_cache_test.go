package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aquanqa/ticketera/internal/domain"
)

// countingRepo is an in-memory TicketRepository that tracks how often the
// snapshot is read, so tests can tell cache hits from backend reads.
type countingRepo struct {
	mu        sync.Mutex
	tickets   []domain.Ticket
	listCalls int
}

func (r *countingRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets = append(r.tickets, *ticket)
	return nil
}

func (r *countingRepo) ListAll(context.Context) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	out := make([]domain.Ticket, len(r.tickets))
	copy(out, r.tickets)
	return out, nil
}

func (r *countingRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tickets {
		if r.tickets[i].ID == id {
			ticket := r.tickets[i]
			return &ticket, nil
		}
	}
	return nil, ErrNotFound
}

func (r *countingRepo) UpdateState(_ context.Context, id string, state domain.TicketState, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tickets {
		if r.tickets[i].ID == id {
			r.tickets[i].State = state
			r.tickets[i].UpdatedAt = updatedAt
			return nil
		}
	}
	return ErrNotFound
}

func (r *countingRepo) AppendComment(_ context.Context, id string, comment domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tickets {
		if r.tickets[i].ID == id {
			r.tickets[i].Comments = append(r.tickets[i].Comments, comment)
			return nil
		}
	}
	return ErrNotFound
}

func (r *countingRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.tickets[:0]
	for i := range r.tickets {
		if r.tickets[i].ID != id {
			kept = append(kept, r.tickets[i])
		}
	}
	r.tickets = kept
	return nil
}

func (r *countingRepo) listCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listCalls
}

func newCacheFixture(t *testing.T) (*SnapshotCache, *countingRepo, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	inner := &countingRepo{tickets: []domain.Ticket{
		{ID: "aaaa1111", Owner: "alice", State: domain.StateOpen},
	}}
	cache := NewSnapshotCache(inner, client, time.Minute, zap.NewNop())
	return cache, inner, server
}

func TestSnapshotCacheReadThrough(t *testing.T) {
	ctx := context.Background()
	cache, inner, _ := newCacheFixture(t)

	first, err := cache.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, first, 1)
	assert.Equal(t, 1, inner.listCount())

	second, err := cache.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.listCount(), "second read must be served from the cache")
}

func TestSnapshotCacheInvalidatedByEveryMutation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(t *testing.T, cache *SnapshotCache)
		verify func(t *testing.T, tickets []domain.Ticket)
	}{
		{
			name: "create",
			mutate: func(t *testing.T, cache *SnapshotCache) {
				require.NoError(t, cache.Create(ctx, &domain.Ticket{ID: "bbbb2222", Owner: "bob", State: domain.StateOpen}))
			},
			verify: func(t *testing.T, tickets []domain.Ticket) {
				assert.Len(t, tickets, 2)
			},
		},
		{
			name: "update state",
			mutate: func(t *testing.T, cache *SnapshotCache) {
				require.NoError(t, cache.UpdateState(ctx, "aaaa1111", domain.StateClosed, time.Now()))
			},
			verify: func(t *testing.T, tickets []domain.Ticket) {
				require.Len(t, tickets, 1)
				assert.Equal(t, domain.StateClosed, tickets[0].State)
			},
		},
		{
			name: "append comment",
			mutate: func(t *testing.T, cache *SnapshotCache) {
				require.NoError(t, cache.AppendComment(ctx, "aaaa1111", domain.Comment{Author: "alice", Text: "hola"}))
			},
			verify: func(t *testing.T, tickets []domain.Ticket) {
				require.Len(t, tickets, 1)
				assert.Len(t, tickets[0].Comments, 1)
			},
		},
		{
			name: "delete",
			mutate: func(t *testing.T, cache *SnapshotCache) {
				require.NoError(t, cache.Delete(ctx, "aaaa1111"))
			},
			verify: func(t *testing.T, tickets []domain.Ticket) {
				assert.Empty(t, tickets)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache, inner, _ := newCacheFixture(t)

			_, err := cache.ListAll(ctx)
			require.NoError(t, err)
			require.Equal(t, 1, inner.listCount())

			tt.mutate(t, cache)

			tickets, err := cache.ListAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, inner.listCount(), "mutation must invalidate the snapshot")
			tt.verify(t, tickets)
		})
	}
}

func TestSnapshotCacheCorruptEntryFallsBack(t *testing.T) {
	ctx := context.Background()
	cache, inner, server := newCacheFixture(t)

	require.NoError(t, server.Set(snapshotKey, "not json"))

	tickets, err := cache.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, tickets, 1)
	assert.Equal(t, 1, inner.listCount(), "corrupt snapshot must fall back to the backend")
}

func TestSnapshotCacheDegradesWithoutRedis(t *testing.T) {
	ctx := context.Background()

	t.Run("nil client", func(t *testing.T) {
		inner := &countingRepo{tickets: []domain.Ticket{{ID: "aaaa1111", Owner: "alice"}}}
		cache := NewSnapshotCache(inner, nil, time.Minute, zap.NewNop())

		for i := 0; i < 2; i++ {
			tickets, err := cache.ListAll(ctx)
			require.NoError(t, err)
			assert.Len(t, tickets, 1)
		}
		assert.Equal(t, 2, inner.listCount())

		require.NoError(t, cache.Create(ctx, &domain.Ticket{ID: "bbbb2222", Owner: "bob"}))
		tickets, err := cache.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, tickets, 2)
	})

	t.Run("unreachable server", func(t *testing.T) {
		cache, inner, server := newCacheFixture(t)
		server.Close()

		tickets, err := cache.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, tickets, 1)
		assert.Equal(t, 1, inner.listCount())
	})
}

func TestSnapshotCacheGetByIDBypassesCache(t *testing.T) {
	ctx := context.Background()
	cache, inner, _ := newCacheFixture(t)

	_, err := cache.ListAll(ctx)
	require.NoError(t, err)

	require.NoError(t, inner.UpdateState(ctx, "aaaa1111", domain.StateClosed, time.Now()))

	ticket, err := cache.GetByID(ctx, "aaaa1111")
	require.NoError(t, err)
	assert.Equal(t, domain.StateClosed, ticket.State, "point reads must always hit the backend")
}
