package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquanqa/ticketera/internal/domain"
)

func newTestStore(t *testing.T) *JSONFileStore {
	t.Helper()
	store, err := NewJSONFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func newTicket(id, owner string) *domain.Ticket {
	now := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)
	return &domain.Ticket{
		ID:          id,
		Title:       "Horas del " + id,
		Description: domain.DefaultDescription,
		Owner:       owner,
		State:       domain.StateOpen,
		RecordCount: 4,
		Filename:    "datos.xlsx",
		Comments:    []domain.Comment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestJSONFileTicketsCRUD(t *testing.T) {
	ctx := context.Background()
	tickets := newTestStore(t).Tickets()

	require.NoError(t, tickets.Create(ctx, newTicket("aaaa1111", "alice")))
	require.NoError(t, tickets.Create(ctx, newTicket("bbbb2222", "bob")))

	all, err := tickets.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := tickets.GetByID(ctx, "aaaa1111")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Owner)
	assert.Equal(t, domain.StateOpen, got.State)

	_, err = tickets.GetByID(ctx, "missing1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, tickets.Delete(ctx, "aaaa1111"))
	all, err = tickets.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestJSONFileTicketsDuplicateID(t *testing.T) {
	ctx := context.Background()
	tickets := newTestStore(t).Tickets()

	require.NoError(t, tickets.Create(ctx, newTicket("aaaa1111", "alice")))
	err := tickets.Create(ctx, newTicket("aaaa1111", "bob"))
	assert.ErrorIs(t, err, ErrDuplicateID)

	all, err := tickets.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "alice", all[0].Owner)
}

func TestJSONFileUpdateState(t *testing.T) {
	ctx := context.Background()
	tickets := newTestStore(t).Tickets()
	require.NoError(t, tickets.Create(ctx, newTicket("aaaa1111", "alice")))

	updatedAt := time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, tickets.UpdateState(ctx, "aaaa1111", domain.StateClosed, updatedAt))

	got, err := tickets.GetByID(ctx, "aaaa1111")
	require.NoError(t, err)
	assert.Equal(t, domain.StateClosed, got.State)
	assert.True(t, got.UpdatedAt.Equal(updatedAt))

	err = tickets.UpdateState(ctx, "missing1", domain.StateClosed, updatedAt)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJSONFileAppendComment(t *testing.T) {
	ctx := context.Background()
	tickets := newTestStore(t).Tickets()
	require.NoError(t, tickets.Create(ctx, newTicket("aaaa1111", "alice")))

	stamp := time.Date(2025, time.June, 2, 11, 0, 0, 0, time.UTC)
	require.NoError(t, tickets.AppendComment(ctx, "aaaa1111", domain.Comment{
		Author:    "admin@example.com",
		Text:      "revisado",
		Timestamp: stamp,
	}))
	require.NoError(t, tickets.AppendComment(ctx, "aaaa1111", domain.Comment{
		Author:    "alice",
		Text:      "gracias",
		Timestamp: stamp.Add(time.Minute),
	}))

	got, err := tickets.GetByID(ctx, "aaaa1111")
	require.NoError(t, err)
	require.Len(t, got.Comments, 2)
	assert.Equal(t, "revisado", got.Comments[0].Text)
	assert.Equal(t, "alice", got.Comments[1].Author)

	err = tickets.AppendComment(ctx, "missing1", domain.Comment{Author: "x", Text: "y", Timestamp: stamp})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJSONFileDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Tickets().Delete(ctx, "never-existed"))
	require.NoError(t, store.Attachments().Delete(ctx, "never-existed"))
}

func TestJSONFileAttachments(t *testing.T) {
	ctx := context.Background()
	attachments := newTestStore(t).Attachments()
	payload := []byte("DNI,NOMBRES Y APELLIDOS\n123,Juan")

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, attachments.Put(ctx, "aaaa1111", "datos.csv", payload))

		got, err := attachments.Get(ctx, "aaaa1111")
		require.NoError(t, err)
		assert.Equal(t, "datos.csv", got.Filename)
		assert.Equal(t, payload, got.Bytes)
	})

	t.Run("put replaces previous payload", func(t *testing.T) {
		replacement := []byte("otro contenido")
		require.NoError(t, attachments.Put(ctx, "aaaa1111", "datos_v2.csv", replacement))

		got, err := attachments.Get(ctx, "aaaa1111")
		require.NoError(t, err)
		assert.Equal(t, "datos_v2.csv", got.Filename)
		assert.Equal(t, replacement, got.Bytes)
	})

	t.Run("empty payload rejected", func(t *testing.T) {
		err := attachments.Put(ctx, "bbbb2222", "datos.csv", nil)
		assert.ErrorIs(t, err, ErrEmptyPayload)
	})

	t.Run("unknown ticket", func(t *testing.T) {
		_, err := attachments.Get(ctx, "missing1")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestJSONFileChecksumDetectsCorruption(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	attachments := store.Attachments()

	require.NoError(t, attachments.Put(ctx, "aaaa1111", "datos.csv", []byte("payload intacto")))

	// corrupt the stored payload behind the store's back
	path := filepath.Join(store.uploadsDir, "aaaa1111.bin")
	require.NoError(t, os.WriteFile(path, []byte("payload alterado"), 0o644))

	_, err := attachments.Get(ctx, "aaaa1111")
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestJSONFileCancelledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Tickets().Create(ctx, newTicket("aaaa1111", "alice"))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = store.Tickets().ListAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
