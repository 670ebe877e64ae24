package repository

import (
	"bytes"
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/blake2b"

	"github.com/aquanqa/ticketera/internal/domain"
)

// AttachmentStore persists exactly one binary payload per ticket id. Put
// replaces any prior payload for the same id; Delete of an absent id is a
// no-op. Stored payloads carry a blake2b digest verified on every Get.
type AttachmentStore interface {
	Put(ctx context.Context, ticketID, filename string, payload []byte) error
	Get(ctx context.Context, ticketID string) (*domain.Attachment, error)
	Delete(ctx context.Context, ticketID string) error
}

type attachmentStore struct {
	pool *pgxpool.Pool
}

// NewAttachmentStore instantiates the postgres-backed store.
func NewAttachmentStore(pool *pgxpool.Pool) AttachmentStore {
	return &attachmentStore{pool: pool}
}

func (s *attachmentStore) Put(ctx context.Context, ticketID, filename string, payload []byte) error {
	if len(payload) == 0 {
		return ErrEmptyPayload
	}
	digest := checksum(payload)
	const query = `
        INSERT INTO ticket_attachments (ticket_id, filename, payload, checksum)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (ticket_id) DO UPDATE SET filename=$2, payload=$3, checksum=$4`
	_, err := s.pool.Exec(ctx, query, ticketID, filename, payload, digest)
	return err
}

func (s *attachmentStore) Get(ctx context.Context, ticketID string) (*domain.Attachment, error) {
	const query = `SELECT filename, payload, checksum FROM ticket_attachments WHERE ticket_id=$1`

	att := domain.Attachment{TicketID: ticketID}
	var digest []byte
	if err := s.pool.QueryRow(ctx, query, ticketID).Scan(&att.Filename, &att.Bytes, &digest); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !bytes.Equal(digest, checksum(att.Bytes)) {
		return nil, ErrChecksumMismatch
	}
	return &att, nil
}

func (s *attachmentStore) Delete(ctx context.Context, ticketID string) error {
	const query = `DELETE FROM ticket_attachments WHERE ticket_id=$1`
	_, err := s.pool.Exec(ctx, query, ticketID)
	return err
}

func checksum(payload []byte) []byte {
	sum := blake2b.Sum256(payload)
	return sum[:]
}
