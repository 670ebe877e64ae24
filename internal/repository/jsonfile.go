package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aquanqa/ticketera/internal/domain"
)

const (
	ticketsFileName = "tickets_data.json"
	uploadsDirName  = "ticket_uploads"
)

// JSONFileStore is the local-mode backend: the ticket collection lives in a
// single JSON document and attachment payloads in an uploads directory. All
// mutations are serialized behind one mutex and document writes go through a
// temp-file rename, so readers never observe a torn record.
type JSONFileStore struct {
	mu         sync.Mutex
	dataFile   string
	uploadsDir string
}

// NewJSONFileStore prepares the data directory and returns the store.
func NewJSONFileStore(dataDir string) (*JSONFileStore, error) {
	uploadsDir := filepath.Join(dataDir, uploadsDirName)
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("prepare data dir: %w", err)
	}
	return &JSONFileStore{
		dataFile:   filepath.Join(dataDir, ticketsFileName),
		uploadsDir: uploadsDir,
	}, nil
}

// Tickets returns the TicketRepository view of the store.
func (s *JSONFileStore) Tickets() TicketRepository {
	return &jsonFileTickets{store: s}
}

// Attachments returns the AttachmentStore view of the store.
func (s *JSONFileStore) Attachments() AttachmentStore {
	return &jsonFileAttachments{store: s}
}

func (s *JSONFileStore) load() ([]domain.Ticket, error) {
	raw, err := os.ReadFile(s.dataFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.Ticket{}, nil
		}
		return nil, err
	}
	var tickets []domain.Ticket
	if err := json.Unmarshal(raw, &tickets); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ticketsFileName, err)
	}
	return tickets, nil
}

func (s *JSONFileStore) save(tickets []domain.Ticket) error {
	raw, err := json.MarshalIndent(tickets, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.dataFile + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.dataFile)
}

// mutate runs fn over the decoded collection under the lock and persists the
// result only when fn succeeds.
func (s *JSONFileStore) mutate(ctx context.Context, fn func(tickets []domain.Ticket) ([]domain.Ticket, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.load()
	if err != nil {
		return err
	}
	updated, err := fn(tickets)
	if err != nil {
		return err
	}
	return s.save(updated)
}

type jsonFileTickets struct {
	store *JSONFileStore
}

func (r *jsonFileTickets) Create(ctx context.Context, ticket *domain.Ticket) error {
	copied := *ticket
	if copied.Comments == nil {
		copied.Comments = []domain.Comment{}
	}
	return r.store.mutate(ctx, func(tickets []domain.Ticket) ([]domain.Ticket, error) {
		for i := range tickets {
			if tickets[i].ID == copied.ID {
				return nil, ErrDuplicateID
			}
		}
		return append(tickets, copied), nil
	})
}

func (r *jsonFileTickets) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.load()
}

func (r *jsonFileTickets) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	tickets, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tickets {
		if tickets[i].ID == id {
			ticket := tickets[i]
			return &ticket, nil
		}
	}
	return nil, ErrNotFound
}

func (r *jsonFileTickets) UpdateState(ctx context.Context, id string, state domain.TicketState, updatedAt time.Time) error {
	return r.store.mutate(ctx, func(tickets []domain.Ticket) ([]domain.Ticket, error) {
		for i := range tickets {
			if tickets[i].ID == id {
				tickets[i].State = state
				tickets[i].UpdatedAt = updatedAt
				return tickets, nil
			}
		}
		return nil, ErrNotFound
	})
}

func (r *jsonFileTickets) AppendComment(ctx context.Context, id string, comment domain.Comment) error {
	return r.store.mutate(ctx, func(tickets []domain.Ticket) ([]domain.Ticket, error) {
		for i := range tickets {
			if tickets[i].ID == id {
				tickets[i].Comments = append(tickets[i].Comments, comment)
				tickets[i].UpdatedAt = comment.Timestamp
				return tickets, nil
			}
		}
		return nil, ErrNotFound
	})
}

func (r *jsonFileTickets) Delete(ctx context.Context, id string) error {
	return r.store.mutate(ctx, func(tickets []domain.Ticket) ([]domain.Ticket, error) {
		kept := tickets[:0]
		for i := range tickets {
			if tickets[i].ID != id {
				kept = append(kept, tickets[i])
			}
		}
		return kept, nil
	})
}

type jsonFileAttachments struct {
	store *JSONFileStore
}

type attachmentMeta struct {
	Filename string `json:"filename"`
	Checksum []byte `json:"checksum"`
}

func (a *jsonFileAttachments) payloadPath(ticketID string) string {
	return filepath.Join(a.store.uploadsDir, ticketID+".bin")
}

func (a *jsonFileAttachments) metaPath(ticketID string) string {
	return filepath.Join(a.store.uploadsDir, ticketID+".json")
}

func (a *jsonFileAttachments) Put(ctx context.Context, ticketID, filename string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(payload) == 0 {
		return ErrEmptyPayload
	}
	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	meta, err := json.Marshal(attachmentMeta{Filename: filename, Checksum: checksum(payload)})
	if err != nil {
		return err
	}
	if err := os.WriteFile(a.payloadPath(ticketID), payload, 0o644); err != nil {
		return err
	}
	return os.WriteFile(a.metaPath(ticketID), meta, 0o644)
}

func (a *jsonFileAttachments) Get(ctx context.Context, ticketID string) (*domain.Attachment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	rawMeta, err := os.ReadFile(a.metaPath(ticketID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var meta attachmentMeta
	if err := json.Unmarshal(rawMeta, &meta); err != nil {
		return nil, err
	}
	payload, err := os.ReadFile(a.payloadPath(ticketID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !bytes.Equal(meta.Checksum, checksum(payload)) {
		return nil, ErrChecksumMismatch
	}
	return &domain.Attachment{TicketID: ticketID, Filename: meta.Filename, Bytes: payload}, nil
}

func (a *jsonFileAttachments) Delete(ctx context.Context, ticketID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	for _, path := range []string{a.payloadPath(ticketID), a.metaPath(ticketID)} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
