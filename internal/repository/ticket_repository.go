package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aquanqa/ticketera/internal/domain"
)

// postgres class 23 integrity violation for duplicate primary keys.
const uniqueViolationCode = "23505"

// TicketRepository encapsulates ticket persistence. Implementations must
// serialize mutations per ticket id and return point-in-time snapshots from
// the read methods; callers never see a partially written ticket.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	UpdateState(ctx context.Context, id string, state domain.TicketState, updatedAt time.Time) error
	AppendComment(ctx context.Context, id string, comment domain.Comment) error
	Delete(ctx context.Context, id string) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the postgres-backed repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, title, description, owner_identity, state, record_count,
       attachment_filename, comments, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	comments, err := marshalComments(ticket.Comments)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO tickets (id, title, description, owner_identity, state, record_count, attachment_filename, comments, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err = r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.Owner,
		ticket.State,
		ticket.RecordCount,
		ticket.Filename,
		comments,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return ErrDuplicateID
	}
	return err
}

func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets`, ticketColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)

	var (
		ticket   domain.Ticket
		comments []byte
	)
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Owner,
		&ticket.State,
		&ticket.RecordCount,
		&ticket.Filename,
		&comments,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(comments, &ticket.Comments); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) UpdateState(ctx context.Context, id string, state domain.TicketState, updatedAt time.Time) error {
	const query = `UPDATE tickets SET state=$2, updated_at=$3 WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id, state, updatedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendComment appends through a single jsonb concatenation so two sessions
// commenting at once can never lose each other's entry.
func (r *ticketRepository) AppendComment(ctx context.Context, id string, comment domain.Comment) error {
	entry, err := json.Marshal([]domain.Comment{comment})
	if err != nil {
		return err
	}
	const query = `UPDATE tickets SET comments = comments || $2::jsonb, updated_at=$3 WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id, entry, comment.Timestamp)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the ticket row. The attachment row goes with it via the
// foreign key cascade, so record and blob disappear in one statement.
func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tickets WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var (
			ticket   domain.Ticket
			comments []byte
		)
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Owner,
			&ticket.State,
			&ticket.RecordCount,
			&ticket.Filename,
			&comments,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(comments, &ticket.Comments); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func marshalComments(comments []domain.Comment) ([]byte, error) {
	if comments == nil {
		comments = []domain.Comment{}
	}
	return json.Marshal(comments)
}
