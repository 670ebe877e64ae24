// Package export renders ticket summaries for the admin bulk export.
package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/aquanqa/ticketera/internal/domain"
)

// SummaryRow is one exported line of the ticket report.
type SummaryRow struct {
	ID          string
	Title       string
	Owner       string
	State       domain.TicketState
	RecordCount int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var summaryHeader = []string{"id", "title", "owner", "state", "record_count", "created_at", "updated_at"}

// SummaryRows projects tickets into export rows, preserving input order.
func SummaryRows(tickets []domain.Ticket) []SummaryRow {
	rows := make([]SummaryRow, 0, len(tickets))
	for _, ticket := range tickets {
		rows = append(rows, SummaryRow{
			ID:          ticket.ID,
			Title:       ticket.Title,
			Owner:       ticket.Owner,
			State:       ticket.State,
			RecordCount: ticket.RecordCount,
			CreatedAt:   ticket.CreatedAt,
			UpdatedAt:   ticket.UpdatedAt,
		})
	}
	return rows
}

// WriteCSV renders rows as a CSV document with a header line.
func WriteCSV(rows []SummaryRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(summaryHeader); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := []string{
			row.ID,
			row.Title,
			row.Owner,
			string(row.State),
			strconv.Itoa(row.RecordCount),
			row.CreatedAt.Format(time.RFC3339),
			row.UpdatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
