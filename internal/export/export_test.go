package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquanqa/ticketera/internal/domain"
)

func TestSummaryRows(t *testing.T) {
	created := time.Date(2025, time.May, 2, 9, 30, 0, 0, time.UTC)
	tickets := []domain.Ticket{
		{ID: "a1b2c3d4", Title: "T1", Owner: "alice", State: domain.StateOpen, RecordCount: 5, CreatedAt: created, UpdatedAt: created},
		{ID: "e5f6a7b8", Title: "T2", Owner: "bob", State: domain.StateClosed, RecordCount: 9, CreatedAt: created, UpdatedAt: created.Add(time.Hour)},
	}

	rows := SummaryRows(tickets)
	require.Len(t, rows, 2)
	assert.Equal(t, "a1b2c3d4", rows[0].ID)
	assert.Equal(t, "alice", rows[0].Owner)
	assert.Equal(t, domain.StateClosed, rows[1].State)
	assert.Equal(t, 9, rows[1].RecordCount)
}

func TestWriteCSV(t *testing.T) {
	created := time.Date(2025, time.May, 2, 9, 30, 0, 0, time.UTC)
	rows := []SummaryRow{
		{ID: "a1b2c3d4", Title: "Horas faltantes", Owner: "alice", State: domain.StateOpen, RecordCount: 5, CreatedAt: created, UpdatedAt: created},
	}

	payload, err := WriteCSV(rows)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"id", "title", "owner", "state", "record_count", "created_at", "updated_at"}, records[0])
	assert.Equal(t, "a1b2c3d4", records[1][0])
	assert.Equal(t, "Open", records[1][3])
	assert.Equal(t, "5", records[1][4])
	assert.Equal(t, "2025-05-02T09:30:00Z", records[1][5])
}

func TestWriteCSVEmpty(t *testing.T) {
	payload, err := WriteCSV(nil)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1) // header only
}
