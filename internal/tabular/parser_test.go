package tabular

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/aquanqa/ticketera/pkg/util"
)

func csvPayload(t *testing.T, header []string, rows [][]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	require.NoError(t, writer.Write(header))
	for _, row := range rows {
		require.NoError(t, writer.Write(row))
	}
	writer.Flush()
	require.NoError(t, writer.Error())
	return buf.Bytes()
}

func TestParseCSV(t *testing.T) {
	payload := csvPayload(t, RequiredColumns, [][]string{
		{"12345678", "Juan García López", "Siembra", "Supervisor 1", "Fundo A", "ok"},
		{"87654321", "María Rodríguez", "Riego", "Supervisor 2", "Fundo B", ""},
		{"", "", "", "", "", ""}, // blank trailing row is not a record
	})

	summary, err := Parse("datos.csv", payload)
	require.NoError(t, err)
	assert.Equal(t, RequiredColumns, summary.Columns)
	assert.Equal(t, 2, summary.RowCount)
}

func TestParseWorkbook(t *testing.T) {
	// the sample template is a known-good workbook with two example rows
	payload, err := SampleTemplate()
	require.NoError(t, err)

	summary, err := Parse(TemplateFilename, payload)
	require.NoError(t, err)
	assert.Equal(t, RequiredColumns, summary.Columns)
	assert.Equal(t, 2, summary.RowCount)
	assert.NoError(t, ValidateSchema(summary))
}

func TestParseUnreadable(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		payload  []byte
	}{
		{name: "empty payload", filename: "datos.xlsx", payload: nil},
		{name: "garbage workbook", filename: "datos.xlsx", payload: []byte("not a zip archive")},
		{name: "broken csv quoting", filename: "datos.csv", payload: []byte("a,\"b\nc")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.filename, tt.payload)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, "UNREADABLE_FILE"))
		})
	}
}

func TestValidateSchema(t *testing.T) {
	t.Run("missing columns are all named", func(t *testing.T) {
		summary := &Summary{Columns: []string{"DNI", "NOMBRES Y APELLIDOS", "ACTIVIDAD", "SUPER"}}
		err := ValidateSchema(summary)
		require.Error(t, err)

		domainErr := apperrors.ToDomainError(err)
		assert.Equal(t, "SCHEMA_MISMATCH", domainErr.Code)
		assert.Contains(t, domainErr.Message, "FUNDO")
		assert.Contains(t, domainErr.Message, "OBSERVACIONES")
		assert.Equal(t, []string{"FUNDO", "OBSERVACIONES"}, domainErr.Details["missing_columns"])
	})

	t.Run("extra columns are fine", func(t *testing.T) {
		summary := &Summary{Columns: append([]string{"EXTRA"}, RequiredColumns...)}
		assert.NoError(t, ValidateSchema(summary))
	})

	t.Run("padded headers still match", func(t *testing.T) {
		padded := make([]string, len(RequiredColumns))
		for i, col := range RequiredColumns {
			padded[i] = " " + col + " "
		}
		assert.NoError(t, ValidateSchema(&Summary{Columns: padded}))
	})
}
