package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/aquanqa/ticketera/pkg/util"
)

// RequiredColumns is the schema every uploaded worker-activity file must carry.
var RequiredColumns = []string{
	"DNI",
	"NOMBRES Y APELLIDOS",
	"ACTIVIDAD",
	"SUPER",
	"FUNDO",
	"OBSERVACIONES",
}

// Summary is what the core needs to know about an uploaded tabular file:
// its column set and how many data rows it holds.
type Summary struct {
	Columns  []string
	RowCount int
}

// Parse decodes an uploaded payload into a Summary. Excel workbooks are the
// primary format; .csv is accepted as well. Undecodable payloads surface as
// UNREADABLE_FILE.
func Parse(filename string, payload []byte) (*Summary, error) {
	if len(payload) == 0 {
		return nil, apperrors.NewUnreadableFile(errors.New("empty payload"))
	}
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return parseCSV(payload)
	}
	return parseWorkbook(payload)
}

// ValidateSchema checks the parsed column set against RequiredColumns and
// reports every missing column at once.
func ValidateSchema(summary *Summary) error {
	present := make(map[string]struct{}, len(summary.Columns))
	for _, col := range summary.Columns {
		present[strings.TrimSpace(col)] = struct{}{}
	}

	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := present[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewSchemaMismatch(missing)
	}
	return nil
}

func parseWorkbook(payload []byte) (*Summary, error) {
	file, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewUnreadableFile(err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewUnreadableFile(errors.New("workbook has no sheets"))
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewUnreadableFile(err)
	}
	return summarize(rows), nil
}

func parseCSV(payload []byte) (*Summary, error) {
	reader := csv.NewReader(bytes.NewReader(payload))
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewUnreadableFile(err)
		}
		rows = append(rows, record)
	}
	return summarize(rows), nil
}

func summarize(rows [][]string) *Summary {
	summary := &Summary{Columns: []string{}}
	if len(rows) == 0 {
		return summary
	}
	for _, col := range rows[0] {
		summary.Columns = append(summary.Columns, strings.TrimSpace(col))
	}
	for _, row := range rows[1:] {
		if rowHasData(row) {
			summary.RowCount++
		}
	}
	return summary
}

func rowHasData(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return true
		}
	}
	return false
}
