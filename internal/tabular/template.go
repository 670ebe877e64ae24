package tabular

import "github.com/xuri/excelize/v2"

// TemplateFilename is the download name for the sample workbook.
const TemplateFilename = "FORMATO_EJEMPLO.xlsx"

var templateExamples = [][]string{
	{"12345678", "Juan García López", "Siembra", "Supervisor 1", "Fundo A", "Trabajo realizado correctamente"},
	{"87654321", "María Rodríguez Pérez", "Riego", "Supervisor 2", "Fundo B", "Requiere revisión"},
}

// SampleTemplate builds the example workbook submitters download before
// filling in their data: the required header row plus two illustrative rows.
func SampleTemplate() ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	const sheet = "Datos"
	file.SetSheetName(file.GetSheetName(0), sheet)

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF", Size: 12},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"366092"}},
	})
	if err != nil {
		return nil, err
	}

	for i, header := range RequiredColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
		if err := file.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, err
		}
	}

	for rowIdx, example := range templateExamples {
		for colIdx, value := range example {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
