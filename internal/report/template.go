package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// TemplateHeaderRow is the row holding column captions in the generated
// template. Data starts on the row below it.
const TemplateHeaderRow = DefaultStartRow - 1

// TemplateHeaders are the captions for columns A through D.
var TemplateHeaders = []string{"Descripción", "Valor", "Fecha", "Documento"}

const templateSheet = "Balance"

// CreateTemplate writes a default template workbook to path, creating
// parent directories as needed. An existing file is replaced.
func CreateTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating template dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), templateSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		return fmt.Errorf("creating title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F4E78"}},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := f.SetCellValue(templateSheet, "A1", "Balance Mate"); err != nil {
		return fmt.Errorf("writing title: %w", err)
	}
	if err := f.SetCellStyle(templateSheet, "A1", "A1", titleStyle); err != nil {
		return fmt.Errorf("styling title: %w", err)
	}
	if err := f.SetCellValue(templateSheet, "A3", "Reporte de ingresos"); err != nil {
		return fmt.Errorf("writing subtitle: %w", err)
	}

	for i, caption := range TemplateHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, TemplateHeaderRow)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(templateSheet, cell, caption); err != nil {
			return fmt.Errorf("writing header %s: %w", cell, err)
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, TemplateHeaderRow)
	last, _ := excelize.CoordinatesToCellName(len(TemplateHeaders), TemplateHeaderRow)
	if err := f.SetCellStyle(templateSheet, first, last, headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	widths := map[string]float64{"A": 48, "B": 18, "C": 14, "D": 16}
	for col, width := range widths {
		if err := f.SetColWidth(templateSheet, col, col, width); err != nil {
			return fmt.Errorf("sizing column %s: %w", col, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving template: %w", err)
	}
	return nil
}
