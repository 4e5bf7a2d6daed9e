package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"merry/internal/domain/models"
)

// renderXlsx renders an excel document's sheets to xlsx bytes. One tab per
// canonical sheet, header row styled and frozen, columns auto-filtered.
func renderXlsx(doc *models.Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	for i, sheet := range doc.Content.Sheets {
		idx, err := f.NewSheet(sheet.Name)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
		if err := writeSheet(f, &sheet, headerStyle); err != nil {
			return nil, err
		}
	}

	// excelize seeds new workbooks with a "Sheet1" tab. A canonical sheet
	// with that exact name reuses the tab, so deleting it here would throw
	// away that sheet's data. Drop the default only when unclaimed.
	defaultClaimed := false
	for _, sheet := range doc.Content.Sheets {
		if sheet.Name == "Sheet1" {
			defaultClaimed = true
			break
		}
	}
	if len(doc.Content.Sheets) > 0 && !defaultClaimed {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, err
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{Title: doc.Title}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet *models.Sheet, headerStyle int) error {
	for col, column := range sheet.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet.Name, cell, column.Name); err != nil {
			return err
		}
	}

	for rowIdx, row := range sheet.Rows {
		for col, column := range sheet.Columns {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return err
			}
			value := row.Cells[column.ID]
			if value == nil {
				continue
			}
			if err := f.SetCellValue(sheet.Name, cell, value); err != nil {
				return err
			}
		}
	}

	if len(sheet.Columns) > 0 {
		lastCol, err := excelize.ColumnNumberToName(len(sheet.Columns))
		if err != nil {
			return err
		}
		headerRange := fmt.Sprintf("A1:%s1", lastCol)
		if err := f.SetCellStyle(sheet.Name, "A1", lastCol+"1", headerStyle); err != nil {
			return err
		}
		if err := f.SetColWidth(sheet.Name, "A", lastCol, 18); err != nil {
			return err
		}
		if err := f.AutoFilter(sheet.Name, headerRange, nil); err != nil {
			return err
		}
	}

	return f.SetPanes(sheet.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
