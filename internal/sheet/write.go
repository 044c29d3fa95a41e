package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/gkwang4912/speechwall/internal/models"
)

const (
	scoreHeader = "情緒分析"
	labelHeader = "情緒標籤"
)

type Writer struct{}

// WriteAugmented copies the table and appends the score and label
// columns. Original row order and cell values are preserved; rows
// without a result (skipped blanks) get empty cells.
func (Writer) WriteAugmented(t *Table, results map[int]models.RowResult, outPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	name := f.GetSheetName(0)

	header := make([]interface{}, 0, len(t.Header)+2)
	for _, h := range t.Header {
		header = append(header, h)
	}
	header = append(header, scoreHeader, labelHeader)
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write header of %s: %w", outPath, err)
	}

	for i, row := range t.Rows {
		cells := make([]interface{}, 0, len(row)+2)
		for _, v := range row {
			cells = append(cells, v)
		}
		var res models.RowResult
		if r, ok := results[i]; ok {
			res = r
		}
		cells = append(cells, res.ScoreCell(), res.LabelCell())

		anchor, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("write row %d of %s: %w", i, outPath, err)
		}
		if err := f.SetSheetRow(name, anchor, &cells); err != nil {
			return fmt.Errorf("write row %d of %s: %w", i, outPath, err)
		}
	}

	if err := f.SaveAs(outPath); err != nil {
		return fmt.Errorf("save workbook %s: %w", outPath, err)
	}
	return nil
}
