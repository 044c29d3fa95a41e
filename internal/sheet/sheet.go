// Package sheet handles all workbook I/O: reading input files, finding
// the free-text comment column, and writing the augmented result file.
package sheet

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/gkwang4912/speechwall/internal/models"
)

// ErrNoTextColumn means every column looked numeric or date-like, or
// the sheet had no data rows. The file is skipped, not the run.
var ErrNoTextColumn = errors.New("no text column found")

// detectSampleSize caps how many non-empty values per column the
// detector inspects.
const detectSampleSize = 5

// Table is the first worksheet of one input file. Header is the first
// row; Rows are the data rows, raw cell strings, header and rows padded
// to the width of the widest row.
type Table struct {
	Path   string
	Header []string
	Rows   [][]string
}

type Reader struct{}

func (Reader) Read(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	name := f.GetSheetName(0)
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q of %s: %w", name, path, err)
	}
	if len(rows) == 0 {
		return &Table{Path: path}, nil
	}

	// Pad header and rows to the widest row seen, never truncate:
	// data rows wider than the header keep their trailing cells.
	width := len(rows[0])
	for _, row := range rows[1:] {
		if len(row) > width {
			width = len(row)
		}
	}

	header := make([]string, width)
	copy(header, rows[0])

	t := &Table{Path: path, Header: header}
	for _, row := range rows[1:] {
		padded := make([]string, width)
		copy(padded, row)
		t.Rows = append(t.Rows, padded)
	}
	return t, nil
}

// DetectTextColumn picks the comment column: among columns whose
// sampled values are neither numeric nor date-like, the one with the
// highest mean text length; ties go to the leftmost.
func (t *Table) DetectTextColumn() (int, error) {
	if len(t.Rows) == 0 {
		return 0, fmt.Errorf("%w: sheet %s has no data rows", ErrNoTextColumn, t.Path)
	}

	best := -1
	bestAvg := 0.0
	for col := range t.Header {
		samples := t.sampleColumn(col)
		if len(samples) == 0 || allNumericOrDate(samples) {
			continue
		}
		total := 0
		for _, s := range samples {
			total += utf8.RuneCountInString(s)
		}
		avg := float64(total) / float64(len(samples))
		if avg > bestAvg {
			best = col
			bestAvg = avg
		}
	}

	if best < 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoTextColumn, t.Path)
	}
	return best, nil
}

func (t *Table) sampleColumn(col int) []string {
	var samples []string
	for _, row := range t.Rows {
		v := strings.TrimSpace(row[col])
		if v == "" {
			continue
		}
		samples = append(samples, v)
		if len(samples) == detectSampleSize {
			break
		}
	}
	return samples
}

// DataRows materializes the rows the pipeline iterates: stable 0-based
// index plus the trimmed text of the detected column.
func (t *Table) DataRows(col int) []models.Row {
	rows := make([]models.Row, 0, len(t.Rows))
	for i, row := range t.Rows {
		rows = append(rows, models.Row{Index: i, Text: strings.TrimSpace(row[col])})
	}
	return rows
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}[-/.]\d{1,2}[-/.]\d{1,2}([ T]\d{1,2}:\d{2}(:\d{2})?)?$`),
	regexp.MustCompile(`^\d{1,2}[-/.]\d{1,2}[-/.]\d{4}([ T]\d{1,2}:\d{2}(:\d{2})?)?$`),
	regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?$`),
}

func allNumericOrDate(samples []string) bool {
	for _, s := range samples {
		if !isNumeric(s) && !isDateLike(s) {
			return false
		}
	}
	return true
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	return err == nil
}

func isDateLike(s string) bool {
	for _, p := range datePatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}
