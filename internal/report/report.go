// Package report tallies per-row outcomes into the run summary and
// renders the fixed-format statistics file.
package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/gkwang4912/speechwall/internal/models"
)

// Aggregate is a pure function of the completed row set. Rows with
// empty text count as skipped; every other row must carry a result —
// a missing one counts as failed so the totals always reconcile.
func Aggregate(sourceFile string, rows []models.Row, results map[int]models.RowResult) models.RunReport {
	rep := models.RunReport{
		SourceFile: sourceFile,
		TotalRows:  len(rows),
	}

	for _, row := range rows {
		if row.Text == "" {
			rep.Skipped++
			continue
		}
		res, ok := results[row.Index]
		if !ok {
			rep.Failed++
			continue
		}
		switch res.Status {
		case models.StatusOK:
			switch res.Label {
			case models.LabelPositive:
				rep.Positive++
			case models.LabelNegative:
				rep.Negative++
			default:
				rep.Neutral++
			}
		case models.StatusUnclassifiable:
			rep.Unclassifiable++
		default:
			rep.Failed++
		}
	}

	return rep
}

// Format renders the statistics text. Percentages are over classified
// rows, matching what the report has always shown.
func Format(rep models.RunReport) string {
	var b strings.Builder

	b.WriteString("情緒分析統計:\n")
	fmt.Fprintf(&b, "  總筆數: %d 筆\n", rep.TotalRows)
	fmt.Fprintf(&b, "  中性: %d 筆 (%.1f%%)\n", rep.Neutral, pct(rep.Neutral, rep.Classified()))
	fmt.Fprintf(&b, "  正向: %d 筆 (%.1f%%)\n", rep.Positive, pct(rep.Positive, rep.Classified()))
	fmt.Fprintf(&b, "  負向: %d 筆 (%.1f%%)\n", rep.Negative, pct(rep.Negative, rep.Classified()))
	fmt.Fprintf(&b, "  無法判斷: %d 筆\n", rep.Unclassifiable)
	fmt.Fprintf(&b, "  失敗: %d 筆\n", rep.Failed)
	fmt.Fprintf(&b, "  略過(空白): %d 筆\n", rep.Skipped)

	return b.String()
}

// Write saves the rendered report beside the input file.
func Write(rep models.RunReport, path string) error {
	if err := os.WriteFile(path, []byte(Format(rep)), 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
