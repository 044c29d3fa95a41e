// Package pipeline sequences a run: discover workbooks, then for each
// one load its checkpoint, detect the comment column, classify the
// rows that still need it, and write the augmented workbook plus the
// statistics report. Strictly sequential: one file, one row, one
// request at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gkwang4912/speechwall/internal/checkpoint"
	"github.com/gkwang4912/speechwall/internal/classifier"
	"github.com/gkwang4912/speechwall/internal/models"
	"github.com/gkwang4912/speechwall/internal/report"
	"github.com/gkwang4912/speechwall/internal/scanner"
	"github.com/gkwang4912/speechwall/internal/sheet"
)

// Capability seams. Production wiring is the real implementations;
// tests substitute fakes.
type (
	Scanner interface {
		Scan(dir string) ([]string, error)
	}
	SheetReader interface {
		Read(path string) (*sheet.Table, error)
	}
	SheetWriter interface {
		WriteAugmented(t *sheet.Table, results map[int]models.RowResult, outPath string) error
	}
	CheckpointOpener func(path string) (*checkpoint.Store, error)
)

type Pipeline struct {
	classifier classifier.Classifier
	scanner    Scanner
	reader     SheetReader
	writer     SheetWriter
	checkpoint CheckpointOpener
}

func New(clf classifier.Classifier) *Pipeline {
	return &Pipeline{
		classifier: clf,
		scanner:    scanner.Scanner{},
		reader:     sheet.Reader{},
		writer:     sheet.Writer{},
		checkpoint: checkpoint.Load,
	}
}

// Run processes every workbook discovered in dir. A file that cannot
// be processed is skipped with a notice; only scan failure or context
// cancellation stops the run.
func (p *Pipeline) Run(ctx context.Context, dir string) error {
	files, err := p.scanner.Scan(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		slog.Info("[Pipeline] No workbooks found", slog.String("dir", dir))
		return nil
	}

	slog.Info("[Pipeline] Starting run",
		slog.String("dir", dir),
		slog.Int("files", len(files)))

	for _, path := range files {
		if err := p.processFile(ctx, path); err != nil {
			if ctx.Err() != nil {
				slog.Warn("[Pipeline] Run interrupted, progress is saved",
					slog.String("file", path))
				return err
			}
			slog.Warn("[Pipeline] Skipping file",
				slog.String("file", path),
				slog.String("reason", err.Error()))
			continue
		}
	}

	slog.Info("[Pipeline] Run complete", slog.Int("files", len(files)))
	return nil
}

func (p *Pipeline) processFile(ctx context.Context, path string) error {
	slog.Info("[Pipeline] Processing file", slog.String("file", path))

	cp, err := p.checkpoint(checkpoint.PathFor(path))
	if err != nil {
		return err
	}
	if cp.Len() > 0 {
		slog.Info("[Pipeline] Resuming from checkpoint",
			slog.String("file", path),
			slog.Int("done_rows", cp.Len()))
	}

	table, err := p.reader.Read(path)
	if err != nil {
		return err
	}

	col, err := table.DetectTextColumn()
	if err != nil {
		return err
	}
	slog.Info("[Pipeline] Detected comment column",
		slog.String("file", path),
		slog.String("column", columnName(table, col)))

	rows := table.DataRows(col)
	results, err := p.classifyRows(ctx, rows, cp)
	if err != nil {
		return err
	}

	rep := report.Aggregate(path, rows, results)

	outPath := scanner.ResultPath(path)
	if err := p.writer.WriteAugmented(table, results, outPath); err != nil {
		return err
	}
	if err := report.Write(rep, scanner.ReportPath(path)); err != nil {
		return err
	}

	slog.Info("[Pipeline] File done",
		slog.String("file", path),
		slog.Int("total", rep.TotalRows),
		slog.Int("positive", rep.Positive),
		slog.Int("neutral", rep.Neutral),
		slog.Int("negative", rep.Negative),
		slog.Int("unclassifiable", rep.Unclassifiable),
		slog.Int("failed", rep.Failed),
		slog.Int("skipped", rep.Skipped))
	return nil
}

// classifyRows walks the data rows in order. Blank rows are skipped
// and never sent to the classifier; checkpointed rows are reused with
// zero additional classifier calls; everything else is classified and
// checkpointed before moving on.
func (p *Pipeline) classifyRows(ctx context.Context, rows []models.Row, cp *checkpoint.Store) (map[int]models.RowResult, error) {
	results := make(map[int]models.RowResult, len(rows))
	total := len(rows)

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if row.Text == "" {
			slog.Info("[Pipeline] Blank row, skipping",
				slog.Int("row", row.Index+1),
				slog.Int("total", total))
			continue
		}

		if res, ok := cp.Get(row.Index); ok {
			results[row.Index] = res
			continue
		}

		slog.Info("[Pipeline] Classifying row",
			slog.Int("row", row.Index+1),
			slog.Int("total", total),
			slog.String("text", previewText(row.Text)))

		res, err := p.classifier.Classify(ctx, row.Text)
		if err != nil {
			return nil, err
		}
		if err := cp.Record(row.Index, res); err != nil {
			if errors.Is(err, checkpoint.ErrConflict) {
				return nil, fmt.Errorf("aborting file: %w", err)
			}
			return nil, err
		}
		results[row.Index] = res

		slog.Info("[Pipeline] Row classified",
			slog.Int("row", row.Index+1),
			slog.String("outcome", string(res.Status)),
			slog.String("label", res.LabelCell()))
	}

	return results, nil
}

func columnName(t *sheet.Table, col int) string {
	if col < len(t.Header) && t.Header[col] != "" {
		return t.Header[col]
	}
	return fmt.Sprintf("#%d", col)
}

func previewText(s string) string {
	runes := []rune(s)
	if len(runes) > 50 {
		return string(runes[:50]) + "..."
	}
	return s
}
