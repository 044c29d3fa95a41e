package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gkwang4912/speechwall/internal/checkpoint"
	"github.com/gkwang4912/speechwall/internal/models"
	"github.com/gkwang4912/speechwall/internal/scanner"
	"github.com/gkwang4912/speechwall/internal/sheet"
)

type fakeScanner struct{ files []string }

func (f fakeScanner) Scan(string) ([]string, error) { return f.files, nil }

type fakeReader struct{ tables map[string]*sheet.Table }

func (f fakeReader) Read(path string) (*sheet.Table, error) { return f.tables[path], nil }

type fakeWriter struct{ written map[string]map[int]models.RowResult }

func (f *fakeWriter) WriteAugmented(_ *sheet.Table, results map[int]models.RowResult, outPath string) error {
	f.written[outPath] = results
	return nil
}

type fakeClassifier struct {
	calls   int
	results map[string]models.RowResult
}

func (f *fakeClassifier) Classify(_ context.Context, text string) (models.RowResult, error) {
	f.calls++
	if res, ok := f.results[text]; ok {
		return res, nil
	}
	return models.RowResult{Status: models.StatusOK, Label: models.LabelNeutral}, nil
}

func commentTable(path string, texts ...string) *sheet.Table {
	t := &sheet.Table{Path: path, Header: []string{"留言"}}
	for _, text := range texts {
		t.Rows = append(t.Rows, []string{text})
	}
	return t
}

func newTestPipeline(clf *fakeClassifier, sc fakeScanner, rd fakeReader) (*Pipeline, *fakeWriter) {
	w := &fakeWriter{written: make(map[string]map[int]models.RowResult)}
	p := &Pipeline{
		classifier: clf,
		scanner:    sc,
		reader:     rd,
		writer:     w,
		checkpoint: checkpoint.Load,
	}
	return p, w
}

func TestRun_ClassifiesEveryNonEmptyRow(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "回饋.xlsx")
	table := commentTable(input, "第一則留言", "", "第三則留言")

	clf := &fakeClassifier{}
	p, w := newTestPipeline(clf, fakeScanner{files: []string{input}}, fakeReader{tables: map[string]*sheet.Table{input: table}})

	require.NoError(t, p.Run(context.Background(), dir))

	assert.Equal(t, 2, clf.calls)

	results := w.written[scanner.ResultPath(input)]
	require.NotNil(t, results)
	assert.Len(t, results, 2)
	_, hasBlank := results[1]
	assert.False(t, hasBlank)

	reportData, err := os.ReadFile(scanner.ReportPath(input))
	require.NoError(t, err)
	assert.Contains(t, string(reportData), "總筆數: 3 筆")
	assert.Contains(t, string(reportData), "略過(空白): 1 筆")
}

func TestRun_ResumeSkipsCheckpointedRows(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "回饋.xlsx")
	table := commentTable(input, "零", "一", "二", "三", "四")

	// A previous run already classified rows 0-2.
	cp, err := checkpoint.Load(checkpoint.PathFor(input))
	require.NoError(t, err)
	require.NoError(t, cp.Record(0, models.RowResult{Status: models.StatusOK, Label: models.LabelPositive}))
	require.NoError(t, cp.Record(1, models.RowResult{Status: models.StatusOK, Label: models.LabelNegative}))
	require.NoError(t, cp.Record(2, models.RowResult{Status: models.StatusUnclassifiable}))

	clf := &fakeClassifier{}
	p, w := newTestPipeline(clf, fakeScanner{files: []string{input}}, fakeReader{tables: map[string]*sheet.Table{input: table}})

	require.NoError(t, p.Run(context.Background(), dir))

	// Only rows 3 and 4 hit the classifier.
	assert.Equal(t, 2, clf.calls)

	results := w.written[scanner.ResultPath(input)]
	require.Len(t, results, 5)
	assert.Equal(t, models.LabelPositive, results[0].Label)
	assert.Equal(t, models.StatusUnclassifiable, results[2].Status)
}

func TestRun_UndetectableFileIsSkippedNotFatal(t *testing.T) {
	dir := t.TempDir()
	numericOnly := filepath.Join(dir, "數字.xlsx")
	good := filepath.Join(dir, "回饋.xlsx")

	numericTable := &sheet.Table{
		Path:   numericOnly,
		Header: []string{"編號"},
		Rows:   [][]string{{"1"}, {"2"}},
	}

	clf := &fakeClassifier{}
	p, w := newTestPipeline(clf,
		fakeScanner{files: []string{numericOnly, good}},
		fakeReader{tables: map[string]*sheet.Table{
			numericOnly: numericTable,
			good:        commentTable(good, "有內容的留言"),
		}})

	require.NoError(t, p.Run(context.Background(), dir))

	assert.Equal(t, 1, clf.calls)
	_, wroteNumeric := w.written[scanner.ResultPath(numericOnly)]
	assert.False(t, wroteNumeric)
	_, wroteGood := w.written[scanner.ResultPath(good)]
	assert.True(t, wroteGood)
}

func TestRun_NoFilesIsATerminalNonError(t *testing.T) {
	p, w := newTestPipeline(&fakeClassifier{}, fakeScanner{}, fakeReader{})
	require.NoError(t, p.Run(context.Background(), t.TempDir()))
	assert.Empty(t, w.written)
}

func TestRun_FailedRowDoesNotAbortTheBatch(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "回饋.xlsx")
	table := commentTable(input, "壞掉的留言", "正常的留言")

	clf := &fakeClassifier{results: map[string]models.RowResult{
		"壞掉的留言": {Status: models.StatusFailed},
	}}
	p, w := newTestPipeline(clf, fakeScanner{files: []string{input}}, fakeReader{tables: map[string]*sheet.Table{input: table}})

	require.NoError(t, p.Run(context.Background(), dir))

	assert.Equal(t, 2, clf.calls)
	results := w.written[scanner.ResultPath(input)]
	assert.Equal(t, models.StatusFailed, results[0].Status)
	assert.Equal(t, models.StatusOK, results[1].Status)

	reportData, err := os.ReadFile(scanner.ReportPath(input))
	require.NoError(t, err)
	assert.Contains(t, string(reportData), "失敗: 1 筆")
}

func TestRun_InterruptedRunResumesWithDurableCheckpoint(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "回饋.xlsx")
	table := commentTable(input, "一", "二", "三")

	first := &fakeClassifier{}
	p1, _ := newTestPipeline(first, fakeScanner{files: []string{input}}, fakeReader{tables: map[string]*sheet.Table{input: table}})
	require.NoError(t, p1.Run(context.Background(), dir))
	require.Equal(t, 3, first.calls)

	// A second run over the same directory re-reads the checkpoint
	// and classifies nothing.
	second := &fakeClassifier{}
	p2, w := newTestPipeline(second, fakeScanner{files: []string{input}}, fakeReader{tables: map[string]*sheet.Table{input: table}})
	require.NoError(t, p2.Run(context.Background(), dir))

	assert.Equal(t, 0, second.calls)
	assert.Len(t, w.written[scanner.ResultPath(input)], 3)
}
