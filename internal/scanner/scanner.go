// Package scanner discovers input workbooks and owns the output
// filename conventions, so results from a previous run are never fed
// back in as input.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// ResultMarker tags augmented output workbooks. Files carrying it
	// are excluded from discovery.
	ResultMarker = "情緒分析結果"

	resultSuffix = "_情緒分析結果.xlsx"
	reportSuffix = "_統計報告.txt"
)

type Scanner struct{}

// Scan lists the .xlsx files of dir in deterministic order, excluding
// Excel lock temps (~$ prefix), dotfiles (checkpoints), and prior run
// outputs. An empty result is a normal terminal condition, not an
// error.
func (Scanner) Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
			continue
		}
		if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
			continue
		}
		if strings.Contains(name, ResultMarker) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}

	sort.Strings(files)
	return files, nil
}

// ResultPath is the augmented workbook name for one input file.
func ResultPath(inputPath string) string {
	return trimExt(inputPath) + resultSuffix
}

// ReportPath is the statistics report name for one input file.
func ReportPath(inputPath string) string {
	return trimExt(inputPath) + reportSuffix
}

func trimExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}
