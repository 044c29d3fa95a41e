// Package checkpoint persists per-row classification results so an
// interrupted run resumes without re-classifying rows it already paid
// for. One checkpoint file per input workbook, single-writer.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gkwang4912/speechwall/internal/models"
)

// ErrConflict means an index was re-recorded with a different result.
// That never happens under single-writer use; surfacing it loudly beats
// silently overwriting history.
var ErrConflict = errors.New("checkpoint conflict")

// PathFor derives the checkpoint filename from the input workbook.
// Dot-prefixed so the source scanner never picks it up.
func PathFor(inputPath string) string {
	dir := filepath.Dir(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(dir, "."+base+".checkpoint.json")
}

type Store struct {
	path    string
	entries map[int]models.RowResult
}

// Load reads the checkpoint for one input file. A missing file is a
// first run and yields an empty store; a corrupt file is an error, so a
// damaged resume state never causes double classification.
func Load(path string) (*Store, error) {
	s := &Store{path: path, entries: make(map[int]models.RowResult)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint %s: %w", path, err)
	}

	raw := make(map[string]models.RowResult)
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse checkpoint %s: %w", path, err)
	}
	for k, v := range raw {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("parse checkpoint %s: bad row index %q", path, k)
		}
		s.entries[idx] = v
	}
	return s, nil
}

func (s *Store) Get(idx int) (models.RowResult, bool) {
	res, ok := s.entries[idx]
	return res, ok
}

func (s *Store) Len() int {
	return len(s.entries)
}

// Record adds one entry and flushes it durably before returning.
// Re-recording an identical entry is a no-op; a differing entry for an
// already-recorded index is rejected with ErrConflict.
func (s *Store) Record(idx int, res models.RowResult) error {
	if existing, ok := s.entries[idx]; ok {
		if existing == res {
			return nil
		}
		return fmt.Errorf("%w: row %d already recorded as %s/%d, refusing %s/%d",
			ErrConflict, idx, existing.Status, existing.Label, res.Status, res.Label)
	}

	s.entries[idx] = res
	if err := s.flush(); err != nil {
		delete(s.entries, idx)
		return err
	}
	return nil
}

// flush rewrites the whole file through a temp file and rename so a
// crash mid-write never leaves a partial checkpoint behind.
func (s *Store) flush() error {
	raw := make(map[string]models.RowResult, len(s.entries))
	for idx, res := range s.entries {
		raw[strconv.Itoa(idx)] = res
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint %s: %w", s.path, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".checkpoint-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", s.path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file for %s: %w", s.path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync temp file for %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file for %s: %w", s.path, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("atomic rename for %s: %w", s.path, err)
	}
	return nil
}
