package csvlog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"rsadesk/internal/store"

	"github.com/spf13/afero"
)

// Column names. Older files may carry only ColOutput.
const (
	ColOutput  = "Output"
	ColRound   = "Round"
	ColBroker  = "Broker"
	ColSide    = "Side"
	ColTickers = "Tickers"
	ColTime    = "Time"
)

var header = []string{ColOutput, ColRound, ColBroker, ColSide, ColTickers, ColTime}

// Store keeps the output log as a CSV file. Every write replaces the file
// through a temp file and rename, so a crash never leaves half a table.
type Store struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

var _ store.OutputLog = (*Store)(nil)

func NewStore(fsys afero.Fs, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("csv output path cannot be empty")
	}
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Store{fs: fsys, path: path}, nil
}

func (s *Store) Rows(_ context.Context) ([]store.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) Append(_ context.Context, rows []store.Row) error {
	if len(rows) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, err := s.load()
	if err != nil {
		return err
	}
	return s.write(append(existing, rows...))
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(nil)
}

func (s *Store) Close() error { return nil }

func (s *Store) load() ([]store.Row, error) {
	raw, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read output log %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	head, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read output log header: %w", err)
	}
	idx := make(map[string]int, len(head))
	for i, name := range head {
		idx[strings.TrimSpace(name)] = i
	}
	if _, ok := idx[ColOutput]; !ok {
		return nil, fmt.Errorf("output log %s has no %q column", s.path, ColOutput)
	}
	var rows []store.Row
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse output log: %w", err)
		}
		row := store.Row{
			ID:      int64(len(rows) + 1),
			Output:  field(rec, idx, ColOutput),
			Round:   field(rec, idx, ColRound),
			Broker:  field(rec, idx, ColBroker),
			Side:    field(rec, idx, ColSide),
			Tickers: splitTickers(field(rec, idx, ColTickers)),
		}
		if ts := field(rec, idx, ColTime); ts != "" {
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				row.CreatedAt = t
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Store) write(rows []store.Row) error {
	var buf bytes.Buffer
	if len(rows) > 0 {
		w := csv.NewWriter(&buf)
		if err := w.Write(header); err != nil {
			return err
		}
		for _, row := range rows {
			ts := ""
			if !row.CreatedAt.IsZero() {
				ts = row.CreatedAt.UTC().Format(time.RFC3339)
			}
			rec := []string{row.Output, row.Round, row.Broker, row.Side, strings.Join(row.Tickers, ","), ts}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return fmt.Errorf("encode output log: %w", err)
		}
	}
	return writeFileAtomic(s.fs, s.path, buf.Bytes())
}

func field(rec []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func splitTickers(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func writeFileAtomic(fsys afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	tmp, err := afero.TempFile(fsys, dir, ".output-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer fsys.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := fsys.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}
	return nil
}
