// Package local reads batch inputs from and writes batch rows to local CSV files.
package local

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ReadColumnCSV reads a CSV file and returns the non-empty values of column. The header
// match ignores case and surrounding spaces.
func ReadColumnCSV(r io.Reader, column string) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := -1
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), column) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("missing required column %q", column)
	}

	var values []string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if idx >= len(rec) {
			return nil, fmt.Errorf("row has %d columns, want at least %d", len(rec), idx+1)
		}
		if v := strings.TrimSpace(rec[idx]); v != "" {
			values = append(values, v)
		}
	}
	return values, nil
}

// DeckList loads the deck paths listed in the "deck" column of a CSV file. Relative paths
// are taken relative to the file.
type DeckList struct {
	Path string
}

func (l DeckList) Load(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	paths, err := ReadColumnCSV(f, "deck")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.Path, err)
	}
	dir := filepath.Dir(l.Path)
	for i, p := range paths {
		if !filepath.IsAbs(p) {
			paths[i] = filepath.Join(dir, p)
		}
	}
	return paths, nil
}

// CSVFile stores rows under Header in a CSV file, replacing its content.
type CSVFile struct {
	Path   string
	Header []string
}

func (c CSVFile) Store(ctx context.Context, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Create(c.Path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	if err := WriteCSV(f, c.Header, rows); err != nil {
		return fmt.Errorf("write %s: %w", c.Path, err)
	}
	return f.Close()
}

// WriteCSV writes header, when not empty, followed by rows.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if len(header) > 0 {
		if err := cw.Write(header); err != nil {
			return err
		}
	}
	for _, r := range rows {
		if err := cw.Write(r); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
