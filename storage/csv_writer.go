package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"airbnb-prep/models"
)

var _ TableWriter = (*CSVWriter)(nil)

// CSVWriter writes a processed table to a CSV file.
type CSVWriter struct {
	path string
	file *os.File
}

// NewCSVWriter creates (or truncates) the CSV file at the given path.
// Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}
	return &CSVWriter{path: path, file: f}, nil
}

// Write writes the header row followed by every row of t.
func (c *CSVWriter) Write(t *models.Table) error {
	if err := WriteCSV(c.file, t); err != nil {
		return fmt.Errorf("csv: write %q: %w", c.path, err)
	}
	return nil
}

// Close closes the underlying file.
func (c *CSVWriter) Close() error {
	return c.file.Close()
}

// WriteCSV renders t as CSV with a header row. Dates use models.DateLayout;
// missing cells are written empty.
func WriteCSV(w io.Writer, t *models.Table) error {
	if t.Width() == 0 {
		return nil
	}

	ss := make([]series.Series, 0, t.Width())
	for _, col := range t.Columns() {
		values := make([]string, col.Len())
		for i := range values {
			values[i] = col.Format(i)
		}
		ss = append(ss, series.New(values, series.String, col.Name))
	}

	df := dataframe.New(ss...)
	if df.Err != nil {
		return df.Err
	}
	return df.WriteCSV(w)
}
