package storage

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"airbnb-prep/models"
)

var _ TableLoader = (*CSVLoader)(nil)

// CSVLoader reads a raw listings export from a CSV file.
type CSVLoader struct {
	Path string
}

// NewCSVLoader returns a loader for the CSV file at path.
func NewCSVLoader(path string) *CSVLoader {
	return &CSVLoader{Path: path}
}

// Load reads the whole file into a table of text columns.
func (l *CSVLoader) Load(ctx context.Context) (*models.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", l.Path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("csv: %q: %w", l.Path, err)
	}
	return t, nil
}

// ReadCSV parses CSV with a header row. Every column is returned as text and
// empty cells are missing.
func ReadCSV(r io.Reader) (*models.Table, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{""}),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("read: %w", df.Err)
	}

	cols := make([]*models.Column, 0, df.Ncol())
	for _, name := range df.Names() {
		s := df.Col(name)
		values := make([]string, s.Len())
		valid := make([]bool, s.Len())
		for i := 0; i < s.Len(); i++ {
			e := s.Elem(i)
			if e.IsNA() {
				continue
			}
			values[i] = e.String()
			valid[i] = true
		}
		cols = append(cols, models.NewStringColumn(name, values, valid))
	}
	return models.NewTable(cols...)
}
