package models

import (
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the layout used when rendering date cells.
const DateLayout = "2006-01-02"

// Kind identifies the storage type of a Column.
type Kind int

const (
	KindString Kind = iota
	KindFloat
	KindInt
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindDate:
		return "date"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Column is a named, typed vector of cells with a validity mask.
// Only the slice matching Kind is populated. A cell whose Valid entry is
// false is missing and its value slot holds the zero value.
//
// Columns are never modified once they are part of a Table; every
// transformation builds a new Column.
type Column struct {
	Name    string
	Kind    Kind
	Strings []string
	Floats  []float64
	Ints    []int64
	Dates   []time.Time
	Valid   []bool
}

// NewStringColumn builds a string column. A nil valid mask marks every cell valid.
func NewStringColumn(name string, values []string, valid []bool) *Column {
	return &Column{Name: name, Kind: KindString, Strings: values, Valid: mask(valid, len(values))}
}

// NewFloatColumn builds a float column. A nil valid mask marks every cell valid.
func NewFloatColumn(name string, values []float64, valid []bool) *Column {
	return &Column{Name: name, Kind: KindFloat, Floats: values, Valid: mask(valid, len(values))}
}

// NewIntColumn builds an int column with every cell valid.
func NewIntColumn(name string, values []int64) *Column {
	return &Column{Name: name, Kind: KindInt, Ints: values, Valid: mask(nil, len(values))}
}

// NewDateColumn builds a date column. A nil valid mask marks every cell valid.
func NewDateColumn(name string, values []time.Time, valid []bool) *Column {
	return &Column{Name: name, Kind: KindDate, Dates: values, Valid: mask(valid, len(values))}
}

func mask(valid []bool, n int) []bool {
	if valid != nil {
		return valid
	}
	m := make([]bool, n)
	for i := range m {
		m[i] = true
	}
	return m
}

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.Valid) }

// IsMissing reports whether cell i holds no value.
func (c *Column) IsMissing(i int) bool { return !c.Valid[i] }

// MissingCount returns the number of missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, ok := range c.Valid {
		if !ok {
			n++
		}
	}
	return n
}

// Format renders cell i as text. Missing cells render as the empty string.
func (c *Column) Format(i int) string {
	if !c.Valid[i] {
		return ""
	}
	switch c.Kind {
	case KindString:
		return c.Strings[i]
	case KindFloat:
		return strconv.FormatFloat(c.Floats[i], 'f', -1, 64)
	case KindInt:
		return strconv.FormatInt(c.Ints[i], 10)
	case KindDate:
		return c.Dates[i].Format(DateLayout)
	}
	return ""
}

// Renamed returns a copy of the column header under a new name. Cell storage is shared.
func (c *Column) Renamed(name string) *Column {
	cp := *c
	cp.Name = name
	return &cp
}

// take returns a new column holding the cells at idx, in that order.
func (c *Column) take(idx []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind, Valid: make([]bool, len(idx))}
	switch c.Kind {
	case KindString:
		out.Strings = make([]string, len(idx))
	case KindFloat:
		out.Floats = make([]float64, len(idx))
	case KindInt:
		out.Ints = make([]int64, len(idx))
	case KindDate:
		out.Dates = make([]time.Time, len(idx))
	}
	for j, i := range idx {
		out.Valid[j] = c.Valid[i]
		switch c.Kind {
		case KindString:
			out.Strings[j] = c.Strings[i]
		case KindFloat:
			out.Floats[j] = c.Floats[i]
		case KindInt:
			out.Ints[j] = c.Ints[i]
		case KindDate:
			out.Dates[j] = c.Dates[i]
		}
	}
	return out
}

// Table is an ordered collection of listing rows stored column-wise.
// Methods never modify the receiver; they return a new Table that may share
// unchanged columns with it.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewTable assembles columns into a table. All columns must have equal
// length and distinct names.
func NewTable(cols ...*Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("table: duplicate column %q", c.Name)
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("table: column %q has %d rows, want %d", c.Name, c.Len(), t.rows)
		}
		t.index[c.Name] = i
		t.columns = append(t.columns, c)
	}
	return t, nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.rows }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Columns returns the columns in order. Callers must not modify them.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Has reports whether the table carries the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Require returns a *SchemaError for the first name the table lacks.
func (t *Table) Require(op string, names ...string) error {
	for _, n := range names {
		if !t.Has(n) {
			return &SchemaError{Op: op, Column: n}
		}
	}
	return nil
}

// With returns a table where col replaces the column of the same name, or is
// appended when no such column exists.
func (t *Table) With(col *Column) (*Table, error) {
	if len(t.columns) > 0 && col.Len() != t.rows {
		return nil, fmt.Errorf("table: column %q has %d rows, want %d", col.Name, col.Len(), t.rows)
	}
	cols := t.Columns()
	if i, ok := t.index[col.Name]; ok {
		cols[i] = col
	} else {
		cols = append(cols, col)
	}
	return NewTable(cols...)
}

// Drop returns a table without the named columns. Absent names are ignored.
func (t *Table) Drop(names ...string) *Table {
	skip := make(map[string]struct{}, len(names))
	for _, n := range names {
		skip[n] = struct{}{}
	}
	out := &Table{index: make(map[string]int, len(t.columns)), rows: t.rows}
	for _, c := range t.columns {
		if _, ok := skip[c.Name]; ok {
			continue
		}
		out.index[c.Name] = len(out.columns)
		out.columns = append(out.columns, c)
	}
	return out
}

// Take returns a table holding the rows at idx, in that order.
func (t *Table) Take(idx []int) *Table {
	out := &Table{index: make(map[string]int, len(t.columns)), rows: len(idx)}
	for i, c := range t.columns {
		out.index[c.Name] = i
		out.columns = append(out.columns, c.take(idx))
	}
	return out
}

// Filter returns a table holding the rows for which keep returns true.
func (t *Table) Filter(keep func(row int) bool) *Table {
	idx := make([]int, 0, t.rows)
	for i := 0; i < t.rows; i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	return t.Take(idx)
}

// Concat stacks tables vertically. Every table must carry the same column
// names with the same kinds; the first table fixes the column order.
func Concat(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return NewTable()
	}
	if len(tables) == 1 {
		return tables[0], nil
	}
	head := tables[0]
	cols := make([]*Column, 0, head.Width())
	for _, hc := range head.columns {
		parts := make([]*Column, 0, len(tables))
		for _, t := range tables {
			c, ok := t.Column(hc.Name)
			if !ok {
				return nil, &SchemaError{Op: "concat", Column: hc.Name}
			}
			if c.Kind != hc.Kind {
				return nil, fmt.Errorf("table: concat column %q: kind %s, want %s", hc.Name, c.Kind, hc.Kind)
			}
			parts = append(parts, c)
		}
		cols = append(cols, concatColumns(hc.Name, hc.Kind, parts))
	}
	for _, t := range tables[1:] {
		if t.Width() != head.Width() {
			for _, n := range t.Names() {
				if !head.Has(n) {
					return nil, &SchemaError{Op: "concat", Column: n}
				}
			}
		}
	}
	return NewTable(cols...)
}

func concatColumns(name string, kind Kind, parts []*Column) *Column {
	out := &Column{Name: name, Kind: kind}
	for _, p := range parts {
		out.Valid = append(out.Valid, p.Valid...)
		out.Strings = append(out.Strings, p.Strings...)
		out.Floats = append(out.Floats, p.Floats...)
		out.Ints = append(out.Ints, p.Ints...)
		out.Dates = append(out.Dates, p.Dates...)
	}
	return out
}
