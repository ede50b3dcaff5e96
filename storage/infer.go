package storage

import (
	"strconv"
	"strings"

	"airbnb-prep/models"
)

// InferKinds converts the text columns of a freshly loaded table to the
// narrowest kind that holds every non-missing cell: int, then float, then
// string. Columns with no values at all become float columns, all missing.
// Non-string columns are passed through.
func InferKinds(t *models.Table) (*models.Table, error) {
	cols := t.Columns()
	for i, c := range cols {
		if c.Kind == models.KindString {
			cols[i] = inferColumn(c.Name, c.Strings, c.Valid)
		}
	}
	return models.NewTable(cols...)
}

func inferColumn(name string, values []string, valid []bool) *models.Column {
	isInt, isFloat := true, true
	for i, v := range values {
		if !valid[i] {
			continue
		}
		v = strings.TrimSpace(v)
		if isInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				isInt = false
			}
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			isFloat = false
			break
		}
	}

	hasValue := false
	for _, ok := range valid {
		if ok {
			hasValue = true
			break
		}
	}

	switch {
	case !isFloat:
		return models.NewStringColumn(name, values, valid)
	case isInt && hasValue:
		ints := make([]int64, len(values))
		for i, v := range values {
			if valid[i] {
				ints[i], _ = strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			}
		}
		col := models.NewIntColumn(name, ints)
		col.Valid = valid
		return col
	default:
		floats := make([]float64, len(values))
		for i, v := range values {
			if valid[i] {
				floats[i], _ = strconv.ParseFloat(strings.TrimSpace(v), 64)
			}
		}
		return models.NewFloatColumn(name, floats, valid)
	}
}
