package services

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"airbnb-prep/models"
)

var (
	// currencyRegexp matches the symbols stripped from price strings.
	currencyRegexp = regexp.MustCompile(`[$,]`)
	// bathNumRegexp captures the leading integer or decimal of a bathroom description.
	bathNumRegexp = regexp.MustCompile(`^(\d+(?:\.\d+)?|\.\d+)`)
	// halfBathRegexp matches descriptions that count as half a bathroom.
	halfBathRegexp = regexp.MustCompile(`half-bath`)
	// sharingRegexp captures the first sharing status in a bathroom description.
	sharingRegexp = regexp.MustCompile(`shared|private`)
)

// dateLayouts are tried in order. All of them put the year first.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006.01.02",
}

var errNoDate = errors.New("no year-first layout matches")

// parsePrice strips currency symbols and thousands separators and parses the rest.
// Examples:
//
//	"$1,200.00" → 1200
//	"85"        → 85
func parsePrice(raw string) (float64, error) {
	cleaned := strings.TrimSpace(currencyRegexp.ReplaceAllString(raw, ""))
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

// parseDate reads a year-first date.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errNoDate
}

// parseBathrooms splits a lower-cased bathroom description into a count and
// a sharing status. ok flags report whether each part was found.
//
//	"1.5 shared baths" → 1.5, "shared"
//	"half-bath"        → 0.5, none
//	"private half-bath" → 0.5, "private"
func parseBathrooms(text string) (num float64, numOK bool, sharing string, sharingOK bool) {
	if halfBathRegexp.MatchString(text) {
		num, numOK = 0.5, true
	} else if m := bathNumRegexp.FindString(text); m != "" {
		if f, err := strconv.ParseFloat(m, 64); err == nil {
			num, numOK = f, true
		}
	}
	if m := sharingRegexp.FindString(text); m != "" {
		sharing, sharingOK = m, true
	}
	return num, numOK, sharing, sharingOK
}

// floatColumn returns col as a float column, converting int cells and
// parsing text cells.
func floatColumn(col *models.Column) (*models.Column, error) {
	switch col.Kind {
	case models.KindFloat:
		return col, nil
	case models.KindInt:
		out := make([]float64, col.Len())
		for i, v := range col.Ints {
			out[i] = float64(v)
		}
		return models.NewFloatColumn(col.Name, out, col.Valid), nil
	case models.KindString:
		out := make([]float64, col.Len())
		for i, s := range col.Strings {
			if col.IsMissing(i) {
				continue
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, &models.CoercionError{Column: col.Name, Row: i, Value: s, Want: models.KindFloat, Err: err}
			}
			out[i] = f
		}
		return models.NewFloatColumn(col.Name, out, col.Valid), nil
	}
	return nil, fmt.Errorf("column %q: cannot read %s as float", col.Name, col.Kind)
}

// dateColumn parses src into a date column called name.
func dateColumn(name string, src *models.Column) (*models.Column, error) {
	out := make([]time.Time, src.Len())
	valid := make([]bool, src.Len())
	for i := 0; i < src.Len(); i++ {
		if src.IsMissing(i) {
			continue
		}
		switch src.Kind {
		case models.KindDate:
			out[i] = src.Dates[i]
		case models.KindString:
			t, err := parseDate(src.Strings[i])
			if err != nil {
				return nil, &models.CoercionError{Column: src.Name, Row: i, Value: src.Strings[i], Want: models.KindDate, Err: err}
			}
			out[i] = t
		default:
			return nil, &models.CoercionError{Column: src.Name, Row: i, Value: src.Format(i), Want: models.KindDate}
		}
		valid[i] = true
	}
	return models.NewDateColumn(name, out, valid), nil
}
