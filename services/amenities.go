package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ohler55/ojg/oj"

	"airbnb-prep/config"
	"airbnb-prep/models"
	"airbnb-prep/utils"
)

const (
	colAmenities = "amenities"
	// AmenityPrefix starts the name of every amenity indicator column.
	AmenityPrefix = "amenities_"
)

var (
	errMissingAmenities = errors.New("missing value")
	errNotAList         = errors.New("not a list")
)

// AmenityExpander replaces the raw amenities list with indicator columns for
// the most common amenities.
type AmenityExpander struct {
	topN   int
	match  config.AmenityMatch
	logger *utils.Logger
}

// NewAmenityExpander creates an expander using NumAmenities and AmenityMatch from cfg.
func NewAmenityExpander(cfg config.PipelineConfig, logger *utils.Logger) *AmenityExpander {
	return &AmenityExpander{topN: cfg.NumAmenities, match: cfg.AmenityMatch, logger: logger}
}

// AmenityCount pairs an amenity with the number of times it appears across all lists.
type AmenityCount struct {
	Name  string
	Count int
}

// Expand lower-cases and parses every amenities cell, picks the topN most
// frequent amenities and adds one 0/1 column per amenity. The amenities
// column is dropped. Cells hold JSON lists of strings; single-quoted string
// literals are also read. Any cell that is not a list of strings fails the call.
func (e *AmenityExpander) Expand(in *models.Table) (*models.Table, error) {
	if e.topN < 0 {
		return nil, fmt.Errorf("amenities: top n must be >= 0, got %d", e.topN)
	}
	col, ok := in.Column(colAmenities)
	if !ok {
		return nil, &models.SchemaError{Op: "expand amenities", Column: colAmenities}
	}

	lowered := make([]string, col.Len())
	lists := make([][]string, col.Len())
	for i := range lowered {
		if col.IsMissing(i) {
			return nil, &models.ParseError{Column: colAmenities, Row: i, Err: errMissingAmenities}
		}
		lowered[i] = strings.ToLower(col.Format(i))
		list, err := parseAmenityList(lowered[i])
		if err != nil {
			return nil, &models.ParseError{Column: colAmenities, Row: i, Value: lowered[i], Err: err}
		}
		lists[i] = list
	}

	top := TopAmenities(lists, e.topN)
	e.logger.Debug("[amenities] %d rows, keeping %d amenities", len(lists), len(top))

	out := in.Drop(colAmenities)
	for _, a := range top {
		flags := make([]int64, len(lists))
		for i := range lists {
			if e.matches(a.Name, lowered[i], lists[i]) {
				flags[i] = 1
			}
		}
		var err error
		if out, err = out.With(models.NewIntColumn(AmenityPrefix+a.Name, flags)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (e *AmenityExpander) matches(name, raw string, list []string) bool {
	if e.match == config.AmenityMatchExact {
		for _, item := range list {
			if item == name {
				return true
			}
		}
		return false
	}
	return strings.Contains(raw, name)
}

// TopAmenities counts every amenity across all lists and returns the n most
// frequent, highest count first. Equal counts keep first-seen order.
func TopAmenities(lists [][]string, n int) []AmenityCount {
	index := make(map[string]int)
	var counts []AmenityCount
	for _, list := range lists {
		for _, item := range list {
			i, seen := index[item]
			if !seen {
				i = len(counts)
				index[item] = i
				counts = append(counts, AmenityCount{Name: item})
			}
			counts[i].Count++
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if n < len(counts) {
		counts = counts[:n]
	}
	return counts
}

// parseAmenityList decodes a list of strings such as `["wifi", "kitchen"]`.
// Lists written with single-quoted strings, `['wifi', "kid's toys"]`, are
// accepted as well.
func parseAmenityList(s string) ([]string, error) {
	v, err := oj.ParseString(s)
	if err != nil {
		converted, ok := singleQuotedToJSON(s)
		if !ok {
			return nil, err
		}
		if v, err = oj.ParseString(converted); err != nil {
			return nil, err
		}
	}
	items, ok := v.([]any)
	if !ok {
		return nil, errNotAList
	}
	out := make([]string, len(items))
	for i, item := range items {
		str, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("item %d is not a string", i)
		}
		out[i] = str
	}
	return out, nil
}

// singleQuotedToJSON rewrites every single-quoted string in s as a JSON
// string. Double-quoted strings are copied unchanged. ok is false when a
// string is left unterminated or s holds no single-quoted string.
func singleQuotedToJSON(s string) (string, bool) {
	var b strings.Builder
	found := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			j := i + 1
			for ; j < len(s) && s[j] != '"'; j++ {
				if s[j] == '\\' {
					j++
				}
			}
			if j >= len(s) {
				return "", false
			}
			b.WriteString(s[i : j+1])
			i = j
		case '\'':
			var lit strings.Builder
			j := i + 1
			for ; j < len(s) && s[j] != '\''; j++ {
				if s[j] == '\\' && j+1 < len(s) {
					j++
				}
				lit.WriteByte(s[j])
			}
			if j >= len(s) {
				return "", false
			}
			b.WriteString(oj.JSON(lit.String()))
			found = true
			i = j
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String(), found
}
