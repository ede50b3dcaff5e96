package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"airbnb-prep/config"
	"airbnb-prep/models"
	"airbnb-prep/storage"
	"airbnb-prep/utils"
)

var listingHeader = []string{
	"id", "listing_url", "name", "price", "host_since", "first_review", "last_review",
	"reviews_per_month", "bathrooms_text", "amenities", "host_is_superhost",
	"host_has_profile_pic", "host_identity_verified", "has_availability", "instant_bookable",
	"bedrooms", "minimum_nights", "maximum_nights", "minimum_nights_avg_ntm", "room_type",
	"calendar_updated",
}

func baseListing() map[string]string {
	return map[string]string{
		"id":                     "0",
		"listing_url":            "https://www.airbnb.com/rooms/0",
		"name":                   "Cozy place",
		"price":                  "$100.00",
		"host_since":             "2018-05-01",
		"first_review":           "2018-06-01",
		"last_review":            "2021-11-20",
		"reviews_per_month":      "0.5",
		"bathrooms_text":         "1 bath",
		"amenities":              `["Wifi", "Kitchen"]`,
		"host_is_superhost":      "f",
		"host_has_profile_pic":   "t",
		"host_identity_verified": "t",
		"has_availability":       "t",
		"instant_bookable":       "f",
		"bedrooms":               "1",
		"minimum_nights":         "2",
		"maximum_nights":         "1125",
		"minimum_nights_avg_ntm": "2.0",
		"room_type":              "Entire home/apt",
		"calendar_updated":       "",
	}
}

func listing(overrides map[string]string) map[string]string {
	row := baseListing()
	for k, v := range overrides {
		row[k] = v
	}
	return row
}

// listingsTable builds a raw table the way the loaders do: text cells, empty
// meaning missing, then kind inference.
func listingsTable(t *testing.T, header []string, rows ...map[string]string) *models.Table {
	t.Helper()
	cols := make([]*models.Column, len(header))
	for j, name := range header {
		values := make([]string, len(rows))
		valid := make([]bool, len(rows))
		for i, r := range rows {
			values[i] = r[name]
			valid[i] = r[name] != ""
		}
		cols[j] = models.NewStringColumn(name, values, valid)
	}
	raw, err := models.NewTable(cols...)
	require.NoError(t, err)
	tbl, err := storage.InferKinds(raw)
	require.NoError(t, err)
	return tbl
}

func without(header []string, drop string) []string {
	var out []string
	for _, h := range header {
		if h != drop {
			out = append(out, h)
		}
	}
	return out
}

func newTestPreprocessor(mutate func(*config.PipelineConfig)) *Preprocessor {
	cfg := config.DefaultPipelineConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	return NewPreprocessor(cfg, utils.NewNopLogger())
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// snapshot renders every cell so tests can check a table was not modified.
func snapshot(t *models.Table) [][]string {
	out := make([][]string, 0, t.Width())
	for _, c := range t.Columns() {
		cells := make([]string, c.Len())
		for i := range cells {
			cells[i] = c.Format(i)
		}
		out = append(out, append([]string{c.Name, c.Kind.String()}, cells...))
	}
	return out
}
