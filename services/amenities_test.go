package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airbnb-prep/config"
	"airbnb-prep/models"
	"airbnb-prep/utils"
)

func amenityTable(t *testing.T, cells ...string) *models.Table {
	t.Helper()
	ids := make([]int64, len(cells))
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	tbl, err := models.NewTable(
		models.NewIntColumn("id", ids),
		models.NewStringColumn("amenities", cells, nil),
	)
	require.NoError(t, err)
	return tbl
}

func newTestExpander(topN int, match config.AmenityMatch) *AmenityExpander {
	cfg := config.DefaultPipelineConfig()
	cfg.NumAmenities = topN
	cfg.AmenityMatch = match
	return NewAmenityExpander(cfg, utils.NewNopLogger())
}

func flagNames(t *models.Table) []string {
	var out []string
	for _, n := range t.Names() {
		if len(n) > len(AmenityPrefix) && n[:len(AmenityPrefix)] == AmenityPrefix {
			out = append(out, n)
		}
	}
	return out
}

func TestExpandTopAmenities(t *testing.T) {
	in := amenityTable(t,
		`["Wifi", "Kitchen", "Wifi"]`,
		`["Kitchen", "Heating"]`,
		`["Heating", "Wifi", "Washer"]`,
		`["Washer"]`,
	)

	out, err := newTestExpander(2, config.AmenityMatchSubstring).Expand(in)
	require.NoError(t, err)

	assert.False(t, out.Has("amenities"))
	assert.Equal(t, []string{"amenities_wifi", "amenities_kitchen"}, flagNames(out))

	wifi, _ := out.Column("amenities_wifi")
	assert.Equal(t, models.KindInt, wifi.Kind)
	assert.Equal(t, []int64{1, 0, 1, 0}, wifi.Ints)
	kitchen, _ := out.Column("amenities_kitchen")
	assert.Equal(t, []int64{1, 1, 0, 0}, kitchen.Ints)
}

func TestTopAmenitiesTieBreak(t *testing.T) {
	lists := [][]string{
		{"heating", "wifi"},
		{"kitchen", "wifi", "heating"},
		{"kitchen", "tv"},
	}

	got := TopAmenities(lists, 10)
	assert.Equal(t, []AmenityCount{
		{"heating", 2}, {"wifi", 2}, {"kitchen", 2}, {"tv", 1},
	}, got)

	assert.Equal(t, []AmenityCount{{"heating", 2}}, TopAmenities(lists, 1))
	assert.Empty(t, TopAmenities(lists, 0))
	assert.Empty(t, TopAmenities(nil, 5))
}

func TestExpandMatchStrategies(t *testing.T) {
	in := amenityTable(t,
		`["Wifi"]`,
		`["Wifi"]`,
		`["Wifi speed"]`,
	)

	sub, err := newTestExpander(1, config.AmenityMatchSubstring).Expand(in)
	require.NoError(t, err)
	wifi, _ := sub.Column("amenities_wifi")
	assert.Equal(t, []int64{1, 1, 1}, wifi.Ints, "substring matching flags names contained in longer ones")

	exact, err := newTestExpander(1, config.AmenityMatchExact).Expand(in)
	require.NoError(t, err)
	wifi, _ = exact.Column("amenities_wifi")
	assert.Equal(t, []int64{1, 1, 0}, wifi.Ints)
}

func TestExpandParseErrors(t *testing.T) {
	tests := []struct {
		name string
		cell string
	}{
		{"unterminated", `["wifi", "kitchen"`},
		{"imputed zero", "0"},
		{"object", `{"wifi": true}`},
		{"number in list", `["wifi", 3]`},
		{"plain text", "wifi, kitchen"},
		{"unterminated single quote", `['wifi', 'kitchen]`},
		{"single-quoted object", `{'wifi': 'yes'}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := amenityTable(t, `["Wifi"]`, tt.cell)
			out, err := newTestExpander(5, config.AmenityMatchSubstring).Expand(in)
			assert.Nil(t, out)
			var pe *models.ParseError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, 1, pe.Row)
		})
	}
}

func TestExpandSingleQuotedLists(t *testing.T) {
	in := amenityTable(t,
		`['Wifi', 'Kitchen']`,
		`["Kid's toys", 'Wifi']`,
		`['Samsung 32" TV', 'It\'s quiet']`,
	)

	out, err := newTestExpander(5, config.AmenityMatchExact).Expand(in)
	require.NoError(t, err)

	wifi, _ := out.Column("amenities_wifi")
	assert.Equal(t, []int64{1, 1, 0}, wifi.Ints)
	toys, ok := out.Column("amenities_kid's toys")
	require.True(t, ok)
	assert.Equal(t, []int64{0, 1, 0}, toys.Ints)
	tv, ok := out.Column(`amenities_samsung 32" tv`)
	require.True(t, ok)
	assert.Equal(t, []int64{0, 0, 1}, tv.Ints)
	quiet, ok := out.Column("amenities_it's quiet")
	require.True(t, ok)
	assert.Equal(t, []int64{0, 0, 1}, quiet.Ints)
}

func TestParseAmenityList(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{`["wifi", "tv"]`, []string{"wifi", "tv"}},
		{`['wifi', 'tv']`, []string{"wifi", "tv"}},
		{`['a "quoted" word']`, []string{`a "quoted" word`}},
		{`["it's", 'ok']`, []string{"it's", "ok"}},
		{`[]`, []string{}},
	}

	for _, tt := range tests {
		got, err := parseAmenityList(tt.raw)
		if err != nil {
			t.Errorf("parseAmenityList(%q) error: %v", tt.raw, err)
			continue
		}
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestExpandMissingCell(t *testing.T) {
	tbl, err := models.NewTable(models.NewStringColumn("amenities", []string{`["wifi"]`, ""}, []bool{true, false}))
	require.NoError(t, err)

	_, err = newTestExpander(5, config.AmenityMatchSubstring).Expand(tbl)
	var pe *models.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 1, pe.Row)
}

func TestExpandMissingColumn(t *testing.T) {
	tbl, err := models.NewTable(models.NewIntColumn("id", []int64{1}))
	require.NoError(t, err)

	_, err = newTestExpander(5, config.AmenityMatchSubstring).Expand(tbl)
	var se *models.SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "amenities", se.Column)
}

func TestExpandIsIdempotent(t *testing.T) {
	cells := []string{
		`["Wifi", "Kitchen"]`,
		`["Kitchen", "Heating", "Essentials"]`,
		`["Essentials", "Wifi", "Kitchen"]`,
	}
	e := newTestExpander(3, config.AmenityMatchSubstring)

	first, err := e.Expand(amenityTable(t, cells...))
	require.NoError(t, err)

	readded, err := first.With(models.NewStringColumn("amenities", cells, nil))
	require.NoError(t, err)
	second, err := e.Expand(readded)
	require.NoError(t, err)

	assert.ElementsMatch(t, flagNames(first), flagNames(second))
	assert.Equal(t, first.Width(), second.Width())
}

func TestExpandFewerAmenitiesThanTopN(t *testing.T) {
	in := amenityTable(t, `["Wifi"]`, `[]`)

	out, err := newTestExpander(20, config.AmenityMatchSubstring).Expand(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"amenities_wifi"}, flagNames(out))
	assert.Equal(t, []string{"id", "amenities_wifi"}, out.Names())
}

func TestExpandDoesNotMutateInput(t *testing.T) {
	in := amenityTable(t, `["Wifi"]`, `["TV"]`)
	before := snapshot(in)

	_, err := newTestExpander(2, config.AmenityMatchSubstring).Expand(in)
	require.NoError(t, err)
	assert.Equal(t, before, snapshot(in))
}

func TestExpandNegativeTopN(t *testing.T) {
	_, err := newTestExpander(-1, config.AmenityMatchSubstring).Expand(amenityTable(t, `["Wifi"]`))
	assert.Error(t, err)
}
