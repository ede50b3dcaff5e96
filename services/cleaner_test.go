package services

import (
	"testing"
	"time"

	"airbnb-prep/models"
)

func TestCleanerParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"$120.00", 120},
		{"$1,200.50", 1200.50},
		{" $85 ", 85},
		{"3500", 3500},
		{"$0.00", 0},
	}

	for _, tt := range tests {
		got, err := parsePrice(tt.raw)
		if err != nil {
			t.Errorf("parsePrice(%q) error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parsePrice(%q) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}

	for _, raw := range []string{"", "free", "€12", "12 USD"} {
		if _, err := parsePrice(raw); err == nil {
			t.Errorf("parsePrice(%q) should fail", raw)
		}
	}
}

func TestCleanerParseDate(t *testing.T) {
	want := time.Date(2020, 12, 5, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{"2020-12-05", "2020/12/05", "2020-12-05 00:00:00", "2020-12-05T00:00:00Z", "2020.12.05"} {
		got, err := parseDate(raw)
		if err != nil {
			t.Errorf("parseDate(%q) error: %v", raw, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("parseDate(%q) = %v; want %v", raw, got, want)
		}
	}

	for _, raw := range []string{"05/12/2020", "12-05-2020", "yesterday"} {
		if _, err := parseDate(raw); err == nil {
			t.Errorf("parseDate(%q) should fail", raw)
		}
	}
}

func TestCleanerParseBathrooms(t *testing.T) {
	tests := []struct {
		text      string
		num       float64
		numOK     bool
		sharing   string
		sharingOK bool
	}{
		{"1 bath", 1, true, "", false},
		{"1.5 shared baths", 1.5, true, "shared", true},
		{"2 private baths", 2, true, "private", true},
		{"half-bath", 0.5, true, "", false},
		{"shared half-bath", 0.5, true, "shared", true},
		{"3 half-baths", 0.5, true, "", false},
		{"private bath", 0, false, "private", true},
		{"0 baths", 0, true, "", false},
		{"", 0, false, "", false},
	}

	for _, tt := range tests {
		num, numOK, sharing, sharingOK := parseBathrooms(tt.text)
		if num != tt.num || numOK != tt.numOK || sharing != tt.sharing || sharingOK != tt.sharingOK {
			t.Errorf("parseBathrooms(%q) = (%v, %v, %q, %v); want (%v, %v, %q, %v)",
				tt.text, num, numOK, sharing, sharingOK, tt.num, tt.numOK, tt.sharing, tt.sharingOK)
		}
	}
}

func TestFloatColumn(t *testing.T) {
	ints := &models.Column{Name: "beds", Kind: models.KindInt, Ints: []int64{2, 0}, Valid: []bool{true, false}}
	got, err := floatColumn(ints)
	if err != nil {
		t.Fatalf("floatColumn(int) error: %v", err)
	}
	if got.Kind != models.KindFloat || got.Floats[0] != 2 || !got.IsMissing(1) {
		t.Errorf("floatColumn(int) = %+v", got)
	}

	text := models.NewStringColumn("reviews_per_month", []string{"0.5", "n/a"}, nil)
	if _, err := floatColumn(text); err == nil {
		t.Error("floatColumn should reject non-numeric text")
	}
}
