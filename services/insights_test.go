package services

import (
	"bytes"
	"testing"

	"airbnb-prep/models"
	"airbnb-prep/utils"
)

func sampleCleaned(t *testing.T) *models.Table {
	t.Helper()
	tbl, err := models.NewTable(
		models.NewFloatColumn("price", []float64{200, 50, 120, 300}, nil),
		models.NewIntColumn("host_is_superhost", []int64{1, 0, 0, 1}),
		models.NewStringColumn("bathroom_sharing", []string{"shared", "0", "private", "shared"}, nil),
		models.NewIntColumn("amenities_wifi", []int64{1, 1, 1, 0}),
		models.NewIntColumn("amenities_kitchen", []int64{0, 1, 0, 0}),
	)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestInsightCounts(t *testing.T) {
	svc := NewInsightService(utils.NewNopLogger())
	r := svc.Generate(sampleCleaned(t))
	if r.TotalListings != 4 {
		t.Errorf("TotalListings: got %d, want 4", r.TotalListings)
	}
	if r.TotalColumns != 5 {
		t.Errorf("TotalColumns: got %d, want 5", r.TotalColumns)
	}
	if r.SuperhostShare != 0.5 {
		t.Errorf("SuperhostShare: got %.2f, want 0.5", r.SuperhostShare)
	}
}

func TestInsightPrices(t *testing.T) {
	svc := NewInsightService(utils.NewNopLogger())
	r := svc.Generate(sampleCleaned(t))
	if r.AveragePrice != 167.50 {
		t.Errorf("AveragePrice: got %.2f, want 167.50", r.AveragePrice)
	}
	if r.MinPrice != 50 {
		t.Errorf("MinPrice: got %.2f, want 50", r.MinPrice)
	}
	if r.MaxPrice != 300 {
		t.Errorf("MaxPrice: got %.2f, want 300", r.MaxPrice)
	}
	if r.MedianPrice != 120 {
		t.Errorf("MedianPrice: got %.2f, want 120", r.MedianPrice)
	}
}

func TestInsightSharingAndAmenities(t *testing.T) {
	svc := NewInsightService(utils.NewNopLogger())
	r := svc.Generate(sampleCleaned(t))
	if r.ListingsBySharing["shared"] != 2 {
		t.Errorf("shared count: got %d, want 2", r.ListingsBySharing["shared"])
	}
	if r.ListingsBySharing["0"] != 1 {
		t.Errorf("unknown count: got %d, want 1", r.ListingsBySharing["0"])
	}
	if r.AmenityCoverage["wifi"] != 0.75 {
		t.Errorf("wifi coverage: got %.2f, want 0.75", r.AmenityCoverage["wifi"])
	}
	if r.AmenityCoverage["kitchen"] != 0.25 {
		t.Errorf("kitchen coverage: got %.2f, want 0.25", r.AmenityCoverage["kitchen"])
	}
}

func TestInsightEmptyInput(t *testing.T) {
	svc := NewInsightService(utils.NewNopLogger())
	r := svc.Generate(nil)
	if r.TotalListings != 0 {
		t.Errorf("expected 0 total listings for empty input")
	}
}

func TestInsightPrint(t *testing.T) {
	svc := NewInsightService(utils.NewNopLogger())
	var buf bytes.Buffer
	svc.Print(&buf, svc.Generate(sampleCleaned(t)))

	out := buf.String()
	for _, want := range []string{"$167.50", "wifi", "unknown", "shared"} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Errorf("report missing %q", want)
		}
	}
}
