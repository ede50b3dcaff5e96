package models

// InsightReport holds summary statistics over a cleaned listings table.
type InsightReport struct {
	TotalListings  int
	TotalColumns   int
	AveragePrice   float64
	MedianPrice    float64
	MinPrice       float64
	MaxPrice       float64
	SuperhostShare float64

	ListingsBySharing map[string]int
	// AmenityCoverage maps an amenity indicator column to the share of rows flagged 1.
	AmenityCoverage map[string]float64
}
