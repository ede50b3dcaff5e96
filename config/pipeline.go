package config

import (
	"fmt"
	"time"
)

// DateSource selects where the three date columns are parsed from.
type DateSource string

const (
	// DateSourceOwn parses host_since, first_review and last_review from their own columns.
	DateSourceOwn DateSource = "own"
	// DateSourceLastReview derives all three date columns from last_review,
	// matching older exports of this pipeline.
	DateSourceLastReview DateSource = "last_review"
)

// AmenityMatch selects how a row is tested for an amenity.
type AmenityMatch string

const (
	// AmenityMatchSubstring flags a row when the amenity name occurs anywhere in the
	// raw amenities text. A name contained in a longer one ("wifi" in "wifi speed")
	// matches both.
	AmenityMatchSubstring AmenityMatch = "substring"
	// AmenityMatchExact flags a row only when the parsed list holds the amenity name.
	AmenityMatchExact AmenityMatch = "exact"
)

// Winsor caps a numeric column at the given quantile.
type Winsor struct {
	Column   string
	Quantile float64
}

// PipelineConfig carries every knob of the preprocessing pipeline.
type PipelineConfig struct {
	DateSource DateSource

	NotRelevant []string
	Empty       []string
	Duplicated  []string
	NotUseful   []string

	CutoffDate          time.Time
	InactivityThreshold float64

	Winsorize []Winsor

	FlagColumns []string
	FillDate    time.Time

	NumAmenities int
	AmenityMatch AmenityMatch

	Verbose bool
}

// DefaultPipelineConfig returns the settings used for the Dec 2021 export.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		DateSource: DateSourceOwn,
		NotRelevant: []string{
			"listing_url", "scrape_id", "last_scraped", "picture_url", "host_about",
			"host_thumbnail_url", "host_verifications", "name", "description",
			"neighborhood_overview", "host_name", "host_picture_url",
			"calendar_last_scraped", "license", "host_url",
		},
		Empty:      []string{"calendar_updated", "bathrooms"},
		Duplicated: []string{"host_neighbourhood", "neighbourhood", "host_listings_count"},
		NotUseful: []string{
			"minimum_minimum_nights", "maximum_minimum_nights",
			"minimum_maximum_nights", "maximum_maximum_nights",
			"neighbourhood_cleansed", "beds", "host_location",
			"host_response_time", "host_response_rate", "host_acceptance_rate",
			"calculated_host_listings_count_private_rooms",
			"calculated_host_listings_count_shared_rooms",
			"calculated_host_listings_count",
			"calculated_host_listings_count_entire_homes",
		},
		CutoffDate:          time.Date(2020, 12, 5, 0, 0, 0, 0, time.UTC),
		InactivityThreshold: 0.09,
		Winsorize: []Winsor{
			{Column: "bedrooms", Quantile: 0.97},
			{Column: "minimum_nights", Quantile: 0.95},
			{Column: "maximum_nights", Quantile: 0.95},
			{Column: "minimum_nights_avg_ntm", Quantile: 0.95},
		},
		FlagColumns: []string{
			"host_is_superhost", "host_has_profile_pic", "host_identity_verified",
			"has_availability", "instant_bookable",
		},
		FillDate:     time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC),
		NumAmenities: 20,
		AmenityMatch: AmenityMatchSubstring,
	}
}

// DropColumns returns every configured drop list concatenated.
func (p PipelineConfig) DropColumns() []string {
	out := make([]string, 0, len(p.NotRelevant)+len(p.Empty)+len(p.Duplicated)+len(p.NotUseful))
	out = append(out, p.NotRelevant...)
	out = append(out, p.Empty...)
	out = append(out, p.Duplicated...)
	out = append(out, p.NotUseful...)
	return out
}

// Validate rejects settings the pipeline cannot run with.
func (p PipelineConfig) Validate() error {
	switch p.DateSource {
	case DateSourceOwn, DateSourceLastReview:
	default:
		return fmt.Errorf("config: unknown date source %q", p.DateSource)
	}
	switch p.AmenityMatch {
	case AmenityMatchSubstring, AmenityMatchExact:
	default:
		return fmt.Errorf("config: unknown amenity match %q", p.AmenityMatch)
	}
	if p.NumAmenities < 0 {
		return fmt.Errorf("config: num amenities must be >= 0, got %d", p.NumAmenities)
	}
	if p.InactivityThreshold < 0 {
		return fmt.Errorf("config: inactivity threshold must be >= 0, got %g", p.InactivityThreshold)
	}
	for _, w := range p.Winsorize {
		if w.Quantile <= 0 || w.Quantile > 1 {
			return fmt.Errorf("config: winsor quantile for %q must be in (0, 1], got %g", w.Column, w.Quantile)
		}
	}
	return nil
}
