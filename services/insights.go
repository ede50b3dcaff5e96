package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"airbnb-prep/models"
	"airbnb-prep/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate summarizes a processed table. Columns it cannot find are skipped.
func (s *InsightService) Generate(t *models.Table) *models.InsightReport {
	report := &models.InsightReport{
		ListingsBySharing: make(map[string]int),
		AmenityCoverage:   make(map[string]float64),
	}
	if t == nil || t.Len() == 0 {
		return report
	}

	report.TotalListings = t.Len()
	report.TotalColumns = t.Width()

	if col, ok := t.Column(colPrice); ok {
		if prices := presentFloats(col); len(prices) > 0 {
			report.AveragePrice = round2(stat.Mean(prices, nil))
			report.MinPrice = round2(floats.Min(prices))
			report.MaxPrice = round2(floats.Max(prices))
			sort.Float64s(prices)
			report.MedianPrice = round2(stat.Quantile(0.5, stat.Empirical, prices, nil))
		}
	}

	if col, ok := t.Column("host_is_superhost"); ok {
		if flags := presentFloats(col); len(flags) > 0 {
			report.SuperhostShare = round2(stat.Mean(flags, nil))
		}
	}

	if col, ok := t.Column(colBathroomSharing); ok {
		for i := 0; i < col.Len(); i++ {
			report.ListingsBySharing[col.Format(i)]++
		}
	}

	for _, col := range t.Columns() {
		if !strings.HasPrefix(col.Name, AmenityPrefix) {
			continue
		}
		if flags := presentFloats(col); len(flags) > 0 {
			report.AmenityCoverage[strings.TrimPrefix(col.Name, AmenityPrefix)] = round2(stat.Mean(flags, nil))
		}
	}

	s.logger.Debug("[insights] Report built over %d rows", report.TotalListings)
	return report
}

// presentFloats returns the non-missing numeric cells of col. Text columns yield nothing.
func presentFloats(col *models.Column) []float64 {
	out := make([]float64, 0, col.Len())
	for i := 0; i < col.Len(); i++ {
		if col.IsMissing(i) {
			continue
		}
		switch col.Kind {
		case models.KindFloat:
			out = append(out, col.Floats[i])
		case models.KindInt:
			out = append(out, float64(col.Ints[i]))
		}
	}
	return out
}

func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 LISTINGS PREPROCESSING SUMMARY\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Listings kept  : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintf(w, "  Feature columns: \033[1m%d\033[0m\n", r.TotalColumns)
	fmt.Fprintf(w, "  Superhosts     : \033[1m%.0f%%\033[0m\n", r.SuperhostShare*100)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Price Statistics (per night)\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.AveragePrice > 0 {
		fmt.Fprintf(w, "  Average price : \033[1;32m$%.2f\033[0m\n", r.AveragePrice)
		fmt.Fprintf(w, "  Median price  : \033[1;32m$%.2f\033[0m\n", r.MedianPrice)
		fmt.Fprintf(w, "  Minimum price : \033[1;32m$%.2f\033[0m\n", r.MinPrice)
		fmt.Fprintf(w, "  Maximum price : \033[1;32m$%.2f\033[0m\n", r.MaxPrice)
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Bathroom Sharing\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	printCounts(w, r.ListingsBySharing, "No bathroom data")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Amenity Coverage\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.AmenityCoverage) == 0 {
		fmt.Fprintf(w, "  No amenity columns\n")
	} else {
		type cover struct {
			name  string
			share float64
		}
		var covers []cover
		for name, share := range r.AmenityCoverage {
			covers = append(covers, cover{name, share})
		}
		sort.Slice(covers, func(i, j int) bool {
			if covers[i].share != covers[j].share {
				return covers[i].share > covers[j].share
			}
			return covers[i].name < covers[j].name
		})
		for _, c := range covers {
			bar := strings.Repeat("█", int(c.share*20+0.5))
			fmt.Fprintf(w, "  %-30s %-20s %3.0f%%\n", truncate(c.name, 28), bar, c.share*100)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func printCounts(w io.Writer, counts map[string]int, empty string) {
	if len(counts) == 0 {
		fmt.Fprintf(w, "  %s\n", empty)
		return
	}
	type keyCount struct {
		key   string
		count int
	}
	var kcs []keyCount
	for k, c := range counts {
		kcs = append(kcs, keyCount{k, c})
	}
	sort.Slice(kcs, func(i, j int) bool {
		if kcs[i].count != kcs[j].count {
			return kcs[i].count > kcs[j].count
		}
		return kcs[i].key < kcs[j].key
	})
	for _, kc := range kcs {
		label := kc.key
		if label == imputedText {
			label = "unknown"
		}
		fmt.Fprintf(w, "  %-30s %d\n", truncate(label, 28), kc.count)
	}
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
