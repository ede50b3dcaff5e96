package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"airbnb-prep/config"
	"airbnb-prep/models"
	"airbnb-prep/utils"
)

const (
	colPrice            = "price"
	colPriceLog         = "price_log"
	colHostSince        = "host_since"
	colFirstReview      = "first_review"
	colLastReview       = "last_review"
	colReviewsPerMonth  = "reviews_per_month"
	colBathroomsText    = "bathrooms_text"
	colBathroomNum      = "bathroom_num"
	colBathroomSharing  = "bathroom_sharing"
	colIdentityVerified = "host_identity_verified"

	// imputedText is what imputation writes into missing text cells.
	imputedText = "0"
)

var dateColumns = []string{colHostSince, colFirstReview, colLastReview}

var errNonPositivePrice = errors.New("logarithm needs a positive price")

// Preprocessor turns a raw listings table into a cleaned, model-ready table.
type Preprocessor struct {
	cfg    config.PipelineConfig
	logger *utils.Logger
}

// NewPreprocessor creates a Preprocessor with the given settings and logger.
func NewPreprocessor(cfg config.PipelineConfig, logger *utils.Logger) *Preprocessor {
	return &Preprocessor{cfg: cfg, logger: logger}
}

type step struct {
	name string
	fn   func(*models.Table) (*models.Table, error)
}

// Preprocess runs every cleaning step in order and returns a new table. The
// input table is left untouched. On error no table is returned.
func (p *Preprocessor) Preprocess(in *models.Table) (*models.Table, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := in.Require("preprocess", p.requiredColumns()...); err != nil {
		return nil, err
	}

	steps := []step{
		{"normalize types", p.NormalizeTypes},
		{"prune columns", p.PruneColumns},
		{"drop inactive listings", p.DropInactive},
		{"drop zero prices", p.DropZeroPrices},
		{"extract bathrooms", p.ExtractBathrooms},
		{"impute missing values", p.Impute},
		{"log price", p.LogPrice},
		{"winsorize", p.Winsorize},
		{"encode flags", p.EncodeFlags},
	}

	t := in
	for _, s := range steps {
		before := t.Len()
		next, err := s.fn(t)
		if err != nil {
			return nil, fmt.Errorf("preprocess: %s: %w", s.name, err)
		}
		p.progress("[preprocess] %s: %d → %d rows, %d columns", s.name, before, next.Len(), next.Width())
		t = next
	}

	p.logger.Info("[preprocess] Cleaned %d → %d listings (dropped %d)", in.Len(), t.Len(), in.Len()-t.Len())
	return t, nil
}

func (p *Preprocessor) requiredColumns() []string {
	req := []string{colPrice, colLastReview, colReviewsPerMonth, colBathroomsText}
	if p.cfg.DateSource == config.DateSourceOwn {
		req = append(req, colHostSince, colFirstReview)
	}
	for _, w := range p.cfg.Winsorize {
		req = append(req, w.Column)
	}
	return append(req, p.cfg.FlagColumns...)
}

func (p *Preprocessor) progress(format string, args ...any) {
	if p.cfg.Verbose {
		p.logger.Info(format, args...)
	} else {
		p.logger.Debug(format, args...)
	}
}

// NormalizeTypes parses a text price into floats and the three date columns
// into dates. With DateSourceLastReview all three dates come from last_review.
func (p *Preprocessor) NormalizeTypes(t *models.Table) (*models.Table, error) {
	if err := t.Require("normalize types", colPrice, colLastReview); err != nil {
		return nil, err
	}

	price, _ := t.Column(colPrice)
	if price.Kind == models.KindString {
		values := make([]float64, price.Len())
		for i, raw := range price.Strings {
			if price.IsMissing(i) {
				continue
			}
			f, err := parsePrice(raw)
			if err != nil {
				return nil, &models.CoercionError{Column: colPrice, Row: i, Value: raw, Want: models.KindFloat, Err: err}
			}
			values[i] = f
		}
		price = models.NewFloatColumn(colPrice, values, price.Valid)
	} else {
		var err error
		if price, err = floatColumn(price); err != nil {
			return nil, err
		}
	}
	out, err := t.With(price)
	if err != nil {
		return nil, err
	}

	for _, name := range dateColumns {
		source := name
		if p.cfg.DateSource == config.DateSourceLastReview {
			source = colLastReview
		}
		src, ok := t.Column(source)
		if !ok {
			return nil, &models.SchemaError{Op: "normalize types", Column: source}
		}
		dates, err := dateColumn(name, src)
		if err != nil {
			return nil, err
		}
		if out, err = out.With(dates); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// PruneColumns drops every configured drop-list column that is present.
func (p *Preprocessor) PruneColumns(t *models.Table) (*models.Table, error) {
	return t.Drop(p.cfg.DropColumns()...), nil
}

// DropInactive removes listings of established hosts (host_since before the
// cutoff) whose reviews_per_month is below the inactivity threshold. Rows
// without a host_since date belong to neither group and are dropped. Kept
// established-host rows come first, followed by recent-host rows.
func (p *Preprocessor) DropInactive(t *models.Table) (*models.Table, error) {
	if err := t.Require("drop inactive listings", colHostSince, colReviewsPerMonth); err != nil {
		return nil, err
	}
	hostSince, _ := t.Column(colHostSince)
	if hostSince.Kind != models.KindDate {
		return nil, fmt.Errorf("column %q is %s, want date", colHostSince, hostSince.Kind)
	}
	raw, _ := t.Column(colReviewsPerMonth)
	rpm, err := floatColumn(raw)
	if err != nil {
		return nil, err
	}

	var established, recent []int
	for i := 0; i < t.Len(); i++ {
		if hostSince.IsMissing(i) {
			continue
		}
		if hostSince.Dates[i].Before(p.cfg.CutoffDate) {
			if !rpm.IsMissing(i) && rpm.Floats[i] >= p.cfg.InactivityThreshold {
				established = append(established, i)
			}
			continue
		}
		recent = append(recent, i)
	}
	return t.Take(append(established, recent...)), nil
}

// DropZeroPrices removes rows whose price is zero. Missing and negative
// prices go too, so every remaining price is positive.
func (p *Preprocessor) DropZeroPrices(t *models.Table) (*models.Table, error) {
	raw, ok := t.Column(colPrice)
	if !ok {
		return nil, &models.SchemaError{Op: "drop zero prices", Column: colPrice}
	}
	price, err := floatColumn(raw)
	if err != nil {
		return nil, err
	}
	return t.Filter(func(i int) bool {
		return !price.IsMissing(i) && price.Floats[i] > 0
	}), nil
}

// ExtractBathrooms derives bathroom_num and bathroom_sharing from
// bathrooms_text and drops the text column.
func (p *Preprocessor) ExtractBathrooms(t *models.Table) (*models.Table, error) {
	src, ok := t.Column(colBathroomsText)
	if !ok {
		return nil, &models.SchemaError{Op: "extract bathrooms", Column: colBathroomsText}
	}

	n := t.Len()
	nums := make([]float64, n)
	numValid := make([]bool, n)
	sharing := make([]string, n)
	sharingValid := make([]bool, n)
	for i := 0; i < n; i++ {
		if src.IsMissing(i) {
			continue
		}
		nums[i], numValid[i], sharing[i], sharingValid[i] = parseBathrooms(strings.ToLower(src.Format(i)))
	}

	out, err := t.Drop(colBathroomsText).With(models.NewFloatColumn(colBathroomNum, nums, numValid))
	if err != nil {
		return nil, err
	}
	return out.With(models.NewStringColumn(colBathroomSharing, sharing, sharingValid))
}

// Impute fills missing cells by kind: text gets "0", dates get the configured
// fill date and numbers get 0.
func (p *Preprocessor) Impute(t *models.Table) (*models.Table, error) {
	cols := t.Columns()
	for i, c := range cols {
		missing := c.MissingCount()
		if missing == 0 {
			continue
		}
		p.logger.Debug("[preprocess] Imputing %d missing cells in %s (%s)", missing, c.Name, c.Kind)
		cols[i] = p.fill(c)
	}
	return models.NewTable(cols...)
}

func (p *Preprocessor) fill(c *models.Column) *models.Column {
	n := c.Len()
	switch c.Kind {
	case models.KindString:
		out := make([]string, n)
		for i := range out {
			if c.IsMissing(i) {
				out[i] = imputedText
			} else {
				out[i] = c.Strings[i]
			}
		}
		return models.NewStringColumn(c.Name, out, nil)
	case models.KindDate:
		out := make([]time.Time, n)
		for i := range out {
			if c.IsMissing(i) {
				out[i] = p.cfg.FillDate
			} else {
				out[i] = c.Dates[i]
			}
		}
		return models.NewDateColumn(c.Name, out, nil)
	case models.KindInt:
		out := make([]int64, n)
		for i := range out {
			if !c.IsMissing(i) {
				out[i] = c.Ints[i]
			}
		}
		return models.NewIntColumn(c.Name, out)
	default:
		out := make([]float64, n)
		for i := range out {
			if !c.IsMissing(i) {
				out[i] = c.Floats[i]
			}
		}
		return models.NewFloatColumn(c.Name, out, nil)
	}
}

// LogPrice adds price_log = ln(price). It fails if any price is not positive.
func (p *Preprocessor) LogPrice(t *models.Table) (*models.Table, error) {
	raw, ok := t.Column(colPrice)
	if !ok {
		return nil, &models.SchemaError{Op: "log price", Column: colPrice}
	}
	price, err := floatColumn(raw)
	if err != nil {
		return nil, err
	}
	out := make([]float64, price.Len())
	for i, v := range price.Floats {
		if price.IsMissing(i) || v <= 0 {
			return nil, &models.CoercionError{Column: colPrice, Row: i, Value: price.Format(i), Want: models.KindFloat, Err: errNonPositivePrice}
		}
		out[i] = math.Log(v)
	}
	return t.With(models.NewFloatColumn(colPriceLog, out, nil))
}

// Winsorize caps each configured column at its quantile, computed on the
// column as it stands when this step runs.
func (p *Preprocessor) Winsorize(t *models.Table) (*models.Table, error) {
	out := t
	for _, w := range p.cfg.Winsorize {
		raw, ok := t.Column(w.Column)
		if !ok {
			return nil, &models.SchemaError{Op: "winsorize", Column: w.Column}
		}
		col, err := floatColumn(raw)
		if err != nil {
			return nil, err
		}
		if col.Len() == 0 {
			continue
		}

		cutoff := quantile(col, w.Quantile)
		capped := make([]float64, col.Len())
		clipped := 0
		for i, v := range col.Floats {
			if v > cutoff {
				v = cutoff
				clipped++
			}
			capped[i] = v
		}
		p.progress("[preprocess] Winsorized %s at q%.3f = %g (%d values capped)", w.Column, w.Quantile, cutoff, clipped)

		if out, err = out.With(models.NewFloatColumn(w.Column, capped, col.Valid)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// quantile returns the q-quantile of the non-missing cells of col,
// interpolating linearly between the order statistics at position q*(n-1).
func quantile(col *models.Column, q float64) float64 {
	sorted := make([]float64, 0, col.Len())
	for i, v := range col.Floats {
		if !col.IsMissing(i) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return math.Inf(1)
	}
	sort.Float64s(sorted)

	h := q * float64(len(sorted)-1)
	lo := int(h)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// EncodeFlags drops rows whose host_identity_verified holds the imputed text
// "0" and maps "t"/"f" to 1/0 in every flag column. Numeric flag columns are
// already encoded and keep all their rows. An imputed "0" in any other flag
// column becomes 0; anything else is a coercion error.
func (p *Preprocessor) EncodeFlags(t *models.Table) (*models.Table, error) {
	if err := t.Require("encode flags", p.cfg.FlagColumns...); err != nil {
		return nil, err
	}

	out := t
	if verified, ok := t.Column(colIdentityVerified); ok {
		out = t.Filter(func(i int) bool { return !isImputedZero(verified, i) })
	}

	for _, name := range p.cfg.FlagColumns {
		col, _ := out.Column(name)
		encoded, err := encodeFlag(col)
		if err != nil {
			return nil, err
		}
		if out, err = out.With(encoded); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func isImputedZero(c *models.Column, i int) bool {
	return c.Kind == models.KindString && c.Strings[i] == imputedText
}

func encodeFlag(c *models.Column) (*models.Column, error) {
	out := make([]int64, c.Len())
	for i := 0; i < c.Len(); i++ {
		v := c.Format(i)
		switch v {
		case "t", "1":
			out[i] = 1
		case "f", "0":
			out[i] = 0
		default:
			return nil, &models.CoercionError{Column: c.Name, Row: i, Value: v, Want: models.KindInt}
		}
	}
	return models.NewIntColumn(c.Name, out), nil
}
