package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"airbnb-prep/config"
	"airbnb-prep/services"
	"airbnb-prep/storage"
	"airbnb-prep/utils"
)

var (
	inputPaths   []string
	outputPath   string
	source       string
	table        string
	numAmenities int
	dateSource   string
	amenityMatch string
	verbose      bool
	printReport  bool
)

var rootCmd = &cobra.Command{
	Use:   "airbnb-prep",
	Short: "Clean raw Airbnb listings into a model-ready table",
	Long: `airbnb-prep loads raw Inside Airbnb listing exports, filters inactive hosts
and unusable rows, cleans and imputes the numeric columns, expands the most
common amenities into indicator columns and writes the result as CSV.

Defaults come from the environment (or a .env file); flags override them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		applyFlags(cmd, cfg)
		return run(cmd.Context(), cfg)
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringSliceVarP(&inputPaths, "input", "i", nil, "raw listings CSV file (repeatable)")
	f.StringVarP(&outputPath, "output", "o", "", "path of the cleaned CSV")
	f.StringVar(&source, "source", "", "where raw listings come from: csv or postgres")
	f.StringVar(&table, "table", "", "PostgreSQL table holding raw listings")
	f.IntVarP(&numAmenities, "amenities", "n", 0, "number of amenity indicator columns")
	f.StringVar(&dateSource, "date-source", "", "host_since date source: own or last_review")
	f.StringVar(&amenityMatch, "amenity-match", "", "amenity matching: substring or exact")
	f.BoolVarP(&verbose, "verbose", "v", false, "log every pipeline step")
	f.BoolVar(&printReport, "report", true, "print a summary of the cleaned dataset")
}

// applyFlags copies explicitly set flags over the environment configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("input") {
		cfg.InputPaths = inputPaths
	}
	if f.Changed("output") {
		cfg.OutputPath = outputPath
	}
	if f.Changed("source") {
		cfg.Source = source
	}
	if f.Changed("table") {
		cfg.PostgresTable = table
	}
	if f.Changed("amenities") {
		cfg.Pipeline.NumAmenities = numAmenities
	}
	if f.Changed("date-source") {
		cfg.Pipeline.DateSource = config.DateSource(dateSource)
	}
	if f.Changed("amenity-match") {
		cfg.Pipeline.AmenityMatch = config.AmenityMatch(amenityMatch)
	}
	if f.Changed("verbose") {
		cfg.Pipeline.Verbose = verbose
	}
	if f.Changed("report") {
		cfg.PrintReport = printReport
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := utils.NewLogger()
	logger.SetVerbose(cfg.Pipeline.Verbose)

	logger.Info("=== Airbnb listings preprocessing starting ===")
	logger.Info("Config: source=%s | inputs=%d | amenities=%d | date source=%s | match=%s",
		cfg.Source, len(cfg.InputPaths), cfg.Pipeline.NumAmenities, cfg.Pipeline.DateSource, cfg.Pipeline.AmenityMatch)

	if err := cfg.Pipeline.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	loaders, closeLoaders, err := buildLoaders(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLoaders()

	raw, err := storage.LoadAll(ctx, loaders, cfg.MaxConcurrency, logger)
	if err != nil {
		return fmt.Errorf("load raw listings: %w", err)
	}
	logger.Info("Loaded %d raw listings with %d columns", raw.Len(), raw.Width())

	clean, err := services.NewPreprocessor(cfg.Pipeline, logger).Preprocess(raw)
	if err != nil {
		return fmt.Errorf("preprocess: %w", err)
	}

	expanded, err := services.NewAmenityExpander(cfg.Pipeline, logger).Expand(clean)
	if err != nil {
		return fmt.Errorf("expand amenities: %w", err)
	}

	writer, err := storage.NewCSVWriter(cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := writer.Write(expanded); err != nil {
		writer.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	logger.Info("Cleaned dataset: %d listings × %d columns → %s", expanded.Len(), expanded.Width(), cfg.OutputPath)

	if cfg.PrintReport {
		insights := services.NewInsightService(logger)
		insights.Print(os.Stdout, insights.Generate(expanded))
	}
	return nil
}

// buildLoaders returns one loader per CSV input, or a single PostgreSQL
// loader, plus a func releasing whatever they hold open.
func buildLoaders(ctx context.Context, cfg *config.Config, logger *utils.Logger) ([]storage.TableLoader, func(), error) {
	switch cfg.Source {
	case config.SourceCSV:
		if len(cfg.InputPaths) == 0 {
			return nil, nil, fmt.Errorf("no input files given")
		}
		loaders := make([]storage.TableLoader, 0, len(cfg.InputPaths))
		for _, p := range cfg.InputPaths {
			loaders = append(loaders, storage.NewCSVLoader(p))
		}
		return loaders, func() {}, nil

	case config.SourcePostgres:
		retry := &utils.RetryConfig{MaxAttempts: cfg.MaxRetries, BaseDelay: 2 * time.Second, Logger: logger}
		pl, err := storage.NewPostgresLoader(ctx, cfg.DSN(), cfg.PostgresTable, retry)
		if err != nil {
			logger.Error("Make sure PostgreSQL is reachable: docker compose up -d")
			return nil, nil, err
		}
		return []storage.TableLoader{pl}, func() { pl.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown source %q (want %s or %s)", cfg.Source, config.SourceCSV, config.SourcePostgres)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		utils.NewLogger().Error("%v", err)
		os.Exit(1)
	}
}
