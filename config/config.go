package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Source kinds accepted by Config.Source.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Source     string
	InputPaths []string
	OutputPath string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	PostgresTable    string

	MaxConcurrency int
	MaxRetries     int

	PrintReport bool

	Pipeline PipelineConfig
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	p := DefaultPipelineConfig()
	p.DateSource = DateSource(getEnv("DATE_SOURCE", string(p.DateSource)))
	p.AmenityMatch = AmenityMatch(getEnv("AMENITY_MATCH", string(p.AmenityMatch)))
	p.NumAmenities = getEnvInt("NUM_AMENITIES", p.NumAmenities)
	p.InactivityThreshold = getEnvFloat("INACTIVITY_THRESHOLD", p.InactivityThreshold)
	p.CutoffDate = getEnvDate("CUTOFF_DATE", p.CutoffDate)
	p.Verbose = getEnvBool("VERBOSE", p.Verbose)
	for i, w := range p.Winsorize {
		if w.Column == "bedrooms" {
			p.Winsorize[i].Quantile = getEnvFloat("WIN_BEDROOMS", w.Quantile)
		} else {
			p.Winsorize[i].Quantile = getEnvFloat("WIN_NIGHTS", w.Quantile)
		}
	}

	return &Config{
		Source:     getEnv("SOURCE", SourceCSV),
		InputPaths: splitList(getEnv("INPUT_PATHS", "./data/listings.csv")),
		OutputPath: getEnv("OUTPUT_PATH", "./output/listings_clean.csv"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "rental_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTable:    getEnv("POSTGRES_TABLE", "raw_listings"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),

		PrintReport: getEnvBool("PRINT_REPORT", true),

		Pipeline: p,
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDate(key string, fallback time.Time) time.Time {
	if val := os.Getenv(key); val != "" {
		t, err := time.Parse("2006-01-02", val)
		if err == nil {
			return t
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
