package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"airbnb-prep/models"
	"airbnb-prep/utils"
)

var _ TableLoader = (*PostgresLoader)(nil)

// PostgresLoader reads a raw listings export that was bulk-loaded into a
// PostgreSQL table. It only ever issues SELECT statements.
type PostgresLoader struct {
	db    *sql.DB
	table string
}

// NewPostgresLoader opens a connection to PostgreSQL, waits for it to answer
// a ping, and returns a loader for the given table ("name" or "schema.name").
func NewPostgresLoader(ctx context.Context, dsn, table string, retry *utils.RetryConfig) (*PostgresLoader, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do(ctx, "postgres-ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return &PostgresLoader{db: db, table: table}, nil
}

// Load selects every row of the table. Values are converted to text; NULL
// becomes a missing cell and booleans become "t"/"f" as in the CSV exports.
func (pl *PostgresLoader) Load(ctx context.Context) (*models.Table, error) {
	rows, err := pl.db.QueryContext(ctx, selectAllQuery(pl.table))
	if err != nil {
		return nil, fmt.Errorf("postgres: select %s: %w", pl.table, err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("postgres: column types: %w", err)
	}

	n := len(types)
	values := make([][]string, n)
	valid := make([][]bool, n)
	dest := make([]sql.NullString, n)
	ptrs := make([]any, n)
	for i := range dest {
		ptrs[i] = &dest[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		for i, ns := range dest {
			v := ns.String
			if ns.Valid && types[i].DatabaseTypeName() == "BOOL" {
				v = boolFlag(v)
			}
			values[i] = append(values[i], v)
			valid[i] = append(valid[i], ns.Valid)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows: %w", err)
	}

	cols := make([]*models.Column, n)
	for i, ct := range types {
		if values[i] == nil {
			values[i], valid[i] = []string{}, []bool{}
		}
		cols[i] = models.NewStringColumn(ct.Name(), values[i], valid[i])
	}
	return models.NewTable(cols...)
}

// Close closes the database handle.
func (pl *PostgresLoader) Close() error {
	return pl.db.Close()
}

func selectAllQuery(table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return "SELECT * FROM " + strings.Join(parts, ".")
}

func boolFlag(v string) string {
	switch v {
	case "true":
		return "t"
	case "false":
		return "f"
	}
	return v
}
