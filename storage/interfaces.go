package storage

import (
	"context"

	"airbnb-prep/models"
)

// TableLoader is the interface any raw listings source must satisfy.
// Loaders return every column as text; InferKinds assigns column kinds.
type TableLoader interface {
	Load(ctx context.Context) (*models.Table, error)
}

// TableWriter is the interface for persisting a processed table.
type TableWriter interface {
	Write(t *models.Table) error
	Close() error
}
