package storage

import (
	"context"
	"fmt"

	"airbnb-prep/models"
	"airbnb-prep/utils"
)

// LoadAll runs every loader on a pool of at most workers goroutines, stacks
// the results in loader order and infers column kinds on the combined table.
// All sources must share the same header set.
func LoadAll(ctx context.Context, loaders []TableLoader, workers int, logger *utils.Logger) (*models.Table, error) {
	if len(loaders) == 0 {
		return nil, fmt.Errorf("storage: no input sources")
	}

	parts := make([]*models.Table, len(loaders))
	pool := utils.NewWorkerPool(workers)
	for i, l := range loaders {
		pool.Submit(func() error {
			t, err := l.Load(ctx)
			if err != nil {
				return err
			}
			logger.Debug("[storage] Source %d loaded: %d rows x %d columns", i+1, t.Len(), t.Width())
			parts[i] = t
			return nil
		})
	}
	if err := pool.Wait(); err != nil {
		return nil, fmt.Errorf("storage: load: %w", err)
	}

	combined, err := models.Concat(parts...)
	if err != nil {
		return nil, fmt.Errorf("storage: combine sources: %w", err)
	}

	t, err := InferKinds(combined)
	if err != nil {
		return nil, fmt.Errorf("storage: infer kinds: %w", err)
	}
	logger.Info("[storage] Loaded %d rows x %d columns from %d source(s)", t.Len(), t.Width(), len(loaders))
	return t, nil
}
