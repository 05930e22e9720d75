package catalog

import (
	"context"
	"fmt"
	"sync"

	"bistro/internal/model"

	"github.com/rs/zerolog"
)

// Importer loads catalog files concurrently and writes the merged result to a Store.
type Importer struct {
	loader Loader
	store  Store
	logger zerolog.Logger
}

// NewImporter creates a catalog importer.
func NewImporter(loader Loader, store Store, logger zerolog.Logger) *Importer {
	return &Importer{
		loader: loader,
		store:  store,
		logger: logger.With().Str("component", "catalog-importer").Logger(),
	}
}

// Import loads every file and upserts the merged items. When an id appears in
// more than one file the row from the later file wins. It returns the number
// of distinct items written.
func (i *Importer) Import(ctx context.Context, files []string) (int, error) {
	if len(files) == 0 {
		return 0, nil
	}

	type loadResult struct {
		index int
		items []model.MenuItem
		err   error
	}

	resultChan := make(chan loadResult, len(files))
	var wg sync.WaitGroup

	for idx, path := range files {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			items, err := i.loader.Load(ctx, path)
			resultChan <- loadResult{index: index, items: items, err: err}
		}(idx, path)
	}

	wg.Wait()
	close(resultChan)

	results := make([]loadResult, len(files))
	for result := range resultChan {
		results[result.index] = result
	}

	for idx, result := range results {
		if result.err != nil {
			i.logger.Error().
				Err(result.err).
				Str("file", files[idx]).
				Msg("failed to load catalog file")
			return 0, fmt.Errorf("failed to load catalog file %s: %w", files[idx], result.err)
		}
	}

	merged := Merge(results[0].items)
	for _, result := range results[1:] {
		merged = Merge(merged, result.items...)
	}

	if err := i.store.Upsert(ctx, merged); err != nil {
		return 0, fmt.Errorf("failed to store catalog: %w", err)
	}

	i.logger.Info().
		Int("file_count", len(files)).
		Int("item_count", len(merged)).
		Msg("menu catalog imported")

	return len(merged), nil
}

// Merge appends overrides to base, replacing any base item with the same id in
// place. First-seen order is kept.
func Merge(base []model.MenuItem, overrides ...model.MenuItem) []model.MenuItem {
	out := make([]model.MenuItem, 0, len(base)+len(overrides))
	pos := make(map[string]int, len(base)+len(overrides))

	for _, item := range append(base[:len(base):len(base)], overrides...) {
		if p, ok := pos[item.ID]; ok {
			out[p] = item
			continue
		}
		pos[item.ID] = len(out)
		out = append(out, item)
	}

	return out
}
