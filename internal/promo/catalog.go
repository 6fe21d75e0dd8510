package promo

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"bloomkart/internal/model"
)

// mapCatalog implements Catalog with an in-memory map built at startup.
type mapCatalog struct {
	codes  map[string]model.PromoCode
	logger zerolog.Logger
	// No mutex needed - the map is read-only after initialization
}

// CatalogConfig holds configuration for the promo catalog.
type CatalogConfig struct {
	// FilePaths is the list of promo definition files to load. Later files
	// override earlier ones when a code appears more than once.
	FilePaths []string
}

// DefaultCatalogConfig returns the default catalog configuration.
func DefaultCatalogConfig() *CatalogConfig {
	return &CatalogConfig{
		FilePaths: []string{
			"data/promos/promobase.jsonl.gz",
		},
	}
}

// NewCatalog creates a promo catalog by loading all definition files
// concurrently at initialization time.
func NewCatalog(ctx context.Context, config *CatalogConfig, loader Loader, logger zerolog.Logger) (Catalog, error) {
	if config == nil {
		config = DefaultCatalogConfig()
	}

	logger = logger.With().Str("component", "promo-catalog").Logger()

	logger.Info().
		Int("file_count", len(config.FilePaths)).
		Msg("initialising promo catalog")

	type loadResult struct {
		index int
		codes []model.PromoCode
		err   error
	}

	resultChan := make(chan loadResult, len(config.FilePaths))
	var wg sync.WaitGroup

	for i, path := range config.FilePaths {
		wg.Add(1)
		go func(index int, p string) {
			defer wg.Done()

			codes, err := loader.Load(ctx, p)
			resultChan <- loadResult{
				index: index,
				codes: codes,
				err:   err,
			}
		}(i, path)
	}

	wg.Wait()
	close(resultChan)

	// Collect results in file order so the override rule stays stable.
	results := make([]loadResult, len(config.FilePaths))
	for result := range resultChan {
		results[result.index] = result
	}

	catalog := &mapCatalog{
		codes:  make(map[string]model.PromoCode),
		logger: logger,
	}

	for i, result := range results {
		if result.err != nil {
			logger.Error().
				Err(result.err).
				Str("file", config.FilePaths[i]).
				Msg("failed to load promo file")
			return nil, fmt.Errorf("failed to load promo file %s: %w", config.FilePaths[i], result.err)
		}
		for _, code := range result.codes {
			catalog.codes[Normalize(code.Code)] = code
		}
		logger.Info().
			Str("file", config.FilePaths[i]).
			Int("codes", len(result.codes)).
			Msg("promo file loaded")
	}

	logger.Info().
		Int("total_codes", len(catalog.codes)).
		Msg("promo catalog initialised successfully")

	return catalog, nil
}

// Lookup resolves a promo code by its normalized form.
func (c *mapCatalog) Lookup(ctx context.Context, code string) (*model.PromoCode, error) {
	normalized := Normalize(code)
	if normalized == "" {
		return nil, nil
	}

	promo, exists := c.codes[normalized]
	if !exists {
		c.logger.Debug().Str("promo_code", normalized).Msg("promo code not in catalog")
		return nil, nil
	}

	return &promo, nil
}

// Size returns the number of promo codes in the catalog.
func (c *mapCatalog) Size() int {
	return len(c.codes)
}

// Close releases resources held by the catalog.
func (c *mapCatalog) Close() error {
	// Drop the map to allow GC to reclaim memory
	c.codes = nil

	c.logger.Info().Msg("promo catalog closed")

	return nil
}
