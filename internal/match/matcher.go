package match

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"bloomkart/internal/geo"
	"bloomkart/internal/model"
)

// Matcher selects the best florist for a delivery by geodistance.
type Matcher struct {
	directory Directory
	config    Config
	logger    zerolog.Logger
}

// NewMatcher creates a new florist matcher.
func NewMatcher(directory Directory, config Config, logger zerolog.Logger) *Matcher {
	return &Matcher{
		directory: directory,
		config:    config,
		logger:    logger.With().Str("component", "florist-matcher").Logger(),
	}
}

// candidate pairs a florist with its computed distance to the buyer.
type candidate struct {
	florist  model.Florist
	distance float64
}

// MatchNearest resolves the single best florist for the given buyer
// position. A nil customer coordinate falls back to rating-based ordering.
// "No florist can serve this order" is a normal outcome surfaced as
// model.ErrNoFloristAvailable, never a panic.
func (m *Matcher) MatchNearest(ctx context.Context, customer *geo.Coordinate, addressText, countryHint string) (*Result, error) {
	florists, err := m.directory.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list florists: %w", err)
	}

	if len(florists) == 0 {
		m.logger.Warn().Str("address", addressText).Msg("no available florists in directory")
		return nil, model.ErrNoFloristAvailable
	}

	if customer == nil || !customer.Valid() {
		return m.matchWithoutDistance(florists, addressText)
	}

	var inRadius, nearestAny []candidate
	for _, f := range florists {
		if !f.Available || f.Coordinate == nil {
			continue
		}
		d := geo.DistanceKm(*customer, *f.Coordinate)
		c := candidate{florist: f, distance: d}
		nearestAny = append(nearestAny, c)
		if f.ServiceRadiusKm == nil || d <= *f.ServiceRadiusKm {
			inRadius = append(inRadius, c)
		}
	}

	if len(nearestAny) == 0 {
		m.logger.Warn().Str("address", addressText).Msg("no florist has a usable coordinate")
		return nil, model.ErrNoFloristAvailable
	}

	if len(inRadius) > 0 {
		best := pickBest(inRadius)
		m.logger.Debug().
			Str("florist_id", best.florist.ID).
			Float64("distance_km", best.distance).
			Msg("matched in-radius florist")
		return resultFrom(best, false), nil
	}

	if !m.config.NearestAnyFallback {
		m.logger.Info().
			Str("address", addressText).
			Str("country_hint", countryHint).
			Msg("buyer outside every service radius and fallback disabled")
		return nil, model.ErrNoFloristAvailable
	}

	best := pickBest(nearestAny)
	m.logger.Info().
		Str("florist_id", best.florist.ID).
		Float64("distance_km", best.distance).
		Msg("no in-radius florist, degraded to nearest-any")
	return resultFrom(best, true), nil
}

// matchWithoutDistance orders candidates by rating when no buyer coordinate
// is known. Florists with a declared service radius are skipped first since
// the radius cannot be verified; they are reconsidered only under the
// nearest-any fallback policy.
func (m *Matcher) matchWithoutDistance(florists []model.Florist, addressText string) (*Result, error) {
	available := make([]model.Florist, 0, len(florists))
	unrestricted := make([]model.Florist, 0, len(florists))
	for _, f := range florists {
		if !f.Available {
			continue
		}
		available = append(available, f)
		if f.ServiceRadiusKm == nil {
			unrestricted = append(unrestricted, f)
		}
	}

	pool := unrestricted
	radiusExceeded := false
	if len(pool) == 0 {
		if !m.config.NearestAnyFallback || len(available) == 0 {
			m.logger.Info().Str("address", addressText).Msg("no coordinate and every florist declares a radius")
			return nil, model.ErrNoFloristAvailable
		}
		pool = available
		radiusExceeded = true
	}

	sort.Slice(pool, func(i, j int) bool {
		if pool[i].Rating != pool[j].Rating {
			return pool[i].Rating > pool[j].Rating
		}
		return pool[i].ID < pool[j].ID
	})

	best := pool[0]
	m.logger.Debug().
		Str("florist_id", best.ID).
		Float64("rating", best.Rating).
		Msg("matched by rating without buyer coordinate")

	return &Result{
		FloristID:      best.ID,
		FloristName:    best.BusinessName,
		Matched:        false,
		RadiusExceeded: radiusExceeded,
	}, nil
}

// pickBest applies the tie-break order: smallest distance, then highest
// rating, then lowest id.
func pickBest(candidates []candidate) candidate {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		if candidates[i].florist.Rating != candidates[j].florist.Rating {
			return candidates[i].florist.Rating > candidates[j].florist.Rating
		}
		return candidates[i].florist.ID < candidates[j].florist.ID
	})
	return candidates[0]
}

func resultFrom(c candidate, radiusExceeded bool) *Result {
	return &Result{
		FloristID:      c.florist.ID,
		FloristName:    c.florist.BusinessName,
		DistanceKm:     geo.RoundKm(c.distance),
		Matched:        true,
		RadiusExceeded: radiusExceeded,
	}
}
