package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"bloomkart/internal/model"
	"bloomkart/internal/repository"
)

// FloristService defines read operations over the florist directory.
type FloristService interface {
	// GetAvailable retrieves all florists currently accepting orders.
	GetAvailable(ctx context.Context) ([]model.Florist, error)

	// GetByID retrieves a single florist by ID.
	GetByID(ctx context.Context, id string) (*model.Florist, error)
}

// floristService implements FloristService.
type floristService struct {
	floristRepo repository.FloristRepository
	logger      zerolog.Logger
}

// NewFloristService creates a new florist service.
func NewFloristService(floristRepo repository.FloristRepository, logger zerolog.Logger) FloristService {
	return &floristService{
		floristRepo: floristRepo,
		logger:      logger.With().Str("service", "florist").Logger(),
	}
}

// GetAvailable retrieves all florists currently accepting orders.
func (s *floristService) GetAvailable(ctx context.Context) ([]model.Florist, error) {
	florists, err := s.floristRepo.ListAvailable(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list available florists")
		return nil, fmt.Errorf("failed to list florists: %w", err)
	}

	s.logger.Debug().Int("count", len(florists)).Msg("retrieved available florists")

	return florists, nil
}

// GetByID retrieves a single florist by ID.
func (s *floristService) GetByID(ctx context.Context, id string) (*model.Florist, error) {
	if id == "" {
		s.logger.Warn().Msg("florist ID is empty")
		return nil, model.ErrFloristNotFound
	}

	florist, err := s.floristRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("florist_id", id).Msg("failed to get florist by ID")
		return nil, fmt.Errorf("failed to get florist: %w", err)
	}

	if florist == nil {
		s.logger.Debug().Str("florist_id", id).Msg("florist not found")
		return nil, model.ErrFloristNotFound
	}

	return florist, nil
}
