package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bloomkart/internal/model"
)

// MockFloristRepository is a mock implementation of FloristRepository.
type MockFloristRepository struct {
	mock.Mock
}

func (m *MockFloristRepository) ListAvailable(ctx context.Context) ([]model.Florist, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Florist), args.Error(1)
}

func (m *MockFloristRepository) GetByID(ctx context.Context, id string) (*model.Florist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Florist), args.Error(1)
}

func TestFloristService_GetAvailable(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := new(MockFloristRepository)
		repo.On("ListAvailable", mock.Anything).Return([]model.Florist{
			{ID: "fl-1", BusinessName: "Blomma", Available: true},
			{ID: "fl-2", BusinessName: "Petal & Stem", Available: true},
		}, nil)

		svc := NewFloristService(repo, zerolog.Nop())

		florists, err := svc.GetAvailable(context.Background())
		require.NoError(t, err)
		assert.Len(t, florists, 2)

		repo.AssertExpectations(t)
	})

	t.Run("Repository error", func(t *testing.T) {
		repo := new(MockFloristRepository)
		repo.On("ListAvailable", mock.Anything).Return(nil, errors.New("connection refused"))

		svc := NewFloristService(repo, zerolog.Nop())

		florists, err := svc.GetAvailable(context.Background())
		require.Error(t, err)
		assert.Nil(t, florists)
	})
}

func TestFloristService_GetByID(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := new(MockFloristRepository)
		repo.On("GetByID", mock.Anything, "fl-1").Return(&model.Florist{ID: "fl-1", BusinessName: "Blomma"}, nil)

		svc := NewFloristService(repo, zerolog.Nop())

		florist, err := svc.GetByID(context.Background(), "fl-1")
		require.NoError(t, err)
		require.NotNil(t, florist)
		assert.Equal(t, "Blomma", florist.BusinessName)
	})

	t.Run("Empty ID", func(t *testing.T) {
		repo := new(MockFloristRepository)
		svc := NewFloristService(repo, zerolog.Nop())

		florist, err := svc.GetByID(context.Background(), "")
		assert.ErrorIs(t, err, model.ErrFloristNotFound)
		assert.Nil(t, florist)

		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Not found", func(t *testing.T) {
		repo := new(MockFloristRepository)
		repo.On("GetByID", mock.Anything, "fl-404").Return(nil, nil)

		svc := NewFloristService(repo, zerolog.Nop())

		florist, err := svc.GetByID(context.Background(), "fl-404")
		assert.ErrorIs(t, err, model.ErrFloristNotFound)
		assert.Nil(t, florist)
	})

	t.Run("Repository error", func(t *testing.T) {
		repo := new(MockFloristRepository)
		repo.On("GetByID", mock.Anything, "fl-1").Return(nil, errors.New("connection refused"))

		svc := NewFloristService(repo, zerolog.Nop())

		florist, err := svc.GetByID(context.Background(), "fl-1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, model.ErrFloristNotFound)
		assert.Nil(t, florist)
	})
}
