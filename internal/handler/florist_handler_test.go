package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bloomkart/internal/model"
)

// MockFloristService is a mock implementation of FloristService.
type MockFloristService struct {
	mock.Mock
}

func (m *MockFloristService) GetAvailable(ctx context.Context) ([]model.Florist, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Florist), args.Error(1)
}

func (m *MockFloristService) GetByID(ctx context.Context, id string) (*model.Florist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Florist), args.Error(1)
}

func TestFloristHandler_GetAvailable(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("Success", func(t *testing.T) {
		svc := new(MockFloristService)
		svc.On("GetAvailable", mock.Anything).Return([]model.Florist{
			{ID: "fl-1", BusinessName: "Blomma", Available: true},
		}, nil)

		h := NewFloristHandler(svc, logger)
		rec := httptest.NewRecorder()
		h.GetAvailable(rec, httptest.NewRequest(http.MethodGet, "/api/florists", nil))

		assert.Equal(t, http.StatusOK, rec.Code)

		var florists []model.Florist
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&florists))
		require.Len(t, florists, 1)
		assert.Equal(t, "fl-1", florists[0].ID)
	})

	t.Run("Service error", func(t *testing.T) {
		svc := new(MockFloristService)
		svc.On("GetAvailable", mock.Anything).Return(nil, errors.New("connection refused"))

		h := NewFloristHandler(svc, logger)
		rec := httptest.NewRecorder()
		h.GetAvailable(rec, httptest.NewRequest(http.MethodGet, "/api/florists", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("Method not allowed", func(t *testing.T) {
		svc := new(MockFloristService)
		h := NewFloristHandler(svc, logger)
		rec := httptest.NewRecorder()
		h.GetAvailable(rec, httptest.NewRequest(http.MethodPost, "/api/florists", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestFloristHandler_GetByID(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("Success", func(t *testing.T) {
		svc := new(MockFloristService)
		svc.On("GetByID", mock.Anything, "fl-1").Return(&model.Florist{ID: "fl-1", BusinessName: "Blomma"}, nil)

		h := NewFloristHandler(svc, logger)
		rec := httptest.NewRecorder()
		h.GetByID(rec, httptest.NewRequest(http.MethodGet, "/api/florists/fl-1", nil))

		assert.Equal(t, http.StatusOK, rec.Code)

		var florist model.Florist
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&florist))
		assert.Equal(t, "Blomma", florist.BusinessName)
	})

	t.Run("Not found", func(t *testing.T) {
		svc := new(MockFloristService)
		svc.On("GetByID", mock.Anything, "fl-404").Return(nil, model.ErrFloristNotFound)

		h := NewFloristHandler(svc, logger)
		rec := httptest.NewRecorder()
		h.GetByID(rec, httptest.NewRequest(http.MethodGet, "/api/florists/fl-404", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)

		var errResp model.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
		assert.Equal(t, model.ErrCodeFloristNotFound, errResp.Error)
	})

	t.Run("Missing ID", func(t *testing.T) {
		svc := new(MockFloristService)
		h := NewFloristHandler(svc, logger)
		rec := httptest.NewRecorder()
		h.GetByID(rec, httptest.NewRequest(http.MethodGet, "/api/florists/", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}
