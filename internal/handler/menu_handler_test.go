package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bistro/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMenuHandler_GetAll(t *testing.T) {
	items := []model.MenuItem{
		{ID: "M001", Name: "Margherita", Category: "pizza", Price: decimal.RequireFromString("10.00"), Available: true},
	}

	tests := []struct {
		name           string
		url            string
		setupMock      func(m *MockMenuService)
		expectedStatus int
	}{
		{
			name: "Defaults",
			url:  "/api/menu",
			setupMock: func(m *MockMenuService) {
				m.On("GetAll", mock.Anything, "", 10, 0).Return(items, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Category and paging",
			url:  "/api/menu?category=pizza&limit=5&offset=10",
			setupMock: func(m *MockMenuService) {
				m.On("GetAll", mock.Anything, "pizza", 5, 10).Return(items, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Invalid limit",
			url:            "/api/menu?limit=abc",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid offset",
			url:            "/api/menu?offset=xyz",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Service error",
			url:  "/api/menu",
			setupMock: func(m *MockMenuService) {
				m.On("GetAll", mock.Anything, "", 10, 0).Return(nil, errors.New("database error"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockMenuService)
			if tt.setupMock != nil {
				tt.setupMock(svc)
			}
			h := NewMenuHandler(svc, zerolog.Nop())

			w := serve(h, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var got []model.MenuItem
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				require.Len(t, got, 1)
				assert.True(t, got[0].Price.Equal(decimal.RequireFromString("10")))
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestMenuHandler_GetByID(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		svc := new(MockMenuService)
		svc.On("GetByID", mock.Anything, "M001").Return(&model.MenuItem{ID: "M001", Name: "Margherita"}, nil)

		w := serve(NewMenuHandler(svc, zerolog.Nop()), httptest.NewRequest(http.MethodGet, "/api/menu/M001", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Margherita")
	})

	t.Run("Missing", func(t *testing.T) {
		svc := new(MockMenuService)
		svc.On("GetByID", mock.Anything, "M404").Return(nil, model.ErrMenuItemMissing)

		w := serve(NewMenuHandler(svc, zerolog.Nop()), httptest.NewRequest(http.MethodGet, "/api/menu/M404", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, model.ErrCodeNotFound, decodeError(t, w).Error)
	})

	t.Run("Wrong method", func(t *testing.T) {
		svc := new(MockMenuService)

		w := serve(NewMenuHandler(svc, zerolog.Nop()), httptest.NewRequest(http.MethodPost, "/api/menu/M001", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		svc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}
