package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bistro/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestReservation(status model.ReservationStatus) *model.Reservation {
	name := "Ada Lovelace"
	return &model.Reservation{
		ID:                  uuid.New(),
		GuestName:           &name,
		ReservationDateTime: time.Date(2026, 7, 1, 19, 30, 0, 0, time.UTC),
		PartySize:           4,
		Status:              status,
	}
}

func TestReservationHandler_Create(t *testing.T) {
	res := newTestReservation(model.ReservationStatusPending)

	tests := []struct {
		name           string
		body           string
		mockError      error
		expectService  bool
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Success",
			body:           `{"guestName":"Ada Lovelace","reservationDateTime":"2026-07-01T19:30:00Z","partySize":4}`,
			expectService:  true,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Missing date",
			body:           `{"guestName":"Ada Lovelace","partySize":4}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeMissingField,
		},
		{
			name:           "Malformed date",
			body:           `{"guestName":"Ada Lovelace","reservationDateTime":"next tuesday","partySize":4}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
		{
			name:           "Party too large",
			body:           `{"guestName":"Ada Lovelace","reservationDateTime":"2026-07-01T19:30:00Z","partySize":40}`,
			mockError:      model.ErrPartySize,
			expectService:  true,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodePartySize,
		},
		{
			name:           "In the past",
			body:           `{"customerId":"cust-1","reservationDateTime":"2020-01-01T19:30:00Z","partySize":2}`,
			mockError:      model.ErrPastDate,
			expectService:  true,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodePastDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReservationService)
			if tt.expectService {
				var ret *model.Reservation
				if tt.mockError == nil {
					ret = res
				}
				svc.On("CreateReservation", mock.Anything, mock.AnythingOfType("*model.ReservationRequest")).Return(ret, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/reservations", strings.NewReader(tt.body))
			w := serve(NewReservationHandler(svc, zerolog.Nop()), req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Error)
			}
			if tt.expectedStatus == http.StatusCreated {
				assert.Equal(t, "/api/reservations/"+res.ID.String(), w.Header().Get("Location"))
				var got model.Reservation
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, 4, got.PartySize)
				assert.Equal(t, "Ada Lovelace", *got.GuestName)
			}
			if !tt.expectService {
				svc.AssertNotCalled(t, "CreateReservation", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestReservationHandler_List(t *testing.T) {
	svc := new(MockReservationService)
	to := time.Date(2026, 7, 31, 23, 59, 0, 0, time.UTC)
	svc.On("List", mock.Anything, model.ReservationFilter{
		CustomerID: "cust-1",
		Status:     model.ReservationStatusConfirmed,
		To:         &to,
		Limit:      10,
	}).Return([]model.Reservation{*newTestReservation(model.ReservationStatusConfirmed)}, nil)

	url := "/api/reservations?customerId=cust-1&status=confirmed&to=2026-07-31T23:59:00Z"
	w := serve(NewReservationHandler(svc, zerolog.Nop()), httptest.NewRequest(http.MethodGet, url, nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got []model.Reservation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 1)
	svc.AssertExpectations(t)
}

func TestReservationHandler_GetByID(t *testing.T) {
	res := newTestReservation(model.ReservationStatusPending)

	t.Run("Found", func(t *testing.T) {
		svc := new(MockReservationService)
		svc.On("GetByID", mock.Anything, res.ID).Return(res, nil)

		w := serve(NewReservationHandler(svc, zerolog.Nop()), httptest.NewRequest(http.MethodGet, "/api/reservations/"+res.ID.String(), nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Not found", func(t *testing.T) {
		svc := new(MockReservationService)
		svc.On("GetByID", mock.Anything, res.ID).Return(nil, model.ErrReservationNotFound)

		w := serve(NewReservationHandler(svc, zerolog.Nop()), httptest.NewRequest(http.MethodGet, "/api/reservations/"+res.ID.String(), nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, model.ErrCodeReservationNotFound, decodeError(t, w).Error)
	})

	t.Run("Invalid UUID", func(t *testing.T) {
		svc := new(MockReservationService)

		w := serve(NewReservationHandler(svc, zerolog.Nop()), httptest.NewRequest(http.MethodGet, "/api/reservations/42", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, model.ErrCodeInvalidID, decodeError(t, w).Error)
	})
}

func TestReservationHandler_UpdateStatus(t *testing.T) {
	res := newTestReservation(model.ReservationStatusConfirmed)

	tests := []struct {
		name           string
		body           string
		target         string
		mockError      error
		expectedStatus int
	}{
		{name: "Complete", body: `{"status":"completed","changedBy":"host"}`, target: "completed", expectedStatus: http.StatusOK},
		{name: "No show", body: `{"status":"no_show","changedBy":"host"}`, target: "no_show", expectedStatus: http.StatusOK},
		{name: "Back to pending", body: `{"status":"pending","changedBy":"host"}`, target: "pending", mockError: model.ErrInvalidTransition, expectedStatus: http.StatusConflict},
		{name: "Unknown status", body: `{"status":"seated","changedBy":"host"}`, target: "seated", mockError: model.ErrInvalidStatus, expectedStatus: http.StatusBadRequest},
		{name: "Missing status", body: `{}`, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReservationService)
			if tt.target != "" {
				var ret *model.Reservation
				if tt.mockError == nil {
					updated := *res
					updated.Status = model.ReservationStatus(tt.target)
					ret = &updated
				}
				svc.On("Transition", mock.Anything, res.ID, tt.target, "host").Return(ret, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/reservations/"+res.ID.String()+"/status", strings.NewReader(tt.body))
			w := serve(NewReservationHandler(svc, zerolog.Nop()), req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.target == "" {
				svc.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestReservationHandler_Cancel(t *testing.T) {
	res := newTestReservation(model.ReservationStatusConfirmed)

	t.Run("Inside window", func(t *testing.T) {
		svc := new(MockReservationService)
		svc.On("Cancel", mock.Anything, res.ID, "guest").Return(nil, model.ErrCancellationWindowClosed)

		req := httptest.NewRequest(http.MethodPost, "/api/reservations/"+res.ID.String()+"/cancel", strings.NewReader(`{"requestedBy":"guest"}`))
		w := serve(NewReservationHandler(svc, zerolog.Nop()), req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, model.ErrCodeCancellationWindowClosed, decodeError(t, w).Error)
	})

	t.Run("Cancelled", func(t *testing.T) {
		svc := new(MockReservationService)
		cancelled := *res
		cancelled.Status = model.ReservationStatusCancelled
		svc.On("Cancel", mock.Anything, res.ID, "").Return(&cancelled, nil)

		w := serve(NewReservationHandler(svc, zerolog.Nop()), httptest.NewRequest(http.MethodPost, "/api/reservations/"+res.ID.String()+"/cancel", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"cancelled"`)
	})
}

func TestReservationHandler_History(t *testing.T) {
	id := uuid.New()
	svc := new(MockReservationService)
	svc.On("History", mock.Anything, id).Return([]model.StatusChange{{EntityID: id, To: "pending"}}, nil)

	w := serve(NewReservationHandler(svc, zerolog.Nop()), httptest.NewRequest(http.MethodGet, "/api/reservations/"+id.String()+"/history", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
