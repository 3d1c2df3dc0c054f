package add_parking_slot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-ParkingService/internal/service/slots"
	"github.com/m04kA/SMC-ParkingService/internal/service/slots/models"
)

type fakeService struct {
	got *models.AddSlotRequest
	err error
}

func (f *fakeService) AddSlot(_ context.Context, req *models.AddSlotRequest) (*models.SlotResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.SlotResponse{ID: 1, SlotID: req.SlotID, Location: req.Location}, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestHandler_Handle(t *testing.T) {
	svc := &fakeService{}

	w := httptest.NewRecorder()
	NewHandler(svc, nopLogger{}).Handle(w, httptest.NewRequest(http.MethodPost, "/parking/add",
		strings.NewReader(`{"slot_id":"A5","location":"DowntownLot"}`)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Slot added"}`, w.Body.String())
	assert.Equal(t, &models.AddSlotRequest{SlotID: "A5", Location: "DowntownLot"}, svc.got)
}

func TestHandler_Handle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "malformed json",
			body:       `{"slot_id":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"invalid request body"}`,
		},
		{
			name:       "missing fields",
			body:       `{"slot_id":"A5"}`,
			err:        fmt.Errorf("%w: slot_id and location are required", slots.ErrInvalidInput),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"slot_id and location are required"}`,
		},
		{
			name:       "duplicate",
			body:       `{"slot_id":"A5","location":"DowntownLot"}`,
			err:        slots.ErrSlotAlreadyExists,
			wantStatus: http.StatusConflict,
			wantBody:   `{"error":"slot already exists in this location"}`,
		},
		{
			name:       "internal",
			body:       `{"slot_id":"A5","location":"DowntownLot"}`,
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewHandler(&fakeService{err: tt.err}, nopLogger{}).Handle(w,
				httptest.NewRequest(http.MethodPost, "/parking/add", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}
