package book_parking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	bookSlot "github.com/m04kA/SMC-ParkingService/internal/usecase/book_slot"
)

const (
	msgInvalidRequestBody = "invalid request body"
	msgInvalidInput       = "email, location, date (YYYY-MM-DD), time and slot are required"
	msgSlotConflict       = "slot is already booked"
	msgStoreUnavailable   = "service is busy, try again later"
	msgInternalError      = "failed to book slot"
)

type Handler struct {
	useCase BookSlotUseCase
	logger  Logger
}

func NewHandler(useCase BookSlotUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /book_parking
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req BookParkingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /book_parking - Invalid request body: %v", err)
		handlers.RespondJSON(w, http.StatusBadRequest, failure(msgInvalidRequestBody))
		return
	}

	requestID := middleware.RequestIDFromContext(r.Context())

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest())
	if err != nil {
		switch {
		case errors.Is(err, bookSlot.ErrInvalidInput):
			h.logger.Warn("POST /book_parking - Invalid input: %v", err)
			handlers.RespondJSON(w, http.StatusBadRequest, failure(msgInvalidInput))

		case errors.Is(err, bookSlot.ErrSlotConflict):
			h.logger.Warn("POST /book_parking - Slot conflict: slot=%s, location=%s, date=%s",
				req.Slot, req.Location, req.Date)
			handlers.RespondJSON(w, http.StatusConflict, failure(msgSlotConflict))

		case errors.Is(err, bookSlot.ErrStoreUnavailable):
			h.logger.Warn("POST /book_parking - Store unavailable: request_id=%s, error=%v", requestID, err)
			w.Header().Set("Retry-After", "1")
			handlers.RespondJSON(w, http.StatusServiceUnavailable, failure(msgStoreUnavailable))

		default:
			h.logger.Error("POST /book_parking - Failed to book slot: request_id=%s, slot=%s, location=%s, error=%v",
				requestID, req.Slot, req.Location, err)
			handlers.RespondJSON(w, http.StatusInternalServerError, failure(msgInternalError))
		}
		return
	}

	h.logger.Info("POST /book_parking - Slot booked: request_id=%s, reservation_id=%d, slot=%s, location=%s",
		requestID, result.ReservationID, result.SlotID, result.Location)
	handlers.RespondJSON(w, http.StatusOK, success(result))
}
