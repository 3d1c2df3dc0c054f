package get_occupied_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	getOccupiedSlots "github.com/m04kA/SMC-ParkingService/internal/usecase/get_occupied_slots"
)

const (
	msgInvalidRequestBody = "invalid request body"
	msgInvalidInput       = "location and date (YYYY-MM-DD) are required"
)

type Handler struct {
	useCase GetOccupiedSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetOccupiedSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /occupied_slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req OccupiedSlotsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /occupied_slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getOccupiedSlots.Request{
		Location: req.Location,
		Date:     req.Date,
	})
	if err != nil {
		if errors.Is(err, getOccupiedSlots.ErrInvalidInput) {
			h.logger.Warn("POST /occupied_slots - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)
			return
		}
		h.logger.Error("POST /occupied_slots - Failed to get occupied slots: location=%s, error=%v", req.Location, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /occupied_slots - Occupied slots retrieved: location=%s, date=%s", req.Location, req.Date)
	handlers.RespondJSON(w, http.StatusOK, SlotsResponse{Slots: result.Slots})
}
