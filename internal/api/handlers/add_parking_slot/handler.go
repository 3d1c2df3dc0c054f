package add_parking_slot

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/service/slots"
)

const (
	msgSlotAdded          = "Slot added"
	msgInvalidRequestBody = "invalid request body"
	msgMissingFields      = "slot_id and location are required"
	msgSlotExists         = "slot already exists in this location"
)

type Handler struct {
	service SlotService
	logger  Logger
}

func NewHandler(service SlotService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /parking/add
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req AddSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /parking/add - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.AddSlot(r.Context(), req.ToServiceRequest())
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrInvalidInput):
			h.logger.Warn("POST /parking/add - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgMissingFields)

		case errors.Is(err, slots.ErrSlotAlreadyExists):
			h.logger.Warn("POST /parking/add - Slot already exists: slot_id=%s, location=%s", req.SlotID, req.Location)
			handlers.RespondConflict(w, msgSlotExists)

		default:
			h.logger.Error("POST /parking/add - Failed to add slot: slot_id=%s, location=%s, error=%v",
				req.SlotID, req.Location, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /parking/add - Slot added: id=%d, slot_id=%s, location=%s",
		result.ID, result.SlotID, result.Location)
	handlers.RespondJSON(w, http.StatusOK, MessageResponse{Message: msgSlotAdded})
}
