package get_parking_slots

import (
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
)

// SlotsResponse HTTP response model: location -> свободные slot ids
type SlotsResponse struct {
	Slots map[string][]string `json:"slots"`
}

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

// Handle GET /parking_slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListAvailable(r.Context())
	if err != nil {
		h.logger.Error("GET /parking_slots - Failed to list available slots: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /parking_slots - Available slots retrieved: locations=%d", len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, SlotsResponse{Slots: result.Slots})
}
