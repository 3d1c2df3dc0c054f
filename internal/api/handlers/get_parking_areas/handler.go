package get_parking_areas

import (
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
)

type Handler struct {
	useCase GetParkingAreasUseCase
	logger  Logger
}

func NewHandler(useCase GetParkingAreasUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /parking_areas
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.useCase.Execute(r.Context())
	if err != nil {
		h.logger.Error("GET /parking_areas - Failed to compute availability: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /parking_areas - Availability retrieved: locations=%d", len(result.Areas))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
