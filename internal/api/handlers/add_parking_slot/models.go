package add_parking_slot

import "github.com/m04kA/SMC-ParkingService/internal/service/slots/models"

// AddSlotRequest HTTP request model
type AddSlotRequest struct {
	SlotID   string `json:"slot_id"`
	Location string `json:"location"`
}

// MessageResponse HTTP response model
type MessageResponse struct {
	Message string `json:"message"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *AddSlotRequest) ToServiceRequest() *models.AddSlotRequest {
	return &models.AddSlotRequest{
		SlotID:   r.SlotID,
		Location: r.Location,
	}
}
