package book_parking

import bookSlot "github.com/m04kA/SMC-ParkingService/internal/usecase/book_slot"

const (
	statusSuccess = "success"
	statusError   = "error"
)

// BookParkingRequest HTTP request model
type BookParkingRequest struct {
	Email    string `json:"email"`
	Location string `json:"location"`
	Date     string `json:"date"` // "2025-04-20"
	Time     string `json:"time"` // "10:30"
	Slot     string `json:"slot"`
}

// BookParkingResponse HTTP response model
type BookParkingResponse struct {
	Status        string `json:"status"`
	ReservationID int64  `json:"reservation_id,omitempty"`
	Message       string `json:"message,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *BookParkingRequest) ToUseCaseRequest() *bookSlot.Request {
	return &bookSlot.Request{
		UserIdentity: r.Email,
		Location:     r.Location,
		Date:         r.Date,
		TimeLabel:    r.Time,
		SlotID:       r.Slot,
	}
}

func success(resp *bookSlot.Response) *BookParkingResponse {
	return &BookParkingResponse{Status: statusSuccess, ReservationID: resp.ReservationID}
}

func failure(message string) *BookParkingResponse {
	return &BookParkingResponse{Status: statusError, Message: message}
}
