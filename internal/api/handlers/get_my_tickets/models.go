package get_my_tickets

import (
	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/service/reservations/models"
)

// TicketResponse HTTP response model
type TicketResponse struct {
	Location      string `json:"location"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Slot          string `json:"slot"`
	PaymentStatus string `json:"payment_status"`
	BookedOn      string `json:"booked_on"`
}

// FromServiceResponse конвертирует список билетов сервиса в HTTP ответ
func FromServiceResponse(list *models.TicketList) []TicketResponse {
	tickets := make([]TicketResponse, 0, len(list.Tickets))
	for _, t := range list.Tickets {
		tickets = append(tickets, TicketResponse{
			Location:      t.Location,
			Date:          t.ReservationDate.Format(domain.DateFormat),
			Time:          t.TimeLabel,
			Slot:          t.SlotID,
			PaymentStatus: t.PaymentStatus,
			BookedOn:      t.BookedAt.Format(domain.BookedAtFormat),
		})
	}
	return tickets
}
