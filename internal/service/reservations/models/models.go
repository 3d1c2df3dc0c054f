package models

import (
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// Ticket бронирование пользователя в том виде, в каком его видит клиент
type Ticket struct {
	ID              int64
	Location        string
	ReservationDate time.Time
	TimeLabel       string
	SlotID          string
	PaymentStatus   string
	BookedAt        time.Time
}

// TicketList бронирования пользователя, новые первыми
type TicketList struct {
	Tickets []*Ticket
}

// FromDomainReservation конвертирует запись журнала в билет
func FromDomainReservation(r *domain.Reservation) *Ticket {
	return &Ticket{
		ID:              r.ID,
		Location:        r.Location,
		ReservationDate: r.ReservationDate,
		TimeLabel:       r.TimeLabel,
		SlotID:          r.SlotID,
		PaymentStatus:   string(r.PaymentStatus),
		BookedAt:        r.BookedAt,
	}
}

// FromDomainReservationList сохраняет порядок журнала
func FromDomainReservationList(list []*domain.Reservation) *TicketList {
	tickets := make([]*Ticket, 0, len(list))
	for _, r := range list {
		tickets = append(tickets, FromDomainReservation(r))
	}
	return &TicketList{Tickets: tickets}
}
