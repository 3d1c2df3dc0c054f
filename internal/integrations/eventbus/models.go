package eventbus

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// EventSlotBooked тип события об успешном бронировании
const EventSlotBooked = "parking.slot.booked"

// SlotBookedEvent событие, публикуемое после коммита бронирования
type SlotBookedEvent struct {
	EventID         string    `json:"event_id"`
	EventType       string    `json:"event_type"`
	OccurredAt      time.Time `json:"occurred_at"`
	ReservationID   int64     `json:"reservation_id"`
	UserIdentity    string    `json:"user_identity"`
	Location        string    `json:"location"`
	ReservationDate string    `json:"reservation_date"`
	TimeLabel       string    `json:"time_label"`
	SlotID          string    `json:"slot_id"`
	PaymentStatus   string    `json:"payment_status"`
}

// NewSlotBookedEvent строит событие из записи журнала
func NewSlotBookedEvent(res *domain.Reservation) SlotBookedEvent {
	return SlotBookedEvent{
		EventID:         uuid.NewString(),
		EventType:       EventSlotBooked,
		OccurredAt:      res.BookedAt.UTC(),
		ReservationID:   res.ID,
		UserIdentity:    res.UserIdentity,
		Location:        res.Location,
		ReservationDate: res.ReservationDate.Format(domain.DateFormat),
		TimeLabel:       res.TimeLabel,
		SlotID:          res.SlotID,
		PaymentStatus:   string(res.PaymentStatus),
	}
}

// PartitionKey ключ партиционирования: события одного места идут по порядку
func (e SlotBookedEvent) PartitionKey() []byte {
	return []byte(e.Location + "/" + e.SlotID)
}
