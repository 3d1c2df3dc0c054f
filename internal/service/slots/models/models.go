package models

import (
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// AddSlotRequest запрос на добавление места в реестр
type AddSlotRequest struct {
	SlotID   string
	Location string
}

// SlotResponse добавленное место
type SlotResponse struct {
	ID        int64
	SlotID    string
	Location  string
	Occupied  bool
	CreatedAt time.Time
}

// SlotsByLocation свободные места, сгруппированные по локации
type SlotsByLocation struct {
	Slots map[string][]string
}

// FromDomainSlot конвертирует domain модель в ответ сервиса
func FromDomainSlot(s *domain.Slot) *SlotResponse {
	return &SlotResponse{
		ID:        s.ID,
		SlotID:    s.SlotID,
		Location:  s.Location,
		Occupied:  s.Occupied,
		CreatedAt: s.CreatedAt,
	}
}

// FromDomainSlots группирует места по локации, сохраняя порядок добавления
func FromDomainSlots(slots []*domain.Slot) *SlotsByLocation {
	return &SlotsByLocation{Slots: domain.GroupSlotIDsByLocation(slots)}
}
