package book_slot

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/integrations/eventbus"
)

// ReservationRepository интерфейс журнала бронирований
type ReservationRepository interface {
	LockSlot(ctx context.Context, slotID, location string, lockTimeout time.Duration) error
	ListActiveByLocationDate(ctx context.Context, location string, date time.Time, since time.Time) ([]string, error)
	Append(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
}

// SlotRepository интерфейс реестра парковочных мест
type SlotRepository interface {
	MarkOccupied(ctx context.Context, slotID, location string) (int64, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// AvailabilityCache интерфейс кэша доступности
type AvailabilityCache interface {
	Invalidate(ctx context.Context) error
}

// EventPublisher интерфейс публикации событий о бронированиях
type EventPublisher interface {
	PublishSlotBooked(ctx context.Context, event eventbus.SlotBookedEvent) error
}

// Metrics метрики бронирований
type Metrics interface {
	ObserveBooking(result string)
	ObserveRegistryMiss()
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
