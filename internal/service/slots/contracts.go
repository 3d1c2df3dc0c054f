package slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// SlotRepository интерфейс реестра парковочных мест
type SlotRepository interface {
	Create(ctx context.Context, slot *domain.Slot) (*domain.Slot, error)
	GetAvailable(ctx context.Context) ([]*domain.Slot, error)
	ListExpiredOccupied(ctx context.Context, since time.Time) ([]domain.SlotKey, error)
	ReleaseIfExpired(ctx context.Context, slotID, location string, since time.Time) (bool, error)
}

// SlotLocker блокировка места, общая с координатором бронирований
type SlotLocker interface {
	LockSlot(ctx context.Context, slotID, location string, lockTimeout time.Duration) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// AvailabilityCache интерфейс кэша доступности
type AvailabilityCache interface {
	Invalidate(ctx context.Context) error
}

// Metrics счётчик мест, освобождённых sweeper'ом
type Metrics interface {
	ObserveSwept(n int64)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
