package get_parking_areas

import (
	"context"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// SlotRepository интерфейс реестра парковочных мест
type SlotRepository interface {
	GetLocationStats(ctx context.Context) ([]domain.LocationStats, error)
}

// AvailabilityCache интерфейс кэша доступности
type AvailabilityCache interface {
	GetAreas(ctx context.Context) ([]domain.LocationAvailability, bool, error)
	SetAreas(ctx context.Context, areas []domain.LocationAvailability) error
}

// Metrics метрики обращений к кэшу
type Metrics interface {
	ObserveCache(outcome string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
