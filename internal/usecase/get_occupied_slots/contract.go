package get_occupied_slots

import (
	"context"
	"time"
)

// ReservationRepository интерфейс журнала бронирований
type ReservationRepository interface {
	// ListActiveByLocationDate возвращает slot_id бронирований с booked_at >= since
	ListActiveByLocationDate(ctx context.Context, location string, date time.Time, since time.Time) ([]string, error)
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
