package get_occupied_slots

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// UseCase вычисляет активную занятость мест локации на дату
// Флаг occupied реестра здесь не учитывается: бронирование перестаёт занимать
// место по истечении окна без какого-либо действия
type UseCase struct {
	reservationRepo ReservationRepository
	window          time.Duration
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(reservationRepo ReservationRepository, window time.Duration, logger Logger) *UseCase {
	if window <= 0 {
		window = domain.DefaultActiveWindow
	}
	return &UseCase{
		reservationRepo: reservationRepo,
		window:          window,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute возвращает места с активными бронированиями
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetOccupiedSlots: location=%s, date=%s", req.Location, req.Date)

	location, date, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("GetOccupiedSlots: validation failed: %v", err)
		return nil, err
	}

	since := domain.ActiveSince(uc.timeProvider.Now(), uc.window)

	slotIDs, err := uc.reservationRepo.ListActiveByLocationDate(ctx, location, date, since)
	if err != nil {
		uc.logger.Error("GetOccupiedSlots: failed to list active reservations: %v", err)
		return nil, fmt.Errorf("%w: failed to list active reservations: %w", ErrInternal, err)
	}

	uc.logger.Info("GetOccupiedSlots: %d occupied slots in location=%s on %s",
		len(slotIDs), location, date.Format(domain.DateFormat))

	return &Response{
		Slots: map[string][]string{location: slotIDs},
	}, nil
}
