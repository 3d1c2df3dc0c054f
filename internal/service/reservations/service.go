package reservations

import (
	"context"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-ParkingService/internal/service/reservations/models"
)

// Service сервис чтения журнала бронирований
type Service struct {
	reservationRepo ReservationRepository
	logger          Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(reservationRepo ReservationRepository, logger Logger) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		logger:          logger,
	}
}

// ListByUser возвращает бронирования пользователя, новые первыми
// Пустой список не является ошибкой
func (s *Service) ListByUser(ctx context.Context, userIdentity string) (*models.TicketList, error) {
	userIdentity = strings.TrimSpace(userIdentity)
	s.logger.Info("ListByUser: fetching tickets for user=%s", userIdentity)

	if userIdentity == "" {
		s.logger.Warn("ListByUser: empty user identity")
		return nil, fmt.Errorf("%w: user identity is required", ErrInvalidInput)
	}

	list, err := s.reservationRepo.ListByUser(ctx, userIdentity)
	if err != nil {
		s.logger.Error("ListByUser: repository error for user=%s: %v", userIdentity, err)
		return nil, fmt.Errorf("%w: ListByUser - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("ListByUser: successfully fetched %d tickets for user=%s", len(list), userIdentity)
	return models.FromDomainReservationList(list), nil
}
