package slots

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	slotRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-ParkingService/internal/service/slots/models"
)

// Service сервис реестра парковочных мест
type Service struct {
	slotRepo    SlotRepository
	locker      SlotLocker
	txManager   TransactionManager
	cache       AvailabilityCache
	metrics     Metrics
	lockTimeout time.Duration
	logger      Logger
}

// NewService создает новый экземпляр сервиса реестра
// locker и lockTimeout используются только ReleaseExpired
func NewService(
	slotRepo SlotRepository,
	locker SlotLocker,
	txManager TransactionManager,
	cache AvailabilityCache,
	metrics Metrics,
	lockTimeout time.Duration,
	logger Logger,
) *Service {
	if lockTimeout <= 0 {
		lockTimeout = domain.DefaultLockTimeout
	}
	return &Service{
		slotRepo:    slotRepo,
		locker:      locker,
		txManager:   txManager,
		cache:       cache,
		metrics:     metrics,
		lockTimeout: lockTimeout,
		logger:      logger,
	}
}

// AddSlot добавляет место в реестр со сброшенным флагом occupied
func (s *Service) AddSlot(ctx context.Context, req *models.AddSlotRequest) (*models.SlotResponse, error) {
	slotID := strings.TrimSpace(req.SlotID)
	location := strings.TrimSpace(req.Location)

	s.logger.Info("AddSlot: slot=%q, location=%q", slotID, location)

	if slotID == "" || location == "" {
		s.logger.Warn("AddSlot: slot_id and location are required")
		return nil, fmt.Errorf("%w: slot_id and location are required", ErrInvalidInput)
	}
	if len(slotID) > domain.MaxSlotIDLength {
		return nil, fmt.Errorf("%w: slot_id is longer than %d", ErrInvalidInput, domain.MaxSlotIDLength)
	}
	if len(location) > domain.MaxLocationLength {
		return nil, fmt.Errorf("%w: location is longer than %d", ErrInvalidInput, domain.MaxLocationLength)
	}

	created, err := s.slotRepo.Create(ctx, &domain.Slot{SlotID: slotID, Location: location})
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotAlreadyExists) {
			s.logger.Warn("AddSlot: slot=%s already exists in location=%s", slotID, location)
			return nil, ErrSlotAlreadyExists
		}
		s.logger.Error("AddSlot: repository error: %v", err)
		return nil, fmt.Errorf("%w: AddSlot - repository error: %w", ErrInternal, err)
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("AddSlot: failed to invalidate availability cache: %v", err)
	}

	s.logger.Info("AddSlot: slot=%s added to location=%s, id=%d", slotID, location, created.ID)
	return models.FromDomainSlot(created), nil
}

// ListAvailable возвращает свободные места реестра, сгруппированные по локации
func (s *Service) ListAvailable(ctx context.Context) (*models.SlotsByLocation, error) {
	slots, err := s.slotRepo.GetAvailable(ctx)
	if err != nil {
		s.logger.Error("ListAvailable: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListAvailable - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("ListAvailable: %d available slots", len(slots))
	return models.FromDomainSlots(slots), nil
}

// ReleaseExpired сбрасывает флаг occupied у мест без активных бронирований
// Вызывается только sweeper'ом: по умолчанию флаг реестра не снимается.
// Каждое место освобождается в своей транзакции под той же блокировкой, что берёт
// бронирование, поэтому sweeper не снимает флаг, только что выставленный бронированием
func (s *Service) ReleaseExpired(ctx context.Context, since time.Time) (int64, error) {
	candidates, err := s.slotRepo.ListExpiredOccupied(ctx, since)
	if err != nil {
		s.logger.Error("ReleaseExpired: repository error: %v", err)
		return 0, fmt.Errorf("%w: ReleaseExpired - list candidates: %w", ErrInternal, err)
	}

	var released int64
	for _, key := range candidates {
		ok, err := s.releaseOne(ctx, key, since)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				s.finishRelease(ctx, released, since)
				return released, fmt.Errorf("%w: ReleaseExpired - interrupted: %w", ErrInternal, ctxErr)
			}
			// Место занято бронированием или ошибка БД: повторим на следующем проходе
			s.logger.Warn("ReleaseExpired: slot=%s, location=%s skipped: %v", key.SlotID, key.Location, err)
			continue
		}
		if ok {
			released++
		}
	}

	s.finishRelease(ctx, released, since)
	return released, nil
}

func (s *Service) releaseOne(ctx context.Context, key domain.SlotKey, since time.Time) (bool, error) {
	var released bool
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.locker.LockSlot(txCtx, key.SlotID, key.Location, s.lockTimeout); err != nil {
			return err
		}

		var err error
		released, err = s.slotRepo.ReleaseIfExpired(txCtx, key.SlotID, key.Location, since)
		return err
	})
	return released, err
}

func (s *Service) finishRelease(ctx context.Context, released int64, since time.Time) {
	if released == 0 {
		return
	}

	s.metrics.ObserveSwept(released)
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("ReleaseExpired: failed to invalidate availability cache: %v", err)
	}
	s.logger.Info("ReleaseExpired: released %d slots booked before %s", released, since.Format(time.RFC3339))
}
