package book_slot

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ParkingService/internal/integrations/eventbus"
	"github.com/m04kA/SMC-ParkingService/pkg/metrics"
	"github.com/m04kA/SMC-ParkingService/pkg/pgerr"
	"github.com/m04kA/SMC-ParkingService/pkg/txmanager"
)

// UseCase координатор бронирований
type UseCase struct {
	reservationRepo ReservationRepository
	slotRepo        SlotRepository
	txManager       TransactionManager
	cache           AvailabilityCache
	publisher       EventPublisher
	metrics         Metrics
	timeProvider    TimeProvider
	cfg             Config
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	slotRepo SlotRepository,
	txManager TransactionManager,
	cache AvailabilityCache,
	publisher EventPublisher,
	metrics Metrics,
	cfg Config,
	logger Logger,
) *UseCase {
	if cfg.ActiveWindow <= 0 {
		cfg.ActiveWindow = domain.DefaultActiveWindow
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = domain.DefaultLockTimeout
	}
	return &UseCase{
		reservationRepo: reservationRepo,
		slotRepo:        slotRepo,
		txManager:       txManager,
		cache:           cache,
		publisher:       publisher,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		cfg:             cfg,
		logger:          logger,
	}
}

// Execute бронирует место: проверка конфликта, запись в журнал и флаг реестра
// выполняются в одной транзакции под advisory-блокировкой места
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("BookSlot: user=%s, location=%s, date=%s, time=%s, slot=%s",
		req.UserIdentity, req.Location, req.Date, req.TimeLabel, req.SlotID)

	// 1. Валидация входных данных
	v, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("BookSlot: validation failed: %v", err)
		uc.metrics.ObserveBooking(metrics.BookingResultInvalid)
		return nil, err
	}

	// 2. Время бронирования задаёт координатор, а не база
	now := uc.timeProvider.Now()
	since := domain.ActiveSince(now, uc.cfg.ActiveWindow)

	var result *domain.Reservation

	// 3. Блокировка, проверка, запись в журнал и флаг реестра - одна транзакция
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 3.1. Конкурентные бронирования того же места ждут здесь
		if err := uc.reservationRepo.LockSlot(txCtx, v.slotID, v.location, uc.cfg.LockTimeout); err != nil {
			if errors.Is(err, reservationRepo.ErrLockTimeout) {
				uc.logger.Warn("BookSlot: lock timeout for slot=%s, location=%s", v.slotID, v.location)
				return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
			}
			uc.logger.Error("BookSlot: failed to lock slot=%s, location=%s: %v", v.slotID, v.location, err)
			return fmt.Errorf("%w: failed to lock slot: %w", ErrInternal, err)
		}

		// 3.2. Проверяем активные бронирования на эту локацию и дату
		active, err := uc.reservationRepo.ListActiveByLocationDate(txCtx, v.location, v.date, since)
		if err != nil {
			uc.logger.Error("BookSlot: failed to list active reservations: %v", err)
			return fmt.Errorf("%w: failed to list active reservations: %w", ErrInternal, err)
		}

		if slices.Contains(active, v.slotID) {
			uc.logger.Warn("BookSlot: slot=%s in location=%s is already booked for %s",
				v.slotID, v.location, v.date.Format(domain.DateFormat))
			return ErrSlotConflict
		}

		// 3.3. Запись в журнал
		created, err := uc.reservationRepo.Append(txCtx, &domain.Reservation{
			UserIdentity:    v.userIdentity,
			Location:        v.location,
			ReservationDate: v.date,
			TimeLabel:       v.timeLabel,
			SlotID:          v.slotID,
			PaymentStatus:   domain.PaymentStatusPaid,
			BookedAt:        now,
		})
		if err != nil {
			uc.logger.Error("BookSlot: failed to append reservation: %v", err)
			return fmt.Errorf("%w: failed to append reservation: %w", ErrInternal, err)
		}

		// 3.4. Флаг реестра; отсутствие строки в реестре не ошибка
		marked, err := uc.slotRepo.MarkOccupied(txCtx, v.slotID, v.location)
		if err != nil {
			uc.logger.Error("BookSlot: failed to mark slot occupied: %v", err)
			return fmt.Errorf("%w: failed to mark slot occupied: %w", ErrInternal, err)
		}
		if marked == 0 {
			uc.logger.Warn("BookSlot: slot=%s, location=%s is not in the registry, reservation id=%d kept",
				v.slotID, v.location, created.ID)
			uc.metrics.ObserveRegistryMiss()
		}

		result = created
		return nil
	})
	if err != nil {
		err = uc.classifyTxError(ctx, err)
		uc.observeFailure(err)
		return nil, err
	}

	uc.metrics.ObserveBooking(metrics.BookingResultSuccess)
	uc.logger.Info("BookSlot: successfully booked slot=%s, location=%s, reservation id=%d",
		result.SlotID, result.Location, result.ID)

	// 4. Побочные эффекты после коммита; их ошибки не отменяют бронирование
	uc.afterCommit(ctx, result)

	return &Response{
		ReservationID:   result.ID,
		UserIdentity:    result.UserIdentity,
		Location:        result.Location,
		ReservationDate: result.ReservationDate,
		TimeLabel:       result.TimeLabel,
		SlotID:          result.SlotID,
		PaymentStatus:   string(result.PaymentStatus),
		BookedAt:        result.BookedAt,
	}, nil
}

// classifyTxError приводит ошибки транзакции к ошибкам usecase
func (uc *UseCase) classifyTxError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, ErrSlotConflict),
		errors.Is(err, ErrStoreUnavailable),
		errors.Is(err, ErrInvalidInput):
		return err
	case errors.Is(ctx.Err(), context.Canceled):
		// Клиент отменил запрос: хранилище не виновато
		uc.logger.Warn("BookSlot: request cancelled: %v", err)
		return fmt.Errorf("%w: request cancelled: %w", ErrInternal, err)
	case errors.Is(err, txmanager.ErrBeginTx),
		errors.Is(err, txmanager.ErrCommitTx),
		errors.Is(err, context.DeadlineExceeded),
		pgerr.IsRetriable(err),
		pgerr.IsQueryCanceled(err):
		uc.logger.Error("BookSlot: store unavailable: %v", err)
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	case errors.Is(err, ErrInternal):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
}

func (uc *UseCase) observeFailure(err error) {
	if errors.Is(err, ErrSlotConflict) {
		uc.metrics.ObserveBooking(metrics.BookingResultConflict)
		return
	}
	uc.metrics.ObserveBooking(metrics.BookingResultError)
}

// afterCommit сбрасывает кэш доступности и публикует событие
func (uc *UseCase) afterCommit(ctx context.Context, res *domain.Reservation) {
	// Отмена клиентского запроса не должна прерывать публикацию уже закоммиченного бронирования
	ctx = context.WithoutCancel(ctx)

	if err := uc.cache.Invalidate(ctx); err != nil {
		uc.logger.Warn("BookSlot: failed to invalidate availability cache: %v", err)
	}

	if uc.cfg.PublishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.cfg.PublishTimeout)
		defer cancel()
	}

	event := eventbus.NewSlotBookedEvent(res)
	if err := uc.publisher.PublishSlotBooked(ctx, event); err != nil {
		uc.logger.Warn("BookSlot: failed to publish event id=%s for reservation id=%d: %v",
			event.EventID, res.ID, err)
	}
}
