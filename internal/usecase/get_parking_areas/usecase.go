package get_parking_areas

import (
	"context"
	"fmt"
	"sort"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// UseCase считает доступность мест по локациям реестра
type UseCase struct {
	slotRepo SlotRepository
	cache    AvailabilityCache
	metrics  Metrics
	cfg      Config
	logger   Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(slotRepo SlotRepository, cache AvailabilityCache, metrics Metrics, cfg Config, logger Logger) *UseCase {
	if cfg.Capacity <= 0 {
		cfg.Capacity = domain.DefaultCapacity
	}
	if !cfg.Mode.IsValid() {
		cfg.Mode = domain.DefaultCapacityMode
	}
	return &UseCase{
		slotRepo: slotRepo,
		cache:    cache,
		metrics:  metrics,
		cfg:      cfg,
		logger:   logger,
	}
}

// Execute возвращает available = max(0, capacity - occupied) для каждой локации
func (uc *UseCase) Execute(ctx context.Context) (*Response, error) {
	cached, found, err := uc.cache.GetAreas(ctx)
	switch {
	case err != nil:
		// Кэш недоступен - считаем напрямую
		uc.metrics.ObserveCache(CacheError)
		uc.logger.Warn("GetParkingAreas: cache read failed: %v", err)
	case found:
		uc.metrics.ObserveCache(CacheHit)
		return fromDomain(cached), nil
	default:
		uc.metrics.ObserveCache(CacheMiss)
	}

	stats, err := uc.slotRepo.GetLocationStats(ctx)
	if err != nil {
		uc.logger.Error("GetParkingAreas: failed to get location stats: %v", err)
		return nil, fmt.Errorf("%w: failed to get location stats: %w", ErrInternal, err)
	}

	areas := make([]domain.LocationAvailability, 0, len(stats))
	for _, st := range stats {
		areas = append(areas, domain.NewLocationAvailability(st.Location, uc.capacityOf(st), st.Occupied))
	}
	sort.Slice(areas, func(i, j int) bool { return areas[i].Location < areas[j].Location })

	if err := uc.cache.SetAreas(ctx, areas); err != nil {
		uc.logger.Warn("GetParkingAreas: cache write failed: %v", err)
	}

	uc.logger.Info("GetParkingAreas: computed availability for %d locations (mode=%s)", len(areas), uc.cfg.Mode)
	return fromDomain(areas), nil
}

func (uc *UseCase) capacityOf(st domain.LocationStats) int {
	if uc.cfg.Mode == domain.CapacityModeRegistry {
		return st.Total
	}
	return uc.cfg.Capacity
}
