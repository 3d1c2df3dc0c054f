package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// KeyAreas ключ с рассчитанной доступностью по локациям
const KeyAreas = "parking:areas"

type cachedArea struct {
	Location  string `json:"location"`
	Capacity  int    `json:"capacity"`
	Occupied  int    `json:"occupied"`
	Available int    `json:"available"`
}

// Cache кэш доступности парковок в Redis
// Данные в кэше допускают отставание на TTL: чтения доступности не требуют точного снимка
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New создает кэш поверх клиента Redis
func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// NewClient создает клиент Redis и проверяет соединение
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%w: ping %s: %w", ErrCache, addr, err)
	}

	return rdb, nil
}

// GetAreas возвращает закэшированную доступность; found=false при промахе
func (c *Cache) GetAreas(ctx context.Context) ([]domain.LocationAvailability, bool, error) {
	raw, err := c.rdb.Get(ctx, KeyAreas).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: GetAreas: %w", ErrCache, err)
	}

	var cached []cachedArea
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false, fmt.Errorf("%w: GetAreas: %w", ErrDecode, err)
	}

	areas := make([]domain.LocationAvailability, len(cached))
	for i, a := range cached {
		areas[i] = domain.LocationAvailability{
			Location:  a.Location,
			Capacity:  a.Capacity,
			Occupied:  a.Occupied,
			Available: a.Available,
		}
	}

	return areas, true, nil
}

// SetAreas сохраняет доступность с TTL
func (c *Cache) SetAreas(ctx context.Context, areas []domain.LocationAvailability) error {
	cached := make([]cachedArea, len(areas))
	for i, a := range areas {
		cached[i] = cachedArea{
			Location:  a.Location,
			Capacity:  a.Capacity,
			Occupied:  a.Occupied,
			Available: a.Available,
		}
	}

	raw, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("%w: SetAreas - marshal: %w", ErrCache, err)
	}

	if err := c.rdb.Set(ctx, KeyAreas, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: SetAreas: %w", ErrCache, err)
	}

	return nil
}

// Invalidate удаляет закэшированную доступность (после добавления места или бронирования)
func (c *Cache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, KeyAreas).Err(); err != nil {
		return fmt.Errorf("%w: Invalidate: %w", ErrCache, err)
	}
	return nil
}

// Noop кэш-заглушка, когда Redis выключен
type Noop struct{}

func (Noop) GetAreas(context.Context) ([]domain.LocationAvailability, bool, error) {
	return nil, false, nil
}

func (Noop) SetAreas(context.Context, []domain.LocationAvailability) error {
	return nil
}

func (Noop) Invalidate(context.Context) error {
	return nil
}
