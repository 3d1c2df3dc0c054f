package get_parking_areas

import "github.com/m04kA/SMC-ParkingService/internal/domain"

// Исходы обращения к кэшу
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Config параметры расчёта вместимости
type Config struct {
	Capacity int                 // вместимость локации в режиме fixed
	Mode     domain.CapacityMode // fixed | registry
}

// Area доступность одной локации
type Area struct {
	Location  string
	Capacity  int
	Occupied  int
	Available int
}

// Response доступность по локациям, отсортированная по имени
type Response struct {
	Areas []Area
}

func fromDomain(list []domain.LocationAvailability) *Response {
	areas := make([]Area, 0, len(list))
	for _, a := range list {
		areas = append(areas, Area{
			Location:  a.Location,
			Capacity:  a.Capacity,
			Occupied:  a.Occupied,
			Available: a.Available,
		})
	}
	return &Response{Areas: areas}
}
