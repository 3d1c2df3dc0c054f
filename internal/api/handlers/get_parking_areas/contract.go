package get_parking_areas

import (
	"context"

	getParkingAreas "github.com/m04kA/SMC-ParkingService/internal/usecase/get_parking_areas"
)

type GetParkingAreasUseCase interface {
	Execute(ctx context.Context) (*getParkingAreas.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
