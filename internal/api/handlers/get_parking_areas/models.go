package get_parking_areas

import (
	"fmt"

	getParkingAreas "github.com/m04kA/SMC-ParkingService/internal/usecase/get_parking_areas"
)

// AreaResponse HTTP response model
type AreaResponse struct {
	Name  string `json:"name"`
	Spots string `json:"spots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getParkingAreas.Response) []AreaResponse {
	areas := make([]AreaResponse, 0, len(resp.Areas))
	for _, a := range resp.Areas {
		areas = append(areas, AreaResponse{
			Name:  a.Location,
			Spots: fmt.Sprintf("%d spots available", a.Available),
		})
	}
	return areas
}
