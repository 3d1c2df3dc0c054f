package get_occupied_slots

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// validateRequest проверяет локацию и разбирает дату
func validateRequest(req *Request) (string, time.Time, error) {
	location := strings.TrimSpace(req.Location)
	if location == "" {
		return "", time.Time{}, fmt.Errorf("%w: location is required", ErrInvalidInput)
	}

	date, err := time.Parse(domain.DateFormat, strings.TrimSpace(req.Date))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD: %w", ErrInvalidInput, err)
	}

	return location, date, nil
}
