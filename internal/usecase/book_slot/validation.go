package book_slot

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// validRequest запрос после нормализации и разбора даты
type validRequest struct {
	userIdentity string
	location     string
	date         time.Time
	timeLabel    string
	slotID       string
}

// validateRequest валидирует входные данные и разбирает дату
func validateRequest(req *Request) (*validRequest, error) {
	v := &validRequest{
		userIdentity: strings.TrimSpace(req.UserIdentity),
		location:     strings.TrimSpace(req.Location),
		timeLabel:    strings.TrimSpace(req.TimeLabel),
		slotID:       strings.TrimSpace(req.SlotID),
	}

	if err := requireField("email", v.userIdentity, domain.MaxUserIdentityLength); err != nil {
		return nil, err
	}
	if err := requireField("location", v.location, domain.MaxLocationLength); err != nil {
		return nil, err
	}
	if err := requireField("slot", v.slotID, domain.MaxSlotIDLength); err != nil {
		return nil, err
	}
	// time_label - свободный текст, формат не проверяется
	if err := requireField("time", v.timeLabel, domain.MaxTimeLabelLength); err != nil {
		return nil, err
	}

	dateStr := strings.TrimSpace(req.Date)
	if dateStr == "" {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD: %w", ErrInvalidInput, err)
	}
	v.date = date

	return v, nil
}

func requireField(name, value string, maxLen int) error {
	if value == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, name)
	}
	if len(value) > maxLen {
		return fmt.Errorf("%w: %s is longer than %d", ErrInvalidInput, name, maxLen)
	}
	return nil
}

