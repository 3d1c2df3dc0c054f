package get_occupied_slots

import "errors"

var (
	// ErrInvalidInput возвращается при пустой локации или некорректной дате
	ErrInvalidInput = errors.New("get_occupied_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_occupied_slots: internal error")
)
