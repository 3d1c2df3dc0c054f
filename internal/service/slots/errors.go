package slots

import "errors"

var (
	// ErrInvalidInput возвращается при пустых slot_id/location
	ErrInvalidInput = errors.New("slots: invalid input data")

	// ErrSlotAlreadyExists возвращается при повторном добавлении пары (slot_id, location)
	ErrSlotAlreadyExists = errors.New("slots: slot already exists")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("slots: internal error")
)
