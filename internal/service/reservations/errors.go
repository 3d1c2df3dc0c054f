package reservations

import "errors"

var (
	// ErrInvalidInput возвращается при пустом идентификаторе пользователя
	ErrInvalidInput = errors.New("reservations: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("reservations: internal error")
)
