package book_slot

import "errors"

var (
	// ErrInvalidInput возвращается при отсутствующих или некорректных полях запроса
	ErrInvalidInput = errors.New("book_slot: invalid input data")

	// ErrSlotConflict возвращается, когда место уже занято активным бронированием
	ErrSlotConflict = errors.New("book_slot: slot is already booked")

	// ErrStoreUnavailable возвращается, когда хранилище недоступно или блокировку не удалось получить вовремя
	// Запрос можно повторить
	ErrStoreUnavailable = errors.New("book_slot: store unavailable")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("book_slot: internal error")
)
