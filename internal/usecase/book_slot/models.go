package book_slot

import "time"

// Request модель запроса на бронирование места
type Request struct {
	UserIdentity string // email пользователя
	Location     string
	Date         string // YYYY-MM-DD
	TimeLabel    string // произвольная метка времени, например "10:30"
	SlotID       string
}

// Response модель ответа с созданным бронированием
type Response struct {
	ReservationID   int64
	UserIdentity    string
	Location        string
	ReservationDate time.Time
	TimeLabel       string
	SlotID          string
	PaymentStatus   string
	BookedAt        time.Time
}

// Config параметры координатора бронирований
type Config struct {
	ActiveWindow   time.Duration // окно, в течение которого бронирование занимает место
	LockTimeout    time.Duration // максимальное ожидание блокировки места
	PublishTimeout time.Duration // таймаут публикации события после коммита
}
