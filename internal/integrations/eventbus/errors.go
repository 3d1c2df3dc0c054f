package eventbus

import "errors"

var (
	// ErrConnect возвращается, когда не удалось подключиться к брокеру
	ErrConnect = errors.New("eventbus: failed to connect to broker")

	// ErrPublish возвращается при ошибке публикации события
	ErrPublish = errors.New("eventbus: failed to publish event")

	// ErrMarshal возвращается, когда событие не удалось сериализовать
	ErrMarshal = errors.New("eventbus: failed to marshal event")
)
