package config

import "errors"

var (
	// ErrLoad возвращается, когда конфигурацию не удалось прочитать
	ErrLoad = errors.New("config: failed to load")

	// ErrInvalid возвращается при недопустимых значениях конфигурации
	ErrInvalid = errors.New("config: invalid value")
)
