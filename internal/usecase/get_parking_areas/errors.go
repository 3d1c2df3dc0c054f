package get_parking_areas

import "errors"

// ErrInternal возвращается при внутренних ошибках usecase
var ErrInternal = errors.New("get_parking_areas: internal error")
