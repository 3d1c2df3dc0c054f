package reservation

import "errors"

var (
	// ErrNotInTransaction возвращается, когда блокировка слота запрошена вне транзакции
	ErrNotInTransaction = errors.New("reservation.repository: slot lock requires a transaction")

	// ErrLockTimeout возвращается, когда блокировку слота не удалось получить за lock_timeout
	ErrLockTimeout = errors.New("reservation.repository: slot lock timeout")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("reservation.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("reservation.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("reservation.repository: failed to scan row")
)
