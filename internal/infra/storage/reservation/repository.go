package reservation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/pgerr"
	"github.com/m04kA/SMC-ParkingService/pkg/psqlbuilder"
)

const tableReservations = "parking_reservations"

var reservationColumns = []string{
	"id",
	"user_identity",
	"location",
	"reservation_date",
	"time_label",
	"slot_id",
	"payment_status",
	"booked_at",
}

// Repository журнал бронирований (append-only)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр журнала бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Append добавляет неизменяемую запись в журнал
// payment_status всегда "Paid"; конфликты журнал не проверяет - это задача координатора
func (r *Repository) Append(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	res.PaymentStatus = domain.PaymentStatusPaid

	query, args, err := psqlbuilder.Insert(tableReservations).
		Columns(
			"user_identity",
			"location",
			"reservation_date",
			"time_label",
			"slot_id",
			"payment_status",
			"booked_at",
		).
		Values(
			res.UserIdentity,
			res.Location,
			res.ReservationDate,
			res.TimeLabel,
			res.SlotID,
			res.PaymentStatus,
			res.BookedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Append - build insert query: %w", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&res.ID); err != nil {
		return nil, fmt.Errorf("%w: Append - execute insert: %w", ErrExecQuery, err)
	}

	return res, nil
}

// ListByUser возвращает бронирования пользователя, новые первыми
func (r *Repository) ListByUser(ctx context.Context, userIdentity string) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(reservationColumns...).
		From(tableReservations).
		Where(squirrel.Eq{"user_identity": userIdentity}).
		OrderBy("booked_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByUser - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByUser - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanReservations(rows)
}

// ListActiveByLocationDate возвращает slot_id, по которым есть бронирования
// на location/date с booked_at >= since
func (r *Repository) ListActiveByLocationDate(ctx context.Context, location string, date time.Time, since time.Time) ([]string, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("DISTINCT slot_id").
		From(tableReservations).
		Where(squirrel.Eq{"location": location, "reservation_date": date}).
		Where(squirrel.GtOrEq{"booked_at": since}).
		OrderBy("slot_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveByLocationDate - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveByLocationDate - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	slotIDs := make([]string, 0)
	for rows.Next() {
		var slotID string
		if err := rows.Scan(&slotID); err != nil {
			return nil, fmt.Errorf("%w: ListActiveByLocationDate - scan slot_id: %w", ErrScanRow, err)
		}
		slotIDs = append(slotIDs, slotID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActiveByLocationDate - rows error: %w", ErrScanRow, err)
	}

	return slotIDs, nil
}

// LockSlot берёт транзакционную advisory-блокировку на пару (slot_id, location)
// Блокировка снимается при commit/rollback. Ожидание ограничено lockTimeout,
// по его истечении возвращается ErrLockTimeout
func (r *Repository) LockSlot(ctx context.Context, slotID, location string, lockTimeout time.Duration) error {
	tx, ok := dbmetrics.TxFromContext(ctx)
	if !ok {
		return ErrNotInTransaction
	}

	timeout := fmt.Sprintf("%dms", lockTimeout.Milliseconds())
	if _, err := tx.ExecContext(ctx, "SELECT set_config('lock_timeout', $1, true)", timeout); err != nil {
		return fmt.Errorf("%w: LockSlot - set lock_timeout: %w", ErrExecQuery, err)
	}

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", lockKey(slotID, location)); err != nil {
		// Клиент ушёл во время ожидания: это не таймаут блокировки
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: LockSlot - wait cancelled: %w", ErrExecQuery, ctxErr)
		}
		if pgerr.IsLockTimeout(err) {
			return fmt.Errorf("%w: slot=%s, location=%s", ErrLockTimeout, slotID, location)
		}
		return fmt.Errorf("%w: LockSlot - acquire advisory lock: %w", ErrExecQuery, err)
	}

	return nil
}

// lockKey ключ блокировки; \x1f не встречается в идентификаторах мест
func lockKey(slotID, location string) string {
	return "parking:" + location + "\x1f" + slotID
}

// scanReservations сканирует результаты запроса в слайс бронирований
func (r *Repository) scanReservations(rows *sql.Rows) ([]*domain.Reservation, error) {
	reservations := make([]*domain.Reservation, 0)

	for rows.Next() {
		var res domain.Reservation
		err := rows.Scan(
			&res.ID,
			&res.UserIdentity,
			&res.Location,
			&res.ReservationDate,
			&res.TimeLabel,
			&res.SlotID,
			&res.PaymentStatus,
			&res.BookedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanReservations - scan row: %w", ErrScanRow, err)
		}
		reservations = append(reservations, &res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanReservations - rows error: %w", ErrScanRow, err)
	}

	return reservations, nil
}
