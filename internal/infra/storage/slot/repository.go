package slot

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

const tableSlots = "parking_slots"

// Repository реестр парковочных мест
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория парковочных мест
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create добавляет место в реестр со сброшенным флагом occupied
// Пара (slot_id, location) уникальна: повторное добавление возвращает ErrSlotAlreadyExists
func (r *Repository) Create(ctx context.Context, slot *domain.Slot) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableSlots).
		Columns("slot_id", "location", "occupied").
		Values(slot.SlotID, slot.Location, false).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&slot.ID, &createdAt)
	if err != nil {
		if pgerr.IsUniqueViolation(err) {
			return nil, ErrSlotAlreadyExists
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	slot.Occupied = false
	slot.CreatedAt = createdAt.Time

	return slot, nil
}

// GetAvailable возвращает все места с occupied=false в порядке добавления
func (r *Repository) GetAvailable(ctx context.Context) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "slot_id", "location", "occupied", "created_at").
		From(tableSlots).
		Where(squirrel.Eq{"occupied": false}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetAvailable - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetAvailable - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]*domain.Slot, 0)
	for rows.Next() {
		var s domain.Slot
		var createdAt sql.NullTime
		if err := rows.Scan(&s.ID, &s.SlotID, &s.Location, &s.Occupied, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: GetAvailable - scan row: %w", ErrScanRow, err)
		}
		s.CreatedAt = createdAt.Time
		slots = append(slots, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetAvailable - rows error: %w", ErrScanRow, err)
	}

	return slots, nil
}

// MarkOccupied выставляет occupied=true для совпавших строк
// Ноль совпадений не является ошибкой: вызывающий получает количество строк
func (r *Repository) MarkOccupied(ctx context.Context, slotID, location string) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableSlots).
		Set("occupied", true).
		Where(squirrel.Eq{"slot_id": slotID, "location": location}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: MarkOccupied - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: MarkOccupied - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: MarkOccupied - get rows affected: %w", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

// GetLocationStats возвращает по каждой локации общее число мест и число занятых
// Локации отсортированы по имени
func (r *Repository) GetLocationStats(ctx context.Context) ([]domain.LocationStats, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"location",
		"COUNT(*) AS total",
		"COUNT(*) FILTER (WHERE occupied) AS occupied",
	).
		From(tableSlots).
		GroupBy("location").
		OrderBy("location ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetLocationStats - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetLocationStats - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	stats := make([]domain.LocationStats, 0)
	for rows.Next() {
		var st domain.LocationStats
		if err := rows.Scan(&st.Location, &st.Total, &st.Occupied); err != nil {
			return nil, fmt.Errorf("%w: GetLocationStats - scan row: %w", ErrScanRow, err)
		}
		stats = append(stats, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetLocationStats - rows error: %w", ErrScanRow, err)
	}

	return stats, nil
}

// noActiveReservation условие "у места нет бронирований с booked_at >= ?"
const noActiveReservation = `NOT EXISTS (
			SELECT 1 FROM parking_reservations r
			WHERE r.slot_id = parking_slots.slot_id
			  AND r.location = parking_slots.location
			  AND r.booked_at >= ?
		)`

// ListExpiredOccupied возвращает занятые места, по которым нет бронирований с booked_at >= since
// Результат только кандидаты: перед сбросом флага место нужно заблокировать и перепроверить
func (r *Repository) ListExpiredOccupied(ctx context.Context, since time.Time) ([]domain.SlotKey, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("slot_id", "location").
		From(tableSlots).
		Where(squirrel.Eq{"occupied": true}).
		Where(noActiveReservation, since).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListExpiredOccupied - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListExpiredOccupied - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	keys := make([]domain.SlotKey, 0)
	for rows.Next() {
		var key domain.SlotKey
		if err := rows.Scan(&key.SlotID, &key.Location); err != nil {
			return nil, fmt.Errorf("%w: ListExpiredOccupied - scan row: %w", ErrScanRow, err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListExpiredOccupied - rows error: %w", ErrScanRow, err)
	}

	return keys, nil
}

// ReleaseIfExpired сбрасывает occupied у одного места, если по нему всё ещё нет
// бронирований с booked_at >= since. Вызывается под блокировкой места (LockSlot):
// отдельный statement в READ COMMITTED видит все бронирования, закоммиченные до её получения
func (r *Repository) ReleaseIfExpired(ctx context.Context, slotID, location string, since time.Time) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableSlots).
		Set("occupied", false).
		Where(squirrel.Eq{"slot_id": slotID, "location": location, "occupied": true}).
		Where(noActiveReservation, since).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: ReleaseIfExpired - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: ReleaseIfExpired - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: ReleaseIfExpired - get rows affected: %w", ErrExecQuery, err)
	}

	return rowsAffected > 0, nil
}
