package book_slot

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reservationRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/reservation"
	slotRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/metrics"
	"github.com/m04kA/SMC-ParkingService/pkg/pgerr"
	"github.com/m04kA/SMC-ParkingService/pkg/txmanager"
)

// newStoreEnv собирает usecase на настоящих репозиториях и txmanager поверх sqlmock
func newStoreEnv(t *testing.T) (*UseCase, sqlmock.Sqlmock, *fakeMetrics) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	wrapped := dbmetrics.Wrap(db, nil)
	m := &fakeMetrics{bookings: make(map[string]int)}
	uc := NewUseCase(
		reservationRepo.NewRepository(wrapped),
		slotRepo.NewRepository(wrapped),
		txmanager.NewTransactionManager(wrapped),
		&fakeCache{},
		&fakePublisher{},
		m,
		Config{ActiveWindow: time.Hour, LockTimeout: time.Second},
		nopLogger{},
	)
	uc.timeProvider = &fakeClock{now: time.Date(2025, 4, 20, 10, 31, 0, 0, time.UTC)}
	return uc, mock, m
}

func expectSlotLock(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectExec(`SELECT set_config`).WithArgs("1000ms").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestUseCase_Execute_StoreErrors(t *testing.T) {
	tests := []struct {
		name   string
		expect func(mock sqlmock.Sqlmock)
	}{
		{
			name: "deadlock on active check",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT DISTINCT slot_id FROM parking_reservations`).
					WillReturnError(&pq.Error{Code: pgerr.CodeDeadlockDetected, Message: "deadlock detected"})
			},
		},
		{
			name: "serialization failure on append",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT DISTINCT slot_id FROM parking_reservations`).
					WillReturnRows(sqlmock.NewRows([]string{"slot_id"}))
				mock.ExpectQuery(`INSERT INTO parking_reservations`).
					WillReturnError(&pq.Error{Code: pgerr.CodeSerializationFailure, Message: "could not serialize access"})
			},
		},
		{
			name: "deadlock on registry update",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT DISTINCT slot_id FROM parking_reservations`).
					WillReturnRows(sqlmock.NewRows([]string{"slot_id"}))
				mock.ExpectQuery(`INSERT INTO parking_reservations`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
				mock.ExpectExec(`UPDATE parking_slots SET occupied`).
					WillReturnError(&pq.Error{Code: pgerr.CodeDeadlockDetected, Message: "deadlock detected"})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, mock, m := newStoreEnv(t)
			expectSlotLock(mock)
			tt.expect(mock)
			mock.ExpectRollback()

			_, err := uc.Execute(context.Background(), bookA5("first@example.com"))

			assert.ErrorIs(t, err, ErrStoreUnavailable)
			assert.True(t, pgerr.IsRetriable(err))
			assert.Equal(t, 1, m.bookings[metrics.BookingResultError])
		})
	}
}

func TestUseCase_Execute_LockTimeoutFromStore(t *testing.T) {
	uc, mock, _ := newStoreEnv(t)

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT set_config`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WillReturnError(&pq.Error{Code: pgerr.CodeLockNotAvailable, Message: "canceling statement due to lock timeout"})
	mock.ExpectRollback()

	_, err := uc.Execute(context.Background(), bookA5("first@example.com"))
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, reservationRepo.ErrLockTimeout)
}

func TestUseCase_Execute_CommitsThroughStore(t *testing.T) {
	uc, mock, m := newStoreEnv(t)

	expectSlotLock(mock)
	mock.ExpectQuery(`SELECT DISTINCT slot_id FROM parking_reservations`).
		WillReturnRows(sqlmock.NewRows([]string{"slot_id"}).AddRow("A1"))
	mock.ExpectQuery(`INSERT INTO parking_reservations`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectExec(`UPDATE parking_slots SET occupied`).
		WithArgs(true, "DowntownLot", "A5").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	resp, err := uc.Execute(context.Background(), bookA5("first@example.com"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.ReservationID)
	assert.Equal(t, 1, m.bookings[metrics.BookingResultSuccess])
}
