package book_slot

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ParkingService/internal/integrations/eventbus"
	"github.com/m04kA/SMC-ParkingService/pkg/metrics"
	"github.com/m04kA/SMC-ParkingService/pkg/pgerr"
	"github.com/m04kA/SMC-ParkingService/pkg/txmanager"
)

// fakeStore журнал и реестр в памяти; реализует оба репозитория
// Блокировки мест держатся до конца транзакции fakeTxManager, как advisory lock в Postgres
type fakeStore struct {
	mu           sync.Mutex
	reservations []*domain.Reservation
	registry     map[domain.SlotKey]bool
	nextID       int64
	slotLocks    map[domain.SlotKey]*sync.Mutex

	lockErr   error
	listErr   error
	appendErr error
	markErr   error
	lockCalls int
}

func newFakeStore(slots ...domain.SlotKey) *fakeStore {
	s := &fakeStore{
		registry:  make(map[domain.SlotKey]bool),
		slotLocks: make(map[domain.SlotKey]*sync.Mutex),
	}
	for _, k := range slots {
		s.registry[k] = false
	}
	return s
}

func (s *fakeStore) LockSlot(ctx context.Context, slotID, location string, _ time.Duration) error {
	tx, ok := fakeTxFromContext(ctx)
	if !ok {
		return reservationRepo.ErrNotInTransaction
	}

	s.mu.Lock()
	s.lockCalls++
	if s.lockErr != nil {
		s.mu.Unlock()
		return s.lockErr
	}
	key := domain.SlotKey{SlotID: slotID, Location: location}
	l, ok := s.slotLocks[key]
	if !ok {
		l = &sync.Mutex{}
		s.slotLocks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	tx.unlocks = append(tx.unlocks, l.Unlock)
	return nil
}

func (s *fakeStore) ListActiveByLocationDate(_ context.Context, location string, date time.Time, since time.Time) ([]string, error) {
	s.mu.Lock()
	if s.listErr != nil {
		s.mu.Unlock()
		return nil, s.listErr
	}
	seen := make(map[string]bool)
	result := make([]string, 0)
	for _, r := range s.reservations {
		if r.Location != location || !r.ReservationDate.Equal(date) || r.BookedAt.Before(since) {
			continue
		}
		if !seen[r.SlotID] {
			seen[r.SlotID] = true
			result = append(result, r.SlotID)
		}
	}
	s.mu.Unlock()

	// Окно между проверкой и записью: без блокировки места сюда успевают другие транзакции
	runtime.Gosched()
	return result, nil
}

func (s *fakeStore) Append(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.appendErr != nil {
		return nil, s.appendErr
	}
	s.nextID++
	stored := *res
	stored.ID = s.nextID
	stored.PaymentStatus = domain.PaymentStatusPaid
	s.reservations = append(s.reservations, &stored)

	if tx, ok := fakeTxFromContext(ctx); ok {
		tx.appended = append(tx.appended, stored.ID)
	}
	return &stored, nil
}

func (s *fakeStore) MarkOccupied(ctx context.Context, slotID, location string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.markErr != nil {
		return 0, s.markErr
	}
	key := domain.SlotKey{SlotID: slotID, Location: location}
	prev, ok := s.registry[key]
	if !ok {
		return 0, nil
	}
	if tx, ok := fakeTxFromContext(ctx); ok {
		if _, recorded := tx.marked[key]; !recorded {
			tx.marked[key] = prev
		}
	}
	s.registry[key] = true
	return 1, nil
}

// rollback отменяет записи одной транзакции, не трогая чужие
func (s *fakeStore) rollback(tx *fakeTx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.reservations[:0]
	for _, r := range s.reservations {
		if !slices.Contains(tx.appended, r.ID) {
			kept = append(kept, r)
		}
	}
	s.reservations = kept
	for key, prev := range tx.marked {
		s.registry[key] = prev
	}
}

func (s *fakeStore) reservationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reservations)
}

type fakeTx struct {
	unlocks  []func()
	appended []int64
	marked   map[domain.SlotKey]bool
}

type fakeTxKey struct{}

func fakeTxFromContext(ctx context.Context) (*fakeTx, bool) {
	tx, ok := ctx.Value(fakeTxKey{}).(*fakeTx)
	return tx, ok
}

// fakeTxManager откатывает записи транзакции при ошибке и снимает её блокировки мест
// Транзакции выполняются параллельно: сериализуют их только блокировки LockSlot
type fakeTxManager struct {
	store    *fakeStore
	beginErr error
}

func (m *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.beginErr != nil {
		return fmt.Errorf("%w: %w", txmanager.ErrBeginTx, m.beginErr)
	}

	tx := &fakeTx{marked: make(map[domain.SlotKey]bool)}
	defer func() {
		for i := len(tx.unlocks) - 1; i >= 0; i-- {
			tx.unlocks[i]()
		}
	}()

	if err := fn(context.WithValue(ctx, fakeTxKey{}, tx)); err != nil {
		m.store.rollback(tx)
		return err
	}
	return nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeCache struct {
	mu          sync.Mutex
	invalidated int
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []eventbus.SlotBookedEvent
	err    error
}

func (p *fakePublisher) PublishSlotBooked(_ context.Context, event eventbus.SlotBookedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

type fakeMetrics struct {
	mu           sync.Mutex
	bookings     map[string]int
	registryMiss int
}

func (m *fakeMetrics) ObserveBooking(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[result]++
}

func (m *fakeMetrics) ObserveRegistryMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registryMiss++
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type testEnv struct {
	uc        *UseCase
	store     *fakeStore
	tx        *fakeTxManager
	clock     *fakeClock
	cache     *fakeCache
	publisher *fakePublisher
	metrics   *fakeMetrics
}

func newTestEnv(slots ...domain.SlotKey) *testEnv {
	store := newFakeStore(slots...)
	env := &testEnv{
		store:     store,
		tx:        &fakeTxManager{store: store},
		clock:     &fakeClock{now: time.Date(2025, 4, 20, 10, 31, 0, 0, time.UTC)},
		cache:     &fakeCache{},
		publisher: &fakePublisher{},
		metrics:   &fakeMetrics{bookings: make(map[string]int)},
	}
	env.uc = NewUseCase(store, store, env.tx, env.cache, env.publisher, env.metrics, Config{
		ActiveWindow:   time.Hour,
		LockTimeout:    time.Second,
		PublishTimeout: time.Second,
	}, nopLogger{})
	env.uc.timeProvider = env.clock
	return env
}

var downtownA5 = domain.SlotKey{SlotID: "A5", Location: "DowntownLot"}

func bookA5(user string) *Request {
	return &Request{
		UserIdentity: user,
		Location:     "DowntownLot",
		Date:         "2025-04-20",
		TimeLabel:    "10:30",
		SlotID:       "A5",
	}
}

func TestUseCase_Execute_Success(t *testing.T) {
	env := newTestEnv(downtownA5)

	resp, err := env.uc.Execute(context.Background(), bookA5("first@example.com"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.ReservationID)
	assert.Equal(t, "DowntownLot", resp.Location)
	assert.Equal(t, "A5", resp.SlotID)
	assert.Equal(t, "10:30", resp.TimeLabel)
	assert.Equal(t, "Paid", resp.PaymentStatus)
	assert.Equal(t, time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC), resp.ReservationDate)
	assert.Equal(t, env.clock.Now(), resp.BookedAt)

	require.Len(t, env.store.reservations, 1)
	stored := env.store.reservations[0]
	assert.Equal(t, "first@example.com", stored.UserIdentity)
	assert.Equal(t, env.clock.Now(), stored.BookedAt)
	assert.True(t, env.store.registry[downtownA5])

	assert.Equal(t, 1, env.metrics.bookings[metrics.BookingResultSuccess])
	assert.Equal(t, 1, env.cache.invalidated)
	require.Len(t, env.publisher.events, 1)
	assert.Equal(t, eventbus.EventSlotBooked, env.publisher.events[0].EventType)
	assert.Equal(t, int64(1), env.publisher.events[0].ReservationID)
}

func TestUseCase_Execute_DowntownScenario(t *testing.T) {
	env := newTestEnv(downtownA5)
	ctx := context.Background()

	_, err := env.uc.Execute(ctx, bookA5("first@example.com"))
	require.NoError(t, err)

	_, err = env.uc.Execute(ctx, bookA5("second@example.com"))
	assert.ErrorIs(t, err, ErrSlotConflict)

	assert.Len(t, env.store.reservations, 1)
	assert.Equal(t, 1, env.metrics.bookings[metrics.BookingResultConflict])
	assert.Len(t, env.publisher.events, 1)
}

func TestUseCase_Execute_OtherDateOrLocationIsFree(t *testing.T) {
	env := newTestEnv(downtownA5)
	ctx := context.Background()

	_, err := env.uc.Execute(ctx, bookA5("first@example.com"))
	require.NoError(t, err)

	nextDay := bookA5("second@example.com")
	nextDay.Date = "2025-04-21"
	_, err = env.uc.Execute(ctx, nextDay)
	assert.NoError(t, err)

	otherLot := bookA5("third@example.com")
	otherLot.Location = "Riverside"
	_, err = env.uc.Execute(ctx, otherLot)
	assert.NoError(t, err)

	assert.Len(t, env.store.reservations, 3)
}

func TestUseCase_Execute_FreeAgainAfterWindow(t *testing.T) {
	env := newTestEnv(downtownA5)
	ctx := context.Background()

	_, err := env.uc.Execute(ctx, bookA5("first@example.com"))
	require.NoError(t, err)

	env.clock.Advance(59 * time.Minute)
	_, err = env.uc.Execute(ctx, bookA5("second@example.com"))
	require.ErrorIs(t, err, ErrSlotConflict)

	env.clock.Advance(2 * time.Minute)
	resp, err := env.uc.Execute(ctx, bookA5("second@example.com"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.ReservationID)
}

func TestUseCase_Execute_ConcurrentOneWinner(t *testing.T) {
	env := newTestEnv(downtownA5)

	const workers = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
		others    []error
	)

	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := env.uc.Execute(context.Background(), bookA5(fmt.Sprintf("user%d@example.com", i)))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrSlotConflict):
				conflicts++
			default:
				others = append(others, err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Empty(t, others)
	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)
	assert.Len(t, env.store.reservations, 1)
	assert.Equal(t, workers, env.store.lockCalls)
}

func TestUseCase_Execute_MarkOccupiedFailureRollsBack(t *testing.T) {
	env := newTestEnv(downtownA5)
	env.store.markErr = errors.New("connection reset")

	_, err := env.uc.Execute(context.Background(), bookA5("first@example.com"))
	require.ErrorIs(t, err, ErrInternal)

	assert.Empty(t, env.store.reservations)
	assert.False(t, env.store.registry[downtownA5])
	assert.Empty(t, env.publisher.events)
	assert.Zero(t, env.cache.invalidated)
	assert.Equal(t, 1, env.metrics.bookings[metrics.BookingResultError])

	env.store.markErr = nil
	resp, err := env.uc.Execute(context.Background(), bookA5("first@example.com"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ReservationID)
}

func TestUseCase_Execute_RegistryMiss(t *testing.T) {
	env := newTestEnv()

	_, err := env.uc.Execute(context.Background(), bookA5("first@example.com"))
	require.NoError(t, err)

	assert.Len(t, env.store.reservations, 1)
	assert.Equal(t, 1, env.metrics.registryMiss)
}

func TestUseCase_Execute_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		modify func(r *Request)
	}{
		{name: "missing email", modify: func(r *Request) { r.UserIdentity = "" }},
		{name: "blank location", modify: func(r *Request) { r.Location = "  " }},
		{name: "missing slot", modify: func(r *Request) { r.SlotID = "" }},
		{name: "missing time", modify: func(r *Request) { r.TimeLabel = "" }},
		{name: "missing date", modify: func(r *Request) { r.Date = "" }},
		{name: "malformed date", modify: func(r *Request) { r.Date = "20-04-2025" }},
		{name: "impossible date", modify: func(r *Request) { r.Date = "2025-02-30" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(downtownA5)
			req := bookA5("first@example.com")
			tt.modify(req)

			_, err := env.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Zero(t, env.store.lockCalls)
			assert.Equal(t, 1, env.metrics.bookings[metrics.BookingResultInvalid])
		})
	}
}

func TestUseCase_Execute_FreeTextTimeLabel(t *testing.T) {
	env := newTestEnv(downtownA5)
	req := bookA5("first@example.com")
	req.TimeLabel = "morning"

	resp, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "morning", resp.TimeLabel)
}

func TestUseCase_Execute_StoreUnavailable(t *testing.T) {
	t.Run("lock timeout", func(t *testing.T) {
		env := newTestEnv(downtownA5)
		env.store.lockErr = fmt.Errorf("%w: slot=A5", reservationRepo.ErrLockTimeout)

		_, err := env.uc.Execute(context.Background(), bookA5("first@example.com"))
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.Empty(t, env.store.reservations)
	})

	t.Run("begin transaction", func(t *testing.T) {
		env := newTestEnv(downtownA5)
		env.tx.beginErr = errors.New("dial tcp: connection refused")

		_, err := env.uc.Execute(context.Background(), bookA5("first@example.com"))
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.Equal(t, 1, env.metrics.bookings[metrics.BookingResultError])
	})

	t.Run("list error is internal", func(t *testing.T) {
		env := newTestEnv(downtownA5)
		env.store.listErr = errors.New("syntax error")

		_, err := env.uc.Execute(context.Background(), bookA5("first@example.com"))
		assert.ErrorIs(t, err, ErrInternal)
		assert.NotErrorIs(t, err, ErrStoreUnavailable)
	})

	t.Run("deadline inside repository", func(t *testing.T) {
		env := newTestEnv(downtownA5)
		env.store.listErr = fmt.Errorf("%w: ListActiveByLocationDate - execute query: %w",
			reservationRepo.ErrExecQuery, context.DeadlineExceeded)

		_, err := env.uc.Execute(context.Background(), bookA5("first@example.com"))
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("cancelled request is not store unavailable", func(t *testing.T) {
		env := newTestEnv(downtownA5)
		env.store.listErr = &pq.Error{Code: pgerr.CodeQueryCanceled, Message: "canceling statement due to user request"}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := env.uc.Execute(ctx, bookA5("first@example.com"))
		assert.ErrorIs(t, err, ErrInternal)
		assert.NotErrorIs(t, err, ErrStoreUnavailable)
	})

	t.Run("statement timeout", func(t *testing.T) {
		env := newTestEnv(downtownA5)
		env.store.listErr = &pq.Error{Code: pgerr.CodeQueryCanceled, Message: "canceling statement due to statement timeout"}

		_, err := env.uc.Execute(context.Background(), bookA5("first@example.com"))
		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})
}

func TestUseCase_Execute_DifferentSlotsDoNotBlock(t *testing.T) {
	a6 := domain.SlotKey{SlotID: "A6", Location: "DowntownLot"}
	env := newTestEnv(downtownA5, a6)

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := bookA5(fmt.Sprintf("user%d@example.com", i))
			if i%2 == 1 {
				req.SlotID = "A6"
			}
			_, err := env.uc.Execute(context.Background(), req)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, ErrSlotConflict)
	}

	assert.Equal(t, 2, successes)
	assert.Equal(t, 2, env.store.reservationCount())
	assert.True(t, env.store.registry[downtownA5])
	assert.True(t, env.store.registry[a6])
}

func TestUseCase_Execute_PublishFailureKeepsBooking(t *testing.T) {
	env := newTestEnv(downtownA5)
	env.publisher.err = errors.New("broker down")

	resp, err := env.uc.Execute(context.Background(), bookA5("first@example.com"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.ReservationID)
	assert.Len(t, env.store.reservations, 1)
}
