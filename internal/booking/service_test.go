package booking

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/example/tablebook/internal/domain/reservation"
	"github.com/example/tablebook/internal/engine"
	"github.com/example/tablebook/internal/notify"
	"github.com/example/tablebook/internal/reservations"
	"github.com/example/tablebook/internal/restaurants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	day      = reservation.Date{Year: 2026, Month: time.October, Day: 16}
	startNow = time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC)
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []notify.TableChange
	err     error
}

func (n *recordingNotifier) TableChanged(_ context.Context, c notify.TableChange) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, c)
	return n.err
}

type memCache struct {
	mu   sync.Mutex
	gens map[string]int64
	vals map[string][]byte
	ttls map[string]time.Duration
	hits int
}

func newMemCache() *memCache {
	return &memCache{gens: map[string]int64{}, vals: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memCache) Generation(_ context.Context, restaurantID string, d reservation.Date) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[generationKey(restaurantID, d)], nil
}

func (c *memCache) Bump(_ context.Context, restaurantID string, d reservation.Date) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[generationKey(restaurantID, d)]++
	return nil
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.vals[key]
	if ok {
		c.hits++
	}
	return b, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals[key] = val
	c.ttls[key] = ttl
	return nil
}

type fixture struct {
	svc      *Service
	rest     restaurants.Restaurant
	repo     *restaurants.MemoryRepo
	store    *reservations.Memory
	clock    *fixedClock
	notifier *recordingNotifier
	cache    *memCache
	logs     *bytes.Buffer
}

func testParameters() reservation.Parameters {
	var hours reservation.WeekSchedule
	for i := range hours {
		hours[i] = reservation.DaySchedule{Ranges: []reservation.HourRange{
			{Open: reservation.Clock(12, 0), Close: reservation.Clock(14, 0)},
			{Open: reservation.Clock(19, 0), Close: reservation.Clock(22, 0)},
		}}
	}
	return reservation.Parameters{
		Tables: []reservation.Table{
			{ID: "t2", Name: "Terrace", Seats: 4},
			{ID: "t1", Name: "Window", Seats: 4},
			{ID: "b1", Name: "Bar", Seats: 2},
		},
		ReservationHours:       hours,
		Interval:               15,
		ManageDisponibilities:  true,
		OccupancyLunchMinutes:  60,
		OccupancyDinnerMinutes: 90,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := restaurants.NewMemoryRepo()
	in, err := restaurants.New("Bistro", "UTC", reservation.WeekSchedule{}, testParameters())
	require.NoError(t, err)
	rest, err := repo.Create(context.Background(), in)
	require.NoError(t, err)

	f := &fixture{
		rest:     rest,
		repo:     repo,
		store:    reservations.NewMemory(),
		clock:    &fixedClock{now: startNow},
		notifier: &recordingNotifier{},
		cache:    newMemCache(),
		logs:     &bytes.Buffer{},
	}
	f.svc = NewService(Deps{
		Restaurants: repo,
		Store:       f.store,
		Cache:       f.cache,
		Notifier:    f.notifier,
		Clock:       f.clock,
		Log:         slog.New(slog.NewTextHandler(f.logs, nil)),
		PendingHold: 15 * time.Minute,
		CacheTTL:    30 * time.Second,
	})
	return f
}

func (f *fixture) create(t *testing.T, at reservation.TimeOfDay, guests int) CreateResult {
	t.Helper()
	res, err := f.svc.CreateReservation(context.Background(), "bistro", CreateInput{
		Date:     day,
		Time:     at,
		Guests:   guests,
		Customer: Customer{Name: "Ada", Email: "ada@example.com"},
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) confirm(t *testing.T, id string) {
	t.Helper()
	status := reservation.StatusConfirmed
	_, err := f.svc.UpdateReservation(context.Background(), "bistro", id, UpdateInput{Status: &status})
	require.NoError(t, err)
}

func requireNoTable(t *testing.T, err error, reason engine.Reason) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrNoTableAvailable)
	var ae *engine.AllocationError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, reason, ae.Reason)
}

func requireValidation(t *testing.T, err error, field string) {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Equal(t, field, ve.Field)
}

func ptr[T any](v T) *T { return &v }

func TestCreateReservationAssignsAndExhausts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.create(t, reservation.Clock(19, 0), 3)
	assert.Equal(t, reservation.Configured{TableID: "t1", Name: "Window", Seats: 4}, first.Table)
	assert.Equal(t, reservation.StatusPending, first.Reservation.Status)
	require.NotNil(t, first.Reservation.PendingExpires)
	assert.Equal(t, startNow.Add(15*time.Minute), *first.Reservation.PendingExpires)
	assert.Len(t, first.Reservation.Reference, 7)
	assert.Equal(t, 1, first.Reservation.Version)
	assert.Len(t, first.Reservations, 1)

	second := f.create(t, reservation.Clock(19, 30), 4)
	assert.Equal(t, "t2", second.Table.(reservation.Configured).TableID)
	assert.Len(t, second.Reservations, 2)

	_, err := f.svc.CreateReservation(ctx, "bistro", CreateInput{Date: day, Time: reservation.Clock(20, 0), Guests: 4})
	requireNoTable(t, err, engine.ReasonCapacityExhausted)
	assert.Contains(t, f.logs.String(), "booking:create:no_table")

	_, err = f.svc.CreateReservation(ctx, "bistro", CreateInput{Date: day, Time: reservation.Clock(20, 0), Guests: 6})
	requireNoTable(t, err, engine.ReasonNoTableOfSize)

	// a different size class is unaffected
	bar := f.create(t, reservation.Clock(20, 0), 2)
	assert.Equal(t, "Bar", bar.Table.DisplayName())

	list, err := f.svc.ListDay(ctx, "bistro", day)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestCreateReservationPreferredTable(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.CreateReservation(context.Background(), "bistro", CreateInput{
		Date: day, Time: reservation.Clock(19, 0), Guests: 4,
		Table: reservation.Configured{TableID: "t2"},
	})
	require.NoError(t, err)
	assert.Equal(t, reservation.Configured{TableID: "t2", Name: "Terrace", Seats: 4}, res.Table)
}

func TestCreateReservationValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    CreateInput
		field string
	}{
		{"no guests", CreateInput{Date: day, Time: reservation.Clock(19, 0)}, "numberOfGuests"},
		{"no date", CreateInput{Time: reservation.Clock(19, 0), Guests: 2}, "reservationDate"},
		{"outside hours", CreateInput{Date: day, Time: reservation.Clock(16, 0), Guests: 2}, "reservationTime"},
		{"off interval", CreateInput{Date: day, Time: reservation.Clock(19, 7), Guests: 2}, "reservationTime"},
		{"too late to seat", CreateInput{Date: day, Time: reservation.Clock(21, 50), Guests: 2}, "reservationTime"},
		{"past date", CreateInput{Date: day.AddDays(-2), Time: reservation.Clock(19, 0), Guests: 2}, "reservationDate"},
		{"earlier today", CreateInput{Date: reservation.DateOf(startNow), Time: reservation.Clock(9, 0), Guests: 2}, "reservationTime"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateReservation(ctx, "bistro", tt.in)
			requireValidation(t, err, tt.field)
		})
	}

	_, err := f.svc.CreateReservation(ctx, "nope", CreateInput{Date: day, Time: reservation.Clock(19, 0), Guests: 2})
	assert.ErrorIs(t, err, restaurants.ErrNotFound)
}

func TestExpiredHoldReleasesTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := testParameters()
	p.Tables = p.Tables[:1]
	_, err := f.repo.UpdateParameters(ctx, f.rest.ID, p)
	require.NoError(t, err)

	f.create(t, reservation.Clock(19, 0), 4)
	_, err = f.svc.CreateReservation(ctx, "bistro", CreateInput{Date: day, Time: reservation.Clock(19, 0), Guests: 4})
	requireNoTable(t, err, engine.ReasonCapacityExhausted)

	f.clock.Advance(16 * time.Minute)
	res := f.create(t, reservation.Clock(19, 0), 4)
	assert.Equal(t, "t2", res.Table.(reservation.Configured).TableID)
}

func TestConfirmedReservationKeepsBlocking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := testParameters()
	p.Tables = p.Tables[:1]
	_, err := f.repo.UpdateParameters(ctx, f.rest.ID, p)
	require.NoError(t, err)

	first := f.create(t, reservation.Clock(19, 0), 4)
	f.confirm(t, first.Reservation.ID)

	got, err := f.store.Get(ctx, f.rest.ID, first.Reservation.ID)
	require.NoError(t, err)
	assert.Nil(t, got.PendingExpires)

	f.clock.Advance(time.Hour)
	_, err = f.svc.CreateReservation(ctx, "bistro", CreateInput{Date: day, Time: reservation.Clock(19, 0), Guests: 4})
	requireNoTable(t, err, engine.ReasonCapacityExhausted)
}

func TestConcurrentCreatesForLastTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := testParameters()
	p.Tables = p.Tables[:1]
	_, err := f.repo.UpdateParameters(ctx, f.rest.ID, p)
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateReservation(ctx, "bistro", CreateInput{Date: day, Time: reservation.Clock(19, 0), Guests: 4})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, engine.ErrNoTableAvailable)
	}
	assert.Equal(t, 1, ok)

	list, err := f.store.ListDay(ctx, f.rest.ID, day)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAvailableSlotsAndSuggestion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, reservation.Clock(19, 0), 4)
	f.create(t, reservation.Clock(19, 0), 4)

	res, err := f.svc.AvailableSlots(ctx, "bistro", SlotQuery{Date: day, Guests: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, res.TableSize)
	assert.NotContains(t, res.Slots, reservation.Clock(19, 0))
	assert.NotContains(t, res.Slots, reservation.Clock(20, 15))
	assert.Contains(t, res.Slots, reservation.Clock(20, 30))
	require.NotNil(t, res.Suggested)
	assert.Equal(t, reservation.Clock(12, 0), *res.Suggested)

	res, err = f.svc.AvailableSlots(ctx, "bistro", SlotQuery{
		Date: day, Guests: 4,
		Prefer: []reservation.TimeOfDay{reservation.Clock(19, 0), reservation.Clock(20, 45)},
	})
	require.NoError(t, err)
	assert.Equal(t, reservation.Clock(20, 45), *res.Suggested)

	res, err = f.svc.AvailableSlots(ctx, "bistro", SlotQuery{Date: day, Guests: 4, Near: ptr(reservation.Clock(19, 30))})
	require.NoError(t, err)
	assert.Equal(t, reservation.Clock(20, 30), *res.Suggested)

	res, err = f.svc.AvailableSlots(ctx, "bistro", SlotQuery{Date: day.AddDays(-3), Guests: 4})
	require.NoError(t, err)
	assert.Empty(t, res.Slots)
	assert.Nil(t, res.Suggested)

	// two guests use the bar, untouched by the four-seat bookings
	res, err = f.svc.AvailableSlots(ctx, "bistro", SlotQuery{Date: day, Guests: 2})
	require.NoError(t, err)
	assert.Contains(t, res.Slots, reservation.Clock(19, 0))

	tables, err := f.svc.AvailableTables(ctx, "bistro", TableQuery{Date: day, Time: reservation.Clock(19, 0), Guests: 4})
	require.NoError(t, err)
	assert.Empty(t, tables)
	tables, err = f.svc.AvailableTables(ctx, "bistro", TableQuery{Date: day, Time: reservation.Clock(12, 0), Guests: 3})
	require.NoError(t, err)
	assert.Len(t, tables, 2)
}

func TestAvailableSlotsCachedUntilWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := SlotQuery{Date: day, Guests: 4}

	first, err := f.svc.AvailableSlots(ctx, "bistro", q)
	require.NoError(t, err)
	_, err = f.svc.AvailableSlots(ctx, "bistro", q)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.hits)

	f.create(t, reservation.Clock(19, 0), 4)
	f.create(t, reservation.Clock(19, 0), 4)

	after, err := f.svc.AvailableSlots(ctx, "bistro", q)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.hits, "write bumps the generation")
	assert.Contains(t, first.Slots, reservation.Clock(19, 0))
	assert.NotContains(t, after.Slots, reservation.Clock(19, 0))

	// every entry respects the configured maximum
	for _, ttl := range f.cache.ttls {
		assert.LessOrEqual(t, ttl, 30*time.Second)
	}

	_, err = f.svc.AvailableSlots(ctx, "bistro", SlotQuery{Date: day, Guests: 4, Exclude: "x"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.hits, "edit previews bypass the cache")
}

func TestUpdateContactOnlyKeepsTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, reservation.Clock(19, 0), 4)

	// the table is removed from configuration afterwards
	p := testParameters()
	p.Tables = p.Tables[2:]
	_, err := f.repo.UpdateParameters(ctx, f.rest.ID, p)
	require.NoError(t, err)

	res, err := f.svc.UpdateReservation(ctx, "bistro", created.Reservation.ID, UpdateInput{CustomerEmail: ptr(" new@example.com ")})
	require.NoError(t, err)
	assert.False(t, res.TableReassigned)
	assert.Nil(t, res.TableChange)
	assert.Equal(t, created.Table, res.Table)
	assert.Equal(t, "new@example.com", res.Reservation.CustomerEmail)
	assert.Equal(t, 2, res.Reservation.Version)
	assert.Empty(t, f.notifier.changes)
}

func TestUpdateMoveReassignsAndNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lunch := f.create(t, reservation.Clock(12, 0), 4)
	assert.Equal(t, "Window", lunch.Table.DisplayName())
	dinner := f.create(t, reservation.Clock(19, 0), 4)
	assert.Equal(t, "Window", dinner.Table.DisplayName())

	res, err := f.svc.UpdateReservation(ctx, "bistro", lunch.Reservation.ID, UpdateInput{Time: ptr(reservation.Clock(19, 30))})
	require.NoError(t, err)
	assert.True(t, res.TableReassigned)
	require.NotNil(t, res.TableChange)
	assert.Equal(t, TableChange{OldTableName: "Window", NewTableName: "Terrace"}, *res.TableChange)
	assert.Equal(t, reservation.Clock(19, 30), res.Reservation.Time)

	require.Len(t, f.notifier.changes, 1)
	n := f.notifier.changes[0]
	assert.Equal(t, lunch.Reservation.ID, n.ReservationID)
	assert.Equal(t, "ada@example.com", n.CustomerEmail)
	assert.Equal(t, "Terrace", n.NewTableName)
}

func TestUpdateMoveKeepsFreeTable(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, reservation.Clock(12, 0), 4)

	res, err := f.svc.UpdateReservation(context.Background(), "bistro", created.Reservation.ID, UpdateInput{
		Date: ptr(day.AddDays(1)), Time: ptr(reservation.Clock(20, 0)),
	})
	require.NoError(t, err)
	assert.False(t, res.TableReassigned)
	assert.Equal(t, created.Table, res.Table)
	assert.Equal(t, day.AddDays(1), res.Reservation.Date)

	old, err := f.svc.ListDay(context.Background(), "bistro", day)
	require.NoError(t, err)
	assert.Empty(t, old)
	assert.Len(t, res.Reservations, 1)
}

func TestUpdateLargerPartyWithoutTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, reservation.Clock(19, 0), 4)

	_, err := f.svc.UpdateReservation(ctx, "bistro", created.Reservation.ID, UpdateInput{Guests: ptr(6)})
	requireNoTable(t, err, engine.ReasonNoTableOfSize)

	got, err := f.store.Get(ctx, f.rest.ID, created.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Guests)
	assert.Equal(t, 1, got.Version)
}

func TestUpdateVersionConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, reservation.Clock(19, 0), 4)

	_, err := f.svc.UpdateReservation(ctx, "bistro", created.Reservation.ID, UpdateInput{Comment: ptr("window please"), Version: 1})
	require.NoError(t, err)
	_, err = f.svc.UpdateReservation(ctx, "bistro", created.Reservation.ID, UpdateInput{Comment: ptr("stale"), Version: 1})
	assert.ErrorIs(t, err, reservations.ErrVersionConflict)

	_, err = f.svc.UpdateReservation(ctx, "bistro", "missing", UpdateInput{})
	assert.ErrorIs(t, err, reservations.ErrNotFound)
}

func TestUpdateReactivatedReservationRechecksCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := testParameters()
	p.Tables = p.Tables[:1]
	_, err := f.repo.UpdateParameters(ctx, f.rest.ID, p)
	require.NoError(t, err)

	held := f.create(t, reservation.Clock(19, 0), 4)
	f.clock.Advance(20 * time.Minute)
	f.create(t, reservation.Clock(19, 0), 4)

	_, err = f.svc.UpdateReservation(ctx, "bistro", held.Reservation.ID, UpdateInput{Status: ptr(reservation.StatusConfirmed)})
	requireNoTable(t, err, engine.ReasonCapacityExhausted)

	// cancelling the lapsed hold needs no table
	res, err := f.svc.UpdateReservation(ctx, "bistro", held.Reservation.ID, UpdateInput{Status: ptr(reservation.StatusCancelled)})
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusCancelled, res.Reservation.Status)
}

func TestUpdateNotifierFailureDoesNotFailWrite(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("queue down")
	lunch := f.create(t, reservation.Clock(12, 0), 4)
	f.create(t, reservation.Clock(19, 0), 4)

	res, err := f.svc.UpdateReservation(context.Background(), "bistro", lunch.Reservation.ID, UpdateInput{Time: ptr(reservation.Clock(19, 0))})
	require.NoError(t, err)
	assert.True(t, res.TableReassigned)
	assert.Contains(t, f.logs.String(), "booking:notify:failed")
}

func TestPutParameters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bad := testParameters()
	bad.Tables = append(bad.Tables, reservation.Table{ID: "t1", Name: "Dup", Seats: 4})
	_, err := f.svc.PutParameters(ctx, "bistro", bad)
	requireValidation(t, err, "parameters")

	good := testParameters()
	good.Interval = 30
	out, err := f.svc.PutParameters(ctx, "bistro", good)
	require.NoError(t, err)
	assert.Equal(t, 30, out.Interval)

	got, err := f.svc.Parameters(ctx, "bistro")
	require.NoError(t, err)
	assert.Equal(t, 30, got.Interval)
}

// configSwapStore replaces the restaurant configuration just before the next
// write acquires its day lock.
type configSwapStore struct {
	*reservations.Memory
	before func()
}

func (s *configSwapStore) Locked(ctx context.Context, restaurantID string, days []reservation.Date, fn func(tx reservations.Tx) error) error {
	if f := s.before; f != nil {
		s.before = nil
		f()
	}
	return s.Memory.Locked(ctx, restaurantID, days, fn)
}

func barOnly() reservation.Parameters {
	p := testParameters()
	p.Tables = []reservation.Table{{ID: "b1", Name: "Bar", Seats: 2}}
	return p
}

func TestWritesDecideAgainstConfigurationAtCommit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := &configSwapStore{Memory: f.store}
	svc := NewService(Deps{
		Restaurants: f.repo,
		Store:       store,
		Clock:       f.clock,
		Log:         slog.New(slog.NewTextHandler(f.logs, nil)),
		PendingHold: 15 * time.Minute,
	})

	t.Run("create", func(t *testing.T) {
		store.before = func() {
			_, err := svc.PutParameters(ctx, "bistro", barOnly())
			require.NoError(t, err)
		}
		_, err := svc.CreateReservation(ctx, "bistro", CreateInput{Date: day, Time: reservation.Clock(19, 0), Guests: 4})
		requireNoTable(t, err, engine.ReasonNoTableOfSize)

		list, err := svc.ListDay(ctx, "bistro", day)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("update", func(t *testing.T) {
		_, err := svc.PutParameters(ctx, "bistro", testParameters())
		require.NoError(t, err)
		created, err := svc.CreateReservation(ctx, "bistro", CreateInput{Date: day, Time: reservation.Clock(19, 0), Guests: 4})
		require.NoError(t, err)

		store.before = func() {
			_, err := svc.PutParameters(ctx, "bistro", barOnly())
			require.NoError(t, err)
		}
		_, err = svc.UpdateReservation(ctx, "bistro", created.Reservation.ID, UpdateInput{Time: ptr(reservation.Clock(20, 30))})
		requireNoTable(t, err, engine.ReasonNoTableOfSize)

		got, err := f.store.Get(ctx, f.rest.ID, created.Reservation.ID)
		require.NoError(t, err)
		assert.Equal(t, reservation.Clock(19, 0), got.Time)
	})

	t.Run("bookable hours", func(t *testing.T) {
		p := testParameters()
		p.Interval = 30
		store.before = func() {
			_, err := svc.PutParameters(ctx, "bistro", p)
			require.NoError(t, err)
		}
		_, err := svc.CreateReservation(ctx, "bistro", CreateInput{Date: day, Time: reservation.Clock(19, 15), Guests: 2})
		requireValidation(t, err, "reservationTime")
	})
}

func TestManagementOffStoresTableVerbatim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := testParameters()
	p.ManageDisponibilities = false
	_, err := f.repo.UpdateParameters(ctx, f.rest.ID, p)
	require.NoError(t, err)

	manual := reservation.Manual{Name: "garden", Seats: 10}
	for i := 0; i < 3; i++ {
		res, err := f.svc.CreateReservation(ctx, "bistro", CreateInput{Date: day, Time: reservation.Clock(19, 0), Guests: 9, Table: manual})
		require.NoError(t, err)
		assert.Equal(t, manual, res.Table)
	}
}

func TestPreviewTTL(t *testing.T) {
	now := time.Date(2026, time.October, 16, 18, 30, 20, 0, time.UTC)
	soon := now.Add(10 * time.Second)
	later := now.Add(10 * time.Minute)
	lapsed := now.Add(-time.Minute)
	pending := func(exp *time.Time) reservation.Reservation {
		return reservation.Reservation{Status: reservation.StatusPending, PendingExpires: exp}
	}

	tomorrow := reservation.DateOf(now).AddDays(1)
	assert.Equal(t, 30*time.Second, previewTTL(30*time.Second, now, tomorrow, nil))
	assert.Equal(t, 30*time.Second, previewTTL(30*time.Second, now, tomorrow, []reservation.Reservation{pending(&later), pending(&lapsed), pending(nil)}))
	assert.Equal(t, 10*time.Second, previewTTL(30*time.Second, now, tomorrow, []reservation.Reservation{pending(&later), pending(&soon)}))
	assert.Equal(t, 40*time.Second, previewTTL(time.Minute, now, reservation.DateOf(now), nil), "today stops at the minute boundary")
}
