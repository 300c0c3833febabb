package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-booking-backend/internal/inventory"
	"travel-booking-backend/internal/payment"
	"travel-booking-backend/internal/settings"
	"travel-booking-backend/internal/trip"
	"travel-booking-backend/internal/waitinglist"
)

// ==== In-memory fakes ====

// memRepo mimics the repository's transactional semantics: one room per
// traveler, turn goes to the queue head, and a stale room counter can never
// be observed because every method is a single atomic step here.
type memRepo struct {
	bookings map[int64]*Booking
	nextID   int64

	trips map[int64]*trip.Trip
	queue map[int64][]string // tripID -> ordered user ids
}

func newMemRepo(trips map[int64]*trip.Trip) *memRepo {
	return &memRepo{
		bookings: map[int64]*Booking{},
		nextID:   1,
		trips:    trips,
		queue:    map[int64][]string{},
	}
}

func (r *memRepo) CreateConfirmed(ctx context.Context, userID string, tripID int64, partySize int, now time.Time) (*Booking, error) {
	t, ok := r.trips[tripID]
	if !ok {
		return nil, trip.ErrNotFound
	}

	if q := r.queue[tripID]; len(q) > 0 && q[0] != userID {
		return nil, ErrNotYourTurn
	}
	if t.AvailableRooms < partySize {
		return nil, inventory.ErrInsufficientInventory
	}
	t.AvailableRooms -= partySize

	b := &Booking{
		ID:            r.nextID,
		TripID:        tripID,
		UserID:        userID,
		PartySize:     partySize,
		TotalPrice:    t.EffectivePrice(now) * float64(partySize),
		CreatedAt:     now,
		UpdatedAt:     now,
		TripTitle:     t.Title,
		TripStartDate: t.StartDate,
	}
	r.bookings[b.ID] = b
	r.nextID++

	// Booking consumes the queue spot.
	if q := r.queue[tripID]; len(q) > 0 && q[0] == userID {
		r.queue[tripID] = q[1:]
	}
	return b, nil
}

func (r *memRepo) GetByID(ctx context.Context, id int64) (*Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memRepo) List(ctx context.Context, filter Filter, now time.Time) ([]*Booking, int, error) {
	var out []*Booking
	for _, b := range r.bookings {
		if filter.UserID != "" && b.UserID != filter.UserID {
			continue
		}
		out = append(out, b)
	}
	return out, len(out), nil
}

func (r *memRepo) CountUpcoming(ctx context.Context, userID string, now time.Time) (int, error) {
	n := 0
	for _, b := range r.bookings {
		if b.UserID == userID && !b.Cancelled && b.TripStartDate.After(now) {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) HasActive(ctx context.Context, userID string, tripID int64) (bool, error) {
	for _, b := range r.bookings {
		if b.UserID == userID && b.TripID == tripID && !b.Cancelled {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) MarkPaid(ctx context.Context, id int64, transactionID string, at time.Time) error {
	b, ok := r.bookings[id]
	if !ok || b.Paid || b.Cancelled {
		return ErrNotFound
	}
	b.Paid = true
	b.PaidAt = &at
	b.TransactionID = &transactionID
	return nil
}

func (r *memRepo) ResizeParty(ctx context.Context, id int64, partySize int, totalPrice float64) (int64, int, error) {
	b, ok := r.bookings[id]
	if !ok || b.Paid || b.Cancelled {
		return 0, 0, ErrNotFound
	}

	t := r.trips[b.TripID]
	delta := partySize - b.PartySize
	if delta > t.AvailableRooms {
		return 0, 0, inventory.ErrInsufficientInventory
	}
	t.AvailableRooms -= delta

	b.PartySize = partySize
	b.TotalPrice = totalPrice
	return b.TripID, t.AvailableRooms, nil
}

func (r *memRepo) CancelAndRelease(ctx context.Context, id int64, at time.Time) (int64, int, error) {
	b, ok := r.bookings[id]
	if !ok || b.Cancelled {
		return 0, 0, ErrAlreadyCancelled
	}
	b.Cancelled = true
	b.CancelledAt = &at

	t := r.trips[b.TripID]
	t.AvailableRooms += b.PartySize
	return b.TripID, t.AvailableRooms, nil
}

func (r *memRepo) ListForReminder(ctx context.Context, from, to time.Time) ([]*Reminder, error) {
	return nil, nil
}

type memTripRepo struct {
	trips map[int64]*trip.Trip
}

func (r *memTripRepo) Create(ctx context.Context, t *trip.Trip) error { return nil }
func (r *memTripRepo) GetByID(ctx context.Context, id int64) (*trip.Trip, error) {
	t, ok := r.trips[id]
	if !ok {
		return nil, trip.ErrNotFound
	}
	return t, nil
}
func (r *memTripRepo) List(ctx context.Context, f trip.Filter) ([]*trip.Trip, int, error) {
	return nil, 0, nil
}
func (r *memTripRepo) Update(ctx context.Context, t *trip.Trip) error              { return nil }
func (r *memTripRepo) Delete(ctx context.Context, id int64) error                  { return nil }
func (r *memTripRepo) SetImageURL(ctx context.Context, id int64, url string) error { return nil }

// fakeQueue tracks NotifyNext calls and shares ordering state with memRepo.
type fakeQueue struct {
	repo     *memRepo
	notified []int64
}

func (q *fakeQueue) Join(ctx context.Context, tripID int64, userID string) (*waitinglist.Entry, error) {
	q.repo.queue[tripID] = append(q.repo.queue[tripID], userID)
	return &waitinglist.Entry{TripID: tripID, UserID: userID}, nil
}
func (q *fakeQueue) Leave(ctx context.Context, tripID int64, userID string) error { return nil }
func (q *fakeQueue) MyStatus(ctx context.Context, tripID int64, userID string) (*waitinglist.Status, error) {
	return nil, waitinglist.ErrNotQueued
}
func (q *fakeQueue) IsMyTurn(ctx context.Context, tripID int64, userID string) (bool, error) {
	head := q.repo.queue[tripID]
	return len(head) == 0 || head[0] == userID, nil
}
func (q *fakeQueue) NotifyNext(ctx context.Context, tripID int64) error {
	q.notified = append(q.notified, tripID)
	return nil
}
func (q *fakeQueue) ExpireNotifications(ctx context.Context, olderThan time.Time) (int, error) {
	return 0, nil
}
func (q *fakeQueue) TripQueue(ctx context.Context, tripID int64) ([]*waitinglist.Entry, error) {
	return nil, nil
}
func (q *fakeQueue) Clear(ctx context.Context, tripID int64) error      { return nil }
func (q *fakeQueue) RemoveEntry(ctx context.Context, entryID int64) error { return nil }

type fakeProcessor struct {
	charged []float64
	fail    error
}

func (p *fakeProcessor) Charge(ctx context.Context, card payment.Card, amount float64, description string) (string, error) {
	if p.fail != nil {
		return "", p.fail
	}
	p.charged = append(p.charged, amount)
	return "PAY-test1234", nil
}

type nullMailer struct {
	sent []string
}

func (m *nullMailer) Send(ctx context.Context, to, subject, body string) error {
	m.sent = append(m.sent, to)
	return nil
}

type staticSettings struct {
	cfg settings.AdminSettings
}

func (s staticSettings) Get(ctx context.Context) settings.AdminSettings { return s.cfg }
func (s staticSettings) Update(ctx context.Context, cfg settings.AdminSettings) error {
	return nil
}

// ==== Test harness ====

type harness struct {
	svc       *service
	repo      *memRepo
	queue     *fakeQueue
	processor *fakeProcessor
	mail      *nullMailer
	now       time.Time
}

func newHarness(t *testing.T, trips map[int64]*trip.Trip) *harness {
	t.Helper()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := newMemRepo(trips)
	queue := &fakeQueue{repo: repo}
	processor := &fakeProcessor{}
	mail := &nullMailer{}

	svc := NewService(repo, &memTripRepo{trips: trips}, queue, processor, mail,
		staticSettings{cfg: settings.Defaults()}).(*service)
	svc.now = func() time.Time { return now }

	return &harness{svc: svc, repo: repo, queue: queue, processor: processor, mail: mail, now: now}
}

func testTrip(id int64, rooms int, daysOut int) *trip.Trip {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC).AddDate(0, 0, daysOut)
	return &trip.Trip{
		ID:             id,
		Title:          "Alpine Trek",
		Capacity:       rooms,
		AvailableRooms: rooms,
		Price:          100,
		StartDate:      start,
		EndDate:        start.AddDate(0, 0, 7),
		IsVisible:      true,
	}
}

// ==== Tests ====

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshots the current price", func(t *testing.T) {
		h := newHarness(t, map[int64]*trip.Trip{1: testTrip(1, 5, 30)})

		b, err := h.svc.Create(ctx, "alice", 1, 4)
		require.NoError(t, err)
		assert.Equal(t, StateConfirmed, b.State())
		assert.Equal(t, 4, b.PartySize)
		assert.Equal(t, 400.0, b.TotalPrice)
	})

	t.Run("reserves a room per traveler", func(t *testing.T) {
		h := newHarness(t, map[int64]*trip.Trip{1: testTrip(1, 5, 30)})

		_, err := h.svc.Create(ctx, "alice", 1, 4)
		require.NoError(t, err)
		assert.Equal(t, 1, h.repo.trips[1].AvailableRooms)

		// One room left; a party of two does not fit.
		_, err = h.svc.Create(ctx, "bob", 1, 2)
		require.ErrorIs(t, err, inventory.ErrInsufficientInventory)
	})

	t.Run("party size bounds", func(t *testing.T) {
		h := newHarness(t, map[int64]*trip.Trip{1: testTrip(1, 5, 30)})

		for _, size := range []int{0, -1, 21} {
			_, err := h.svc.Create(ctx, "alice", 1, size)
			assert.ErrorIs(t, err, ErrInvalidPartySize, "size %d", size)
		}
	})

	t.Run("lead time", func(t *testing.T) {
		// Default lead time is 7 days; a trip 3 days out is too close.
		h := newHarness(t, map[int64]*trip.Trip{1: testTrip(1, 5, 3)})

		_, err := h.svc.Create(ctx, "alice", 1, 1)
		require.ErrorIs(t, err, ErrTooCloseToStart)
	})

	t.Run("departed trip", func(t *testing.T) {
		h := newHarness(t, map[int64]*trip.Trip{1: testTrip(1, 5, -1)})

		_, err := h.svc.Create(ctx, "alice", 1, 1)
		require.ErrorIs(t, err, ErrTripStarted)
	})

	t.Run("upcoming booking cap", func(t *testing.T) {
		trips := map[int64]*trip.Trip{}
		for id := int64(1); id <= 4; id++ {
			trips[id] = testTrip(id, 5, 30+int(id))
		}
		h := newHarness(t, trips)

		for id := int64(1); id <= 3; id++ {
			_, err := h.svc.Create(ctx, "alice", id, 1)
			require.NoError(t, err)
		}

		_, err := h.svc.Create(ctx, "alice", 4, 1)
		require.ErrorIs(t, err, ErrTooManyUpcoming)

		// Other users are unaffected.
		_, err = h.svc.Create(ctx, "bob", 4, 1)
		require.NoError(t, err)
	})

	t.Run("duplicate active booking", func(t *testing.T) {
		h := newHarness(t, map[int64]*trip.Trip{1: testTrip(1, 5, 30)})

		_, err := h.svc.Create(ctx, "alice", 1, 1)
		require.NoError(t, err)

		_, err = h.svc.Create(ctx, "alice", 1, 2)
		require.ErrorIs(t, err, ErrDuplicateBooking)
	})
}

// TestLastRoomHandoff walks the full handoff of a single room: the holder
// cancels, the queue is woken, the queue head books, and a bystander who
// tries to jump the line is turned away.
func TestLastRoomHandoff(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, map[int64]*trip.Trip{1: testTrip(1, 1, 30)})

	// Alice takes the only room; Bob queues up.
	b, err := h.svc.Create(ctx, "alice", 1, 1)
	require.NoError(t, err)
	_, err = h.queue.Join(ctx, 1, "bob")
	require.NoError(t, err)

	// Carol cannot book: no rooms, and it is not her turn anyway.
	_, err = h.svc.Create(ctx, "carol", 1, 1)
	require.ErrorIs(t, err, ErrNotYourTurn)

	// Alice cancels; the freed room wakes the queue.
	require.NoError(t, h.svc.Cancel(ctx, "alice", false, b.ID))
	assert.Equal(t, []int64{1}, h.queue.notified)

	// Carol still cannot take Bob's turn.
	_, err = h.svc.Create(ctx, "carol", 1, 1)
	require.ErrorIs(t, err, ErrNotYourTurn)

	// Bob books and leaves the queue.
	bb, err := h.svc.Create(ctx, "bob", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, bb.State())
	assert.Empty(t, h.repo.queue[1])
}

func TestPay(t *testing.T) {
	ctx := context.Background()
	card := payment.Card{Number: "4111111111111111", Expiry: "12/28", CVV: "123", HolderName: "Alice A"}

	t.Run("charges the snapshot total and confirms by mail", func(t *testing.T) {
		h := newHarness(t, map[int64]*trip.Trip{1: testTrip(1, 5, 30)})
		b, err := h.svc.Create(ctx, "alice", 1, 3)
		require.NoError(t, err)

		paid, err := h.svc.Pay(ctx, "alice", "alice@example.com", b.ID, card)
		require.NoError(t, err)

		assert.Equal(t, StatePaid, paid.State())
		assert.Equal(t, []float64{300}, h.processor.charged)
		require.NotNil(t, paid.TransactionID)
		assert.Equal(t, "PAY-test1234", *paid.TransactionID)
		assert.Equal(t, []string{"alice@example.com"}, h.mail.sent)
	})

	t.Run("only the owner pays", func(t *testing.T) {
		h := newHarness(t, map[int64]*trip.Trip{1: testTrip(1, 5, 30)})
		b, err := h.svc.Create(ctx, "alice", 1, 1)
		require.NoError(t, err)

		_, err = h.svc.Pay(ctx, "mallory", "mallory@example.com", b.ID, card)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("paying twice", func(t *testing.T) {
		h := newHarness(t, map[int64]*trip.Trip{1: testTrip(1, 5, 30)})
		b, err := h.svc.Create(ctx, "alice", 1, 1)
		require.NoError(t, err)

		_, err = h.svc.Pay(ctx, "alice", "alice@example.com", b.ID, card)
		require.NoError(t, err)

		_, err = h.svc.Pay(ctx, "alice", "alice@example.com", b.ID, card)
		require.ErrorIs(t, err, ErrAlreadyPaid)
	})

	t.Run("cancelled booking", func(t *testing.T) {
		h := newHarness(t, map[int64]*trip.Trip{1: testTrip(1, 5, 30)})
		b, err := h.svc.Create(ctx, "alice", 1, 1)
		require.NoError(t, err)
		require.NoError(t, h.svc.Cancel(ctx, "alice", false, b.ID))

		_, err = h.svc.Pay(ctx, "alice", "alice@example.com", b.ID, card)
		require.ErrorIs(t, err, ErrAlreadyCancelled)
	})

	t.Run("charge failure leaves the booking unpaid", func(t *testing.T) {
		h := newHarness(t, map[int64]*trip.Trip{1: testTrip(1, 5, 30)})
		b, err := h.svc.Create(ctx, "alice", 1, 1)
		require.NoError(t, err)

		h.processor.fail = payment.ErrChargeFailed
		_, err = h.svc.Pay(ctx, "alice", "alice@example.com", b.ID, card)
		require.ErrorIs(t, err, payment.ErrChargeFailed)

		got, err := h.svc.GetByID(ctx, "alice", false, b.ID)
		require.NoError(t, err)
		assert.Equal(t, StateConfirmed, got.State())
	})
}

func TestChangePartySize(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps the per person price", func(t *testing.T) {
		h := newHarness(t, map[int64]*trip.Trip{1: testTrip(1, 5, 30)})
		b, err := h.svc.Create(ctx, "alice", 1, 2)
		require.NoError(t, err)
		require.Equal(t, 200.0, b.TotalPrice)

		// The trip price doubles afterwards; the booking keeps its snapshot.
		h.repo.trips[1].Price = 200

		resized, err := h.svc.ChangePartySize(ctx, "alice", b.ID, 5)
		require.NoError(t, err)
		assert.Equal(t, 5, resized.PartySize)
		assert.Equal(t, 500.0, resized.TotalPrice)
		assert.Equal(t, 0, h.repo.trips[1].AvailableRooms, "the three extra rooms are reserved")
	})

	t.Run("growing the party needs rooms", func(t *testing.T) {
		h := newHarness(t, map[int64]*trip.Trip{1: testTrip(1, 2, 30)})
		b, err := h.svc.Create(ctx, "alice", 1, 2)
		require.NoError(t, err)
		require.Equal(t, 0, h.repo.trips[1].AvailableRooms)

		_, err = h.svc.ChangePartySize(ctx, "alice", b.ID, 3)
		require.ErrorIs(t, err, inventory.ErrInsufficientInventory)

		got, err := h.svc.GetByID(ctx, "alice", false, b.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.PartySize, "a rejected resize leaves the booking untouched")
		assert.Equal(t, 0, h.repo.trips[1].AvailableRooms)
	})

	t.Run("shrinking frees rooms and wakes the queue", func(t *testing.T) {
		h := newHarness(t, map[int64]*trip.Trip{1: testTrip(1, 3, 30)})
		b, err := h.svc.Create(ctx, "alice", 1, 3)
		require.NoError(t, err)
		_, err = h.queue.Join(ctx, 1, "bob")
		require.NoError(t, err)

		resized, err := h.svc.ChangePartySize(ctx, "alice", b.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, resized.PartySize)
		assert.Equal(t, 2, h.repo.trips[1].AvailableRooms)
		assert.Equal(t, []int64{1}, h.queue.notified, "freed rooms reach the waiting list")
	})

	t.Run("paid bookings are immutable", func(t *testing.T) {
		h := newHarness(t, map[int64]*trip.Trip{1: testTrip(1, 5, 30)})
		b, err := h.svc.Create(ctx, "alice", 1, 2)
		require.NoError(t, err)

		card := payment.Card{Number: "4111111111111111", Expiry: "12/28", CVV: "123", HolderName: "Alice A"}
		_, err = h.svc.Pay(ctx, "alice", "alice@example.com", b.ID, card)
		require.NoError(t, err)

		_, err = h.svc.ChangePartySize(ctx, "alice", b.ID, 4)
		require.ErrorIs(t, err, ErrPaidImmutable)
	})

	t.Run("bounds", func(t *testing.T) {
		h := newHarness(t, map[int64]*trip.Trip{1: testTrip(1, 5, 30)})
		b, err := h.svc.Create(ctx, "alice", 1, 2)
		require.NoError(t, err)

		_, err = h.svc.ChangePartySize(ctx, "alice", b.ID, 0)
		assert.ErrorIs(t, err, ErrInvalidPartySize)
		_, err = h.svc.ChangePartySize(ctx, "alice", b.ID, 21)
		assert.ErrorIs(t, err, ErrInvalidPartySize)
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("inside the deadline", func(t *testing.T) {
		h := newHarness(t, map[int64]*trip.Trip{1: testTrip(1, 5, 30)})
		b, err := h.svc.Create(ctx, "alice", 1, 3)
		require.NoError(t, err)
		require.Equal(t, 2, h.repo.trips[1].AvailableRooms)

		require.NoError(t, h.svc.Cancel(ctx, "alice", false, b.ID))

		got, err := h.svc.GetByID(ctx, "alice", false, b.ID)
		require.NoError(t, err)
		assert.Equal(t, StateCancelled, got.State())
		assert.Equal(t, 5, h.repo.trips[1].AvailableRooms, "every room of the party goes back")
	})

	t.Run("past the deadline", func(t *testing.T) {
		// Default cancellation deadline is 5 days; book a trip 10 days out,
		// then try to cancel when only 4 remain.
		h := newHarness(t, map[int64]*trip.Trip{1: testTrip(1, 5, 10)})
		b, err := h.svc.Create(ctx, "alice", 1, 1)
		require.NoError(t, err)

		h.svc.now = func() time.Time { return h.now.AddDate(0, 0, 6) }

		err = h.svc.Cancel(ctx, "alice", false, b.ID)
		require.ErrorIs(t, err, ErrCancelDeadline)
	})

	t.Run("admins may cancel past the deadline", func(t *testing.T) {
		h := newHarness(t, map[int64]*trip.Trip{1: testTrip(1, 5, 10)})
		b, err := h.svc.Create(ctx, "alice", 1, 1)
		require.NoError(t, err)

		h.svc.now = func() time.Time { return h.now.AddDate(0, 0, 6) }

		require.NoError(t, h.svc.Cancel(ctx, "admin", true, b.ID))
	})

	t.Run("cancelling twice", func(t *testing.T) {
		h := newHarness(t, map[int64]*trip.Trip{1: testTrip(1, 5, 30)})
		b, err := h.svc.Create(ctx, "alice", 1, 1)
		require.NoError(t, err)

		require.NoError(t, h.svc.Cancel(ctx, "alice", false, b.ID))
		err = h.svc.Cancel(ctx, "alice", false, b.ID)
		require.ErrorIs(t, err, ErrAlreadyCancelled)
	})

	t.Run("only owner or admin", func(t *testing.T) {
		h := newHarness(t, map[int64]*trip.Trip{1: testTrip(1, 5, 30)})
		b, err := h.svc.Create(ctx, "alice", 1, 1)
		require.NoError(t, err)

		err = h.svc.Cancel(ctx, "mallory", false, b.ID)
		require.ErrorIs(t, err, ErrForbidden)
	})
}
