package booking

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"staybook/internal/domain"
	"staybook/internal/events"
	"staybook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) ListHotels(ctx context.Context) ([]models.Hotel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Hotel), args.Error(1)
}
func (m *mockGateway) GetHotel(ctx context.Context, id string) (*models.Hotel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Hotel), args.Error(1)
}
func (m *mockGateway) ListRooms(ctx context.Context) ([]models.Room, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Room), args.Error(1)
}
func (m *mockGateway) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}
func (m *mockGateway) ListBookings(ctx context.Context, credential string) ([]models.Booking, error) {
	args := m.Called(ctx, credential)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockGateway) CreateBooking(ctx context.Context, roomID string, checkIn, checkOut time.Time, paymentMethod, credential string) (*models.Booking, error) {
	args := m.Called(ctx, roomID, checkIn, checkOut, paymentMethod, credential)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockGateway) UpdateBooking(ctx context.Context, bookingID string, checkIn, checkOut time.Time, credential string) (*models.Booking, error) {
	args := m.Called(ctx, bookingID, checkIn, checkOut, credential)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockGateway) DeleteBooking(ctx context.Context, bookingID, credential string) error {
	return m.Called(ctx, bookingID, credential).Error(0)
}
func (m *mockGateway) CancelPayment(ctx context.Context, paymentID, credential string) (*models.Receipt, error) {
	args := m.Called(ctx, paymentID, credential)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Receipt), args.Error(1)
}

func newTestCoordinator(gw domain.Gateway, bus domain.EventPublisher) *Coordinator {
	logger := zerolog.New(io.Discard)
	return NewCoordinator(gw, bus, &logger)
}

var (
	checkIn  = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	checkOut = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
)

func TestCreate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		gw := new(mockGateway)
		gw.On("CreateBooking", mock.Anything, "r1", checkIn, checkOut, models.PaymentCreditCard, "tok").
			Return(&models.Booking{ID: "b1", RoomID: "r1", CheckInDate: checkIn, CheckOutDate: checkOut}, nil)

		bus := events.NewEventBus()
		var published int
		bus.Subscribe(events.EventBookingCreated, func(_ *events.Event) error { published++; return nil })

		coord := newTestCoordinator(gw, bus)
		booking, err := coord.Create(context.Background(), "r1", checkIn, checkOut, models.PaymentCreditCard, "tok")
		require.NoError(t, err)
		assert.NotEmpty(t, booking.ID)
		assert.Equal(t, 1, published)
		gw.AssertNumberOfCalls(t, "CreateBooking", 1)
	})

	t.Run("ServerDatesAreCanonical", func(t *testing.T) {
		// The backend may normalize the dates it was sent; the returned
		// booking wins over the request.
		normalizedIn := checkIn.Add(14 * time.Hour)
		gw := new(mockGateway)
		gw.On("CreateBooking", mock.Anything, "r1", checkIn, checkOut, models.PaymentDebitCard, "tok").
			Return(&models.Booking{ID: "b1", CheckInDate: normalizedIn, CheckOutDate: checkOut}, nil)

		coord := newTestCoordinator(gw, nil)
		booking, err := coord.Create(context.Background(), "r1", checkIn, checkOut, models.PaymentDebitCard, "tok")
		require.NoError(t, err)
		assert.Equal(t, normalizedIn, booking.CheckInDate)
	})

	t.Run("InvalidDateRange", func(t *testing.T) {
		gw := new(mockGateway)
		coord := newTestCoordinator(gw, nil)

		_, err := coord.Create(context.Background(), "r1", checkOut, checkIn, models.PaymentCreditCard, "tok")
		assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

		_, err = coord.Create(context.Background(), "r1", checkIn, checkIn, models.PaymentCreditCard, "tok")
		assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

		gw.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		gw := new(mockGateway)
		coord := newTestCoordinator(gw, nil)

		_, err := coord.Create(context.Background(), "r1", checkIn, checkOut, models.PaymentCreditCard, "")
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		gw.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NoRoom", func(t *testing.T) {
		gw := new(mockGateway)
		coord := newTestCoordinator(gw, nil)

		_, err := coord.Create(context.Background(), "", checkIn, checkOut, models.PaymentCreditCard, "tok")
		assert.ErrorIs(t, err, domain.ErrNoRoomSelected)
	})

	t.Run("Rejected", func(t *testing.T) {
		gw := new(mockGateway)
		gw.On("CreateBooking", mock.Anything, "r1", checkIn, checkOut, models.PaymentCreditCard, "tok").
			Return(nil, &domain.RejectedError{Message: "Room unavailable"})

		bus := events.NewEventBus()
		var published int
		bus.Subscribe(events.EventBookingCreated, func(_ *events.Event) error { published++; return nil })

		coord := newTestCoordinator(gw, bus)
		_, err := coord.Create(context.Background(), "r1", checkIn, checkOut, models.PaymentCreditCard, "tok")

		var rejected *domain.RejectedError
		require.ErrorAs(t, err, &rejected)
		assert.Equal(t, "Room unavailable", rejected.Message)
		assert.Zero(t, published, "no event on failure")
	})
}

func TestCreateFromSelection(t *testing.T) {
	room := &models.Room{ID: "r1", HotelID: "h1", Type: "Deluxe", Number: 101, Price: 120}

	t.Run("Incomplete", func(t *testing.T) {
		coord := newTestCoordinator(new(mockGateway), nil)
		sel := &models.Selection{}
		sel.SetHotel("Grand Plaza")

		_, err := coord.CreateFromSelection(context.Background(), sel, "tok")
		assert.ErrorIs(t, err, domain.ErrIncompleteSelection)
	})

	t.Run("Complete", func(t *testing.T) {
		gw := new(mockGateway)
		gw.On("CreateBooking", mock.Anything, "r1", checkIn, checkOut, models.PaymentCreditCard, "tok").
			Return(&models.Booking{ID: "b1"}, nil)

		coord := newTestCoordinator(gw, nil)
		sel := &models.Selection{}
		sel.SetHotel("Grand Plaza")
		sel.SetRoom(room)
		sel.SetDates(checkIn, checkOut)
		sel.SetPaymentMethod(models.PaymentCreditCard)

		booking, err := coord.CreateFromSelection(context.Background(), sel, "tok")
		require.NoError(t, err)
		assert.Equal(t, "b1", booking.ID)
	})
}

func TestUpdate(t *testing.T) {
	local := []models.Booking{
		{ID: "b1", CheckInDate: checkIn, CheckOutDate: checkOut},
	}
	newIn := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	newOut := time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC)

	t.Run("FailureLeavesLocalStateUntouched", func(t *testing.T) {
		gw := new(mockGateway)
		gw.On("UpdateBooking", mock.Anything, "b1", newIn, newOut, "tok").
			Return(nil, &domain.RejectedError{Message: "Room unavailable"})

		coord := newTestCoordinator(gw, nil)
		_, err := coord.Update(context.Background(), "b1", newIn, newOut, "tok")

		var rejected *domain.RejectedError
		require.ErrorAs(t, err, &rejected)
		assert.Equal(t, "Room unavailable", rejected.Message)

		// Pre-call dates stand because nothing was committed locally.
		assert.Equal(t, checkIn, local[0].CheckInDate)
		assert.Equal(t, checkOut, local[0].CheckOutDate)
	})

	t.Run("SuccessCommitsServerValues", func(t *testing.T) {
		gw := new(mockGateway)
		gw.On("UpdateBooking", mock.Anything, "b1", newIn, newOut, "tok").
			Return(&models.Booking{ID: "b1", CheckInDate: newIn, CheckOutDate: newOut}, nil)

		coord := newTestCoordinator(gw, nil)
		updated, err := coord.Update(context.Background(), "b1", newIn, newOut, "tok")
		require.NoError(t, err)

		reconciled := ReplaceByID(local, *updated)
		assert.Equal(t, newIn, reconciled[0].CheckInDate)
		assert.Equal(t, newOut, reconciled[0].CheckOutDate)
		gw.AssertNumberOfCalls(t, "UpdateBooking", 1)
	})

	t.Run("InvalidDateRange", func(t *testing.T) {
		gw := new(mockGateway)
		coord := newTestCoordinator(gw, nil)

		_, err := coord.Update(context.Background(), "b1", newOut, newIn, "tok")
		assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
		gw.AssertNotCalled(t, "UpdateBooking", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDelete(t *testing.T) {
	t.Run("RemovesExactlyOne", func(t *testing.T) {
		gw := new(mockGateway)
		gw.On("DeleteBooking", mock.Anything, "b2", "tok").Return(nil)

		coord := newTestCoordinator(gw, nil)
		require.NoError(t, coord.Delete(context.Background(), "b2", "tok"))

		local := []models.Booking{{ID: "b1"}, {ID: "b2"}, {ID: "b3"}}
		local = RemoveByID(local, "b2")
		require.Len(t, local, 2)
		assert.Equal(t, "b1", local[0].ID)
		assert.Equal(t, "b3", local[1].ID)
	})

	t.Run("NotFound", func(t *testing.T) {
		gw := new(mockGateway)
		gw.On("DeleteBooking", mock.Anything, "gone", "tok").
			Return(&domain.NotFoundError{Resource: "booking", ID: "gone"})

		coord := newTestCoordinator(gw, nil)
		err := coord.Delete(context.Background(), "gone", "tok")

		var notFound *domain.NotFoundError
		require.ErrorAs(t, err, &notFound)

		// Local collection remains untouched on failure.
		local := []models.Booking{{ID: "b1"}}
		assert.Len(t, RemoveByID(local, "gone"), 1)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		gw := new(mockGateway)
		coord := newTestCoordinator(gw, nil)
		assert.ErrorIs(t, coord.Delete(context.Background(), "b1", ""), domain.ErrUnauthenticated)
	})
}

func TestCancelPayment(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		gw := new(mockGateway)
		gw.On("CancelPayment", mock.Anything, "p1", "tok").
			Return(&models.Receipt{PaymentID: "p1", Status: "canceled"}, nil)

		bus := events.NewEventBus()
		var published int
		bus.Subscribe(events.EventPaymentCanceled, func(_ *events.Event) error { published++; return nil })

		coord := newTestCoordinator(gw, bus)
		receipt, err := coord.CancelPayment(context.Background(), "p1", "tok")
		require.NoError(t, err)
		assert.Equal(t, "canceled", receipt.Status)
		assert.Equal(t, 1, published)
	})

	t.Run("Failure", func(t *testing.T) {
		gw := new(mockGateway)
		gw.On("CancelPayment", mock.Anything, "p1", "tok").
			Return(nil, &domain.PaymentCancelError{Message: "not cancelable"})

		coord := newTestCoordinator(gw, nil)
		_, err := coord.CancelPayment(context.Background(), "p1", "tok")

		var cancelErr *domain.PaymentCancelError
		require.ErrorAs(t, err, &cancelErr)
		assert.Equal(t, "not cancelable", cancelErr.Message)
	})
}

// blockingGateway parks DeleteBooking until released, to exercise the
// per-identity in-flight guard.
type blockingGateway struct {
	mockGateway
	entered chan struct{}
	release chan struct{}
}

func (g *blockingGateway) DeleteBooking(ctx context.Context, bookingID, credential string) error {
	g.entered <- struct{}{}
	<-g.release
	return nil
}

func TestInFlightGuard(t *testing.T) {
	gw := &blockingGateway{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	coord := newTestCoordinator(gw, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		firstErr = coord.Delete(context.Background(), "b1", "tok")
	}()

	<-gw.entered

	// Second delete for the same identity while the first is in flight.
	err := coord.Delete(context.Background(), "b1", "tok")
	assert.ErrorIs(t, err, domain.ErrOperationInFlight)

	// A different identity is not blocked by b1's pending delete.
	gw2 := new(mockGateway)
	gw2.On("DeleteBooking", mock.Anything, "b2", "tok").Return(nil)
	other := newTestCoordinator(gw2, nil)
	assert.NoError(t, other.Delete(context.Background(), "b2", "tok"))

	close(gw.release)
	wg.Wait()
	assert.NoError(t, firstErr)
}
