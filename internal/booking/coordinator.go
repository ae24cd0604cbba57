package booking

import (
	"context"
	"time"

	"staybook/internal/domain"
	"staybook/internal/events"
	"staybook/internal/metrics"
	"staybook/internal/models"

	"github.com/rs/zerolog"
)

// Coordinator mediates between user intent and the remote backend. It owns
// the booking lifecycle: one request per operation, no retries, and the
// server's response is the authoritative state. Callers keep their local
// collections and commit changes only after an operation returns success.
type Coordinator struct {
	gateway  domain.Gateway
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	inflight inflightSet
}

func NewCoordinator(gateway domain.Gateway, eventBus domain.EventPublisher, logger *zerolog.Logger) *Coordinator {
	return &Coordinator{
		gateway:  gateway,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Create sends a single create request for the room. The returned booking is
// canonical truth: its dates may differ from the request if the backend
// normalized them. Create is not idempotent, so a failure is never retried
// here; the caller must re-submit explicitly.
func (c *Coordinator) Create(ctx context.Context, roomID string, checkIn, checkOut time.Time, paymentMethod, credential string) (*models.Booking, error) {
	if credential == "" {
		return nil, domain.ErrUnauthenticated
	}
	if roomID == "" {
		return nil, domain.ErrNoRoomSelected
	}
	if err := validateDateRange(checkIn, checkOut); err != nil {
		return nil, err
	}

	// Create has no booking identity yet; the room is the guard key.
	if !c.inflight.acquire(roomID) {
		return nil, domain.ErrOperationInFlight
	}
	defer c.inflight.release(roomID)

	booking, err := c.gateway.CreateBooking(ctx, roomID, checkIn, checkOut, paymentMethod, credential)
	if err != nil {
		metrics.IncOperation("create", "failure")
		c.logger.Warn().Err(err).Str("room_id", roomID).Msg("booking create rejected")
		return nil, err
	}

	metrics.IncOperation("create", "success")
	c.publishBookingEvent(events.EventBookingCreated, booking)
	c.logger.Info().Str("booking_id", booking.ID).Str("room_id", roomID).Msg("booking created")
	return booking, nil
}

// CreateFromSelection submits a completed draft. The draft itself is left
// untouched; clearing it is the caller's decision once the result is known.
func (c *Coordinator) CreateFromSelection(ctx context.Context, selection *models.Selection, credential string) (*models.Booking, error) {
	if selection == nil || !selection.IsSubmittable() {
		return nil, domain.ErrIncompleteSelection
	}
	return c.Create(ctx, selection.Room.ID, selection.CheckInDate, selection.CheckOutDate, selection.PaymentMethod, credential)
}

// Update sends a single date-change request. Nothing caller-visible may be
// mutated before the backend confirms: on failure the pre-call dates stand,
// and the rejection reason is surfaced verbatim when the backend gave one.
func (c *Coordinator) Update(ctx context.Context, bookingID string, checkIn, checkOut time.Time, credential string) (*models.Booking, error) {
	if credential == "" {
		return nil, domain.ErrUnauthenticated
	}
	if err := validateDateRange(checkIn, checkOut); err != nil {
		return nil, err
	}

	if !c.inflight.acquire(bookingID) {
		return nil, domain.ErrOperationInFlight
	}
	defer c.inflight.release(bookingID)

	booking, err := c.gateway.UpdateBooking(ctx, bookingID, checkIn, checkOut, credential)
	if err != nil {
		metrics.IncOperation("update", "failure")
		c.logger.Warn().Err(err).Str("booking_id", bookingID).Msg("booking update rejected")
		return nil, err
	}

	metrics.IncOperation("update", "success")
	c.publishBookingEvent(events.EventBookingUpdated, booking)
	c.logger.Info().Str("booking_id", bookingID).Msg("booking updated")
	return booking, nil
}

// Delete sends a single delete request. On success the caller removes exactly
// the booking with this identity from its collection (see RemoveByID).
// Deleting an identity the backend no longer knows surfaces a not-found
// failure rather than silently succeeding twice.
func (c *Coordinator) Delete(ctx context.Context, bookingID, credential string) error {
	if credential == "" {
		return domain.ErrUnauthenticated
	}

	if !c.inflight.acquire(bookingID) {
		return domain.ErrOperationInFlight
	}
	defer c.inflight.release(bookingID)

	if err := c.gateway.DeleteBooking(ctx, bookingID, credential); err != nil {
		metrics.IncOperation("delete", "failure")
		c.logger.Warn().Err(err).Str("booking_id", bookingID).Msg("booking delete rejected")
		return err
	}

	metrics.IncOperation("delete", "success")
	c.publishBookingEvent(events.EventBookingDeleted, &models.Booking{ID: bookingID})
	c.logger.Info().Str("booking_id", bookingID).Msg("booking deleted")
	return nil
}

// CancelPayment sends a single state-transition request for the payment.
func (c *Coordinator) CancelPayment(ctx context.Context, paymentID, credential string) (*models.Receipt, error) {
	if credential == "" {
		return nil, domain.ErrUnauthenticated
	}

	if !c.inflight.acquire(paymentID) {
		return nil, domain.ErrOperationInFlight
	}
	defer c.inflight.release(paymentID)

	receipt, err := c.gateway.CancelPayment(ctx, paymentID, credential)
	if err != nil {
		metrics.IncOperation("cancel_payment", "failure")
		c.logger.Warn().Err(err).Str("payment_id", paymentID).Msg("payment cancel rejected")
		return nil, err
	}

	metrics.IncOperation("cancel_payment", "success")
	if c.eventBus != nil {
		payload := events.PaymentEventPayload{PaymentID: receipt.PaymentID, Status: receipt.Status}
		if pubErr := c.eventBus.PublishJSON(events.EventPaymentCanceled, payload); pubErr != nil {
			c.logger.Error().Err(pubErr).Str("payment_id", paymentID).Msg("publish event error")
		}
	}
	c.logger.Info().Str("payment_id", paymentID).Msg("payment canceled")
	return receipt, nil
}

func validateDateRange(checkIn, checkOut time.Time) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return domain.ErrInvalidDateRange
	}
	if !checkIn.Before(checkOut) {
		return domain.ErrInvalidDateRange
	}
	return nil
}

func (c *Coordinator) publishBookingEvent(eventType string, booking *models.Booking) {
	if c.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:    booking.ID,
		RoomID:       booking.RoomID,
		HotelName:    booking.Hotel.Name,
		CheckInDate:  booking.CheckInDate,
		CheckOutDate: booking.CheckOutDate,
	}

	if err := c.eventBus.PublishJSON(eventType, payload); err != nil {
		c.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}
