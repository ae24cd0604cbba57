package domain

import (
	"context"
	"time"

	"staybook/internal/models"
)

// Gateway is the remote booking backend, the sole system of record for
// hotels, rooms, bookings and payments.
type Gateway interface {
	ListHotels(ctx context.Context) ([]models.Hotel, error)
	GetHotel(ctx context.Context, id string) (*models.Hotel, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	ListBookings(ctx context.Context, credential string) ([]models.Booking, error)
	CreateBooking(ctx context.Context, roomID string, checkIn, checkOut time.Time, paymentMethod, credential string) (*models.Booking, error)
	UpdateBooking(ctx context.Context, bookingID string, checkIn, checkOut time.Time, credential string) (*models.Booking, error)
	DeleteBooking(ctx context.Context, bookingID, credential string) error
	CancelPayment(ctx context.Context, paymentID, credential string) (*models.Receipt, error)
}

// SelectionStore persists in-progress booking drafts keyed by session.
type SelectionStore interface {
	GetSelection(ctx context.Context, sessionKey string) (*models.Selection, error)
	SetSelection(ctx context.Context, selection *models.Selection) error
	ClearSelection(ctx context.Context, sessionKey string) error
	CheckRateLimit(ctx context.Context, sessionKey string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
