package booking

import "staybook/internal/models"

// RemoveByID returns the list without the booking whose identity matches.
// Removal is by identity equality, never by index, so it stays correct when
// the list was reordered or refreshed while the delete was in flight. At most
// one entry is removed; order is preserved.
func RemoveByID(bookings []models.Booking, id string) []models.Booking {
	for i, b := range bookings {
		if b.ID == id {
			out := make([]models.Booking, 0, len(bookings)-1)
			out = append(out, bookings[:i]...)
			return append(out, bookings[i+1:]...)
		}
	}
	return bookings
}

// ReplaceByID swaps in the confirmed booking returned by the backend for the
// entry with the same identity. The list is unchanged if the identity is not
// present.
func ReplaceByID(bookings []models.Booking, updated models.Booking) []models.Booking {
	for i, b := range bookings {
		if b.ID == updated.ID {
			out := make([]models.Booking, len(bookings))
			copy(out, bookings)
			out[i] = updated
			return out
		}
	}
	return bookings
}
