package models

import "time"

type Hotel struct {
	ID       string    `json:"_id"`
	Name     string    `json:"name"`
	Address  string    `json:"address"`
	Tel      string    `json:"tel"`
	Picture  string    `json:"picture"`
	Rooms    []Room    `json:"rooms,omitempty"`
	Bookings []Booking `json:"bookings,omitempty"`
}

type Room struct {
	ID                 string              `json:"_id"`
	HotelID            string              `json:"hotel"`
	Type               string              `json:"type"`
	Number             int                 `json:"number"`
	Price              float64             `json:"price"`
	UnavailablePeriods []UnavailablePeriod `json:"unavailablePeriod,omitempty"`
}

// UnavailablePeriod is a closed date interval during which a room cannot be
// booked. The backend creates one when a booking is confirmed and removes it
// when that booking is deleted.
type UnavailablePeriod struct {
	ID        string    `json:"_id"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// Covers reports whether the given date falls inside the period.
func (p UnavailablePeriod) Covers(date time.Time) bool {
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}
