package models

import "time"

type Booking struct {
	ID           string    `json:"_id"`
	CheckInDate  time.Time `json:"checkInDate"`
	CheckOutDate time.Time `json:"checkOutDate"`
	RoomID       string    `json:"room"`
	Hotel        Hotel     `json:"hotel"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

type Payment struct {
	ID        string `json:"_id"`
	BookingID string `json:"booking"`
	Status    string `json:"status"`
	Method    string `json:"method,omitempty"`
}

// Receipt is what the backend returns after a payment state transition.
type Receipt struct {
	PaymentID string `json:"_id"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
}
