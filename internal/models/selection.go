package models

import "time"

// Selection is the ephemeral draft of an unsubmitted booking: the user's
// in-progress choice of hotel, room, dates and payment method. It lives only
// for the authoring session and is discarded on submit.
type Selection struct {
	SessionKey    string    `json:"session_key"`
	HotelName     string    `json:"hotel_name"`
	Room          *Room     `json:"room,omitempty"`
	CheckInDate   time.Time `json:"check_in_date"`
	CheckOutDate  time.Time `json:"check_out_date"`
	PaymentMethod string    `json:"payment_method"`
}

// SetHotel records the hotel choice. A room belongs to exactly one hotel, so
// switching hotels drops any previously selected room.
func (s *Selection) SetHotel(name string) {
	if name != s.HotelName {
		s.Room = nil
	}
	s.HotelName = name
}

func (s *Selection) SetRoom(room *Room) {
	s.Room = room
}

func (s *Selection) SetDates(checkIn, checkOut time.Time) {
	s.CheckInDate = checkIn
	s.CheckOutDate = checkOut
}

func (s *Selection) SetPaymentMethod(method string) {
	s.PaymentMethod = method
}

// IsSubmittable reports whether the draft is complete: a room is selected,
// both dates are set with check-in strictly before check-out, and a payment
// method is chosen.
func (s *Selection) IsSubmittable() bool {
	if s.Room == nil {
		return false
	}
	if s.CheckInDate.IsZero() || s.CheckOutDate.IsZero() {
		return false
	}
	if !s.CheckInDate.Before(s.CheckOutDate) {
		return false
	}
	return s.PaymentMethod != ""
}
