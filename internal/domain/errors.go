package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means no credential was present at call time, or the
	// backend refused the one that was.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrInvalidDateRange means check-in is not strictly before check-out.
	ErrInvalidDateRange = errors.New("check-in date must be before check-out date")

	// ErrOperationInFlight means another operation for the same identity has
	// not finished yet.
	ErrOperationInFlight = errors.New("operation already in flight for this identity")

	// ErrRateLimited means the session exceeded its submission budget.
	ErrRateLimited = errors.New("too many submissions, try again later")

	// ErrNoRoomSelected means a create was attempted without a room.
	ErrNoRoomSelected = errors.New("no room selected")

	// ErrIncompleteSelection means the draft is missing a room, valid dates
	// or a payment method.
	ErrIncompleteSelection = errors.New("selection is not complete")
)

// RejectedError is returned when the backend refused a booking create or
// update, e.g. the requested dates overlap another booking.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("booking rejected: %s", e.Message)
}

// NotFoundError is returned when the target identity no longer exists on the
// backend.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// PaymentCancelError is returned when the backend refused a payment cancel.
type PaymentCancelError struct {
	Message string
}

func (e *PaymentCancelError) Error() string {
	return fmt.Sprintf("payment cancel failed: %s", e.Message)
}

// TransportError wraps network and decode failures where no structured
// message from the backend is available.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
