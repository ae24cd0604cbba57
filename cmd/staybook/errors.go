package main

import (
	"errors"
	"fmt"

	"staybook/internal/domain"
)

// presentError turns a lifecycle error into the message shown to the user.
// The wrapped error stays attached so the exit path still logs the cause.
func (a *app) presentError(err error) error {
	if err == nil {
		return nil
	}

	msg := a.errorMessage(err)
	a.logger.Error().Err(err).Msg("operation failed")
	return fmt.Errorf("%s: %w", msg, err)
}

func (a *app) errorMessage(err error) string {
	if errors.Is(err, domain.ErrUnauthenticated) {
		return "You are not signed in. Set gateway.token in the config or the STAYBOOK_TOKEN variable"
	}
	if errors.Is(err, domain.ErrInvalidDateRange) {
		return "Check-in must be before check-out"
	}
	if errors.Is(err, domain.ErrOperationInFlight) {
		return "The previous request for this booking is still being processed, try again in a moment"
	}
	if errors.Is(err, domain.ErrRateLimited) {
		return "Too many booking attempts, wait a minute and try again"
	}
	if errors.Is(err, domain.ErrNoRoomSelected) || errors.Is(err, domain.ErrIncompleteSelection) {
		return "Pick a room, dates and a payment method first"
	}

	var rejected *domain.RejectedError
	if errors.As(err, &rejected) {
		if rejected.Message != "" {
			return "The booking was declined: " + rejected.Message
		}
		return "The booking was declined"
	}

	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return fmt.Sprintf("The %s no longer exists, refresh your list", notFound.Resource)
	}

	var payment *domain.PaymentCancelError
	if errors.As(err, &payment) {
		if payment.Message != "" {
			return "The payment could not be canceled: " + payment.Message
		}
		return "The payment could not be canceled"
	}

	var transport *domain.TransportError
	if errors.As(err, &transport) {
		return "Could not reach the booking service, check your connection and try again"
	}

	return "Something went wrong, please try again later"
}
