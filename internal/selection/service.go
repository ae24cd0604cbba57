package selection

import (
	"context"
	"fmt"
	"time"

	"staybook/internal/domain"
	"staybook/internal/models"

	"github.com/rs/zerolog"
)

// Service owns the in-progress booking draft for each session. It is pure
// bookkeeping: nothing here talks to the network.
type Service struct {
	store  domain.SelectionStore
	logger *zerolog.Logger
}

func NewService(store domain.SelectionStore, logger *zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// Get returns the session's draft, or a fresh empty one when none exists.
func (s *Service) Get(ctx context.Context, sessionKey string) (*models.Selection, error) {
	sel, err := s.store.GetSelection(ctx, sessionKey)
	if err != nil {
		s.logger.Error().Err(err).Str("session", sessionKey).Msg("failed to get selection")
		return nil, err
	}
	if sel == nil {
		sel = &models.Selection{SessionKey: sessionKey}
	}
	return sel, nil
}

// SelectHotel records the hotel choice, dropping any room picked for a
// previous hotel.
func (s *Service) SelectHotel(ctx context.Context, sessionKey, hotelName string) (*models.Selection, error) {
	return s.mutate(ctx, sessionKey, func(sel *models.Selection) error {
		sel.SetHotel(hotelName)
		return nil
	})
}

// SelectRoom records the room choice. The room must belong to the hotel
// already selected for this draft.
func (s *Service) SelectRoom(ctx context.Context, sessionKey string, room *models.Room, hotel *models.Hotel) (*models.Selection, error) {
	return s.mutate(ctx, sessionKey, func(sel *models.Selection) error {
		if hotel != nil && sel.HotelName != "" && hotel.Name != sel.HotelName {
			return fmt.Errorf("room %s belongs to %q, not the selected hotel %q", room.ID, hotel.Name, sel.HotelName)
		}
		sel.SetRoom(room)
		return nil
	})
}

func (s *Service) SetDates(ctx context.Context, sessionKey string, checkIn, checkOut time.Time) (*models.Selection, error) {
	return s.mutate(ctx, sessionKey, func(sel *models.Selection) error {
		sel.SetDates(checkIn, checkOut)
		return nil
	})
}

func (s *Service) SetPaymentMethod(ctx context.Context, sessionKey, method string) (*models.Selection, error) {
	return s.mutate(ctx, sessionKey, func(sel *models.Selection) error {
		if !models.ValidPaymentMethod(method) {
			return fmt.Errorf("unsupported payment method %q", method)
		}
		sel.SetPaymentMethod(method)
		return nil
	})
}

// Clear discards the draft, e.g. after a successful submit.
func (s *Service) Clear(ctx context.Context, sessionKey string) error {
	return s.store.ClearSelection(ctx, sessionKey)
}

func (s *Service) CheckRateLimit(ctx context.Context, sessionKey string, limit int, window time.Duration) (bool, error) {
	return s.store.CheckRateLimit(ctx, sessionKey, limit, window)
}

func (s *Service) mutate(ctx context.Context, sessionKey string, fn func(*models.Selection) error) (*models.Selection, error) {
	sel, err := s.Get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if err := fn(sel); err != nil {
		return nil, err
	}
	if err := s.store.SetSelection(ctx, sel); err != nil {
		s.logger.Error().Err(err).Str("session", sessionKey).Msg("failed to save selection")
		return nil, err
	}
	return sel, nil
}
