package repository

import (
	"context"
	"sync/atomic"
	"time"

	"staybook/internal/domain"
	"staybook/internal/models"

	"github.com/rs/zerolog"
)

// FailoverSelectionStore serves from the primary store until it errors, then
// trips to the fallback and retries the primary after a cool-down.
type FailoverSelectionStore struct {
	primary   domain.SelectionStore
	fallback  domain.SelectionStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverSelectionStore(primary, fallback domain.SelectionStore, logger *zerolog.Logger) *FailoverSelectionStore {
	return &FailoverSelectionStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSelectionStore) GetSelection(ctx context.Context, sessionKey string) (*models.Selection, error) {
	if !r.isDown.Load() {
		selection, err := r.primary.GetSelection(ctx, sessionKey)
		if err == nil {
			return selection, nil
		}
		r.logger.Error().Err(err).Msg("Primary selection store failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		selection, err := r.primary.GetSelection(ctx, sessionKey)
		if err == nil {
			r.isDown.Store(false)
			return selection, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.GetSelection(ctx, sessionKey)
}

func (r *FailoverSelectionStore) SetSelection(ctx context.Context, selection *models.Selection) error {
	if !r.isDown.Load() {
		err := r.primary.SetSelection(ctx, selection)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary selection store failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.SetSelection(ctx, selection)
}

func (r *FailoverSelectionStore) ClearSelection(ctx context.Context, sessionKey string) error {
	if !r.isDown.Load() {
		err := r.primary.ClearSelection(ctx, sessionKey)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary selection store failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.ClearSelection(ctx, sessionKey)
}

func (r *FailoverSelectionStore) CheckRateLimit(ctx context.Context, sessionKey string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, sessionKey, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.logger.Error().Err(err).Msg("Primary selection store failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.CheckRateLimit(ctx, sessionKey, limit, window)
}
