package repository

import (
	"context"
	"sync"
	"time"

	"staybook/internal/models"
)

// MemorySelectionStore keeps drafts in process memory. It backs local runs
// and serves as the failover target when Redis is down.
type MemorySelectionStore struct {
	selections sync.Map
	rateLimits sync.Map
	ttl        time.Duration
}

type memoryEntry struct {
	selection *models.Selection
	expiresAt time.Time
}

func NewMemorySelectionStore(ttl time.Duration) *MemorySelectionStore {
	return &MemorySelectionStore{
		ttl: ttl,
	}
}

func (r *MemorySelectionStore) GetSelection(ctx context.Context, sessionKey string) (*models.Selection, error) {
	val, ok := r.selections.Load(sessionKey)
	if !ok {
		return nil, nil
	}
	entry := val.(*memoryEntry)
	if r.ttl > 0 && time.Now().After(entry.expiresAt) {
		r.selections.Delete(sessionKey)
		return nil, nil
	}
	return entry.selection, nil
}

func (r *MemorySelectionStore) SetSelection(ctx context.Context, selection *models.Selection) error {
	r.selections.Store(selection.SessionKey, &memoryEntry{
		selection: selection,
		expiresAt: time.Now().Add(r.ttl),
	})
	return nil
}

func (r *MemorySelectionStore) ClearSelection(ctx context.Context, sessionKey string) error {
	r.selections.Delete(sessionKey)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemorySelectionStore) CheckRateLimit(ctx context.Context, sessionKey string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(sessionKey)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(sessionKey, entry)
	return entry.count <= limit, nil
}
