// Package memory implements an in-process record store for development and tests.
// Records are lost on restart.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type URLRepository struct {
	mu   sync.RWMutex
	urls map[string]entity.URLRecord
}

func NewURLRepository() *URLRepository {
	return &URLRepository{
		urls: make(map[string]entity.URLRecord),
	}
}

func (r *URLRepository) Get(_ context.Context, shortID string) (*entity.URLRecord, error) {
	const op = "adapter.repository.memory.URLRepository.Get"

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.urls[shortID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	return clone(rec), nil
}

func (r *URLRepository) Insert(_ context.Context, rec *entity.URLRecord) (*entity.URLRecord, error) {
	const op = "adapter.repository.memory.URLRepository.Insert"

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.urls[rec.ShortID]; ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrShortIDExists)
	}

	r.urls[rec.ShortID] = *clone(*rec)

	return clone(*rec), nil
}

func (r *URLRepository) RecordClick(_ context.Context, shortID string, at time.Time) error {
	const op = "adapter.repository.memory.URLRepository.RecordClick"

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.urls[shortID]
	if !ok {
		return fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	rec.ClickCount++
	rec.LastAccessed = &at
	r.urls[shortID] = rec

	return nil
}

// clone copies rec so callers never share the stored LastAccessed pointer.
func clone(rec entity.URLRecord) *entity.URLRecord {
	if rec.LastAccessed != nil {
		t := *rec.LastAccessed
		rec.LastAccessed = &t
	}
	return &rec
}
