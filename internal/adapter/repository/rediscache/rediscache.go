// Package rediscache wraps a record store with a Redis cache-aside layer.
//
// Reads are served from Redis when possible and fall back to the wrapped store.
// Every click bumps a per-id version and invalidates the cached record. A fill
// is committed only if the version is unchanged since the store was read, so a
// record read before a click is never cached after it. Redis failures are
// logged and never fail an operation.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const (
	keyPrefix     = "shortlink:url:"
	versionPrefix = "shortlink:url-version:"
)

var errStaleFill = errors.New("url changed while filling cache")

type urlRepository interface {
	Get(ctx context.Context, shortID string) (*entity.URLRecord, error)
	Insert(ctx context.Context, rec *entity.URLRecord) (*entity.URLRecord, error)
	RecordClick(ctx context.Context, shortID string, at time.Time) error
}

type cachedURL struct {
	ShortID      string     `json:"short_id"`
	OriginalURL  string     `json:"original_url"`
	ClickCount   int64      `json:"click_count"`
	CreatedAt    time.Time  `json:"created_at"`
	LastAccessed *time.Time `json:"last_accessed,omitempty"`
}

func fromEntity(rec *entity.URLRecord) cachedURL {
	return cachedURL{
		ShortID:      rec.ShortID,
		OriginalURL:  rec.OriginalURL,
		ClickCount:   rec.ClickCount,
		CreatedAt:    rec.CreatedAt,
		LastAccessed: rec.LastAccessed,
	}
}

func (c *cachedURL) toEntity() *entity.URLRecord {
	return &entity.URLRecord{
		ShortID:      c.ShortID,
		OriginalURL:  c.OriginalURL,
		ClickCount:   c.ClickCount,
		CreatedAt:    c.CreatedAt,
		LastAccessed: c.LastAccessed,
	}
}

func key(shortID string) string {
	return keyPrefix + shortID
}

func versionKey(shortID string) string {
	return versionPrefix + shortID
}

type URLRepository struct {
	next   urlRepository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewURLRepository(next urlRepository, client *redis.Client, ttl time.Duration, logger *slog.Logger) *URLRepository {
	return &URLRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *URLRepository) Get(ctx context.Context, shortID string) (*entity.URLRecord, error) {
	if rec, ok := r.load(ctx, shortID); ok {
		return rec, nil
	}

	version, ok := r.version(ctx, shortID)

	rec, err := r.next.Get(ctx, shortID)
	if err != nil {
		return nil, err
	}

	if ok {
		r.fill(ctx, rec, version)
	}

	return rec, nil
}

func (r *URLRepository) Insert(ctx context.Context, rec *entity.URLRecord) (*entity.URLRecord, error) {
	version, ok := r.version(ctx, rec.ShortID)

	out, err := r.next.Insert(ctx, rec)
	if err != nil {
		return nil, err
	}

	if ok {
		r.fill(ctx, out, version)
	}

	return out, nil
}

func (r *URLRepository) RecordClick(ctx context.Context, shortID string, at time.Time) error {
	if err := r.next.RecordClick(ctx, shortID, at); err != nil {
		return err
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(shortID))
		if r.ttl > 0 {
			pipe.Expire(ctx, versionKey(shortID), r.ttl)
		}
		pipe.Del(ctx, key(shortID))
		return nil
	})
	if err != nil {
		r.logger.Warn("failed to invalidate cached url", slog.String("short_id", shortID), slog.Any("err", err))
	}

	return nil
}

func (r *URLRepository) load(ctx context.Context, shortID string) (*entity.URLRecord, bool) {
	data, err := r.client.Get(ctx, key(shortID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("failed to read cached url", slog.String("short_id", shortID), slog.Any("err", err))
		}
		return nil, false
	}

	var c cachedURL
	if err := json.Unmarshal(data, &c); err != nil {
		r.logger.Warn("failed to decode cached url", slog.String("short_id", shortID), slog.Any("err", err))
		return nil, false
	}

	return c.toEntity(), true
}

// version reports the click version of shortID. A missing key is version "".
// ok is false when Redis cannot be read, in which case nothing is cached.
func (r *URLRepository) version(ctx context.Context, shortID string) (string, bool) {
	v, err := r.client.Get(ctx, versionKey(shortID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		r.logger.Warn("failed to read url version", slog.String("short_id", shortID), slog.Any("err", err))
		return "", false
	}

	return v, true
}

// fill caches rec unless a click was recorded after version was read.
func (r *URLRepository) fill(ctx context.Context, rec *entity.URLRecord, version string) {
	data, err := json.Marshal(fromEntity(rec))
	if err != nil {
		r.logger.Warn("failed to encode url for cache", slog.String("short_id", rec.ShortID), slog.Any("err", err))
		return
	}

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey(rec.ShortID)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		if current != version {
			return errStaleFill
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(rec.ShortID), data, r.ttl)
			return nil
		})
		return err
	}, versionKey(rec.ShortID))

	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		r.logger.Debug("skipped caching stale url", slog.String("short_id", rec.ShortID))
	default:
		r.logger.Warn("failed to cache url", slog.String("short_id", rec.ShortID), slog.Any("err", err))
	}
}
