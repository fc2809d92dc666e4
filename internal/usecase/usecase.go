package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/pkg/shortid"
	"github.com/vadimbarashkov/shortlink/pkg/validation"
)

var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short id")

const (
	msgInvalidURL      = "Invalid URL format"
	msgInvalidCustomID = "Custom ID must be between 1 and 50 characters"
	msgReservedID      = "Custom ID is reserved"
	customIDRule       = "min=1,max=50"
)

// reservedIDs are short ids the router can never resolve to a redirect:
// fixed routes and the dot segments clients collapse.
var reservedIDs = map[string]struct{}{
	"health":  {},
	"api":     {},
	"swagger": {},
	"docs":    {},
	".":       {},
	"..":      {},
}

func isReserved(shortID string) bool {
	_, ok := reservedIDs[shortID]
	return ok
}

type urlRepository interface {
	Get(ctx context.Context, shortID string) (*entity.URLRecord, error)
	Insert(ctx context.Context, rec *entity.URLRecord) (*entity.URLRecord, error)
	RecordClick(ctx context.Context, shortID string, at time.Time) error
}

type Option func(*URLUseCase)

// WithShortIDLength sets the length of generated short ids.
func WithShortIDLength(n int) Option {
	return func(uc *URLUseCase) {
		uc.shortIDLength = n
	}
}

// WithLogger sets the logger used for failures that are not returned to the caller.
func WithLogger(logger *slog.Logger) Option {
	return func(uc *URLUseCase) {
		uc.logger = logger
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(uc *URLUseCase) {
		uc.now = now
	}
}

type URLUseCase struct {
	shortIDLength int
	urlRepo       urlRepository
	logger        *slog.Logger
	now           func() time.Time
	generate      func(int) (string, error)
}

func New(urlRepo urlRepository, opts ...Option) *URLUseCase {
	uc := &URLUseCase{
		shortIDLength: shortid.DefaultLength,
		urlRepo:       urlRepo,
		logger:        slog.Default(),
		now:           time.Now,
		generate:      shortid.Generate,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// ShortenURL stores originalURL under customID, or under a generated id when customID is nil.
func (uc *URLUseCase) ShortenURL(ctx context.Context, originalURL string, customID *string) (*entity.URLRecord, error) {
	const op = "usecase.URLUseCase.ShortenURL"

	if !validation.IsURL(originalURL) {
		return nil, fmt.Errorf("%s: %w", op, &entity.ValidationError{Field: "url", Message: msgInvalidURL})
	}

	if customID != nil {
		if err := validation.Var(*customID, customIDRule); err != nil {
			return nil, fmt.Errorf("%s: %w", op, &entity.ValidationError{Field: "custom_id", Message: msgInvalidCustomID})
		}

		if isReserved(*customID) {
			return nil, fmt.Errorf("%s: %w", op, &entity.ValidationError{Field: "custom_id", Message: msgReservedID})
		}

		return uc.shortenWithCustomID(ctx, originalURL, *customID)
	}

	const maxRetries = 5

	for i := 0; i < maxRetries; i++ {
		shortID, err := uc.generate(uc.shortIDLength)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate short id: %w", op, err)
		}

		if isReserved(shortID) {
			continue
		}

		rec, err := uc.urlRepo.Insert(ctx, uc.newRecord(shortID, originalURL))
		if err != nil {
			if errors.Is(err, entity.ErrShortIDExists) {
				uc.logger.WarnContext(ctx, "generated short id collided", slog.String("op", op), slog.String("short_id", shortID))
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return rec, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

func (uc *URLUseCase) shortenWithCustomID(ctx context.Context, originalURL, customID string) (*entity.URLRecord, error) {
	const op = "usecase.URLUseCase.shortenWithCustomID"

	_, err := uc.urlRepo.Get(ctx, customID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%s: %w", op, entity.ErrShortIDExists)
	case !errors.Is(err, entity.ErrURLNotFound):
		return nil, fmt.Errorf("%s: failed to check custom id: %w", op, err)
	}

	rec, err := uc.urlRepo.Insert(ctx, uc.newRecord(customID, originalURL))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
	}

	return rec, nil
}

func (uc *URLUseCase) newRecord(shortID, originalURL string) *entity.URLRecord {
	return &entity.URLRecord{
		ShortID:     shortID,
		OriginalURL: originalURL,
		ClickCount:  0,
		CreatedAt:   uc.now().UTC(),
	}
}

// ResolveShortID looks up shortID and records the click. Recording is best effort:
// a failure is logged and the record is still returned so the caller can redirect.
func (uc *URLUseCase) ResolveShortID(ctx context.Context, shortID string) (*entity.URLRecord, error) {
	const op = "usecase.URLUseCase.ResolveShortID"

	rec, err := uc.urlRepo.Get(ctx, shortID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short id: %w", op, err)
	}

	now := uc.now().UTC()

	if err := uc.urlRepo.RecordClick(ctx, shortID, now); err != nil {
		uc.logger.WarnContext(ctx, "failed to record click",
			slog.String("op", op),
			slog.String("short_id", shortID),
			slog.Any("err", err),
		)
		return rec, nil
	}

	rec.ClickCount++
	rec.LastAccessed = &now

	return rec, nil
}

func (uc *URLUseCase) GetURLStats(ctx context.Context, shortID string) (*entity.URLRecord, error) {
	const op = "usecase.URLUseCase.GetURLStats"

	rec, err := uc.urlRepo.Get(ctx, shortID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url stats: %w", op, err)
	}

	return rec, nil
}
