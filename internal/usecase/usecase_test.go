package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type MockURLRepository struct {
	mock.Mock
}

func (r *MockURLRepository) Get(ctx context.Context, shortID string) (*entity.URLRecord, error) {
	args := r.Called(ctx, shortID)
	rec, _ := args.Get(0).(*entity.URLRecord)
	return rec, args.Error(1)
}

func (r *MockURLRepository) Insert(ctx context.Context, rec *entity.URLRecord) (*entity.URLRecord, error) {
	args := r.Called(ctx, rec)
	out, _ := args.Get(0).(*entity.URLRecord)
	return out, args.Error(1)
}

func (r *MockURLRepository) RecordClick(ctx context.Context, shortID string, at time.Time) error {
	args := r.Called(ctx, shortID, at)
	return args.Error(0)
}

type URLUseCaseTestSuite struct {
	suite.Suite
	errUnknown  error
	now         time.Time
	urlRepoMock *MockURLRepository
	uc          *URLUseCase
}

func (suite *URLUseCaseTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
	suite.now = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
}

func (suite *URLUseCaseTestSuite) SetupSubTest() {
	suite.urlRepoMock = new(MockURLRepository)
	suite.uc = New(
		suite.urlRepoMock,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return suite.now }),
	)
}

func (suite *URLUseCaseTestSuite) TearDownSubTest() {
	suite.urlRepoMock.AssertExpectations(suite.T())
}

func ptr(s string) *string {
	return &s
}

func (suite *URLUseCaseTestSuite) TestShortenURL() {
	ctx := context.Background()

	suite.Run("invalid url", func() {
		for _, u := range []string{"", "not-a-url", "example.com", "mailto:someone@example.com"} {
			rec, err := suite.uc.ShortenURL(ctx, u, nil)

			suite.ErrorIs(err, entity.ErrValidation)
			suite.Nil(rec)

			var vErr *entity.ValidationError
			suite.ErrorAs(err, &vErr)
			suite.Equal("url", vErr.Field)
		}
	})

	suite.Run("invalid custom id length", func() {
		for _, id := range []string{"", strings.Repeat("a", 51)} {
			rec, err := suite.uc.ShortenURL(ctx, "https://example.com", ptr(id))

			suite.ErrorIs(err, entity.ErrValidation)
			suite.Nil(rec)

			var vErr *entity.ValidationError
			suite.ErrorAs(err, &vErr)
			suite.Equal("custom_id", vErr.Field)
		}
	})

	suite.Run("reserved custom id", func() {
		for _, id := range []string{"health", "api", "swagger", "docs", ".", ".."} {
			rec, err := suite.uc.ShortenURL(ctx, "https://example.com", ptr(id))

			suite.ErrorIs(err, entity.ErrValidation)
			suite.Nil(rec)

			var vErr *entity.ValidationError
			suite.ErrorAs(err, &vErr)
			suite.Equal("custom_id", vErr.Field)
			suite.Equal("Custom ID is reserved", vErr.Message)
		}
	})

	suite.Run("custom id length counts characters", func() {
		id := strings.Repeat("é", 50)
		want := &entity.URLRecord{ShortID: id, OriginalURL: "https://example.com", CreatedAt: suite.now}

		suite.urlRepoMock.
			On("Get", ctx, id).
			Once().
			Return(nil, entity.ErrURLNotFound)
		suite.urlRepoMock.
			On("Insert", ctx, want).
			Once().
			Return(want, nil)

		rec, err := suite.uc.ShortenURL(ctx, "https://example.com", ptr(id))
		suite.NoError(err)
		suite.Equal(want, rec)

		rec, err = suite.uc.ShortenURL(ctx, "https://example.com", ptr(strings.Repeat("é", 51)))
		suite.ErrorIs(err, entity.ErrValidation)
		suite.Nil(rec)
	})

	suite.Run("reserved generated id is skipped", func() {
		ids := []string{"health", "abc12345"}
		suite.uc.generate = func(int) (string, error) {
			id := ids[0]
			ids = ids[1:]
			return id, nil
		}

		want := &entity.URLRecord{ShortID: "abc12345", OriginalURL: "https://example.com", CreatedAt: suite.now}

		suite.urlRepoMock.
			On("Insert", ctx, want).
			Once().
			Return(want, nil)

		rec, err := suite.uc.ShortenURL(ctx, "https://example.com", nil)

		suite.NoError(err)
		suite.Equal(want, rec)
	})

	suite.Run("custom id exists", func() {
		suite.urlRepoMock.
			On("Get", ctx, "taken").
			Once().
			Return(&entity.URLRecord{ShortID: "taken", OriginalURL: "https://other.com"}, nil)

		rec, err := suite.uc.ShortenURL(ctx, "https://example.com", ptr("taken"))

		suite.ErrorIs(err, entity.ErrShortIDExists)
		suite.Nil(rec)
	})

	suite.Run("custom id lookup error", func() {
		suite.urlRepoMock.
			On("Get", ctx, "mine").
			Once().
			Return(nil, suite.errUnknown)

		rec, err := suite.uc.ShortenURL(ctx, "https://example.com", ptr("mine"))

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(rec)
	})

	suite.Run("custom id taken between lookup and insert", func() {
		suite.urlRepoMock.
			On("Get", ctx, "mine").
			Once().
			Return(nil, entity.ErrURLNotFound)
		suite.urlRepoMock.
			On("Insert", ctx, mock.Anything).
			Once().
			Return(nil, entity.ErrShortIDExists)

		rec, err := suite.uc.ShortenURL(ctx, "https://example.com", ptr("mine"))

		suite.ErrorIs(err, entity.ErrShortIDExists)
		suite.Nil(rec)
	})

	suite.Run("custom id success", func() {
		want := &entity.URLRecord{
			ShortID:     strings.Repeat("a", 50),
			OriginalURL: "https://example.com",
			CreatedAt:   suite.now,
		}

		suite.urlRepoMock.
			On("Get", ctx, want.ShortID).
			Once().
			Return(nil, entity.ErrURLNotFound)
		suite.urlRepoMock.
			On("Insert", ctx, want).
			Once().
			Return(want, nil)

		rec, err := suite.uc.ShortenURL(ctx, "https://example.com", ptr(want.ShortID))

		suite.NoError(err)
		suite.Equal(want, rec)
		suite.Zero(rec.ClickCount)
		suite.Nil(rec.LastAccessed)
	})

	suite.Run("short id generation error", func() {
		suite.uc.shortIDLength = -1

		rec, err := suite.uc.ShortenURL(ctx, "https://example.com", nil)

		suite.Error(err)
		suite.Nil(rec)
	})

	suite.Run("maximum retries error", func() {
		suite.urlRepoMock.
			On("Insert", ctx, mock.Anything).
			Times(5).
			Return(nil, entity.ErrShortIDExists)

		rec, err := suite.uc.ShortenURL(ctx, "https://example.com", nil)

		suite.ErrorIs(err, ErrMaxRetriesExceeded)
		suite.Nil(rec)
	})

	suite.Run("unknown error", func() {
		suite.urlRepoMock.
			On("Insert", ctx, mock.Anything).
			Once().
			Return(nil, suite.errUnknown)

		rec, err := suite.uc.ShortenURL(ctx, "https://example.com", nil)

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(rec)
	})

	suite.Run("collision then success", func() {
		var inserted []*entity.URLRecord

		capture := func(args mock.Arguments) {
			inserted = append(inserted, args.Get(1).(*entity.URLRecord))
		}

		suite.urlRepoMock.
			On("Insert", ctx, mock.Anything).
			Once().
			Run(capture).
			Return(nil, entity.ErrShortIDExists)
		suite.urlRepoMock.
			On("Insert", ctx, mock.Anything).
			Once().
			Run(capture).
			Return(&entity.URLRecord{ShortID: "generated"}, nil)

		rec, err := suite.uc.ShortenURL(ctx, "https://example.com", nil)

		suite.NoError(err)
		suite.NotNil(rec)
		suite.Len(inserted, 2)

		for _, r := range inserted {
			suite.Len(r.ShortID, 8)
			suite.Equal("https://example.com", r.OriginalURL)
			suite.Zero(r.ClickCount)
			suite.Equal(suite.now, r.CreatedAt)
			suite.Nil(r.LastAccessed)
		}
	})
}

func (suite *URLUseCaseTestSuite) TestResolveShortID() {
	ctx := context.Background()

	suite.Run("url not found", func() {
		suite.urlRepoMock.
			On("Get", ctx, "abc123").
			Once().
			Return(nil, entity.ErrURLNotFound)

		rec, err := suite.uc.ResolveShortID(ctx, "abc123")

		suite.ErrorIs(err, entity.ErrURLNotFound)
		suite.Nil(rec)
	})

	suite.Run("unknown error", func() {
		suite.urlRepoMock.
			On("Get", ctx, "abc123").
			Once().
			Return(nil, suite.errUnknown)

		rec, err := suite.uc.ResolveShortID(ctx, "abc123")

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(rec)
	})

	suite.Run("click not recorded", func() {
		suite.urlRepoMock.
			On("Get", ctx, "abc123").
			Once().
			Return(&entity.URLRecord{
				ShortID:     "abc123",
				OriginalURL: "https://example.com",
				ClickCount:  2,
			}, nil)
		suite.urlRepoMock.
			On("RecordClick", ctx, "abc123", suite.now).
			Once().
			Return(suite.errUnknown)

		rec, err := suite.uc.ResolveShortID(ctx, "abc123")

		suite.NoError(err)
		suite.Equal("https://example.com", rec.OriginalURL)
		suite.Equal(int64(2), rec.ClickCount)
		suite.Nil(rec.LastAccessed)
	})

	suite.Run("success", func() {
		suite.urlRepoMock.
			On("Get", ctx, "abc123").
			Once().
			Return(&entity.URLRecord{
				ShortID:     "abc123",
				OriginalURL: "https://example.com",
				ClickCount:  2,
			}, nil)
		suite.urlRepoMock.
			On("RecordClick", ctx, "abc123", suite.now).
			Once().
			Return(nil)

		rec, err := suite.uc.ResolveShortID(ctx, "abc123")

		suite.NoError(err)
		suite.Equal("https://example.com", rec.OriginalURL)
		suite.Equal(int64(3), rec.ClickCount)
		suite.Equal(suite.now, *rec.LastAccessed)
	})
}

func (suite *URLUseCaseTestSuite) TestGetURLStats() {
	ctx := context.Background()

	suite.Run("url not found", func() {
		suite.urlRepoMock.
			On("Get", ctx, "abc123").
			Once().
			Return(nil, entity.ErrURLNotFound)

		rec, err := suite.uc.GetURLStats(ctx, "abc123")

		suite.ErrorIs(err, entity.ErrURLNotFound)
		suite.Nil(rec)
	})

	suite.Run("unknown error", func() {
		suite.urlRepoMock.
			On("Get", ctx, "abc123").
			Once().
			Return(nil, suite.errUnknown)

		rec, err := suite.uc.GetURLStats(ctx, "abc123")

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(rec)
	})

	suite.Run("success", func() {
		suite.urlRepoMock.
			On("Get", ctx, "abc123").
			Once().
			Return(&entity.URLRecord{
				ShortID:     "abc123",
				OriginalURL: "https://example.com",
				ClickCount:  1,
			}, nil)

		rec, err := suite.uc.GetURLStats(ctx, "abc123")

		suite.NoError(err)
		suite.Equal("abc123", rec.ShortID)
		suite.Equal(int64(1), rec.ClickCount)
	})
}

func TestURLUseCase(t *testing.T) {
	suite.Run(t, new(URLUseCaseTestSuite))
}
