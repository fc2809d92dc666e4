package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const uniqueViolationErrCode = "23505"

func isUniqueViolationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == uniqueViolationErrCode
}

type urlDB struct {
	ShortID      string       `db:"short_id"`
	OriginalURL  string       `db:"original_url"`
	ClickCount   int64        `db:"click_count"`
	CreatedAt    time.Time    `db:"created_at"`
	LastAccessed sql.NullTime `db:"last_accessed"`
}

func (u *urlDB) toEntity() *entity.URLRecord {
	rec := &entity.URLRecord{
		ShortID:     u.ShortID,
		OriginalURL: u.OriginalURL,
		ClickCount:  u.ClickCount,
		CreatedAt:   u.CreatedAt.UTC(),
	}

	if u.LastAccessed.Valid {
		t := u.LastAccessed.Time.UTC()
		rec.LastAccessed = &t
	}

	return rec
}

type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{db: db}
}

func (r *URLRepository) Get(ctx context.Context, shortID string) (*entity.URLRecord, error) {
	const op = "adapter.repository.postgres.URLRepository.Get"
	const query = `SELECT short_id, original_url, click_count, created_at, last_accessed
		FROM urls
		WHERE short_id = $1`

	var url urlDB

	if err := r.db.GetContext(ctx, &url, query, shortID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from urls table: %w", op, err)
	}

	return url.toEntity(), nil
}

func (r *URLRepository) Insert(ctx context.Context, rec *entity.URLRecord) (*entity.URLRecord, error) {
	const op = "adapter.repository.postgres.URLRepository.Insert"
	const query = `INSERT INTO urls(short_id, original_url, click_count, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING short_id, original_url, click_count, created_at, last_accessed`

	var url urlDB

	err := r.db.GetContext(ctx, &url, query, rec.ShortID, rec.OriginalURL, rec.ClickCount, rec.CreatedAt)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrShortIDExists)
		}

		return nil, fmt.Errorf("%s: failed to insert into urls table: %w", op, err)
	}

	return url.toEntity(), nil
}

// RecordClick increments the counter in a single statement, so concurrent clicks are never lost.
func (r *URLRepository) RecordClick(ctx context.Context, shortID string, at time.Time) error {
	const op = "adapter.repository.postgres.URLRepository.RecordClick"
	const query = `UPDATE urls
		SET click_count = click_count + 1, last_accessed = $2
		WHERE short_id = $1`

	res, err := r.db.ExecContext(ctx, query, shortID, at)
	if err != nil {
		return fmt.Errorf("%s: failed to update urls table row: %w", op, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get number of affected rows: %w", op, err)
	}

	if rowsAffected != 1 {
		return fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	return nil
}
