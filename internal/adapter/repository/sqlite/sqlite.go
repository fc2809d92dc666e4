// Package sqlite implements the record store on a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/vadimbarashkov/shortlink/internal/entity"

	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
)

const (
	dialect   = "sqlite3"
	tableURLs = "urls"
)

var urlColumns = []any{"short_id", "original_url", "click_count", "created_at", "last_accessed"}

type urlRow struct {
	ShortID      string     `db:"short_id"`
	OriginalURL  string     `db:"original_url"`
	ClickCount   int64      `db:"click_count"`
	CreatedAt    timestamp  `db:"created_at"`
	LastAccessed *timestamp `db:"last_accessed"`
}

func (r *urlRow) toEntity() *entity.URLRecord {
	rec := &entity.URLRecord{
		ShortID:     r.ShortID,
		OriginalURL: r.OriginalURL,
		ClickCount:  r.ClickCount,
		CreatedAt:   r.CreatedAt.Time(),
	}

	if r.LastAccessed != nil {
		t := r.LastAccessed.Time()
		rec.LastAccessed = &t
	}

	return rec
}

type URLRepository struct {
	db *goqu.Database
}

func NewURLRepository(db *sql.DB) *URLRepository {
	return &URLRepository{db: goqu.New(dialect, db)}
}

func (r *URLRepository) Get(ctx context.Context, shortID string) (*entity.URLRecord, error) {
	const op = "adapter.repository.sqlite.URLRepository.Get"

	query := r.db.From(tableURLs).
		Prepared(true).
		Select(urlColumns...).
		Where(goqu.Ex{"short_id": shortID})

	var row urlRow

	found, err := query.ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get row from urls table: %w", op, err)
	}

	if !found {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	return row.toEntity(), nil
}

// Insert never replaces an existing row: a taken short id yields entity.ErrShortIDExists.
func (r *URLRepository) Insert(ctx context.Context, rec *entity.URLRecord) (*entity.URLRecord, error) {
	const op = "adapter.repository.sqlite.URLRepository.Insert"

	query := r.db.Insert(tableURLs).
		Prepared(true).
		Cols("short_id", "original_url", "click_count", "created_at").
		Vals(goqu.Vals{rec.ShortID, rec.OriginalURL, rec.ClickCount, timestamp(rec.CreatedAt)}).
		OnConflict(goqu.DoNothing())

	res, err := query.Executor().ExecContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to insert into urls table: %w", op, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get number of affected rows: %w", op, err)
	}

	if rowsAffected == 0 {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrShortIDExists)
	}

	out := *rec
	out.CreatedAt = rec.CreatedAt.UTC()
	out.LastAccessed = nil

	return &out, nil
}

func (r *URLRepository) RecordClick(ctx context.Context, shortID string, at time.Time) error {
	const op = "adapter.repository.sqlite.URLRepository.RecordClick"

	query := r.db.Update(tableURLs).
		Prepared(true).
		Set(goqu.Record{
			"click_count":   goqu.L("click_count + 1"),
			"last_accessed": timestamp(at),
		}).
		Where(goqu.Ex{"short_id": shortID})

	res, err := query.Executor().ExecContext(ctx)
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
