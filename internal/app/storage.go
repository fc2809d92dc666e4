package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vadimbarashkov/shortlink/internal/adapter/repository/memory"
	"github.com/vadimbarashkov/shortlink/internal/adapter/repository/rediscache"
	"github.com/vadimbarashkov/shortlink/internal/config"
	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/migrations"
	"github.com/vadimbarashkov/shortlink/pkg/postgres"
	"github.com/vadimbarashkov/shortlink/pkg/sqlite"

	pgrepo "github.com/vadimbarashkov/shortlink/internal/adapter/repository/postgres"
	sqliterepo "github.com/vadimbarashkov/shortlink/internal/adapter/repository/sqlite"
)

// URLRepository is the record store every storage driver provides.
type URLRepository interface {
	Get(ctx context.Context, shortID string) (*entity.URLRecord, error)
	Insert(ctx context.Context, rec *entity.URLRecord) (*entity.URLRecord, error)
	RecordClick(ctx context.Context, shortID string, at time.Time) error
}

// Storage is an open record store together with the connections behind it.
type Storage struct {
	URLs    URLRepository
	closers []func() error
}

// Close releases the connections in reverse order of opening.
func (s *Storage) Close() error {
	var errs []error

	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// OpenStorage connects to the store selected by cfg.Storage.Driver and,
// when enabled, puts the Redis cache in front of it.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Storage, error) {
	const op = "app.OpenStorage"

	s := &Storage{}

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		db, err := postgres.New(
			ctx,
			cfg.Postgres.DSN(),
			postgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
			postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
			postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
			postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		s.closers = append(s.closers, db.Close)
		s.URLs = pgrepo.NewURLRepository(db)
	case config.DriverSQLite:
		db, err := sqlite.New(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		s.closers = append(s.closers, db.Close)
		s.URLs = sqliterepo.NewURLRepository(db)
	case config.DriverMemory:
		s.URLs = memory.NewURLRepository()
	default:
		return nil, fmt.Errorf("%s: unknown storage driver %q", op, cfg.Storage.Driver)
	}

	if cfg.Redis.Enabled {
		client, err := rediscache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		s.closers = append(s.closers, client.Close)
		s.URLs = rediscache.NewURLRepository(s.URLs, client, cfg.Redis.TTL, logger)
	}

	return s, nil
}

// Migrate brings the schema of the configured database up to date.
// The memory driver has no schema.
func Migrate(cfg *config.Config) error {
	const op = "app.Migrate"

	var err error

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		err = postgres.RunMigrations(cfg.Postgres.DSN(), migrations.Postgres, migrations.PostgresDir)
	case config.DriverSQLite:
		err = sqlite.RunMigrations(cfg.SQLite.Path, migrations.SQLite, migrations.SQLiteDir)
	case config.DriverMemory:
	default:
		err = fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
