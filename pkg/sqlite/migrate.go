package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// RunMigrations applies the migrations found in dir of fsys to the database file at path.
// It uses its own connection, which is closed on return.
func RunMigrations(path string, fsys fs.FS, dir string) error {
	const op = "sqlite.RunMigrations"

	db, err := sql.Open(driverName, DSN(path))
	if err != nil {
		return fmt.Errorf("%s: failed to open database: %w", op, err)
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		db.Close()
		return fmt.Errorf("%s: failed to create migration driver: %w", op, err)
	}

	src, err := iofs.New(fsys, dir)
	if err != nil {
		driver.Close()
		return fmt.Errorf("%s: failed to open migrations source: %w", op, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		driver.Close()
		return fmt.Errorf("%s: failed to initialize migrations: %w", op, err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	return nil
}
