//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vadimbarashkov/shortlink/internal/config"
	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/migrations"
	"github.com/vadimbarashkov/shortlink/pkg/postgres"
)

func setupPostgres(t testing.TB) config.Postgres {
	t.Helper()

	ctx := context.Background()

	pgUser := "test"
	pgPassword := "test"
	pgDB := "shortlink"

	pgCont, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "postgres:16-alpine",
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       pgDB,
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgCont.Terminate(ctx); err != nil {
			t.Fatalf("Failed to terminate postgres container: %v", err)
		}
	})

	pgHost, err := pgCont.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	pgPort, err := pgCont.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	return config.Postgres{
		User:     pgUser,
		Password: pgPassword,
		Host:     pgHost,
		Port:     pgPort.Int(),
		DB:       pgDB,
		SSLMode:  "disable",
	}
}

type URLRepositoryIntegrationTestSuite struct {
	suite.Suite
	createdAt time.Time
	repo      *URLRepository
	truncate  func()
}

func (suite *URLRepositoryIntegrationTestSuite) SetupSuite() {
	cfg := setupPostgres(suite.T())

	if err := postgres.RunMigrations(cfg.DSN(), migrations.Postgres, migrations.PostgresDir); err != nil {
		suite.T().Fatalf("Failed to run migrations: %v", err)
	}

	db, err := postgres.New(context.Background(), cfg.DSN())
	if err != nil {
		suite.T().Fatalf("Failed to connect to database: %v", err)
	}
	suite.T().Cleanup(func() {
		db.Close()
	})

	suite.createdAt = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	suite.repo = NewURLRepository(db)
	suite.truncate = func() {
		if _, err := db.Exec("TRUNCATE TABLE urls"); err != nil {
			suite.T().Fatalf("Failed to truncate urls table: %v", err)
		}
	}
}

func (suite *URLRepositoryIntegrationTestSuite) SetupSubTest() {
	suite.truncate()
}

func (suite *URLRepositoryIntegrationTestSuite) newRecord() *entity.URLRecord {
	return &entity.URLRecord{
		ShortID:     "abc123",
		OriginalURL: "https://example.com",
		CreatedAt:   suite.createdAt,
	}
}

func (suite *URLRepositoryIntegrationTestSuite) TestInsert() {
	suite.Run("success", func() {
		url, err := suite.repo.Insert(context.Background(), suite.newRecord())

		suite.NoError(err)
		suite.Equal(suite.newRecord(), url)
	})

	suite.Run("short id exists", func() {
		_, err := suite.repo.Insert(context.Background(), suite.newRecord())
		suite.NoError(err)

		url, err := suite.repo.Insert(context.Background(), suite.newRecord())

		suite.ErrorIs(err, entity.ErrShortIDExists)
		suite.Nil(url)
	})
}

func (suite *URLRepositoryIntegrationTestSuite) TestGet() {
	suite.Run("url not found", func() {
		url, err := suite.repo.Get(context.Background(), "abc123")

		suite.ErrorIs(err, entity.ErrURLNotFound)
		suite.Nil(url)
	})

	suite.Run("success", func() {
		_, err := suite.repo.Insert(context.Background(), suite.newRecord())
		suite.NoError(err)

		url, err := suite.repo.Get(context.Background(), "abc123")

		suite.NoError(err)
		suite.Equal(suite.newRecord(), url)
	})
}

func (suite *URLRepositoryIntegrationTestSuite) TestRecordClick() {
	suite.Run("url not found", func() {
		err := suite.repo.RecordClick(context.Background(), "abc123", time.Now())

		suite.ErrorIs(err, entity.ErrURLNotFound)
	})

	suite.Run("concurrent clicks are not lost", func() {
		_, err := suite.repo.Insert(context.Background(), suite.newRecord())
		suite.NoError(err)

		at := suite.createdAt.Add(time.Hour)

		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				suite.NoError(suite.repo.RecordClick(context.Background(), "abc123", at))
			}()
		}
		wg.Wait()

		url, err := suite.repo.Get(context.Background(), "abc123")
		suite.NoError(err)
		suite.Equal(int64(50), url.ClickCount)
		suite.Equal(at, *url.LastAccessed)
	})
}

func TestURLRepositoryIntegration(t *testing.T) {
	suite.Run(t, new(URLRepositoryIntegrationTestSuite))
}
