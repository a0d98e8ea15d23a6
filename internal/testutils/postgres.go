package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/linskybing/fundraise-go/internal/config/db"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SetupPostgresForIntegration returns a migrated gorm handle on a throwaway
// postgres. TEST_DB_DSN points at an existing server instead of starting a
// container.
func SetupPostgresForIntegration(ctx context.Context) (*gorm.DB, func(), error) {
	dsn := os.Getenv("TEST_DB_DSN")
	terminate := func() {}

	if dsn == "" {
		req := testcontainers.ContainerRequest{
			Image: "postgres:15",
			Env: map[string]string{
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_USER":     "test",
				"POSTGRES_DB":       "fundraise",
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		}

		pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("start postgres container: %w", err)
		}
		terminate = func() { _ = pg.Terminate(context.Background()) }

		host, err := pg.Host(ctx)
		if err != nil {
			terminate()
			return nil, nil, err
		}
		port, err := pg.MappedPort(ctx, "5432")
		if err != nil {
			terminate()
			return nil, nil, err
		}
		dsn = fmt.Sprintf("postgres://test:test@%s:%s/fundraise?sslmode=disable", host, port.Port())
	}

	// retry db connect
	var sqlDB *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		sqlDB, err = sql.Open("postgres", dsn)
		if err == nil {
			if err = sqlDB.PingContext(ctx); err == nil {
				break
			}
			_ = sqlDB.Close()
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		terminate()
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	conn, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		_ = sqlDB.Close()
		terminate()
		return nil, nil, err
	}
	if err := db.Migrate(conn); err != nil {
		_ = sqlDB.Close()
		terminate()
		return nil, nil, err
	}

	cleanup := func() {
		_ = sqlDB.Close()
		terminate()
	}
	return conn, cleanup, nil
}
