package db

import (
	"fmt"

	"github.com/linskybing/fundraise-go/internal/config"
	"github.com/linskybing/fundraise-go/internal/domain/audit"
	"github.com/linskybing/fundraise-go/internal/domain/fundraise"
	"github.com/linskybing/fundraise-go/internal/domain/user"
	"github.com/linskybing/fundraise-go/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Models lists every table owned by this service.
var Models = []interface{}{
	&user.Profile{},
	&fundraise.FundingRequest{},
	&audit.AuditLog{},
}

func PostgresDSN(c config.DBConfig) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Init opens the configured database and migrates the schema.
func Init(c config.DBConfig) error {
	var dialector gorm.Dialector
	switch c.Driver {
	case config.DBDriverSQLite:
		dialector = sqlite.Open(c.SQLitePath)
	default:
		dialector = postgres.Open(PostgresDSN(c))
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("connect to %s: %w", c.Driver, err)
	}

	if err := Migrate(conn); err != nil {
		return err
	}

	DB = conn
	logger.WithFields(map[string]interface{}{"driver": c.Driver}).Info("Database connected and migrated")
	return nil
}

func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
