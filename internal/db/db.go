package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/suPer8Hu/client-portal/internal/activity"
	"github.com/suPer8Hu/client-portal/internal/chat"
	"github.com/suPer8Hu/client-portal/internal/documents"
	"github.com/suPer8Hu/client-portal/internal/links"
	"github.com/suPer8Hu/client-portal/internal/milestones"
	"github.com/suPer8Hu/client-portal/internal/models"
	"github.com/suPer8Hu/client-portal/internal/notify"
	"github.com/suPer8Hu/client-portal/internal/profile"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the database for driver ("mysql", "postgres" or "sqlite").
func Connect(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "mysql":
		dialector = mysql.Open(dsn)
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER=%q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// one writer; sqlite serialises anyway
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return gdb, nil
}

// Models lists every table the portal owns.
func Models() []any {
	return []any{
		&models.User{},
		&profile.ClientProfile{},
		&documents.Document{},
		&chat.Message{},
		&milestones.Milestone{},
		&links.Link{},
		&activity.Log{},
		&notify.Delivery{},
		&notify.WebhookLog{},
	}
}

func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(Models()...)
}
