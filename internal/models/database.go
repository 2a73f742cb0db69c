package models

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/huangang/venturelink/internal/config"
	"github.com/huangang/venturelink/pkg/logger"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Open connects to the configured database. Unique-index violations are
// translated to gorm.ErrDuplicatedKey.
func Open(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.NewGormLogger(debug),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}

func InitDB(cfg *config.DatabaseConfig, debug bool) error {
	db, err := Open(cfg, debug)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// AutoMigrate creates or updates every table on db.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Startup{},
		&Investor{},
		&StartupInvestorMapping{},
		&DealPipeline{},
		&Investment{},
		&StartupActivity{},
		&TimelyReport{},
		&Integration{},
		&StartupDocument{},
		&NotificationOutbox{},
		&SchedulerLock{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
