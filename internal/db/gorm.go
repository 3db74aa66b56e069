package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"github.com/roamline/travelcompanion-back/internal/config"
)

var (
	Module = fx.Provide(
		NewGormClient,
	)
)

type (
	GormForkedModel struct {
		ID        uint64 `gorm:"primarykey"`
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	User struct {
		GormForkedModel
		Name        string `gorm:"not null"`
		Surname     string
		DateOfBirth time.Time
		Username    string `gorm:"unique;not null"`
		Password    string `gorm:"not null"` // bcrypt hash
		Email       string
		Trips       []Trip `gorm:"constraint:OnDelete:CASCADE"`
	}

	Trip struct {
		GormForkedModel
		UserID     uint64 `gorm:"not null;uniqueIndex:uidx_trip_user_date"`
		User       User
		Associates string
		TripDate   time.Time `gorm:"not null;uniqueIndex:uidx_trip_user_date"`
		TotalCost  int64
		Cities     []TripCity `gorm:"constraint:OnDelete:CASCADE"`
	}

	City struct {
		GormForkedModel
		CityName   string `gorm:"not null;uniqueIndex:uidx_city_name_country"`
		Country    string `gorm:"not null;uniqueIndex:uidx_city_name_country"`
		Population int64
	}

	// TripCity links a trip to one of its destination cities. Position keeps
	// the order destinations were attached in, so joined names are stable.
	TripCity struct {
		GormForkedModel
		TripID   uint64 `gorm:"not null;index"`
		CityID   uint64 `gorm:"not null"`
		City     City
		Position int `gorm:"not null"`
	}
)

func NewGormClient(cfg *config.Config) (*gorm.DB, error) {
	newLogger := logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Info,
		Colorful:                  true,
		IgnoreRecordNotFoundError: false,
	})

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// OpenSQLite opens a file or in-memory database through the pure Go sqlite
// driver. Used by the tests, kept here next to the postgres constructor.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        dsn,
	}, &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite database")
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}); err != nil {
		return errors.Wrap(err, "migrate user")
	}
	if err := db.AutoMigrate(&City{}); err != nil {
		return errors.Wrap(err, "migrate city")
	}
	if err := db.AutoMigrate(&Trip{}); err != nil {
		return errors.Wrap(err, "migrate trip")
	}
	if err := db.AutoMigrate(&TripCity{}); err != nil {
		return errors.Wrap(err, "migrate trip city link")
	}
	return nil
}
