package db

import (
	"github.com/drivelane-dev/drivelane/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	// TranslateError maps driver-specific failures onto gorm sentinels, so
	// a duplicate email surfaces as gorm.ErrDuplicatedKey regardless of
	// backend.
	return gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
}

func Migrate(conn *gorm.DB) error {
	models := []interface{}{
		&models.User{},
		&models.DriverLicenseApplication{},
	}

	migrator := conn.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := conn.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}
