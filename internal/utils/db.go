package utils

import (
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB initializes a database connection. TranslateError is enabled so
// unique-constraint violations surface as gorm.ErrDuplicatedKey.
func InitDB(dsn string) (*gorm.DB, error) {
	zap.L().Info("connecting to database")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	zap.L().Info("database connected successfully")
	return db, nil
}

// CloseDB closes the database connection
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
