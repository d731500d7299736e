package database

import (
	"fmt"

	"github.com/bigbrownking/taubago/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database представляет подключение к базе данных
type Database struct {
	DB *gorm.DB
}

// NewDatabase создает новое подключение к базе данных PostgreSQL
func NewDatabase(dsn string) (*Database, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	database := &Database{DB: db}

	// Автомиграция моделей
	if err := database.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return database, nil
}

// Migrate выполняет миграцию базы данных
func (d *Database) Migrate() error {
	return d.DB.AutoMigrate(
		&models.User{},
		&models.Child{},
		&models.RegistrationQuestion{},
		&models.RegistrationAnswer{},
		&models.PasswordResetToken{},
		&models.Course{},
		&models.Lesson{},
		&models.CourseEnrollment{},
		&models.VideoCategory{},
		&models.Video{},
		&models.VideoProgress{},
		&models.LessonReport{},
		&models.CourseReview{},
		&models.ReviewLike{},
	)
}

// Close закрывает подключение к базе данных
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
