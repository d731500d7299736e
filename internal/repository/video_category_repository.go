package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bigbrownking/taubago/internal/models"
)

type VideoCategoryRepository interface {
	Create(category *models.VideoCategory) error
	GetByID(id uuid.UUID) (*models.VideoCategory, error)
	List() ([]*models.VideoCategory, error)
	Count() (int64, error)
}

type videoCategoryRepository struct {
	db *gorm.DB
}

func NewVideoCategoryRepository(db *gorm.DB) VideoCategoryRepository {
	return &videoCategoryRepository{db: db}
}

func (r *videoCategoryRepository) Create(category *models.VideoCategory) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	return r.db.Create(category).Error
}

func (r *videoCategoryRepository) GetByID(id uuid.UUID) (*models.VideoCategory, error) {
	var category models.VideoCategory
	err := r.db.First(&category, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *videoCategoryRepository) List() ([]*models.VideoCategory, error) {
	var categories []*models.VideoCategory
	err := r.db.Order("name").Find(&categories).Error
	return categories, err
}

func (r *videoCategoryRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.VideoCategory{}).Count(&count).Error
	return count, err
}
