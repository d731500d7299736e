package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bigbrownking/taubago/internal/models"
)

type LessonRepository interface {
	GetByID(id uuid.UUID) (*models.Lesson, error)
	GetByCourseAndDay(courseID uuid.UUID, dayNumber int) (*models.Lesson, error)
	ListByCourse(courseID uuid.UUID) ([]*models.Lesson, error)
	DeleteByCourse(courseID uuid.UUID) error
}

type lessonRepository struct {
	db *gorm.DB
}

func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

func (r *lessonRepository) GetByID(id uuid.UUID) (*models.Lesson, error) {
	var lesson models.Lesson
	err := r.db.Preload("Course").Preload("Videos").
		First(&lesson, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *lessonRepository) GetByCourseAndDay(courseID uuid.UUID, dayNumber int) (*models.Lesson, error) {
	var lesson models.Lesson
	err := r.db.Preload("Course").Preload("Videos").
		First(&lesson, "course_id = ? AND day_number = ?", courseID, dayNumber).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *lessonRepository) ListByCourse(courseID uuid.UUID) ([]*models.Lesson, error) {
	var lessons []*models.Lesson
	err := r.db.Preload("Videos").
		Where("course_id = ?", courseID).
		Order("day_number").
		Find(&lessons).Error
	return lessons, err
}

func (r *lessonRepository) DeleteByCourse(courseID uuid.UUID) error {
	return r.db.Delete(&models.Lesson{}, "course_id = ?", courseID).Error
}
