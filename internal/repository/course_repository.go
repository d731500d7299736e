package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bigbrownking/taubago/internal/models"
)

type CourseRepository interface {
	Create(course *models.Course) error
	GetByID(id uuid.UUID) (*models.Course, error)
	GetByOrder(order int) (*models.Course, error)
	List() ([]*models.Course, error)
	MaxOrder() (int, error)
	Update(course *models.Course) error
	Delete(id uuid.UUID) error
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(course *models.Course) error {
	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	for i := range course.Lessons {
		if course.Lessons[i].ID == uuid.Nil {
			course.Lessons[i].ID = uuid.New()
		}
	}
	return r.db.Create(course).Error
}

func (r *courseRepository) GetByID(id uuid.UUID) (*models.Course, error) {
	var course models.Course
	err := r.db.Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("lessons.day_number")
	}).Preload("CreatedBy").
		First(&course, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) GetByOrder(order int) (*models.Course, error) {
	var course models.Course
	err := r.db.First(&course, "course_order = ?", order).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) List() ([]*models.Course, error) {
	var courses []*models.Course
	err := r.db.Preload("CreatedBy").Order("course_order").Find(&courses).Error
	return courses, err
}

func (r *courseRepository) MaxOrder() (int, error) {
	var maxOrder int
	err := r.db.Model(&models.Course{}).
		Select("COALESCE(MAX(course_order), 0)").
		Scan(&maxOrder).Error
	return maxOrder, err
}

func (r *courseRepository) Update(course *models.Course) error {
	return r.db.Save(course).Error
}

func (r *courseRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Course{}, "id = ?", id).Error
}
