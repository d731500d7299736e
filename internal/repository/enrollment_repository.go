package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bigbrownking/taubago/internal/models"
)

type EnrollmentRepository interface {
	Create(enrollment *models.CourseEnrollment) error
	GetByUserAndCourse(userID, courseID uuid.UUID) (*models.CourseEnrollment, error)
	ExistsByUserAndCourse(userID, courseID uuid.UUID) (bool, error)
	ExistsCompletedByUserAndCourse(userID, courseID uuid.UUID) (bool, error)
	GetActiveByUser(userID uuid.UUID) (*models.CourseEnrollment, error)
	ListByUser(userID uuid.UUID) ([]*models.CourseEnrollment, error)
	ListByUserAndCompleted(userID uuid.UUID, completed bool) ([]*models.CourseEnrollment, error)
	CountByCourse(courseID uuid.UUID) (int64, error)
	Update(enrollment *models.CourseEnrollment) error
	Delete(id uuid.UUID) error
	DeleteByCourse(courseID uuid.UUID) error
}

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(enrollment *models.CourseEnrollment) error {
	if enrollment.ID == uuid.Nil {
		enrollment.ID = uuid.New()
	}
	return r.db.Create(enrollment).Error
}

func (r *enrollmentRepository) GetByUserAndCourse(userID, courseID uuid.UUID) (*models.CourseEnrollment, error) {
	var enrollment models.CourseEnrollment
	err := r.db.Preload("Course").
		First(&enrollment, "user_id = ? AND course_id = ?", userID, courseID).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) ExistsByUserAndCourse(userID, courseID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.CourseEnrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *enrollmentRepository) ExistsCompletedByUserAndCourse(userID, courseID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.CourseEnrollment{}).
		Where("user_id = ? AND course_id = ? AND completed = ?", userID, courseID, true).
		Count(&count).Error
	return count > 0, err
}

func (r *enrollmentRepository) GetActiveByUser(userID uuid.UUID) (*models.CourseEnrollment, error) {
	var enrollment models.CourseEnrollment
	err := r.db.Preload("Course").
		First(&enrollment, "user_id = ? AND completed = ?", userID, false).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) ListByUser(userID uuid.UUID) ([]*models.CourseEnrollment, error) {
	var enrollments []*models.CourseEnrollment
	err := r.db.Preload("Course").
		Where("user_id = ?", userID).
		Order("enrolled_at").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepository) ListByUserAndCompleted(userID uuid.UUID, completed bool) ([]*models.CourseEnrollment, error) {
	var enrollments []*models.CourseEnrollment
	err := r.db.Preload("Course").
		Where("user_id = ? AND completed = ?", userID, completed).
		Order("enrolled_at").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepository) CountByCourse(courseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.CourseEnrollment{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

func (r *enrollmentRepository) Update(enrollment *models.CourseEnrollment) error {
	return r.db.Save(enrollment).Error
}

func (r *enrollmentRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.CourseEnrollment{}, "id = ?", id).Error
}

func (r *enrollmentRepository) DeleteByCourse(courseID uuid.UUID) error {
	return r.db.Delete(&models.CourseEnrollment{}, "course_id = ?", courseID).Error
}
