package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bigbrownking/taubago/internal/models"
)

type LessonReportRepository interface {
	GetByLessonAndParent(lessonID, parentID uuid.UUID) (*models.LessonReport, error)
	ListByParent(parentID uuid.UUID) ([]*models.LessonReport, error)
	ListByLesson(lessonID uuid.UUID) ([]*models.LessonReport, error)
	Save(report *models.LessonReport) error
	DeleteByLesson(lessonID uuid.UUID) error
}

type lessonReportRepository struct {
	db *gorm.DB
}

func NewLessonReportRepository(db *gorm.DB) LessonReportRepository {
	return &lessonReportRepository{db: db}
}

func (r *lessonReportRepository) GetByLessonAndParent(lessonID, parentID uuid.UUID) (*models.LessonReport, error) {
	var report models.LessonReport
	err := r.db.Preload("Lesson").Preload("Parent").
		First(&report, "lesson_id = ? AND parent_id = ?", lessonID, parentID).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *lessonReportRepository) ListByParent(parentID uuid.UUID) ([]*models.LessonReport, error) {
	var reports []*models.LessonReport
	err := r.db.Preload("Lesson").Preload("Parent").
		Where("parent_id = ?", parentID).
		Order("created_at DESC").
		Find(&reports).Error
	return reports, err
}

func (r *lessonReportRepository) ListByLesson(lessonID uuid.UUID) ([]*models.LessonReport, error) {
	var reports []*models.LessonReport
	err := r.db.Preload("Lesson").Preload("Parent").
		Where("lesson_id = ?", lessonID).
		Order("created_at DESC").
		Find(&reports).Error
	return reports, err
}

func (r *lessonReportRepository) Save(report *models.LessonReport) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	return r.db.Save(report).Error
}

func (r *lessonReportRepository) DeleteByLesson(lessonID uuid.UUID) error {
	return r.db.Delete(&models.LessonReport{}, "lesson_id = ?", lessonID).Error
}
