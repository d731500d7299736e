package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bigbrownking/taubago/internal/models"
)

type VideoRepository interface {
	Create(video *models.Video) error
	GetByID(id uuid.UUID) (*models.Video, error)
	ListByLesson(lessonID uuid.UUID) ([]*models.Video, error)
	ListByLessonAndUploader(lessonID, uploaderID uuid.UUID) ([]*models.Video, error)
	ListByCourse(courseID uuid.UUID) ([]*models.Video, error)
	Delete(id uuid.UUID) error
}

type videoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

func (r *videoRepository) Create(video *models.Video) error {
	if video.ID == uuid.Nil {
		video.ID = uuid.New()
	}
	return r.db.Create(video).Error
}

func (r *videoRepository) GetByID(id uuid.UUID) (*models.Video, error) {
	var video models.Video
	err := r.db.Preload("Lesson").Preload("Category").
		First(&video, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *videoRepository) ListByLesson(lessonID uuid.UUID) ([]*models.Video, error) {
	var videos []*models.Video
	err := r.db.Preload("Category").
		Where("lesson_id = ?", lessonID).
		Order("uploaded_at").
		Find(&videos).Error
	return videos, err
}

func (r *videoRepository) ListByLessonAndUploader(lessonID, uploaderID uuid.UUID) ([]*models.Video, error) {
	var videos []*models.Video
	err := r.db.Where("lesson_id = ? AND uploaded_by_id = ?", lessonID, uploaderID).
		Order("uploaded_at").
		Find(&videos).Error
	return videos, err
}

func (r *videoRepository) ListByCourse(courseID uuid.UUID) ([]*models.Video, error) {
	var videos []*models.Video
	err := r.db.Joins("JOIN lessons ON lessons.id = videos.lesson_id").
		Where("lessons.course_id = ?", courseID).
		Find(&videos).Error
	return videos, err
}

func (r *videoRepository) Delete(id uuid.UUID) error {
	// Прогресс просмотра удаляется вместе с видео
	if err := r.db.Delete(&models.VideoProgress{}, "video_id = ?", id).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.Video{}, "id = ?", id).Error
}
