package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bigbrownking/taubago/internal/models"
)

type VideoProgressRepository interface {
	GetByUserAndVideo(userID, videoID uuid.UUID) (*models.VideoProgress, error)
	Save(progress *models.VideoProgress) error
	DeleteByVideo(videoID uuid.UUID) error
}

type videoProgressRepository struct {
	db *gorm.DB
}

func NewVideoProgressRepository(db *gorm.DB) VideoProgressRepository {
	return &videoProgressRepository{db: db}
}

func (r *videoProgressRepository) GetByUserAndVideo(userID, videoID uuid.UUID) (*models.VideoProgress, error) {
	var progress models.VideoProgress
	err := r.db.First(&progress, "user_id = ? AND video_id = ?", userID, videoID).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *videoProgressRepository) Save(progress *models.VideoProgress) error {
	if progress.ID == uuid.Nil {
		progress.ID = uuid.New()
	}
	return r.db.Save(progress).Error
}

func (r *videoProgressRepository) DeleteByVideo(videoID uuid.UUID) error {
	return r.db.Delete(&models.VideoProgress{}, "video_id = ?", videoID).Error
}
