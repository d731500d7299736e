package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bigbrownking/taubago/internal/models"
)

type ReviewLikeRepository interface {
	GetByUserAndReview(userID, reviewID uuid.UUID) (*models.ReviewLike, error)
	ExistsByUserAndReview(userID, reviewID uuid.UUID) (bool, error)
	Create(like *models.ReviewLike) error
	Delete(id uuid.UUID) error
}

type reviewLikeRepository struct {
	db *gorm.DB
}

func NewReviewLikeRepository(db *gorm.DB) ReviewLikeRepository {
	return &reviewLikeRepository{db: db}
}

func (r *reviewLikeRepository) GetByUserAndReview(userID, reviewID uuid.UUID) (*models.ReviewLike, error) {
	var like models.ReviewLike
	err := r.db.First(&like, "user_id = ? AND review_id = ?", userID, reviewID).Error
	if err != nil {
		return nil, err
	}
	return &like, nil
}

func (r *reviewLikeRepository) ExistsByUserAndReview(userID, reviewID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.ReviewLike{}).
		Where("user_id = ? AND review_id = ?", userID, reviewID).
		Count(&count).Error
	return count > 0, err
}

func (r *reviewLikeRepository) Create(like *models.ReviewLike) error {
	if like.ID == uuid.Nil {
		like.ID = uuid.New()
	}
	return r.db.Create(like).Error
}

func (r *reviewLikeRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.ReviewLike{}, "id = ?", id).Error
}
