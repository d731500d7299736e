package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bigbrownking/taubago/internal/models"
)

type CourseReviewRepository interface {
	GetByID(id uuid.UUID) (*models.CourseReview, error)
	GetByUserAndCourse(userID, courseID uuid.UUID) (*models.CourseReview, error)
	ExistsByUserAndCourse(userID, courseID uuid.UUID) (bool, error)
	Save(review *models.CourseReview) error
	Delete(id uuid.UUID) error
	DeleteByCourse(courseID uuid.UUID) error

	ListByCourse(courseID uuid.UUID) ([]*models.CourseReview, error)
	AverageRatingByCourse(courseID uuid.UUID) (float64, int64, error)

	// Отзывы с текстом, отсортированные по лайкам и дате
	ListWithTextByCourse(courseID uuid.UUID, offset, limit int) ([]*models.CourseReview, int64, error)
	ListWithText(offset, limit int) ([]*models.CourseReview, int64, error)
}

type courseReviewRepository struct {
	db *gorm.DB
}

func NewCourseReviewRepository(db *gorm.DB) CourseReviewRepository {
	return &courseReviewRepository{db: db}
}

func (r *courseReviewRepository) GetByID(id uuid.UUID) (*models.CourseReview, error) {
	var review models.CourseReview
	err := r.db.Preload("User").Preload("Course").
		First(&review, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *courseReviewRepository) GetByUserAndCourse(userID, courseID uuid.UUID) (*models.CourseReview, error) {
	var review models.CourseReview
	err := r.db.First(&review, "user_id = ? AND course_id = ?", userID, courseID).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *courseReviewRepository) ExistsByUserAndCourse(userID, courseID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.CourseReview{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *courseReviewRepository) Save(review *models.CourseReview) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	return r.db.Save(review).Error
}

func (r *courseReviewRepository) Delete(id uuid.UUID) error {
	if err := r.db.Delete(&models.ReviewLike{}, "review_id = ?", id).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.CourseReview{}, "id = ?", id).Error
}

func (r *courseReviewRepository) DeleteByCourse(courseID uuid.UUID) error {
	return r.db.Delete(&models.CourseReview{}, "course_id = ?", courseID).Error
}

func (r *courseReviewRepository) ListByCourse(courseID uuid.UUID) ([]*models.CourseReview, error) {
	var reviews []*models.CourseReview
	err := r.db.Where("course_id = ?", courseID).Find(&reviews).Error
	return reviews, err
}

func (r *courseReviewRepository) AverageRatingByCourse(courseID uuid.UUID) (float64, int64, error) {
	var result struct {
		Average float64
		Count   int64
	}
	err := r.db.Model(&models.CourseReview{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("course_id = ?", courseID).
		Scan(&result).Error
	return result.Average, result.Count, err
}

func (r *courseReviewRepository) ListWithTextByCourse(courseID uuid.UUID, offset, limit int) ([]*models.CourseReview, int64, error) {
	var total int64
	query := r.db.Model(&models.CourseReview{}).
		Where("course_id = ? AND review_text IS NOT NULL", courseID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []*models.CourseReview
	err := r.db.Preload("User").Preload("Course").
		Where("course_id = ? AND review_text IS NOT NULL", courseID).
		Order("like_count DESC, created_at DESC").
		Offset(offset).Limit(limit).
		Find(&reviews).Error
	return reviews, total, err
}

func (r *courseReviewRepository) ListWithText(offset, limit int) ([]*models.CourseReview, int64, error) {
	var total int64
	if err := r.db.Model(&models.CourseReview{}).
		Where("review_text IS NOT NULL").
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []*models.CourseReview
	err := r.db.Preload("User").Preload("Course").
		Where("review_text IS NOT NULL").
		Order("like_count DESC, created_at DESC").
		Offset(offset).Limit(limit).
		Find(&reviews).Error
	return reviews, total, err
}
