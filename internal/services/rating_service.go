package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bigbrownking/taubago/internal/models"
	"github.com/bigbrownking/taubago/internal/repository"
	"github.com/bigbrownking/taubago/pkg/apperr"
	"github.com/bigbrownking/taubago/pkg/logger"
)

const defaultReviewPageSize = 20

// RatingService представляет сервис оценок и отзывов о курсах
type RatingService struct {
	reviewRepo     repository.CourseReviewRepository
	likeRepo       repository.ReviewLikeRepository
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	log            *logger.Logger
}

func NewRatingService(
	reviewRepo repository.CourseReviewRepository,
	likeRepo repository.ReviewLikeRepository,
	courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	log *logger.Logger,
) *RatingService {
	return &RatingService{
		reviewRepo:     reviewRepo,
		likeRepo:       likeRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		log:            log,
	}
}

// RateCourse ставит оценку курсу. Существующая запись обновляется,
// текст отзыва при этом сохраняется
func (s *RatingService) RateCourse(user *models.User, courseID uuid.UUID, rating int) (*ReviewDTO, error) {
	review, err := s.prepareReview(user, courseID, rating)
	if err != nil {
		return nil, err
	}
	review.Rating = rating

	if err := s.reviewRepo.Save(review); err != nil {
		return nil, apperr.Internal("failed to save rating", err)
	}
	s.log.Infow("course rated", "user_id", user.ID, "course_id", courseID, "rating", rating)
	dto := s.toReviewDTO(review, user, false)
	return &dto, nil
}

// ReviewCourse оставляет отзыв с оценкой и текстом
func (s *RatingService) ReviewCourse(user *models.User, courseID uuid.UUID, rating int, reviewText string) (*ReviewDTO, error) {
	if reviewText == "" {
		return nil, apperr.Validation("review text must not be empty")
	}
	review, err := s.prepareReview(user, courseID, rating)
	if err != nil {
		return nil, err
	}
	review.Rating = rating
	review.ReviewText = &reviewText

	if err := s.reviewRepo.Save(review); err != nil {
		return nil, apperr.Internal("failed to save review", err)
	}
	s.log.Infow("course reviewed", "user_id", user.ID, "course_id", courseID, "rating", rating)
	dto := s.toReviewDTO(review, user, false)
	return &dto, nil
}

// GetCourseRatingStats возвращает статистику оценок курса
func (s *RatingService) GetCourseRatingStats(courseID uuid.UUID) (*CourseRatingStatsDTO, error) {
	if _, err := s.courseRepo.GetByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("course not found")
		}
		return nil, apperr.Internal("failed to load course", err)
	}

	average, total, err := s.reviewRepo.AverageRatingByCourse(courseID)
	if err != nil {
		return nil, apperr.Internal("failed to aggregate ratings", err)
	}

	stats := &CourseRatingStatsDTO{
		AverageRating:   average,
		FormattedRating: fmt.Sprintf("%.1f", average),
		TotalRatings:    total,
	}

	reviews, err := s.reviewRepo.ListByCourse(courseID)
	if err != nil {
		return nil, apperr.Internal("failed to list ratings", err)
	}
	for _, review := range reviews {
		switch review.Rating {
		case 5:
			stats.FiveStarCount++
		case 4:
			stats.FourStarCount++
		case 3:
			stats.ThreeStarCount++
		case 2:
			stats.TwoStarCount++
		case 1:
			stats.OneStarCount++
		}
	}
	return stats, nil
}

// ListCourseReviews возвращает страницу текстовых отзывов курса,
// сначала самые полезные
func (s *RatingService) ListCourseReviews(user *models.User, courseID uuid.UUID, page, pageSize int) (*ReviewPageDTO, error) {
	if _, err := s.courseRepo.GetByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("course not found")
		}
		return nil, apperr.Internal("failed to load course", err)
	}

	page, pageSize = normalizePage(page, pageSize)
	reviews, total, err := s.reviewRepo.ListWithTextByCourse(courseID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, apperr.Internal("failed to list reviews", err)
	}
	return s.toReviewPage(user, reviews, page, pageSize, total)
}

// ListAllReviews возвращает страницу текстовых отзывов по всем курсам
func (s *RatingService) ListAllReviews(user *models.User, page, pageSize int) (*ReviewPageDTO, error) {
	page, pageSize = normalizePage(page, pageSize)
	reviews, total, err := s.reviewRepo.ListWithText((page-1)*pageSize, pageSize)
	if err != nil {
		return nil, apperr.Internal("failed to list reviews", err)
	}
	return s.toReviewPage(user, reviews, page, pageSize, total)
}

// ToggleReviewLike переключает отметку "полезный отзыв".
// Счетчик лайков не опускается ниже нуля
func (s *RatingService) ToggleReviewLike(user *models.User, reviewID uuid.UUID) (*ReviewDTO, error) {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("review not found")
		}
		return nil, apperr.Internal("failed to load review", err)
	}

	like, err := s.likeRepo.GetByUserAndReview(user.ID, reviewID)
	liked := false
	switch {
	case err == nil:
		if err := s.likeRepo.Delete(like.ID); err != nil {
			return nil, apperr.Internal("failed to remove like", err)
		}
		if review.LikeCount > 0 {
			review.LikeCount--
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		newLike := &models.ReviewLike{
			ID:       uuid.New(),
			UserID:   user.ID,
			ReviewID: reviewID,
		}
		if err := s.likeRepo.Create(newLike); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperr.Conflict("review is already liked")
			}
			return nil, apperr.Internal("failed to add like", err)
		}
		review.LikeCount++
		liked = true
	default:
		return nil, apperr.Internal("failed to load like", err)
	}

	if err := s.reviewRepo.Save(review); err != nil {
		return nil, apperr.Internal("failed to update like count", err)
	}
	dto := s.toReviewDTO(review, user, liked)
	return &dto, nil
}

// DeleteReview удаляет отзыв. Доступно автору и администратору
func (s *RatingService) DeleteReview(user *models.User, reviewID uuid.UUID) error {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("review not found")
		}
		return apperr.Internal("failed to load review", err)
	}
	if review.UserID != user.ID && !user.IsAdmin() {
		return apperr.Forbidden("you cannot delete this review")
	}
	if err := s.reviewRepo.Delete(reviewID); err != nil {
		return apperr.Internal("failed to delete review", err)
	}
	s.log.Infow("review deleted", "review_id", reviewID, "by", user.ID)
	return nil
}

// HasUserRatedCourse проверяет, ставил ли пользователь оценку курсу.
// Для анонимного запроса всегда false
func (s *RatingService) HasUserRatedCourse(user *models.User, courseID uuid.UUID) (bool, error) {
	if user == nil {
		return false, nil
	}
	exists, err := s.reviewRepo.ExistsByUserAndCourse(user.ID, courseID)
	if err != nil {
		return false, apperr.Internal("failed to check rating", err)
	}
	return exists, nil
}

// HasUserReviewedCourse проверяет, оставлял ли пользователь текстовый отзыв
func (s *RatingService) HasUserReviewedCourse(user *models.User, courseID uuid.UUID) (bool, error) {
	if user == nil {
		return false, nil
	}
	review, err := s.reviewRepo.GetByUserAndCourse(user.ID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, apperr.Internal("failed to check review", err)
	}
	return review.ReviewText != nil, nil
}

// CourseSummaries возвращает сводку оценок по всем курсам
func (s *RatingService) CourseSummaries() ([]CourseRatingSummaryDTO, error) {
	courses, err := s.courseRepo.List()
	if err != nil {
		return nil, apperr.Internal("failed to list courses", err)
	}

	result := make([]CourseRatingSummaryDTO, 0, len(courses))
	for _, course := range courses {
		average, count, err := s.reviewRepo.AverageRatingByCourse(course.ID)
		if err != nil {
			return nil, apperr.Internal("failed to aggregate ratings", err)
		}
		result = append(result, CourseRatingSummaryDTO{
			CourseID:        course.ID,
			Title:           course.Title,
			Month:           course.Month.DisplayName(),
			AverageRating:   average,
			FormattedRating: fmt.Sprintf("%.1f", average),
			ReviewCount:     count,
			ColorCode:       ratingColor(average),
		})
	}
	return result, nil
}

// prepareReview проверяет предусловия и возвращает существующую
// запись отзыва либо новую
func (s *RatingService) prepareReview(user *models.User, courseID uuid.UUID, rating int) (*models.CourseReview, error) {
	if !user.IsParent() {
		return nil, apperr.Forbidden("only parents can rate courses")
	}
	if rating < 1 || rating > 5 {
		return nil, apperr.Validation("rating must be between 1 and 5")
	}

	if _, err := s.courseRepo.GetByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("course not found")
		}
		return nil, apperr.Internal("failed to load course", err)
	}

	enrolled, err := s.enrollmentRepo.ExistsByUserAndCourse(user.ID, courseID)
	if err != nil {
		return nil, apperr.Internal("failed to check enrollment", err)
	}
	if !enrolled {
		return nil, apperr.Forbidden("enroll in the course before rating it")
	}

	review, err := s.reviewRepo.GetByUserAndCourse(user.ID, courseID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Internal("failed to load review", err)
		}
		review = &models.CourseReview{
			ID:       uuid.New(),
			UserID:   user.ID,
			CourseID: courseID,
		}
	}
	return review, nil
}

func (s *RatingService) toReviewPage(user *models.User, reviews []*models.CourseReview, page, pageSize int, total int64) (*ReviewPageDTO, error) {
	result := make([]ReviewDTO, 0, len(reviews))
	for _, review := range reviews {
		liked := false
		if user != nil {
			var err error
			liked, err = s.likeRepo.ExistsByUserAndReview(user.ID, review.ID)
			if err != nil {
				return nil, apperr.Internal("failed to check like", err)
			}
		}
		result = append(result, s.toReviewDTO(review, review.User, liked))
	}
	return &ReviewPageDTO{
		Reviews:    result,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}, nil
}

func (s *RatingService) toReviewDTO(review *models.CourseReview, author *models.User, liked bool) ReviewDTO {
	dto := ReviewDTO{
		ID:                 review.ID,
		UserID:             review.UserID,
		CourseID:           review.CourseID,
		Rating:             review.Rating,
		ReviewText:         review.ReviewText,
		LikeCount:          review.LikeCount,
		LikedByCurrentUser: liked,
		CreatedAt:          review.CreatedAt,
	}
	if author != nil {
		dto.UserName = author.FullName()
	}
	if review.Course != nil {
		dto.CourseTitle = review.Course.Title
	}
	return dto
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = defaultReviewPageSize
	}
	return page, pageSize
}

// ratingColor подбирает цвет индикатора по средней оценке
func ratingColor(average float64) string {
	switch {
	case average >= 4.5:
		return "#4CAF50"
	case average >= 3.5:
		return "#8BC34A"
	case average >= 2.5:
		return "#FFC107"
	case average >= 1.5:
		return "#FF9800"
	case average > 0:
		return "#F44336"
	default:
		return "#9E9E9E"
	}
}
