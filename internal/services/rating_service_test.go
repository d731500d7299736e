package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bigbrownking/taubago/internal/models"
	"github.com/bigbrownking/taubago/internal/repository"
	"github.com/bigbrownking/taubago/pkg/apperr"
	"github.com/bigbrownking/taubago/pkg/logger"
)

func newRatingService(db *gorm.DB) *RatingService {
	return NewRatingService(
		repository.NewCourseReviewRepository(db),
		repository.NewReviewLikeRepository(db),
		repository.NewCourseRepository(db),
		repository.NewEnrollmentRepository(db),
		logger.NewNop(),
	)
}

func TestRateThenReviewKeepsSingleRecord(t *testing.T) {
	db := newTestDB(t)
	svc := newRatingService(db)
	admin := createUser(t, db, models.UserTypeAdministrator)
	parent := createUser(t, db, models.UserTypeParent)
	course := createCourse(t, db, 1, models.MonthJanuary, admin.ID)
	enroll(t, db, parent.ID, course.ID, false)

	rated, err := svc.RateCourse(parent, course.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, rated.Rating)
	assert.Nil(t, rated.ReviewText)

	reviewed, err := svc.ReviewCourse(parent, course.ID, 5, "Отличный курс")
	require.NoError(t, err)
	assert.Equal(t, 5, reviewed.Rating)
	require.NotNil(t, reviewed.ReviewText)
	assert.Equal(t, "Отличный курс", *reviewed.ReviewText)
	assert.Equal(t, rated.ID, reviewed.ID)

	// Повторная оценка сохраняет текст отзыва
	rerated, err := svc.RateCourse(parent, course.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, rerated.Rating)
	require.NotNil(t, rerated.ReviewText)
	assert.Equal(t, "Отличный курс", *rerated.ReviewText)

	var count int64
	require.NoError(t, db.Model(&models.CourseReview{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRateCourseRequiresEnrollment(t *testing.T) {
	db := newTestDB(t)
	svc := newRatingService(db)
	admin := createUser(t, db, models.UserTypeAdministrator)
	parent := createUser(t, db, models.UserTypeParent)
	course := createCourse(t, db, 1, models.MonthJanuary, admin.ID)

	_, err := svc.RateCourse(parent, course.ID, 5)
	assert.True(t, apperr.IsForbidden(err))

	_, err = svc.RateCourse(admin, course.ID, 5)
	assert.True(t, apperr.IsForbidden(err))
}

func TestRateCourseValidatesRating(t *testing.T) {
	db := newTestDB(t)
	svc := newRatingService(db)
	admin := createUser(t, db, models.UserTypeAdministrator)
	parent := createUser(t, db, models.UserTypeParent)
	course := createCourse(t, db, 1, models.MonthJanuary, admin.ID)
	enroll(t, db, parent.ID, course.ID, false)

	_, err := svc.RateCourse(parent, course.ID, 0)
	assert.True(t, apperr.IsValidation(err))
	_, err = svc.RateCourse(parent, course.ID, 6)
	assert.True(t, apperr.IsValidation(err))
	_, err = svc.ReviewCourse(parent, course.ID, 5, "")
	assert.True(t, apperr.IsValidation(err))
}

func TestToggleReviewLike(t *testing.T) {
	db := newTestDB(t)
	svc := newRatingService(db)
	admin := createUser(t, db, models.UserTypeAdministrator)
	author := createUser(t, db, models.UserTypeParent)
	reader := createUser(t, db, models.UserTypeParent)
	course := createCourse(t, db, 1, models.MonthJanuary, admin.ID)
	enroll(t, db, author.ID, course.ID, false)

	review, err := svc.ReviewCourse(author, course.ID, 5, "Полезно")
	require.NoError(t, err)

	liked, err := svc.ToggleReviewLike(reader, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, liked.LikeCount)
	assert.True(t, liked.LikedByCurrentUser)

	// Повторное нажатие снимает лайк
	unliked, err := svc.ToggleReviewLike(reader, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, unliked.LikeCount)
	assert.False(t, unliked.LikedByCurrentUser)
}

func TestListCourseReviewsOrdering(t *testing.T) {
	db := newTestDB(t)
	svc := newRatingService(db)
	admin := createUser(t, db, models.UserTypeAdministrator)
	course := createCourse(t, db, 1, models.MonthJanuary, admin.ID)

	first := createUser(t, db, models.UserTypeParent)
	second := createUser(t, db, models.UserTypeParent)
	third := createUser(t, db, models.UserTypeParent)
	reader := createUser(t, db, models.UserTypeParent)
	for _, parent := range []*models.User{first, second, third} {
		enroll(t, db, parent.ID, course.ID, false)
	}

	_, err := svc.ReviewCourse(first, course.ID, 4, "Первый отзыв")
	require.NoError(t, err)
	popular, err := svc.ReviewCourse(second, course.ID, 5, "Популярный отзыв")
	require.NoError(t, err)

	// Оценка без текста в списках не участвует
	_, err = svc.RateCourse(third, course.ID, 2)
	require.NoError(t, err)

	_, err = svc.ToggleReviewLike(reader, popular.ID)
	require.NoError(t, err)

	page, err := svc.ListCourseReviews(reader, course.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Reviews, 2)
	assert.Equal(t, int64(2), page.TotalCount)
	assert.Equal(t, "Популярный отзыв", *page.Reviews[0].ReviewText)
	assert.True(t, page.Reviews[0].LikedByCurrentUser)
	assert.False(t, page.Reviews[1].LikedByCurrentUser)
}

func TestCourseRatingStats(t *testing.T) {
	db := newTestDB(t)
	svc := newRatingService(db)
	admin := createUser(t, db, models.UserTypeAdministrator)
	course := createCourse(t, db, 1, models.MonthJanuary, admin.ID)

	ratings := []int{5, 5, 4, 2}
	for _, rating := range ratings {
		parent := createUser(t, db, models.UserTypeParent)
		enroll(t, db, parent.ID, course.ID, false)
		_, err := svc.RateCourse(parent, course.ID, rating)
		require.NoError(t, err)
	}

	stats, err := svc.GetCourseRatingStats(course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalRatings)
	assert.Equal(t, "4.0", stats.FormattedRating)
	assert.Equal(t, int64(2), stats.FiveStarCount)
	assert.Equal(t, int64(1), stats.FourStarCount)
	assert.Equal(t, int64(1), stats.TwoStarCount)
	assert.Zero(t, stats.ThreeStarCount)
	assert.Zero(t, stats.OneStarCount)
}

func TestHasUserRatedCourse(t *testing.T) {
	db := newTestDB(t)
	svc := newRatingService(db)
	admin := createUser(t, db, models.UserTypeAdministrator)
	parent := createUser(t, db, models.UserTypeParent)
	course := createCourse(t, db, 1, models.MonthJanuary, admin.ID)
	enroll(t, db, parent.ID, course.ID, false)

	// Анонимный запрос всегда false
	rated, err := svc.HasUserRatedCourse(nil, course.ID)
	require.NoError(t, err)
	assert.False(t, rated)

	rated, err = svc.HasUserRatedCourse(parent, course.ID)
	require.NoError(t, err)
	assert.False(t, rated)

	_, err = svc.RateCourse(parent, course.ID, 4)
	require.NoError(t, err)

	rated, err = svc.HasUserRatedCourse(parent, course.ID)
	require.NoError(t, err)
	assert.True(t, rated)

	// Оценка без текста не считается отзывом
	reviewed, err := svc.HasUserReviewedCourse(parent, course.ID)
	require.NoError(t, err)
	assert.False(t, reviewed)
}

func TestDeleteReviewPermissions(t *testing.T) {
	db := newTestDB(t)
	svc := newRatingService(db)
	admin := createUser(t, db, models.UserTypeAdministrator)
	author := createUser(t, db, models.UserTypeParent)
	other := createUser(t, db, models.UserTypeParent)
	course := createCourse(t, db, 1, models.MonthJanuary, admin.ID)
	enroll(t, db, author.ID, course.ID, false)

	review, err := svc.ReviewCourse(author, course.ID, 5, "Текст")
	require.NoError(t, err)

	err = svc.DeleteReview(other, review.ID)
	assert.True(t, apperr.IsForbidden(err))

	require.NoError(t, svc.DeleteReview(admin, review.ID))

	err = svc.DeleteReview(admin, review.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestCourseSummaries(t *testing.T) {
	db := newTestDB(t)
	svc := newRatingService(db)
	admin := createUser(t, db, models.UserTypeAdministrator)
	parent := createUser(t, db, models.UserTypeParent)
	course := createCourse(t, db, 1, models.MonthJanuary, admin.ID)
	createCourse(t, db, 2, models.MonthFebruary, admin.ID)
	enroll(t, db, parent.ID, course.ID, false)

	_, err := svc.RateCourse(parent, course.ID, 5)
	require.NoError(t, err)

	summaries, err := svc.CourseSummaries()
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "5.0", summaries[0].FormattedRating)
	assert.NotEmpty(t, summaries[0].ColorCode)
	assert.Equal(t, int64(0), summaries[1].ReviewCount)
	assert.Equal(t, "0.0", summaries[1].FormattedRating)
}
