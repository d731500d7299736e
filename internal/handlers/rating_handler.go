package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bigbrownking/taubago/internal/services"
)

// RatingHandler представляет обработчик оценок и отзывов
type RatingHandler struct {
	ratingService *services.RatingService
}

// NewRatingHandler создает новый обработчик оценок
func NewRatingHandler(ratingService *services.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

// RateCourseRequest представляет оценку без текста
type RateCourseRequest struct {
	Rating int `json:"rating" binding:"required,min=1,max=5"`
}

// ReviewCourseRequest представляет отзыв с оценкой и текстом
type ReviewCourseRequest struct {
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
	ReviewText string `json:"review_text" binding:"required"`
}

// RateCourse ставит оценку курсу
func (h *RatingHandler) RateCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	var req RateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.ratingService.RateCourse(currentUser(c), courseID, req.Rating)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// ReviewCourse оставляет отзыв о курсе
func (h *RatingHandler) ReviewCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	var req ReviewCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.ratingService.ReviewCourse(currentUser(c), courseID, req.Rating, req.ReviewText)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// CourseRatingStats возвращает статистику оценок курса
func (h *RatingHandler) CourseRatingStats(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	stats, err := h.ratingService.GetCourseRatingStats(courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CourseReviews возвращает страницу отзывов курса
func (h *RatingHandler) CourseReviews(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	page, pageSize := pageParams(c)
	reviews, err := h.ratingService.ListCourseReviews(currentUser(c), courseID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// AllReviews возвращает страницу отзывов по всем курсам
func (h *RatingHandler) AllReviews(c *gin.Context) {
	page, pageSize := pageParams(c)
	reviews, err := h.ratingService.ListAllReviews(currentUser(c), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// ToggleLike переключает отметку "полезный отзыв"
func (h *RatingHandler) ToggleLike(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
		return
	}

	review, err := h.ratingService.ToggleReviewLike(currentUser(c), reviewID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// DeleteReview удаляет отзыв
func (h *RatingHandler) DeleteReview(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
		return
	}

	if err := h.ratingService.DeleteReview(currentUser(c), reviewID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
}

// MyCourseRating проверяет, оценивал ли пользователь курс
func (h *RatingHandler) MyCourseRating(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	user := currentUser(c)
	rated, err := h.ratingService.HasUserRatedCourse(user, courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	reviewed, err := h.ratingService.HasUserReviewedCourse(user, courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rated": rated, "reviewed": reviewed})
}

// CourseSummaries возвращает сводку оценок по всем курсам
func (h *RatingHandler) CourseSummaries(c *gin.Context) {
	summaries, err := h.ratingService.CourseSummaries()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, pageSize
}
