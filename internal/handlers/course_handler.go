package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bigbrownking/taubago/internal/services"
)

// CourseHandler представляет обработчик курсов и записей на них
type CourseHandler struct {
	courseService *services.CourseService
	lessonService *services.LessonService
}

// NewCourseHandler создает новый обработчик курсов
func NewCourseHandler(courseService *services.CourseService, lessonService *services.LessonService) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
		lessonService: lessonService,
	}
}

// ListCourses возвращает все курсы
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseService.ListCourses(currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

// GetCourse возвращает курс по идентификатору
func (h *CourseHandler) GetCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	course, err := h.courseService.GetCourse(currentUser(c), courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// CreateCourse создает курс (только администратор)
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req services.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course, err := h.courseService.CreateCourse(currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

// UpdateCourse изменяет курс (только администратор)
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	var req services.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course, err := h.courseService.UpdateCourse(currentUser(c), courseID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// DeleteCourse удаляет курс со всем содержимым (только администратор)
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	if err := h.courseService.DeleteCourse(c.Request.Context(), currentUser(c), courseID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Course deleted successfully"})
}

// Enroll записывает родителя на курс
func (h *CourseHandler) Enroll(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	enrollment, err := h.courseService.Enroll(currentUser(c), courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

// Unenroll отписывает родителя от курса
func (h *CourseHandler) Unenroll(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	if err := h.courseService.Unenroll(currentUser(c), courseID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unenrolled successfully"})
}

// CompleteCourse отмечает курс завершенным
func (h *CourseHandler) CompleteCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	enrollment, err := h.courseService.CompleteCourse(currentUser(c), courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

// ActiveEnrollment возвращает текущий курс родителя
func (h *CourseHandler) ActiveEnrollment(c *gin.Context) {
	enrollment, err := h.courseService.GetActiveEnrollment(currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

// MyEnrollments возвращает все записи родителя
func (h *CourseHandler) MyEnrollments(c *gin.Context) {
	enrollments, err := h.courseService.ListMyEnrollments(currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollments)
}

// CompletedEnrollments возвращает завершенные курсы родителя
func (h *CourseHandler) CompletedEnrollments(c *gin.Context) {
	enrollments, err := h.courseService.ListCompletedEnrollments(currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollments)
}

// IsEnrolled проверяет запись на курс
func (h *CourseHandler) IsEnrolled(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	enrolled, err := h.courseService.IsEnrolled(currentUser(c), courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrolled": enrolled})
}

// ListLessons возвращает уроки курса
func (h *CourseHandler) ListLessons(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	lessons, err := h.lessonService.ListLessons(currentUser(c), courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lessons)
}

// CurrentLesson возвращает урок текущего дня курса
func (h *CourseHandler) CurrentLesson(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	lesson, err := h.lessonService.CurrentLesson(currentUser(c), courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}

// GetLesson возвращает урок по идентификатору
func (h *CourseHandler) GetLesson(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}

	lesson, err := h.lessonService.GetLesson(currentUser(c), lessonID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}
