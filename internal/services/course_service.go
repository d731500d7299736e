package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bigbrownking/taubago/internal/models"
	"github.com/bigbrownking/taubago/internal/repository"
	"github.com/bigbrownking/taubago/pkg/apperr"
	"github.com/bigbrownking/taubago/pkg/logger"
	"github.com/bigbrownking/taubago/pkg/storage"
)

// CourseService представляет сервис курсов и записей на них
type CourseService struct {
	courseRepo     repository.CourseRepository
	lessonRepo     repository.LessonRepository
	enrollmentRepo repository.EnrollmentRepository
	videoRepo      repository.VideoRepository
	reportRepo     repository.LessonReportRepository
	reviewRepo     repository.CourseReviewRepository
	store          storage.ObjectStore
	log            *logger.Logger
}

func NewCourseService(
	courseRepo repository.CourseRepository,
	lessonRepo repository.LessonRepository,
	enrollmentRepo repository.EnrollmentRepository,
	videoRepo repository.VideoRepository,
	reportRepo repository.LessonReportRepository,
	reviewRepo repository.CourseReviewRepository,
	store storage.ObjectStore,
	log *logger.Logger,
) *CourseService {
	return &CourseService{
		courseRepo:     courseRepo,
		lessonRepo:     lessonRepo,
		enrollmentRepo: enrollmentRepo,
		videoRepo:      videoRepo,
		reportRepo:     reportRepo,
		reviewRepo:     reviewRepo,
		store:          store,
		log:            log,
	}
}

// CreateCourseRequest - запрос на создание курса
type CreateCourseRequest struct {
	Title       string             `json:"title" binding:"required"`
	Description string             `json:"description"`
	Month       models.CourseMonth `json:"month" binding:"required"`
}

// CreateCourse создает курс следующего порядкового номера
// с уроком на каждый день месяца
func (s *CourseService) CreateCourse(admin *models.User, req CreateCourseRequest) (*models.Course, error) {
	if !admin.IsAdmin() {
		return nil, apperr.Forbidden("only administrators can create courses")
	}
	if !req.Month.Valid() {
		return nil, apperr.Validation("unknown course month: %s", req.Month)
	}

	maxOrder, err := s.courseRepo.MaxOrder()
	if err != nil {
		return nil, apperr.Internal("failed to determine course order", err)
	}

	days := req.Month.Days()
	course := &models.Course{
		ID:           uuid.New(),
		Title:        req.Title,
		Description:  req.Description,
		Month:        req.Month,
		DurationDays: days,
		Order:        maxOrder + 1,
		CreatedByID:  admin.ID,
	}
	for day := 1; day <= days; day++ {
		course.Lessons = append(course.Lessons, models.Lesson{
			ID:        uuid.New(),
			Title:     fmt.Sprintf("День %d", day),
			DayNumber: day,
		})
	}

	if err := s.courseRepo.Create(course); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("course order %d is already taken", course.Order)
		}
		return nil, apperr.Internal("failed to create course", err)
	}

	s.log.Infow("course created", "course_id", course.ID, "order", course.Order,
		"month", course.Month, "lessons", len(course.Lessons))
	return course, nil
}

// GetCourse возвращает курс с учетом записи текущего пользователя
func (s *CourseService) GetCourse(user *models.User, courseID uuid.UUID) (*CourseDTO, error) {
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("course not found")
		}
		return nil, apperr.Internal("failed to load course", err)
	}
	return s.toCourseDTO(user, course)
}

// ListCourses возвращает все курсы в порядке прохождения
func (s *CourseService) ListCourses(user *models.User) ([]CourseDTO, error) {
	courses, err := s.courseRepo.List()
	if err != nil {
		return nil, apperr.Internal("failed to list courses", err)
	}
	result := make([]CourseDTO, 0, len(courses))
	for _, course := range courses {
		dto, err := s.toCourseDTO(user, course)
		if err != nil {
			return nil, err
		}
		result = append(result, *dto)
	}
	return result, nil
}

// Enroll записывает родителя на курс с проверкой последовательности:
// без активного курса, без повторной записи и только после
// завершения предыдущего по порядку курса
func (s *CourseService) Enroll(user *models.User, courseID uuid.UUID) (*EnrollmentDTO, error) {
	if !user.IsParent() {
		return nil, apperr.Forbidden("only parents can enroll in courses")
	}

	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("course not found")
		}
		return nil, apperr.Internal("failed to load course", err)
	}

	if _, err := s.enrollmentRepo.GetActiveByUser(user.ID); err == nil {
		return nil, apperr.Conflict("you already have an active course, complete it first")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal("failed to check active enrollment", err)
	}

	enrolled, err := s.enrollmentRepo.ExistsByUserAndCourse(user.ID, courseID)
	if err != nil {
		return nil, apperr.Internal("failed to check enrollment", err)
	}
	if enrolled {
		return nil, apperr.Conflict("you are already enrolled in this course")
	}

	if course.Order > 1 {
		previous, err := s.courseRepo.GetByOrder(course.Order - 1)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.Conflict("previous course in the sequence does not exist")
			}
			return nil, apperr.Internal("failed to load previous course", err)
		}
		completed, err := s.enrollmentRepo.ExistsCompletedByUserAndCourse(user.ID, previous.ID)
		if err != nil {
			return nil, apperr.Internal("failed to check previous course", err)
		}
		if !completed {
			return nil, apperr.Conflict("complete course %q before enrolling in this one", previous.Title)
		}
	}

	enrollment := &models.CourseEnrollment{
		ID:       uuid.New(),
		UserID:   user.ID,
		CourseID: courseID,
	}
	if err := s.enrollmentRepo.Create(enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("you are already enrolled in this course")
		}
		return nil, apperr.Internal("failed to enroll", err)
	}

	s.log.Infow("enrolled in course", "user_id", user.ID, "course_id", courseID)
	enrollment.Course = course
	dto := toEnrollmentDTO(enrollment)
	return &dto, nil
}

// Unenroll отписывает родителя от курса, прогресс и отчеты сохраняются
func (s *CourseService) Unenroll(user *models.User, courseID uuid.UUID) error {
	enrollment, err := s.enrollmentRepo.GetByUserAndCourse(user.ID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("you are not enrolled in this course")
		}
		return apperr.Internal("failed to load enrollment", err)
	}
	if err := s.enrollmentRepo.Delete(enrollment.ID); err != nil {
		return apperr.Internal("failed to unenroll", err)
	}
	s.log.Infow("unenrolled from course", "user_id", user.ID, "course_id", courseID)
	return nil
}

// CompleteCourse отмечает курс завершенным, открывая следующий по порядку
func (s *CourseService) CompleteCourse(user *models.User, courseID uuid.UUID) (*EnrollmentDTO, error) {
	enrollment, err := s.enrollmentRepo.GetByUserAndCourse(user.ID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("you are not enrolled in this course")
		}
		return nil, apperr.Internal("failed to load enrollment", err)
	}
	if enrollment.Completed {
		return nil, apperr.Conflict("course is already completed")
	}

	now := time.Now()
	enrollment.Completed = true
	enrollment.CompletedAt = &now
	enrollment.ProgressPercentage = 100
	if err := s.enrollmentRepo.Update(enrollment); err != nil {
		return nil, apperr.Internal("failed to complete course", err)
	}

	s.log.Infow("course completed", "user_id", user.ID, "course_id", courseID)
	dto := toEnrollmentDTO(enrollment)
	return &dto, nil
}

// GetActiveEnrollment возвращает текущий незавершенный курс родителя
func (s *CourseService) GetActiveEnrollment(user *models.User) (*EnrollmentDTO, error) {
	enrollment, err := s.enrollmentRepo.GetActiveByUser(user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("no active course")
		}
		return nil, apperr.Internal("failed to load active enrollment", err)
	}
	dto := toEnrollmentDTO(enrollment)
	return &dto, nil
}

// ListMyEnrollments возвращает все записи родителя
func (s *CourseService) ListMyEnrollments(user *models.User) ([]EnrollmentDTO, error) {
	enrollments, err := s.enrollmentRepo.ListByUser(user.ID)
	if err != nil {
		return nil, apperr.Internal("failed to list enrollments", err)
	}
	return toEnrollmentDTOs(enrollments), nil
}

// ListCompletedEnrollments возвращает завершенные курсы родителя
func (s *CourseService) ListCompletedEnrollments(user *models.User) ([]EnrollmentDTO, error) {
	enrollments, err := s.enrollmentRepo.ListByUserAndCompleted(user.ID, true)
	if err != nil {
		return nil, apperr.Internal("failed to list completed enrollments", err)
	}
	return toEnrollmentDTOs(enrollments), nil
}

// IsEnrolled проверяет, записан ли пользователь на курс
func (s *CourseService) IsEnrolled(user *models.User, courseID uuid.UUID) (bool, error) {
	enrolled, err := s.enrollmentRepo.ExistsByUserAndCourse(user.ID, courseID)
	if err != nil {
		return false, apperr.Internal("failed to check enrollment", err)
	}
	return enrolled, nil
}

// UpdateCourseRequest - запрос на изменение курса
type UpdateCourseRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// UpdateCourse изменяет название и описание курса
func (s *CourseService) UpdateCourse(admin *models.User, courseID uuid.UUID, req UpdateCourseRequest) (*models.Course, error) {
	if !admin.IsAdmin() {
		return nil, apperr.Forbidden("only administrators can update courses")
	}
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("course not found")
		}
		return nil, apperr.Internal("failed to load course", err)
	}
	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if err := s.courseRepo.Update(course); err != nil {
		return nil, apperr.Internal("failed to update course", err)
	}
	return course, nil
}

// DeleteCourse удаляет курс со всеми уроками, видео, записями,
// отчетами и отзывами, включая объекты в хранилище
func (s *CourseService) DeleteCourse(ctx context.Context, admin *models.User, courseID uuid.UUID) error {
	if !admin.IsAdmin() {
		return apperr.Forbidden("only administrators can delete courses")
	}
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("course not found")
		}
		return apperr.Internal("failed to load course", err)
	}

	videos, err := s.videoRepo.ListByCourse(courseID)
	if err != nil {
		return apperr.Internal("failed to list course videos", err)
	}
	for _, video := range videos {
		if err := s.store.Delete(ctx, video.ObjectKey); err != nil {
			// Осиротевший объект в хранилище не блокирует удаление курса
			s.log.Errorw("failed to delete video object", "key", video.ObjectKey, "error", err)
		}
		if err := s.videoRepo.Delete(video.ID); err != nil {
			return apperr.Internal("failed to delete video", err)
		}
	}

	lessons, err := s.lessonRepo.ListByCourse(courseID)
	if err != nil {
		return apperr.Internal("failed to list course lessons", err)
	}
	for _, lesson := range lessons {
		if err := s.reportRepo.DeleteByLesson(lesson.ID); err != nil {
			return apperr.Internal("failed to delete lesson reports", err)
		}
	}

	reviews, err := s.reviewRepo.ListByCourse(courseID)
	if err != nil {
		return apperr.Internal("failed to list course reviews", err)
	}
	for _, review := range reviews {
		if err := s.reviewRepo.Delete(review.ID); err != nil {
			return apperr.Internal("failed to delete course review", err)
		}
	}

	if err := s.enrollmentRepo.DeleteByCourse(courseID); err != nil {
		return apperr.Internal("failed to delete enrollments", err)
	}
	if err := s.lessonRepo.DeleteByCourse(courseID); err != nil {
		return apperr.Internal("failed to delete lessons", err)
	}
	if err := s.courseRepo.Delete(courseID); err != nil {
		return apperr.Internal("failed to delete course", err)
	}

	s.log.Infow("course deleted", "course_id", courseID, "title", course.Title,
		"videos", len(videos))
	return nil
}

func (s *CourseService) toCourseDTO(user *models.User, course *models.Course) (*CourseDTO, error) {
	dto := &CourseDTO{
		ID:               course.ID,
		Title:            course.Title,
		Description:      course.Description,
		Month:            course.Month,
		MonthDisplayName: course.Month.DisplayName(),
		DurationDays:     course.DurationDays,
		Order:            course.Order,
		CreatedAt:        course.CreatedAt,
	}
	if course.CreatedBy != nil {
		dto.CreatedByName = course.CreatedBy.FullName()
	}

	count, err := s.enrollmentRepo.CountByCourse(course.ID)
	if err != nil {
		return nil, apperr.Internal("failed to count enrollments", err)
	}
	dto.EnrolledCount = count

	if user != nil {
		enrolled, err := s.enrollmentRepo.ExistsByUserAndCourse(user.ID, course.ID)
		if err != nil {
			return nil, apperr.Internal("failed to check enrollment", err)
		}
		dto.IsEnrolled = enrolled
	}
	return dto, nil
}

func toEnrollmentDTO(e *models.CourseEnrollment) EnrollmentDTO {
	dto := EnrollmentDTO{
		ID:                 e.ID,
		CourseID:           e.CourseID,
		ProgressPercentage: e.ProgressPercentage,
		Completed:          e.Completed,
		CompletedAt:        e.CompletedAt,
		EnrolledAt:         e.EnrolledAt,
	}
	if e.Course != nil {
		dto.CourseTitle = e.Course.Title
	}
	return dto
}

func toEnrollmentDTOs(enrollments []*models.CourseEnrollment) []EnrollmentDTO {
	result := make([]EnrollmentDTO, 0, len(enrollments))
	for _, e := range enrollments {
		result = append(result, toEnrollmentDTO(e))
	}
	return result
}
