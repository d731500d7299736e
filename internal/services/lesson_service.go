package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bigbrownking/taubago/internal/models"
	"github.com/bigbrownking/taubago/internal/repository"
	"github.com/bigbrownking/taubago/pkg/apperr"
	"github.com/bigbrownking/taubago/pkg/logger"
)

// LessonService представляет сервис уроков курса
type LessonService struct {
	lessonRepo     repository.LessonRepository
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	log            *logger.Logger
}

func NewLessonService(
	lessonRepo repository.LessonRepository,
	courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	log *logger.Logger,
) *LessonService {
	return &LessonService{
		lessonRepo:     lessonRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		log:            log,
	}
}

// ListLessons возвращает уроки курса по дням
func (s *LessonService) ListLessons(user *models.User, courseID uuid.UUID) ([]*models.Lesson, error) {
	if _, err := s.requireAccess(user, courseID); err != nil {
		return nil, err
	}
	lessons, err := s.lessonRepo.ListByCourse(courseID)
	if err != nil {
		return nil, apperr.Internal("failed to list lessons", err)
	}
	return lessons, nil
}

// GetLesson возвращает урок по идентификатору
func (s *LessonService) GetLesson(user *models.User, lessonID uuid.UUID) (*models.Lesson, error) {
	lesson, err := s.lessonRepo.GetByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("lesson not found")
		}
		return nil, apperr.Internal("failed to load lesson", err)
	}
	if _, err := s.requireAccess(user, lesson.CourseID); err != nil {
		return nil, err
	}
	return lesson, nil
}

// CurrentLesson возвращает урок текущего дня курса родителя.
// День считается от даты записи и не выходит за длительность курса
func (s *LessonService) CurrentLesson(user *models.User, courseID uuid.UUID) (*models.Lesson, error) {
	enrollment, err := s.enrollmentRepo.GetByUserAndCourse(user.ID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("you are not enrolled in this course")
		}
		return nil, apperr.Internal("failed to load enrollment", err)
	}

	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		return nil, apperr.Internal("failed to load course", err)
	}

	day := int(time.Since(enrollment.EnrolledAt).Hours()/24) + 1
	if day < 1 {
		day = 1
	}
	if day > course.DurationDays {
		day = course.DurationDays
	}

	lesson, err := s.lessonRepo.GetByCourseAndDay(courseID, day)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("lesson for day %d not found", day)
		}
		return nil, apperr.Internal("failed to load lesson", err)
	}
	return lesson, nil
}

// requireAccess проверяет, что пользователь записан на курс
// либо является сотрудником
func (s *LessonService) requireAccess(user *models.User, courseID uuid.UUID) (*models.CourseEnrollment, error) {
	if user.IsAdmin() || user.IsCurator() {
		return nil, nil
	}
	enrollment, err := s.enrollmentRepo.GetByUserAndCourse(user.ID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Forbidden("enroll in the course to access its lessons")
		}
		return nil, apperr.Internal("failed to check enrollment", err)
	}
	return enrollment, nil
}
