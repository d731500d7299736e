package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bigbrownking/taubago/internal/models"
	"github.com/bigbrownking/taubago/internal/repository"
	"github.com/bigbrownking/taubago/pkg/apperr"
	"github.com/bigbrownking/taubago/pkg/logger"
)

func newLessonService(db *gorm.DB) *LessonService {
	return NewLessonService(
		repository.NewLessonRepository(db),
		repository.NewCourseRepository(db),
		repository.NewEnrollmentRepository(db),
		logger.NewNop(),
	)
}

func TestListLessonsRequiresEnrollment(t *testing.T) {
	db := newTestDB(t)
	svc := newLessonService(db)
	admin := createUser(t, db, models.UserTypeAdministrator)
	parent := createUser(t, db, models.UserTypeParent)
	course := createCourse(t, db, 1, models.MonthJanuary, admin.ID)

	_, err := svc.ListLessons(parent, course.ID)
	assert.True(t, apperr.IsForbidden(err))

	// Сотрудники видят уроки без записи
	lessons, err := svc.ListLessons(admin, course.ID)
	require.NoError(t, err)
	assert.Len(t, lessons, 3)

	enroll(t, db, parent.ID, course.ID, false)
	lessons, err = svc.ListLessons(parent, course.ID)
	require.NoError(t, err)
	require.Len(t, lessons, 3)
	assert.Equal(t, 1, lessons[0].DayNumber)
	assert.Equal(t, 3, lessons[2].DayNumber)
}

func TestCurrentLessonFirstDay(t *testing.T) {
	db := newTestDB(t)
	svc := newLessonService(db)
	admin := createUser(t, db, models.UserTypeAdministrator)
	parent := createUser(t, db, models.UserTypeParent)
	course := createCourse(t, db, 1, models.MonthJanuary, admin.ID)

	_, err := svc.CurrentLesson(parent, course.ID)
	assert.True(t, apperr.IsNotFound(err))

	enroll(t, db, parent.ID, course.ID, false)

	lesson, err := svc.CurrentLesson(parent, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, lesson.DayNumber)
}

func TestCurrentLessonAdvancesAndClamps(t *testing.T) {
	db := newTestDB(t)
	svc := newLessonService(db)
	admin := createUser(t, db, models.UserTypeAdministrator)
	parent := createUser(t, db, models.UserTypeParent)
	course := createCourse(t, db, 1, models.MonthJanuary, admin.ID)
	// Урок есть только на первые три дня
	require.NoError(t, db.Model(&models.Course{}).
		Where("id = ?", course.ID).
		Update("duration_days", 3).Error)

	enrollment := enroll(t, db, parent.ID, course.ID, false)

	// Второй день курса
	require.NoError(t, db.Model(&models.CourseEnrollment{}).
		Where("id = ?", enrollment.ID).
		Update("enrolled_at", time.Now().Add(-36*time.Hour)).Error)
	lesson, err := svc.CurrentLesson(parent, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, lesson.DayNumber)

	// Спустя длительность курса остаемся на последнем уроке
	require.NoError(t, db.Model(&models.CourseEnrollment{}).
		Where("id = ?", enrollment.ID).
		Update("enrolled_at", time.Now().Add(-240*time.Hour)).Error)
	lesson, err = svc.CurrentLesson(parent, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, lesson.DayNumber)
}

func TestGetLesson(t *testing.T) {
	db := newTestDB(t)
	svc := newLessonService(db)
	admin := createUser(t, db, models.UserTypeAdministrator)
	parent := createUser(t, db, models.UserTypeParent)
	course := createCourse(t, db, 1, models.MonthJanuary, admin.ID)
	enroll(t, db, parent.ID, course.ID, false)

	lesson, err := svc.GetLesson(parent, course.Lessons[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, lesson.DayNumber)
	assert.Equal(t, course.ID, lesson.CourseID)
}
