package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bigbrownking/taubago/internal/models"
	"github.com/bigbrownking/taubago/internal/repository"
	"github.com/bigbrownking/taubago/pkg/logger"
	"github.com/bigbrownking/taubago/pkg/storage"
)

// newTestDB открывает базу в памяти с миграцией всех моделей
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Child{},
		&models.RegistrationQuestion{},
		&models.RegistrationAnswer{},
		&models.PasswordResetToken{},
		&models.Course{},
		&models.Lesson{},
		&models.CourseEnrollment{},
		&models.VideoCategory{},
		&models.Video{},
		&models.VideoProgress{},
		&models.LessonReport{},
		&models.CourseReview{},
		&models.ReviewLike{},
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// fakeObjectStore хранит объекты в памяти
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (f *fakeObjectStore) Upload(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	f.types[key] = contentType
	return nil
}

func (f *fakeObjectStore) PresignedGetURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.test/" + key, nil
}

func (f *fakeObjectStore) PresignedPutURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.test/upload/" + key, nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	delete(f.types, key)
	return nil
}

func (f *fakeObjectStore) Stat(_ context.Context, key string) (storage.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return storage.ObjectInfo{}, fmt.Errorf("object %s not found", key)
	}
	return storage.ObjectInfo{Size: int64(len(data)), ContentType: f.types[key]}, nil
}

func (f *fakeObjectStore) OpenRange(_ context.Context, key string, offset, length int64) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	end := offset + length
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return io.NopCloser(bytes.NewReader(data[offset:end])), nil
}

func (f *fakeObjectStore) Bucket() string { return "test-bucket" }

func (f *fakeObjectStore) put(key string, data []byte, contentType string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	f.types[key] = contentType
}

// fakeEmailService запоминает отправленные письма
type fakeEmailService struct {
	mu         sync.Mutex
	signups    []string
	resets     map[string]string // email -> token
	changed    []string
	failSignup bool
}

func newFakeEmailService() *fakeEmailService {
	return &fakeEmailService{resets: make(map[string]string)}
}

func (f *fakeEmailService) SendSignUpConfirmation(toEmail, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSignup {
		return fmt.Errorf("smtp unavailable")
	}
	f.signups = append(f.signups, toEmail)
	return nil
}

func (f *fakeEmailService) SendPasswordReset(toEmail, _, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets[toEmail] = token
	return nil
}

func (f *fakeEmailService) SendPasswordChanged(toEmail, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changed = append(f.changed, toEmail)
	return nil
}

func (f *fakeEmailService) resetToken(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resets[email]
}

func createUser(t *testing.T, db *gorm.DB, userType models.UserType) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Password1!"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("%s@test.kz", uuid.New().String()[:8]),
		PasswordHash: string(hash),
		Type:         userType,
		Name:         "Test",
		Surname:      "User",
		Active:       true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createCourse(t *testing.T, db *gorm.DB, order int, month models.CourseMonth, createdBy uuid.UUID) *models.Course {
	t.Helper()
	course := &models.Course{
		ID:           uuid.New(),
		Title:        fmt.Sprintf("Курс %d", order),
		Month:        month,
		DurationDays: month.Days(),
		Order:        order,
		CreatedByID:  createdBy,
	}
	for day := 1; day <= 3; day++ {
		course.Lessons = append(course.Lessons, models.Lesson{
			ID:        uuid.New(),
			Title:     fmt.Sprintf("День %d", day),
			DayNumber: day,
		})
	}
	require.NoError(t, db.Create(course).Error)
	return course
}

func enroll(t *testing.T, db *gorm.DB, userID, courseID uuid.UUID, completed bool) *models.CourseEnrollment {
	t.Helper()
	enrollment := &models.CourseEnrollment{
		ID:       uuid.New(),
		UserID:   userID,
		CourseID: courseID,
		Completed: completed,
	}
	if completed {
		now := time.Now()
		enrollment.CompletedAt = &now
		enrollment.ProgressPercentage = 100
	}
	require.NoError(t, db.Create(enrollment).Error)
	return enrollment
}

func newCourseService(db *gorm.DB, store *fakeObjectStore) *CourseService {
	return NewCourseService(
		repository.NewCourseRepository(db),
		repository.NewLessonRepository(db),
		repository.NewEnrollmentRepository(db),
		repository.NewVideoRepository(db),
		repository.NewLessonReportRepository(db),
		repository.NewCourseReviewRepository(db),
		store,
		logger.NewNop(),
	)
}
