package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bigbrownking/taubago/internal/models"
	"github.com/bigbrownking/taubago/internal/repository"
	"github.com/bigbrownking/taubago/pkg/apperr"
	"github.com/bigbrownking/taubago/pkg/logger"
)

func newVideoService(db *gorm.DB, store *fakeObjectStore) *VideoService {
	return NewVideoService(
		repository.NewVideoRepository(db),
		repository.NewVideoProgressRepository(db),
		repository.NewVideoCategoryRepository(db),
		repository.NewLessonRepository(db),
		repository.NewEnrollmentRepository(db),
		store,
		logger.NewNop(),
	)
}

func createVideo(t *testing.T, db *gorm.DB, store *fakeObjectStore, lessonID, uploaderID uuid.UUID, duration int64) *models.Video {
	t.Helper()
	video := &models.Video{
		ID:              uuid.New(),
		Title:           "Занятие",
		Type:            models.VideoTypeLesson,
		ObjectKey:       "courses/test/videos/" + uuid.New().String() + ".mp4",
		BucketName:      store.Bucket(),
		DurationSeconds: &duration,
		ContentType:     "video/mp4",
		LessonID:        lessonID,
		UploadedByID:    uploaderID,
	}
	store.put(video.ObjectKey, []byte("0123456789"), "video/mp4")
	require.NoError(t, db.Create(video).Error)
	return video
}

func TestUpdateProgressBelowThreshold(t *testing.T) {
	db := newTestDB(t)
	store := newFakeObjectStore()
	svc := newVideoService(db, store)
	admin := createUser(t, db, models.UserTypeAdministrator)
	parent := createUser(t, db, models.UserTypeParent)
	course := createCourse(t, db, 1, models.MonthJanuary, admin.ID)
	video := createVideo(t, db, store, course.Lessons[0].ID, admin.ID, 100)

	// 89 из 100 секунд - еще не просмотрено
	progress, err := svc.UpdateProgress(parent, video.ID, 89)
	require.NoError(t, err)
	assert.False(t, progress.IsCompleted)
	assert.Nil(t, progress.CompletedAt)
	assert.Equal(t, int64(89), progress.WatchedSeconds)
}

func TestUpdateProgressReachesThreshold(t *testing.T) {
	db := newTestDB(t)
	store := newFakeObjectStore()
	svc := newVideoService(db, store)
	admin := createUser(t, db, models.UserTypeAdministrator)
	parent := createUser(t, db, models.UserTypeParent)
	course := createCourse(t, db, 1, models.MonthJanuary, admin.ID)
	video := createVideo(t, db, store, course.Lessons[0].ID, admin.ID, 100)

	// Ровно 90% - просмотрено
	progress, err := svc.UpdateProgress(parent, video.ID, 90)
	require.NoError(t, err)
	assert.True(t, progress.IsCompleted)
	require.NotNil(t, progress.CompletedAt)
	completedAt := *progress.CompletedAt

	// Дальнейший просмотр не сбрасывает дату завершения
	progress, err = svc.UpdateProgress(parent, video.ID, 95)
	require.NoError(t, err)
	assert.True(t, progress.IsCompleted)
	require.NotNil(t, progress.CompletedAt)
	assert.Equal(t, completedAt.Unix(), progress.CompletedAt.Unix())
	assert.Equal(t, int64(95), progress.WatchedSeconds)
}

func TestUpdateProgressNegative(t *testing.T) {
	db := newTestDB(t)
	store := newFakeObjectStore()
	svc := newVideoService(db, store)
	parent := createUser(t, db, models.UserTypeParent)

	_, err := svc.UpdateProgress(parent, uuid.New(), -1)
	assert.True(t, apperr.IsValidation(err))
}

func TestMarkAsCompleted(t *testing.T) {
	db := newTestDB(t)
	store := newFakeObjectStore()
	svc := newVideoService(db, store)
	admin := createUser(t, db, models.UserTypeAdministrator)
	parent := createUser(t, db, models.UserTypeParent)
	course := createCourse(t, db, 1, models.MonthJanuary, admin.ID)
	video := createVideo(t, db, store, course.Lessons[0].ID, admin.ID, 100)

	progress, err := svc.MarkAsCompleted(parent, video.ID)
	require.NoError(t, err)
	assert.True(t, progress.IsCompleted)
	assert.Equal(t, int64(100), progress.WatchedSeconds)
	require.NotNil(t, progress.CompletedAt)
}

func TestListLessonVideosWithProgress(t *testing.T) {
	db := newTestDB(t)
	store := newFakeObjectStore()
	svc := newVideoService(db, store)
	admin := createUser(t, db, models.UserTypeAdministrator)
	parent := createUser(t, db, models.UserTypeParent)
	course := createCourse(t, db, 1, models.MonthJanuary, admin.ID)
	video := createVideo(t, db, store, course.Lessons[0].ID, admin.ID, 100)

	_, err := svc.UpdateProgress(parent, video.ID, 42)
	require.NoError(t, err)

	videos, err := svc.ListLessonVideos(context.Background(), parent, course.Lessons[0].ID)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, int64(42), videos[0].WatchedSeconds)
	assert.Contains(t, videos[0].VideoURL, video.ObjectKey)
}

func TestHomeworkUploadFlow(t *testing.T) {
	db := newTestDB(t)
	store := newFakeObjectStore()
	svc := newVideoService(db, store)
	admin := createUser(t, db, models.UserTypeAdministrator)
	parent := createUser(t, db, models.UserTypeParent)
	course := createCourse(t, db, 1, models.MonthJanuary, admin.ID)
	lessonID := course.Lessons[0].ID

	// Без записи на курс ссылку не выдаем
	_, err := svc.HomeworkUploadURL(context.Background(), parent, lessonID, "video/mp4")
	assert.True(t, apperr.IsForbidden(err))

	enroll(t, db, parent.ID, course.ID, false)

	upload, err := svc.HomeworkUploadURL(context.Background(), parent, lessonID, "video/mp4")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(upload.ObjectKey,
		"courses/"+course.ID.String()+"/lessons/"+lessonID.String()+"/homework/user_"+parent.ID.String()))

	// Подтверждение без загрузки отклоняется
	_, err = svc.ConfirmHomeworkUpload(context.Background(), parent, lessonID, upload.ObjectKey, "")
	assert.True(t, apperr.IsValidation(err))

	store.put(upload.ObjectKey, []byte("homework"), "video/mp4")
	video, err := svc.ConfirmHomeworkUpload(context.Background(), parent, lessonID, upload.ObjectKey, "")
	require.NoError(t, err)
	assert.Equal(t, models.VideoTypeHomework, video.Type)
	assert.Equal(t, parent.ID, video.UploadedByID)

	// Чужой ключ не регистрируется
	_, err = svc.ConfirmHomeworkUpload(context.Background(), parent, lessonID, "courses/other/key.mp4", "")
	assert.True(t, apperr.IsValidation(err))
}

func TestDeleteVideoPermissions(t *testing.T) {
	db := newTestDB(t)
	store := newFakeObjectStore()
	svc := newVideoService(db, store)
	admin := createUser(t, db, models.UserTypeAdministrator)
	parent := createUser(t, db, models.UserTypeParent)
	other := createUser(t, db, models.UserTypeParent)
	course := createCourse(t, db, 1, models.MonthJanuary, admin.ID)
	video := createVideo(t, db, store, course.Lessons[0].ID, parent.ID, 100)

	err := svc.DeleteVideo(context.Background(), other, video.ID)
	assert.True(t, apperr.IsForbidden(err))

	_, err = svc.UpdateProgress(parent, video.ID, 10)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteVideo(context.Background(), parent, video.ID))

	// Прогресс удален вместе с видео
	var progressCount int64
	require.NoError(t, db.Model(&models.VideoProgress{}).Count(&progressCount).Error)
	assert.Zero(t, progressCount)

	err = svc.DeleteVideo(context.Background(), parent, video.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestOpenStreamRange(t *testing.T) {
	db := newTestDB(t)
	store := newFakeObjectStore()
	svc := newVideoService(db, store)
	admin := createUser(t, db, models.UserTypeAdministrator)
	course := createCourse(t, db, 1, models.MonthJanuary, admin.ID)
	video := createVideo(t, db, store, course.Lessons[0].ID, admin.ID, 100)

	stream, err := svc.OpenStream(context.Background(), video.ID, 2, 5)
	require.NoError(t, err)
	defer stream.Reader.Close()
	assert.Equal(t, int64(2), stream.Start)
	assert.Equal(t, int64(5), stream.End)
	assert.Equal(t, int64(10), stream.TotalSize)

	// Открытый конец дотягивается до конца файла
	stream, err = svc.OpenStream(context.Background(), video.ID, 3, -1)
	require.NoError(t, err)
	defer stream.Reader.Close()
	assert.Equal(t, int64(9), stream.End)

	// bytes=0-0 отдает ровно один байт
	stream, err = svc.OpenStream(context.Background(), video.ID, 0, 0)
	require.NoError(t, err)
	defer stream.Reader.Close()
	assert.Equal(t, int64(0), stream.Start)
	assert.Equal(t, int64(0), stream.End)
	body, err := io.ReadAll(stream.Reader)
	require.NoError(t, err)
	assert.Equal(t, "0", string(body))

	_, err = svc.OpenStream(context.Background(), video.ID, 99, -1)
	assert.True(t, apperr.IsValidation(err))
}
