package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bigbrownking/taubago/internal/models"
	"github.com/bigbrownking/taubago/internal/repository"
	"github.com/bigbrownking/taubago/pkg/apperr"
	"github.com/bigbrownking/taubago/pkg/logger"
	"github.com/bigbrownking/taubago/pkg/storage"
)

const (
	// Видео считается просмотренным после 90% длительности
	completionThreshold = 0.9

	presignedGetTTL = 2 * time.Hour
	presignedPutTTL = 15 * time.Minute
)

// VideoService представляет сервис видео и прогресса просмотра
type VideoService struct {
	videoRepo      repository.VideoRepository
	progressRepo   repository.VideoProgressRepository
	categoryRepo   repository.VideoCategoryRepository
	lessonRepo     repository.LessonRepository
	enrollmentRepo repository.EnrollmentRepository
	store          storage.ObjectStore
	log            *logger.Logger
}

func NewVideoService(
	videoRepo repository.VideoRepository,
	progressRepo repository.VideoProgressRepository,
	categoryRepo repository.VideoCategoryRepository,
	lessonRepo repository.LessonRepository,
	enrollmentRepo repository.EnrollmentRepository,
	store storage.ObjectStore,
	log *logger.Logger,
) *VideoService {
	return &VideoService{
		videoRepo:      videoRepo,
		progressRepo:   progressRepo,
		categoryRepo:   categoryRepo,
		lessonRepo:     lessonRepo,
		enrollmentRepo: enrollmentRepo,
		store:          store,
		log:            log,
	}
}

// ListLessonVideos возвращает видео урока с временными ссылками
// и прогрессом текущего пользователя
func (s *VideoService) ListLessonVideos(ctx context.Context, user *models.User, lessonID uuid.UUID) ([]VideoDTO, error) {
	if _, err := s.lessonRepo.GetByID(lessonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("lesson not found")
		}
		return nil, apperr.Internal("failed to load lesson", err)
	}

	videos, err := s.videoRepo.ListByLesson(lessonID)
	if err != nil {
		return nil, apperr.Internal("failed to list videos", err)
	}

	result := make([]VideoDTO, 0, len(videos))
	for _, video := range videos {
		dto, err := s.toVideoDTO(ctx, user, video)
		if err != nil {
			return nil, err
		}
		result = append(result, *dto)
	}
	return result, nil
}

// UploadLessonVideo загружает видео урока в хранилище (только администратор)
func (s *VideoService) UploadLessonVideo(
	ctx context.Context,
	admin *models.User,
	lessonID uuid.UUID,
	categoryID *uuid.UUID,
	title string,
	durationSeconds *int64,
	file *multipart.FileHeader,
) (*models.Video, error) {
	if !admin.IsAdmin() {
		return nil, apperr.Forbidden("only administrators can upload lesson videos")
	}

	lesson, err := s.lessonRepo.GetByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("lesson not found")
		}
		return nil, apperr.Internal("failed to load lesson", err)
	}

	if categoryID != nil {
		if _, err := s.categoryRepo.GetByID(*categoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.Validation("video category not found")
			}
			return nil, apperr.Internal("failed to load category", err)
		}
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}

	src, err := file.Open()
	if err != nil {
		return nil, apperr.Internal("failed to open uploaded file", err)
	}
	defer src.Close()

	videoID := uuid.New()
	key := fmt.Sprintf("courses/%s/lessons/%s/videos/%s.mp4",
		lesson.CourseID, lessonID, videoID)
	if err := s.store.Upload(ctx, key, src, file.Size, contentType); err != nil {
		return nil, apperr.Internal("failed to upload video", err)
	}

	size := file.Size
	video := &models.Video{
		ID:              videoID,
		Title:           title,
		Type:            models.VideoTypeLesson,
		CategoryID:      categoryID,
		ObjectKey:       key,
		BucketName:      s.store.Bucket(),
		DurationSeconds: durationSeconds,
		FileSizeBytes:   &size,
		ContentType:     contentType,
		LessonID:        lessonID,
		UploadedByID:    admin.ID,
	}
	if err := s.videoRepo.Create(video); err != nil {
		// Запись не создана, убираем объект
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.Errorw("failed to delete orphan object", "key", key, "error", delErr)
		}
		return nil, apperr.Internal("failed to save video", err)
	}

	s.log.Infow("lesson video uploaded", "video_id", video.ID,
		"lesson_id", lessonID, "size", file.Size)
	return video, nil
}

// HomeworkUploadURL выдает временную ссылку для прямой загрузки
// домашнего видео в хранилище
func (s *VideoService) HomeworkUploadURL(ctx context.Context, user *models.User, lessonID uuid.UUID, contentType string) (*UploadURLDTO, error) {
	if !user.IsParent() {
		return nil, apperr.Forbidden("only parents can upload homework videos")
	}

	lesson, err := s.lessonRepo.GetByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("lesson not found")
		}
		return nil, apperr.Internal("failed to load lesson", err)
	}

	if err := s.requireEnrollment(user, lesson.CourseID); err != nil {
		return nil, err
	}

	if contentType == "" {
		contentType = "video/mp4"
	}
	key := fmt.Sprintf("courses/%s/lessons/%s/homework/user_%s_%d.mp4",
		lesson.CourseID, lessonID, user.ID, time.Now().Unix())

	url, err := s.store.PresignedPutURL(ctx, key, presignedPutTTL)
	if err != nil {
		return nil, apperr.Internal("failed to presign upload url", err)
	}

	return &UploadURLDTO{
		UploadURL:   url,
		ObjectKey:   key,
		ContentType: contentType,
	}, nil
}

// ConfirmHomeworkUpload регистрирует загруженное домашнее видео
// после проверки, что объект действительно лежит в хранилище
func (s *VideoService) ConfirmHomeworkUpload(ctx context.Context, user *models.User, lessonID uuid.UUID, objectKey, title string) (*models.Video, error) {
	lesson, err := s.lessonRepo.GetByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("lesson not found")
		}
		return nil, apperr.Internal("failed to load lesson", err)
	}
	if err := s.requireEnrollment(user, lesson.CourseID); err != nil {
		return nil, err
	}

	expectedPrefix := fmt.Sprintf("courses/%s/lessons/%s/homework/user_%s_",
		lesson.CourseID, lessonID, user.ID)
	if len(objectKey) <= len(expectedPrefix) || objectKey[:len(expectedPrefix)] != expectedPrefix {
		return nil, apperr.Validation("object key does not belong to this lesson and user")
	}

	info, err := s.store.Stat(ctx, objectKey)
	if err != nil {
		return nil, apperr.Validation("uploaded object not found in storage")
	}

	if title == "" {
		title = fmt.Sprintf("Домашнее задание, %s", lesson.Title)
	}
	size := info.Size
	video := &models.Video{
		ID:            uuid.New(),
		Title:         title,
		Type:          models.VideoTypeHomework,
		ObjectKey:     objectKey,
		BucketName:    s.store.Bucket(),
		FileSizeBytes: &size,
		ContentType:   info.ContentType,
		LessonID:      lessonID,
		UploadedByID:  user.ID,
	}
	if err := s.videoRepo.Create(video); err != nil {
		return nil, apperr.Internal("failed to save homework video", err)
	}

	s.log.Infow("homework video confirmed", "video_id", video.ID,
		"lesson_id", lessonID, "user_id", user.ID)
	return video, nil
}

// UpdateProgress сохраняет позицию просмотра. Видео отмечается
// просмотренным при достижении 90% длительности, дата завершения
// фиксируется один раз
func (s *VideoService) UpdateProgress(user *models.User, videoID uuid.UUID, watchedSeconds int64) (*models.VideoProgress, error) {
	if watchedSeconds < 0 {
		return nil, apperr.Validation("watched seconds must not be negative")
	}

	video, err := s.videoRepo.GetByID(videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("video not found")
		}
		return nil, apperr.Internal("failed to load video", err)
	}

	progress, err := s.progressRepo.GetByUserAndVideo(user.ID, videoID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Internal("failed to load progress", err)
		}
		progress = &models.VideoProgress{
			ID:      uuid.New(),
			UserID:  user.ID,
			VideoID: videoID,
		}
	}

	progress.WatchedSeconds = watchedSeconds
	if !progress.IsCompleted && video.DurationSeconds != nil && *video.DurationSeconds > 0 {
		if float64(watchedSeconds) >= completionThreshold*float64(*video.DurationSeconds) {
			now := time.Now()
			progress.IsCompleted = true
			progress.CompletedAt = &now
		}
	}

	if err := s.progressRepo.Save(progress); err != nil {
		return nil, apperr.Internal("failed to save progress", err)
	}
	return progress, nil
}

// MarkAsCompleted отмечает видео просмотренным вручную
func (s *VideoService) MarkAsCompleted(user *models.User, videoID uuid.UUID) (*models.VideoProgress, error) {
	video, err := s.videoRepo.GetByID(videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("video not found")
		}
		return nil, apperr.Internal("failed to load video", err)
	}

	progress, err := s.progressRepo.GetByUserAndVideo(user.ID, videoID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Internal("failed to load progress", err)
		}
		progress = &models.VideoProgress{
			ID:      uuid.New(),
			UserID:  user.ID,
			VideoID: videoID,
		}
	}

	if !progress.IsCompleted {
		now := time.Now()
		progress.IsCompleted = true
		progress.CompletedAt = &now
	}
	if video.DurationSeconds != nil && progress.WatchedSeconds < *video.DurationSeconds {
		progress.WatchedSeconds = *video.DurationSeconds
	}

	if err := s.progressRepo.Save(progress); err != nil {
		return nil, apperr.Internal("failed to save progress", err)
	}
	return progress, nil
}

// GetProgress возвращает прогресс просмотра видео пользователем
func (s *VideoService) GetProgress(user *models.User, videoID uuid.UUID) (*models.VideoProgress, error) {
	progress, err := s.progressRepo.GetByUserAndVideo(user.ID, videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.VideoProgress{UserID: user.ID, VideoID: videoID}, nil
		}
		return nil, apperr.Internal("failed to load progress", err)
	}
	return progress, nil
}

// DeleteVideo удаляет видео из хранилища и базы.
// Доступно загрузившему и администратору
func (s *VideoService) DeleteVideo(ctx context.Context, user *models.User, videoID uuid.UUID) error {
	video, err := s.videoRepo.GetByID(videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("video not found")
		}
		return apperr.Internal("failed to load video", err)
	}
	if video.UploadedByID != user.ID && !user.IsAdmin() {
		return apperr.Forbidden("you cannot delete this video")
	}

	if err := s.store.Delete(ctx, video.ObjectKey); err != nil {
		return apperr.Internal("failed to delete video object", err)
	}
	if err := s.videoRepo.Delete(videoID); err != nil {
		return apperr.Internal("failed to delete video", err)
	}

	s.log.Infow("video deleted", "video_id", videoID, "user_id", user.ID)
	return nil
}

// StreamRange - открытый диапазон видеопотока
type StreamRange struct {
	Reader      io.ReadCloser
	Start       int64
	End         int64
	TotalSize   int64
	ContentType string
}

// OpenStream открывает диапазон байт видео для частичной отдачи
func (s *VideoService) OpenStream(ctx context.Context, videoID uuid.UUID, start, end int64) (*StreamRange, error) {
	video, err := s.videoRepo.GetByID(videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("video not found")
		}
		return nil, apperr.Internal("failed to load video", err)
	}

	info, err := s.store.Stat(ctx, video.ObjectKey)
	if err != nil {
		return nil, apperr.Internal("failed to stat video object", err)
	}

	if start < 0 || start >= info.Size {
		return nil, apperr.Validation("requested range is out of bounds")
	}
	if end < 0 || end >= info.Size {
		end = info.Size - 1
	}
	if end < start {
		return nil, apperr.Validation("invalid byte range")
	}

	reader, err := s.store.OpenRange(ctx, video.ObjectKey, start, end-start+1)
	if err != nil {
		return nil, apperr.Internal("failed to open video stream", err)
	}

	contentType := video.ContentType
	if contentType == "" {
		contentType = info.ContentType
	}
	return &StreamRange{
		Reader:      reader,
		Start:       start,
		End:         end,
		TotalSize:   info.Size,
		ContentType: contentType,
	}, nil
}

// ListCategories возвращает категории видео
func (s *VideoService) ListCategories() ([]*models.VideoCategory, error) {
	categories, err := s.categoryRepo.List()
	if err != nil {
		return nil, apperr.Internal("failed to list categories", err)
	}
	return categories, nil
}

func (s *VideoService) requireEnrollment(user *models.User, courseID uuid.UUID) error {
	enrolled, err := s.enrollmentRepo.ExistsByUserAndCourse(user.ID, courseID)
	if err != nil {
		return apperr.Internal("failed to check enrollment", err)
	}
	if !enrolled {
		return apperr.Forbidden("enroll in the course first")
	}
	return nil
}

func (s *VideoService) toVideoDTO(ctx context.Context, user *models.User, video *models.Video) (*VideoDTO, error) {
	url, err := s.store.PresignedGetURL(ctx, video.ObjectKey, presignedGetTTL)
	if err != nil {
		return nil, apperr.Internal("failed to presign video url", err)
	}

	dto := &VideoDTO{
		ID:              video.ID,
		Title:           video.Title,
		Type:            video.Type,
		VideoURL:        url,
		DurationSeconds: video.DurationSeconds,
		FileSizeBytes:   video.FileSizeBytes,
	}
	if video.Category != nil {
		dto.Category = video.Category.Name
	}

	if user != nil {
		progress, err := s.progressRepo.GetByUserAndVideo(user.ID, video.ID)
		if err == nil {
			dto.WatchedSeconds = progress.WatchedSeconds
			dto.IsCompleted = progress.IsCompleted
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Internal("failed to load progress", err)
		}
	}
	return dto, nil
}
