package services

import (
	"context"
	"errors"
	"fmt"
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

// ReportService представляет сервис отчетов родителей об уроках
type ReportService struct {
	reportRepo     repository.LessonReportRepository
	lessonRepo     repository.LessonRepository
	videoRepo      repository.VideoRepository
	enrollmentRepo repository.EnrollmentRepository
	store          storage.ObjectStore
	log            *logger.Logger
}

func NewReportService(
	reportRepo repository.LessonReportRepository,
	lessonRepo repository.LessonRepository,
	videoRepo repository.VideoRepository,
	enrollmentRepo repository.EnrollmentRepository,
	store storage.ObjectStore,
	log *logger.Logger,
) *ReportService {
	return &ReportService{
		reportRepo:     reportRepo,
		lessonRepo:     lessonRepo,
		videoRepo:      videoRepo,
		enrollmentRepo: enrollmentRepo,
		store:          store,
		log:            log,
	}
}

// CreateReportRequest - запрос на создание или обновление отчета
type CreateReportRequest struct {
	ChildReactionRating int     `json:"child_reaction_rating" binding:"required,min=1,max=5"`
	Comment             *string `json:"comment"`
}

// SaveReport создает или обновляет отчет родителя об уроке.
// Повторная отправка заменяет оценку и комментарий, домашние видео
// добавляются к уже загруженным
func (s *ReportService) SaveReport(
	ctx context.Context,
	user *models.User,
	lessonID uuid.UUID,
	req CreateReportRequest,
	homeworkFiles []*multipart.FileHeader,
) (*LessonReportDTO, error) {
	if !user.IsParent() {
		return nil, apperr.Forbidden("only parents can submit lesson reports")
	}
	if req.ChildReactionRating < 1 || req.ChildReactionRating > 5 {
		return nil, apperr.Validation("rating must be between 1 and 5")
	}

	lesson, err := s.lessonRepo.GetByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("lesson not found")
		}
		return nil, apperr.Internal("failed to load lesson", err)
	}

	enrolled, err := s.enrollmentRepo.ExistsByUserAndCourse(user.ID, lesson.CourseID)
	if err != nil {
		return nil, apperr.Internal("failed to check enrollment", err)
	}
	if !enrolled {
		return nil, apperr.Forbidden("enroll in the course before reporting on its lessons")
	}

	report, err := s.reportRepo.GetByLessonAndParent(lessonID, user.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Internal("failed to load report", err)
		}
		report = &models.LessonReport{
			ID:       uuid.New(),
			LessonID: lessonID,
			ParentID: user.ID,
		}
	}
	report.ChildReactionRating = req.ChildReactionRating
	report.Comment = req.Comment

	if err := s.reportRepo.Save(report); err != nil {
		return nil, apperr.Internal("failed to save report", err)
	}

	for i, file := range homeworkFiles {
		if err := s.uploadHomework(ctx, user, lesson, i, file); err != nil {
			return nil, err
		}
	}

	s.log.Infow("lesson report saved", "lesson_id", lessonID,
		"parent_id", user.ID, "homework_files", len(homeworkFiles))

	dto := s.toReportDTO(report, lesson, user)
	return &dto, nil
}

// GetMyReport возвращает отчет родителя по уроку
func (s *ReportService) GetMyReport(user *models.User, lessonID uuid.UUID) (*LessonReportDTO, error) {
	report, err := s.reportRepo.GetByLessonAndParent(lessonID, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("report not found")
		}
		return nil, apperr.Internal("failed to load report", err)
	}
	dto := s.toReportDTO(report, report.Lesson, user)
	return &dto, nil
}

// GetMyReports возвращает все отчеты родителя
func (s *ReportService) GetMyReports(user *models.User) ([]LessonReportDTO, error) {
	reports, err := s.reportRepo.ListByParent(user.ID)
	if err != nil {
		return nil, apperr.Internal("failed to list reports", err)
	}
	result := make([]LessonReportDTO, 0, len(reports))
	for _, report := range reports {
		result = append(result, s.toReportDTO(report, report.Lesson, user))
	}
	return result, nil
}

// GetOtherParentsReports возвращает отчеты других родителей по уроку
// в урезанном виде, без контактов
func (s *ReportService) GetOtherParentsReports(user *models.User, lessonID uuid.UUID) ([]PublicLessonReportDTO, error) {
	lesson, err := s.lessonRepo.GetByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("lesson not found")
		}
		return nil, apperr.Internal("failed to load lesson", err)
	}

	enrolled, err := s.enrollmentRepo.ExistsByUserAndCourse(user.ID, lesson.CourseID)
	if err != nil {
		return nil, apperr.Internal("failed to check enrollment", err)
	}
	if !enrolled {
		return nil, apperr.Forbidden("enroll in the course to see community reports")
	}

	reports, err := s.reportRepo.ListByLesson(lessonID)
	if err != nil {
		return nil, apperr.Internal("failed to list reports", err)
	}

	result := make([]PublicLessonReportDTO, 0, len(reports))
	for _, report := range reports {
		if report.ParentID == user.ID {
			continue
		}
		dto := PublicLessonReportDTO{
			ChildReactionRating: report.ChildReactionRating,
			Comment:             report.Comment,
			CreatedAt:           report.CreatedAt,
		}
		if report.Parent != nil {
			dto.ParentName = report.Parent.Name
		}
		result = append(result, dto)
	}
	return result, nil
}

// GetFullReportsByLesson возвращает полные отчеты по уроку с контактами
// родителей и их домашними видео (для куратора и администратора)
func (s *ReportService) GetFullReportsByLesson(ctx context.Context, staff *models.User, lessonID uuid.UUID) ([]FullLessonReportDTO, error) {
	if !staff.IsAdmin() && !staff.IsCurator() {
		return nil, apperr.Forbidden("only staff can view full reports")
	}

	reports, err := s.reportRepo.ListByLesson(lessonID)
	if err != nil {
		return nil, apperr.Internal("failed to list reports", err)
	}

	result := make([]FullLessonReportDTO, 0, len(reports))
	for _, report := range reports {
		dto, err := s.toFullReportDTO(ctx, report)
		if err != nil {
			return nil, err
		}
		result = append(result, *dto)
	}
	return result, nil
}

// GetFullReportByLessonAndParent возвращает полный отчет одного родителя
func (s *ReportService) GetFullReportByLessonAndParent(ctx context.Context, staff *models.User, lessonID, parentID uuid.UUID) (*FullLessonReportDTO, error) {
	if !staff.IsAdmin() && !staff.IsCurator() {
		return nil, apperr.Forbidden("only staff can view full reports")
	}

	report, err := s.reportRepo.GetByLessonAndParent(lessonID, parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("report not found")
		}
		return nil, apperr.Internal("failed to load report", err)
	}
	return s.toFullReportDTO(ctx, report)
}

func (s *ReportService) uploadHomework(ctx context.Context, user *models.User, lesson *models.Lesson, index int, file *multipart.FileHeader) error {
	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}

	src, err := file.Open()
	if err != nil {
		return apperr.Internal("failed to open homework file", err)
	}
	defer src.Close()

	key := fmt.Sprintf("courses/%s/lessons/%s/homework/user_%s_%d.mp4",
		lesson.CourseID, lesson.ID, user.ID, time.Now().UnixNano()+int64(index))
	if err := s.store.Upload(ctx, key, src, file.Size, contentType); err != nil {
		return apperr.Internal("failed to upload homework video", err)
	}

	size := file.Size
	video := &models.Video{
		ID:            uuid.New(),
		Title:         fmt.Sprintf("Домашнее задание, %s", lesson.Title),
		Type:          models.VideoTypeHomework,
		ObjectKey:     key,
		BucketName:    s.store.Bucket(),
		FileSizeBytes: &size,
		ContentType:   contentType,
		LessonID:      lesson.ID,
		UploadedByID:  user.ID,
	}
	if err := s.videoRepo.Create(video); err != nil {
		return apperr.Internal("failed to save homework video", err)
	}
	return nil
}

func (s *ReportService) toReportDTO(report *models.LessonReport, lesson *models.Lesson, parent *models.User) LessonReportDTO {
	dto := LessonReportDTO{
		ID:                  report.ID,
		LessonID:            report.LessonID,
		ChildReactionRating: report.ChildReactionRating,
		Comment:             report.Comment,
		CreatedAt:           report.CreatedAt,
		UpdatedAt:           report.UpdatedAt,
	}
	if lesson != nil {
		dto.LessonTitle = lesson.Title
		dto.DayNumber = lesson.DayNumber
	}
	if parent != nil {
		dto.ParentName = parent.FullName()
		dto.ParentEmail = parent.Email
	}
	return dto
}

func (s *ReportService) toFullReportDTO(ctx context.Context, report *models.LessonReport) (*FullLessonReportDTO, error) {
	dto := &FullLessonReportDTO{
		ParentID:            report.ParentID,
		LessonID:            report.LessonID,
		ChildReactionRating: report.ChildReactionRating,
		Comment:             report.Comment,
		ReportCreatedAt:     report.CreatedAt,
		ReportUpdatedAt:     report.UpdatedAt,
		HomeworkVideos:      []VideoDTO{},
	}
	if report.Parent != nil {
		dto.ParentName = report.Parent.FullName()
		dto.ParentEmail = report.Parent.Email
	}
	if report.Lesson != nil {
		dto.LessonTitle = report.Lesson.Title
		dto.DayNumber = report.Lesson.DayNumber
	}

	videos, err := s.videoRepo.ListByLessonAndUploader(report.LessonID, report.ParentID)
	if err != nil {
		return nil, apperr.Internal("failed to list homework videos", err)
	}
	for _, video := range videos {
		if video.Type != models.VideoTypeHomework {
			continue
		}
		url, err := s.store.PresignedGetURL(ctx, video.ObjectKey, presignedGetTTL)
		if err != nil {
			return nil, apperr.Internal("failed to presign homework url", err)
		}
		dto.HomeworkVideos = append(dto.HomeworkVideos, VideoDTO{
			ID:              video.ID,
			Title:           video.Title,
			Type:            video.Type,
			VideoURL:        url,
			DurationSeconds: video.DurationSeconds,
			FileSizeBytes:   video.FileSizeBytes,
		})
	}
	return dto, nil
}
