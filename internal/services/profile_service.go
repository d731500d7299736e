package services

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"

	"github.com/disintegration/imaging"
	"golang.org/x/crypto/bcrypt"

	"github.com/bigbrownking/taubago/internal/models"
	"github.com/bigbrownking/taubago/internal/repository"
	"github.com/bigbrownking/taubago/pkg/apperr"
	"github.com/bigbrownking/taubago/pkg/logger"
	"github.com/bigbrownking/taubago/pkg/storage"
)

// Аватары ужимаются до этого размера по большей стороне
const profilePictureSize = 512

// ProfileService представляет сервис профиля пользователя
type ProfileService struct {
	userRepo         repository.UserRepository
	registrationRepo repository.RegistrationRepository
	enrollmentRepo   repository.EnrollmentRepository
	store            storage.ObjectStore
	log              *logger.Logger
}

func NewProfileService(
	userRepo repository.UserRepository,
	registrationRepo repository.RegistrationRepository,
	enrollmentRepo repository.EnrollmentRepository,
	store storage.ObjectStore,
	log *logger.Logger,
) *ProfileService {
	return &ProfileService{
		userRepo:         userRepo,
		registrationRepo: registrationRepo,
		enrollmentRepo:   enrollmentRepo,
		store:            store,
		log:              log,
	}
}

// ProfileDTO - профиль пользователя с данными его типа
type ProfileDTO struct {
	ID          string          `json:"id"`
	Email       string          `json:"email"`
	UserType    models.UserType `json:"user_type"`
	Name        string          `json:"name"`
	Surname     string          `json:"surname"`
	PhoneNumber string          `json:"phone_number,omitempty"`

	// Только для специалистов
	Specialization *string `json:"specialization,omitempty"`

	ProfilePictureURL string `json:"profile_picture_url,omitempty"`

	// Только для родителей
	Children          []models.Child        `json:"children,omitempty"`
	CompletedCourses  int                   `json:"completed_courses,omitempty"`
	RegistrationStats *RegistrationStatsDTO `json:"registration_stats,omitempty"`
}

// RegistrationStatsDTO - сводка по ответам на анкету регистрации
type RegistrationStatsDTO struct {
	TotalQuestions     int    `json:"total_questions"`
	PositiveAnswers    int    `json:"positive_answers"`
	PositivePercentage string `json:"positive_percentage"`
}

// GetMyProfile возвращает профиль текущего пользователя
func (s *ProfileService) GetMyProfile(ctx context.Context, user *models.User) (*ProfileDTO, error) {
	dto := &ProfileDTO{
		ID:             user.ID.String(),
		Email:          user.Email,
		UserType:       user.Type,
		Name:           user.Name,
		Surname:        user.Surname,
		PhoneNumber:    user.PhoneNumber,
		Specialization: user.Specialization,
	}

	if user.ProfilePictureKey != nil {
		url, err := s.store.PresignedGetURL(ctx, *user.ProfilePictureKey, presignedGetTTL)
		if err != nil {
			s.log.Errorw("failed to presign profile picture", "user_id", user.ID, "error", err)
		} else {
			dto.ProfilePictureURL = url
		}
	}

	if user.IsParent() {
		children, err := s.userRepo.GetChildrenByParent(user.ID)
		if err != nil {
			return nil, apperr.Internal("failed to load children", err)
		}
		for _, child := range children {
			dto.Children = append(dto.Children, *child)
		}

		completed, err := s.enrollmentRepo.ListByUserAndCompleted(user.ID, true)
		if err != nil {
			return nil, apperr.Internal("failed to load enrollments", err)
		}
		dto.CompletedCourses = len(completed)

		stats, err := s.registrationStats(user)
		if err != nil {
			return nil, err
		}
		dto.RegistrationStats = stats
	}
	return dto, nil
}

// UpdateProfileRequest - запрос на изменение профиля
type UpdateProfileRequest struct {
	Name        *string `json:"name"`
	Surname     *string `json:"surname"`
	PhoneNumber *string `json:"phone_number"`
	Password    *string `json:"password"`
	PinCode     *string `json:"pin_code"`
}

// UpdateMyProfile изменяет профиль. Пароль и пин-код перехешируются
// только если переданы непустыми
func (s *ProfileService) UpdateMyProfile(user *models.User, req UpdateProfileRequest) (*models.User, error) {
	if req.Name != nil && *req.Name != "" {
		user.Name = *req.Name
	}
	if req.Surname != nil && *req.Surname != "" {
		user.Surname = *req.Surname
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.Password != nil && *req.Password != "" {
		if len(*req.Password) < 8 {
			return nil, apperr.Validation("password must be at least 8 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperr.Internal("failed to hash password", err)
		}
		user.PasswordHash = string(hash)
	}
	if req.PinCode != nil && *req.PinCode != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.PinCode), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperr.Internal("failed to hash pin code", err)
		}
		pinHash := string(hash)
		user.PinHash = &pinHash
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, apperr.Internal("failed to update profile", err)
	}
	s.log.Infow("profile updated", "user_id", user.ID)
	return user, nil
}

// AddChild добавляет ребенка родителю
func (s *ProfileService) AddChild(user *models.User, input ChildInput) (*models.Child, error) {
	if !user.IsParent() {
		return nil, apperr.Forbidden("only parents can add children")
	}
	child := &models.Child{
		Name:      input.Name,
		Surname:   input.Surname,
		Age:       input.Age,
		Diagnosis: input.Diagnosis,
		ParentID:  user.ID,
		Active:    true,
	}
	if err := s.userRepo.CreateChild(child); err != nil {
		return nil, apperr.Internal("failed to add child", err)
	}
	return child, nil
}

// UploadProfilePicture загружает аватар, ужимая изображение
func (s *ProfileService) UploadProfilePicture(ctx context.Context, user *models.User, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", apperr.Internal("failed to open uploaded file", err)
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", apperr.Validation("file is not a valid image")
	}
	img = imaging.Fit(img, profilePictureSize, profilePictureSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return "", apperr.Internal("failed to encode image", err)
	}

	key := fmt.Sprintf("profiles/user_%s.jpg", user.ID)
	if err := s.store.Upload(ctx, key, &buf, int64(buf.Len()), "image/jpeg"); err != nil {
		return "", apperr.Internal("failed to upload profile picture", err)
	}

	user.ProfilePictureKey = &key
	if err := s.userRepo.Update(user); err != nil {
		return "", apperr.Internal("failed to save profile picture", err)
	}

	url, err := s.store.PresignedGetURL(ctx, key, presignedGetTTL)
	if err != nil {
		return "", apperr.Internal("failed to presign profile picture", err)
	}
	s.log.Infow("profile picture uploaded", "user_id", user.ID)
	return url, nil
}

func (s *ProfileService) registrationStats(user *models.User) (*RegistrationStatsDTO, error) {
	answers, err := s.registrationRepo.GetAnswersByParent(user.ID)
	if err != nil {
		return nil, apperr.Internal("failed to load registration answers", err)
	}
	if len(answers) == 0 {
		return nil, nil
	}

	positive := 0
	for _, answer := range answers {
		if answer.Answer {
			positive++
		}
	}
	percentage := float64(positive) / float64(len(answers)) * 100
	return &RegistrationStatsDTO{
		TotalQuestions:     len(answers),
		PositiveAnswers:    positive,
		PositivePercentage: fmt.Sprintf("%.1f", percentage),
	}, nil
}

// ListRegistrationQuestions возвращает активные вопросы анкеты
func (s *ProfileService) ListRegistrationQuestions() ([]*models.RegistrationQuestion, error) {
	questions, err := s.registrationRepo.ListActiveQuestions()
	if err != nil {
		return nil, apperr.Internal("failed to list registration questions", err)
	}
	return questions, nil
}
