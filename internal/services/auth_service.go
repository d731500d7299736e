package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/bigbrownking/taubago/internal/models"
	"github.com/bigbrownking/taubago/internal/repository"
	"github.com/bigbrownking/taubago/pkg/apperr"
	"github.com/bigbrownking/taubago/pkg/logger"
)

// AuthService представляет сервис регистрации и авторизации
type AuthService struct {
	userRepo         repository.UserRepository
	registrationRepo repository.RegistrationRepository
	resetRepo        repository.PasswordResetRepository
	emailService     EmailService
	log              *logger.Logger

	jwtSecret       string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	registrationRepo repository.RegistrationRepository,
	resetRepo repository.PasswordResetRepository,
	emailService EmailService,
	log *logger.Logger,
	jwtSecret string,
	accessTokenTTL, refreshTokenTTL time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		registrationRepo: registrationRepo,
		resetRepo:        resetRepo,
		emailService:     emailService,
		log:              log,
		jwtSecret:        jwtSecret,
		accessTokenTTL:   accessTokenTTL,
		refreshTokenTTL:  refreshTokenTTL,
	}
}

// ChildInput - данные ребенка при регистрации
type ChildInput struct {
	Name      string  `json:"name" binding:"required"`
	Surname   string  `json:"surname" binding:"required"`
	Age       int     `json:"age" binding:"required,min=0"`
	Diagnosis *string `json:"diagnosis"`
}

// QuestionAnswer - ответ на вопрос анкеты
type QuestionAnswer struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Answer     bool      `json:"answer"`
}

// SignUpRequest - запрос регистрации родителя
type SignUpRequest struct {
	Email               string           `json:"email" binding:"required,email"`
	Password            string           `json:"password" binding:"required,min=8"`
	PinCode             *string          `json:"pin_code"`
	ParentName          string           `json:"parent_name" binding:"required"`
	ParentSurname       string           `json:"parent_surname" binding:"required"`
	PhoneNumber         string           `json:"phone_number"`
	FirstChild          *ChildInput      `json:"first_child"`
	RegistrationAnswers []QuestionAnswer `json:"registration_answers"`
}

// SignUpResult - результат регистрации
type SignUpResult struct {
	User            *models.User `json:"user"`
	TotalQuestions  int          `json:"total_questions"`
	PositiveAnswers int          `json:"positive_answers"`
}

// AuthResult - результат входа или обновления токена
type AuthResult struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	Type         string `json:"type"`
	Email        string `json:"email"`
	AuthType     string `json:"auth_type"`
}

// SignUp регистрирует нового родителя с ребенком и ответами на анкету
func (s *AuthService) SignUp(req SignUpRequest) (*SignUpResult, error) {
	exists, err := s.userRepo.ExistsByEmail(req.Email)
	if err != nil {
		return nil, apperr.Internal("failed to check email", err)
	}
	if exists {
		return nil, apperr.Conflict("email is already registered")
	}

	// Все вопросы из ответов должны существовать
	questionIDs := make([]uuid.UUID, 0, len(req.RegistrationAnswers))
	for _, qa := range req.RegistrationAnswers {
		questionIDs = append(questionIDs, qa.QuestionID)
	}
	if len(questionIDs) > 0 {
		questions, err := s.registrationRepo.GetQuestionsByIDs(questionIDs)
		if err != nil {
			return nil, apperr.Internal("failed to load questions", err)
		}
		if len(questions) != len(questionIDs) {
			return nil, apperr.Validation("some registration questions not found")
		}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		Type:         models.UserTypeParent,
		Name:         req.ParentName,
		Surname:      req.ParentSurname,
		PhoneNumber:  req.PhoneNumber,
		Active:       true,
	}

	if req.PinCode != nil && *req.PinCode != "" {
		pinHash, err := bcrypt.GenerateFromPassword([]byte(*req.PinCode), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperr.Internal("failed to hash pin code", err)
		}
		hash := string(pinHash)
		user.PinHash = &hash
	}

	if req.FirstChild != nil {
		user.Children = append(user.Children, models.Child{
			ID:        uuid.New(),
			Name:      req.FirstChild.Name,
			Surname:   req.FirstChild.Surname,
			Age:       req.FirstChild.Age,
			Diagnosis: req.FirstChild.Diagnosis,
			Active:    true,
		})
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("email is already registered")
		}
		return nil, apperr.Internal("failed to create user", err)
	}

	// Сохраняем ответы на анкету
	positiveAnswers := 0
	if len(req.RegistrationAnswers) > 0 {
		answers := make([]*models.RegistrationAnswer, 0, len(req.RegistrationAnswers))
		for _, qa := range req.RegistrationAnswers {
			if qa.Answer {
				positiveAnswers++
			}
			answers = append(answers, &models.RegistrationAnswer{
				ParentID:   user.ID,
				QuestionID: qa.QuestionID,
				Answer:     qa.Answer,
			})
		}
		if err := s.registrationRepo.CreateAnswers(answers); err != nil {
			return nil, apperr.Internal("failed to save registration answers", err)
		}
	}

	if err := s.emailService.SendSignUpConfirmation(user.Email, user.Name); err != nil {
		// Письмо не критично для регистрации
		s.log.Errorw("failed to send signup confirmation", "email", user.Email, "error", err)
	}

	s.log.Infow("parent registered", "email", user.Email,
		"answers", len(req.RegistrationAnswers), "positive", positiveAnswers)

	return &SignUpResult{
		User:            user,
		TotalQuestions:  len(req.RegistrationAnswers),
		PositiveAnswers: positiveAnswers,
	}, nil
}

// Login выполняет вход по паролю или пин-коду
func (s *AuthService) Login(email, password, pinCode string) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to load user", err)
	}

	authType := ""
	if password != "" {
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil {
			authType = "PASSWORD"
		}
	}
	if authType == "" && pinCode != "" && user.PinHash != nil {
		if bcrypt.CompareHashAndPassword([]byte(*user.PinHash), []byte(pinCode)) == nil {
			authType = "PIN"
		}
	}
	if authType == "" {
		return nil, apperr.Validation("invalid password or pin code")
	}

	return s.issueTokens(user, authType)
}

// Refresh выдает новую пару токенов по refresh-токену
func (s *AuthService) Refresh(refreshToken string) (*AuthResult, error) {
	claims, err := s.parseToken(refreshToken)
	if err != nil {
		return nil, apperr.Validation("invalid refresh token")
	}
	if tokenType, _ := claims["token_type"].(string); tokenType != "refresh" {
		return nil, apperr.Validation("invalid refresh token")
	}

	user, err := s.userFromClaims(claims)
	if err != nil {
		return nil, err
	}

	authType := "PASSWORD"
	if user.PinHash != nil {
		authType = "PIN"
	}
	return s.issueTokens(user, authType)
}

// ValidateAccessToken проверяет access-токен и возвращает пользователя
func (s *AuthService) ValidateAccessToken(tokenString string) (*models.User, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if tokenType, _ := claims["token_type"].(string); tokenType == "refresh" {
		return nil, fmt.Errorf("refresh token cannot be used for access")
	}
	return s.userFromClaims(claims)
}

// RequestPasswordReset создает токен сброса и отправляет письмо
func (s *AuthService) RequestPasswordReset(email string) error {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("user not found with email %s", email)
		}
		return apperr.Internal("failed to load user", err)
	}

	// Старые токены пользователя становятся недействительными
	if err := s.resetRepo.DeleteByUser(user.ID); err != nil {
		return apperr.Internal("failed to invalidate old tokens", err)
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return apperr.Internal("failed to generate reset token", err)
	}
	token := base64.RawURLEncoding.EncodeToString(tokenBytes)

	resetToken := &models.PasswordResetToken{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
		Used:      false,
	}
	if err := s.resetRepo.Create(resetToken); err != nil {
		return apperr.Internal("failed to save reset token", err)
	}

	if err := s.emailService.SendPasswordReset(user.Email, user.Name, token); err != nil {
		return apperr.Internal("failed to send password reset email", err)
	}

	s.log.Infow("password reset requested", "email", user.Email)
	return nil
}

// ConfirmPasswordReset устанавливает новый пароль по токену сброса
func (s *AuthService) ConfirmPasswordReset(token, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return apperr.Validation("passwords do not match")
	}

	resetToken, err := s.resetRepo.GetUnusedByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Validation("invalid or expired reset token")
		}
		return apperr.Internal("failed to load reset token", err)
	}
	if resetToken.ExpiresAt.Before(time.Now()) {
		return apperr.Validation("reset token has expired")
	}

	user, err := s.userRepo.GetByID(resetToken.UserID)
	if err != nil {
		return apperr.Internal("failed to load user", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal("failed to hash password", err)
	}
	user.PasswordHash = string(passwordHash)
	if err := s.userRepo.Update(user); err != nil {
		return apperr.Internal("failed to update password", err)
	}

	resetToken.Used = true
	if err := s.resetRepo.Update(resetToken); err != nil {
		return apperr.Internal("failed to mark token used", err)
	}

	if err := s.emailService.SendPasswordChanged(user.Email, user.Name); err != nil {
		s.log.Errorw("failed to send password changed notice", "email", user.Email, "error", err)
	}

	s.log.Infow("password reset", "email", user.Email)
	return nil
}

// ValidateResetToken проверяет, действителен ли токен сброса
func (s *AuthService) ValidateResetToken(token string) bool {
	resetToken, err := s.resetRepo.GetUnusedByToken(token)
	if err != nil {
		return false
	}
	return resetToken.ExpiresAt.After(time.Now())
}

func (s *AuthService) issueTokens(user *models.User, authType string) (*AuthResult, error) {
	now := time.Now()

	accessClaims := jwt.MapClaims{
		"user_id":   user.ID.String(),
		"user_type": string(user.Type),
		"auth_type": authType,
		"exp":       now.Add(s.accessTokenTTL).Unix(),
		"iat":       now.Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).
		SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, apperr.Internal("failed to sign access token", err)
	}

	refreshClaims := jwt.MapClaims{
		"user_id":    user.ID.String(),
		"token_type": "refresh",
		"exp":        now.Add(s.refreshTokenTTL).Unix(),
		"iat":        now.Unix(),
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).
		SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, apperr.Internal("failed to sign refresh token", err)
	}

	return &AuthResult{
		Token:        accessToken,
		RefreshToken: refreshToken,
		Type:         "Bearer",
		Email:        user.Email,
		AuthType:     authType,
	}, nil
}

func (s *AuthService) parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) userFromClaims(claims jwt.MapClaims) (*models.User, error) {
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid user id in token: %w", err)
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return user, nil
}
