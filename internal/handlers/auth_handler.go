package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bigbrownking/taubago/internal/services"
)

// AuthHandler представляет обработчик регистрации и авторизации
type AuthHandler struct {
	authService    *services.AuthService
	profileService *services.ProfileService
}

// NewAuthHandler создает новый обработчик авторизации
func NewAuthHandler(authService *services.AuthService, profileService *services.ProfileService) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		profileService: profileService,
	}
}

// LoginRequest представляет запрос входа по паролю или пин-коду
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password"`
	PinCode  string `json:"pin_code"`
}

// RefreshRequest представляет запрос обновления токенов
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ForgotPasswordRequest представляет запрос сброса пароля
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest представляет установку нового пароля по токену
type ResetPasswordRequest struct {
	Token           string `json:"token" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// SignUp регистрирует родителя с ответами на анкету
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req services.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authService.SignUp(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Login выполняет вход и возвращает пару токенов
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Password == "" && req.PinCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password or pin_code is required"})
		return
	}

	result, err := h.authService.Login(req.Email, req.Password, req.PinCode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Refresh обновляет пару токенов
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ForgotPassword отправляет письмо со ссылкой сброса пароля
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authService.RequestPasswordReset(req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset email sent"})
}

// ResetPassword устанавливает новый пароль по токену сброса
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authService.ConfirmPasswordReset(req.Token, req.NewPassword, req.ConfirmPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// ValidateResetToken проверяет токен сброса пароля
func (h *AuthHandler) ValidateResetToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": h.authService.ValidateResetToken(token)})
}

// RegistrationQuestions возвращает вопросы анкеты регистрации
func (h *AuthHandler) RegistrationQuestions(c *gin.Context) {
	questions, err := h.profileService.ListRegistrationQuestions()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}
