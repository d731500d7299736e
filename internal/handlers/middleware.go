package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bigbrownking/taubago/internal/models"
	"github.com/bigbrownking/taubago/internal/services"
	"github.com/bigbrownking/taubago/pkg/apperr"
)

// AuthMiddleware создает middleware авторизации по JWT
func AuthMiddleware(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		user, err := authService.ValidateAccessToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		// Сохраняем данные пользователя в контексте (строгие типы)
		c.Set("user", user)
		c.Set("user_id", user.ID)     // uuid.UUID
		c.Set("user_type", user.Type) // models.UserType

		c.Next()
	}
}

// GuestMiddleware создает middleware с необязательной авторизацией
func GuestMiddleware(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		user, err := authService.ValidateAccessToken(token)
		if err != nil {
			c.Next()
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Set("user_type", user.Type)

		c.Next()
	}
}

// RequireTypes разрешает доступ только указанным типам пользователей
func RequireTypes(allowed ...models.UserType) gin.HandlerFunc {
	allowedSet := make(map[models.UserType]struct{}, len(allowed))
	for _, t := range allowed {
		allowedSet[t] = struct{}{}
	}
	return func(c *gin.Context) {
		typeVal, exists := c.Get("user_type")
		userType, ok := typeVal.(models.UserType)
		if !exists || !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			c.Abort()
			return
		}
		if _, allowed := allowedSet[userType]; !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	if cookie, err := c.Cookie("jwt"); err == nil {
		return cookie
	}
	return ""
}

// currentUser возвращает пользователя из контекста запроса
func currentUser(c *gin.Context) *models.User {
	if userVal, exists := c.Get("user"); exists {
		if user, ok := userVal.(*models.User); ok {
			return user
		}
	}
	return nil
}

// respondError отвечает статусом по виду ошибки
func respondError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindConflict:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperr.KindForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case apperr.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
