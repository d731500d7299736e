package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bigbrownking/taubago/internal/services"
)

// ProfileHandler представляет обработчик профиля пользователя
type ProfileHandler struct {
	profileService *services.ProfileService
}

// NewProfileHandler создает новый обработчик профиля
func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// MyProfile возвращает профиль текущего пользователя
func (h *ProfileHandler) MyProfile(c *gin.Context) {
	profile, err := h.profileService.GetMyProfile(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateMyProfile изменяет профиль текущего пользователя
func (h *ProfileHandler) UpdateMyProfile(c *gin.Context) {
	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.profileService.UpdateMyProfile(currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// AddChild добавляет ребенка родителю
func (h *ProfileHandler) AddChild(c *gin.Context) {
	var req services.ChildInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	child, err := h.profileService.AddChild(currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, child)
}

// UploadProfilePicture загружает аватар пользователя
func (h *ProfileHandler) UploadProfilePicture(c *gin.Context) {
	file, err := c.FormFile("picture")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "picture file is required"})
		return
	}

	url, err := h.profileService.UploadProfilePicture(c.Request.Context(), currentUser(c), file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile_picture_url": url})
}
