package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bigbrownking/taubago/internal/services"
	"github.com/bigbrownking/taubago/pkg/apperr"
)

// VideoHandler представляет обработчик видео и прогресса просмотра
type VideoHandler struct {
	videoService *services.VideoService
}

// NewVideoHandler создает новый обработчик видео
func NewVideoHandler(videoService *services.VideoService) *VideoHandler {
	return &VideoHandler{videoService: videoService}
}

// UpdateProgressRequest представляет сохранение позиции просмотра
type UpdateProgressRequest struct {
	WatchedSeconds int64 `json:"watched_seconds" binding:"min=0"`
}

// HomeworkUploadURLRequest представляет запрос ссылки для загрузки
type HomeworkUploadURLRequest struct {
	ContentType string `json:"content_type"`
}

// ConfirmHomeworkRequest представляет подтверждение загрузки
type ConfirmHomeworkRequest struct {
	ObjectKey string `json:"object_key" binding:"required"`
	Title     string `json:"title"`
}

// ListLessonVideos возвращает видео урока с временными ссылками
func (h *VideoHandler) ListLessonVideos(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}

	videos, err := h.videoService.ListLessonVideos(c.Request.Context(), currentUser(c), lessonID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, videos)
}

// UploadLessonVideo загружает видео урока (только администратор)
func (h *VideoHandler) UploadLessonVideo(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}

	file, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "video file is required"})
		return
	}

	title := c.PostForm("title")
	if title == "" {
		title = file.Filename
	}

	var categoryID *uuid.UUID
	if raw := c.PostForm("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
			return
		}
		categoryID = &id
	}

	var durationSeconds *int64
	if raw := c.PostForm("duration_seconds"); raw != "" {
		duration, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || duration < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid duration"})
			return
		}
		durationSeconds = &duration
	}

	video, err := h.videoService.UploadLessonVideo(c.Request.Context(), currentUser(c),
		lessonID, categoryID, title, durationSeconds, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, video)
}

// HomeworkUploadURL выдает временную ссылку для загрузки домашнего видео
func (h *VideoHandler) HomeworkUploadURL(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}

	var req HomeworkUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.videoService.HomeworkUploadURL(c.Request.Context(), currentUser(c), lessonID, req.ContentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ConfirmHomeworkUpload регистрирует загруженное домашнее видео
func (h *VideoHandler) ConfirmHomeworkUpload(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}

	var req ConfirmHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	video, err := h.videoService.ConfirmHomeworkUpload(c.Request.Context(), currentUser(c),
		lessonID, req.ObjectKey, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, video)
}

// UpdateProgress сохраняет позицию просмотра видео
func (h *VideoHandler) UpdateProgress(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid video id"})
		return
	}

	var req UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	progress, err := h.videoService.UpdateProgress(currentUser(c), videoID, req.WatchedSeconds)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// MarkAsCompleted отмечает видео просмотренным
func (h *VideoHandler) MarkAsCompleted(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid video id"})
		return
	}

	progress, err := h.videoService.MarkAsCompleted(currentUser(c), videoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// GetProgress возвращает прогресс просмотра видео
func (h *VideoHandler) GetProgress(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid video id"})
		return
	}

	progress, err := h.videoService.GetProgress(currentUser(c), videoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// DeleteVideo удаляет видео
func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid video id"})
		return
	}

	if err := h.videoService.DeleteVideo(c.Request.Context(), currentUser(c), videoID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Video deleted successfully"})
}

// ListCategories возвращает категории видео
func (h *VideoHandler) ListCategories(c *gin.Context) {
	categories, err := h.videoService.ListCategories()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// StreamVideo отдает диапазон байт видео. Ответ всегда 206 Partial Content
func (h *VideoHandler) StreamVideo(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid video id"})
		return
	}

	start, end, err := parseRangeHeader(c.GetHeader("Range"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stream, err := h.videoService.OpenStream(c.Request.Context(), videoID, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	defer stream.Reader.Close()

	c.Header("Content-Type", stream.ContentType)
	c.Header("Accept-Ranges", "bytes")
	c.Header("Content-Range", fmt.Sprintf("bytes %d-%d/%d", stream.Start, stream.End, stream.TotalSize))
	c.Header("Content-Length", strconv.FormatInt(stream.End-stream.Start+1, 10))
	c.Status(http.StatusPartialContent)

	if _, err := io.Copy(c.Writer, stream.Reader); err != nil {
		// Клиент мог оборвать соединение
		return
	}
}

// parseRangeHeader разбирает заголовок вида "bytes=start-end".
// Пустой заголовок означает диапазон с начала файла; end = -1,
// если правая граница не указана
func parseRangeHeader(header string) (int64, int64, error) {
	if header == "" {
		return 0, -1, nil
	}
	if !strings.HasPrefix(header, "bytes=") {
		return 0, 0, apperr.Validation("unsupported range unit")
	}

	parts := strings.SplitN(strings.TrimPrefix(header, "bytes="), "-", 2)
	if len(parts) != 2 {
		return 0, 0, apperr.Validation("malformed range header")
	}

	start, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || start < 0 {
		return 0, 0, apperr.Validation("malformed range header")
	}

	end := int64(-1)
	if parts[1] != "" {
		end, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil || end < start {
			return 0, 0, apperr.Validation("malformed range header")
		}
	}
	return start, end, nil
}
