package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bigbrownking/taubago/internal/services"
)

// ReportHandler представляет обработчик отчетов об уроках
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler создает новый обработчик отчетов
func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// SaveReport создает или обновляет отчет родителя об уроке.
// Принимает multipart-форму с оценкой, комментарием и домашними видео
func (h *ReportHandler) SaveReport(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}

	rating, err := strconv.Atoi(c.PostForm("child_reaction_rating"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "child_reaction_rating is required"})
		return
	}

	req := services.CreateReportRequest{ChildReactionRating: rating}
	if comment := c.PostForm("comment"); comment != "" {
		req.Comment = &comment
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	homeworkFiles := form.File["homework_videos"]

	report, err := h.reportService.SaveReport(c.Request.Context(), currentUser(c), lessonID, req, homeworkFiles)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// MyReport возвращает отчет родителя по уроку
func (h *ReportHandler) MyReport(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}

	report, err := h.reportService.GetMyReport(currentUser(c), lessonID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// MyReports возвращает все отчеты родителя
func (h *ReportHandler) MyReports(c *gin.Context) {
	reports, err := h.reportService.GetMyReports(currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// CommunityReports возвращает отчеты других родителей по уроку
func (h *ReportHandler) CommunityReports(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}

	reports, err := h.reportService.GetOtherParentsReports(currentUser(c), lessonID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// FullReports возвращает полные отчеты по уроку (куратор, администратор)
func (h *ReportHandler) FullReports(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}

	reports, err := h.reportService.GetFullReportsByLesson(c.Request.Context(), currentUser(c), lessonID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// FullReportByParent возвращает полный отчет одного родителя
func (h *ReportHandler) FullReportByParent(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}
	parentID, err := uuid.Parse(c.Param("parentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parent id"})
		return
	}

	report, err := h.reportService.GetFullReportByLessonAndParent(c.Request.Context(), currentUser(c), lessonID, parentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
