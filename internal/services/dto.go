package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/bigbrownking/taubago/internal/models"
)

// CourseDTO - курс с данными о записи текущего пользователя
type CourseDTO struct {
	ID               uuid.UUID          `json:"id"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	Month            models.CourseMonth `json:"month"`
	MonthDisplayName string             `json:"month_display_name"`
	DurationDays     int                `json:"duration_days"`
	Order            int                `json:"order"`
	CreatedByName    string             `json:"created_by_name,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	IsEnrolled       bool               `json:"is_enrolled"`
	EnrolledCount    int64              `json:"enrolled_count"`
}

// EnrollmentDTO - запись на курс
type EnrollmentDTO struct {
	ID                 uuid.UUID  `json:"id"`
	CourseID           uuid.UUID  `json:"course_id"`
	CourseTitle        string     `json:"course_title"`
	ProgressPercentage int        `json:"progress_percentage"`
	Completed          bool       `json:"completed"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	EnrolledAt         time.Time  `json:"enrolled_at"`
}

// LessonDTO - урок с видео
type LessonDTO struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DayNumber   int        `json:"day_number"`
	CourseID    uuid.UUID  `json:"course_id"`
	Videos      []VideoDTO `json:"videos"`
}

// VideoDTO - видео с временной ссылкой и прогрессом текущего пользователя
type VideoDTO struct {
	ID              uuid.UUID        `json:"id"`
	Title           string           `json:"title"`
	Type            models.VideoType `json:"type"`
	Category        string           `json:"category,omitempty"`
	VideoURL        string           `json:"video_url"`
	DurationSeconds *int64           `json:"duration_seconds,omitempty"`
	FileSizeBytes   *int64           `json:"file_size_bytes,omitempty"`
	WatchedSeconds  int64            `json:"watched_seconds"`
	IsCompleted     bool             `json:"is_completed"`
}

// UploadURLDTO - данные для прямой загрузки домашнего видео
type UploadURLDTO struct {
	UploadURL   string `json:"upload_url"`
	ObjectKey   string `json:"object_key"`
	ContentType string `json:"content_type"`
}

// LessonReportDTO - отчет родителя об уроке
type LessonReportDTO struct {
	ID                  uuid.UUID `json:"id"`
	LessonID            uuid.UUID `json:"lesson_id"`
	LessonTitle         string    `json:"lesson_title"`
	DayNumber           int       `json:"day_number"`
	ChildReactionRating int       `json:"child_reaction_rating"`
	Comment             *string   `json:"comment,omitempty"`
	ParentName          string    `json:"parent_name,omitempty"`
	ParentEmail         string    `json:"parent_email,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// PublicLessonReportDTO - отчет другого родителя в урезанном виде
type PublicLessonReportDTO struct {
	ChildReactionRating int       `json:"child_reaction_rating"`
	Comment             *string   `json:"comment,omitempty"`
	ParentName          string    `json:"parent_name"`
	CreatedAt           time.Time `json:"created_at"`
}

// FullLessonReportDTO - отчет с контактами родителя и его домашними видео (для куратора)
type FullLessonReportDTO struct {
	ParentID            uuid.UUID  `json:"parent_id"`
	ParentName          string     `json:"parent_name"`
	ParentEmail         string     `json:"parent_email"`
	LessonID            uuid.UUID  `json:"lesson_id"`
	LessonTitle         string     `json:"lesson_title"`
	DayNumber           int        `json:"day_number"`
	ChildReactionRating int        `json:"child_reaction_rating"`
	Comment             *string    `json:"comment,omitempty"`
	ReportCreatedAt     time.Time  `json:"report_created_at"`
	ReportUpdatedAt     time.Time  `json:"report_updated_at"`
	HomeworkVideos      []VideoDTO `json:"homework_videos"`
}

// ReviewDTO - отзыв о курсе
type ReviewDTO struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"user_id"`
	UserName           string    `json:"user_name"`
	CourseID           uuid.UUID `json:"course_id"`
	CourseTitle        string    `json:"course_title"`
	Rating             int       `json:"rating"`
	ReviewText         *string   `json:"review_text,omitempty"`
	LikeCount          int       `json:"like_count"`
	LikedByCurrentUser bool      `json:"liked_by_current_user"`
	CreatedAt          time.Time `json:"created_at"`
}

// ReviewPageDTO - страница отзывов
type ReviewPageDTO struct {
	Reviews    []ReviewDTO `json:"reviews"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalCount int64       `json:"total_count"`
}

// CourseRatingStatsDTO - агрегированная статистика оценок курса
type CourseRatingStatsDTO struct {
	AverageRating   float64 `json:"average_rating"`
	FormattedRating string  `json:"formatted_rating"`
	TotalRatings    int64   `json:"total_ratings"`
	FiveStarCount   int64   `json:"five_star_count"`
	FourStarCount   int64   `json:"four_star_count"`
	ThreeStarCount  int64   `json:"three_star_count"`
	TwoStarCount    int64   `json:"two_star_count"`
	OneStarCount    int64   `json:"one_star_count"`
}

// CourseRatingSummaryDTO - краткая сводка оценок по курсу для списков
type CourseRatingSummaryDTO struct {
	CourseID        uuid.UUID `json:"course_id"`
	Title           string    `json:"title"`
	Month           string    `json:"month,omitempty"`
	AverageRating   float64   `json:"average_rating"`
	FormattedRating string    `json:"formatted_rating"`
	ReviewCount     int64     `json:"review_count"`
	ColorCode       string    `json:"color_code"`
}
