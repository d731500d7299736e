package models

import (
	"time"

	"github.com/google/uuid"
)

// VideoType - тип видео: урок или домашнее задание родителя
type VideoType string

const (
	VideoTypeLesson   VideoType = "LESSON"
	VideoTypeHomework VideoType = "HOMEWORK"
)

// VideoCategory - категория развивающих видео
type VideoCategory struct {
	ID   uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Name string    `json:"name" gorm:"uniqueIndex;not null"`
}

// Video - видеофайл в объектном хранилище
type Video struct {
	ID    uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Title string    `json:"title" gorm:"not null"`
	Type  VideoType `json:"type" gorm:"not null"`

	CategoryID *uuid.UUID     `json:"category_id,omitempty" gorm:"type:uuid"`
	Category   *VideoCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`

	ObjectKey  string `json:"-" gorm:"not null"`
	BucketName string `json:"-" gorm:"not null"`

	DurationSeconds *int64 `json:"duration_seconds,omitempty"`
	FileSizeBytes   *int64 `json:"file_size_bytes,omitempty"`
	ContentType     string `json:"content_type"`

	// Связи
	LessonID     uuid.UUID `json:"lesson_id" gorm:"type:uuid;not null;index"`
	Lesson       *Lesson   `json:"-" gorm:"foreignKey:LessonID"`
	UploadedByID uuid.UUID `json:"uploaded_by_id" gorm:"type:uuid"`
	UploadedBy   *User     `json:"-" gorm:"foreignKey:UploadedByID"`

	UploadedAt time.Time `json:"uploaded_at" gorm:"autoCreateTime"`
}

// VideoProgress - прогресс просмотра видео пользователем
type VideoProgress struct {
	ID uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`

	// Связи
	UserID  uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_video"`
	VideoID uuid.UUID `json:"video_id" gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_video"`
	Video   *Video    `json:"-" gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE"`

	WatchedSeconds int64      `json:"watched_seconds" gorm:"default:0"`
	IsCompleted    bool       `json:"is_completed" gorm:"default:false"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`

	StartedAt     time.Time `json:"started_at" gorm:"autoCreateTime"`
	LastWatchedAt time.Time `json:"last_watched_at" gorm:"autoUpdateTime"`
}
