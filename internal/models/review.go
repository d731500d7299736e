package models

import (
	"time"

	"github.com/google/uuid"
)

// CourseReview - оценка или отзыв о курсе (одна запись на пару пользователь-курс).
// ReviewText == nil означает "только оценка, без текста".
type CourseReview struct {
	ID uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`

	// Связи
	UserID   uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_course"`
	User     *User     `json:"-" gorm:"foreignKey:UserID"`
	CourseID uuid.UUID `json:"course_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_course"`
	Course   *Course   `json:"-" gorm:"foreignKey:CourseID"`

	Rating     int     `json:"rating" gorm:"not null"`
	ReviewText *string `json:"review_text,omitempty"`
	LikeCount  int     `json:"like_count" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReviewLike - отметка "полезный отзыв" (одна на пару пользователь-отзыв)
type ReviewLike struct {
	ID uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`

	// Связи
	UserID   uuid.UUID     `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_review"`
	ReviewID uuid.UUID     `json:"review_id" gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_review"`
	Review   *CourseReview `json:"-" gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
}
