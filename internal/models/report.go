package models

import (
	"time"

	"github.com/google/uuid"
)

// LessonReport - отчет родителя о прохождении урока (один на пару урок-родитель)
type LessonReport struct {
	ID uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`

	// Связи
	LessonID uuid.UUID `json:"lesson_id" gorm:"type:uuid;not null;uniqueIndex:idx_reports_lesson_parent"`
	Lesson   *Lesson   `json:"-" gorm:"foreignKey:LessonID"`
	ParentID uuid.UUID `json:"parent_id" gorm:"type:uuid;not null;uniqueIndex:idx_reports_lesson_parent"`
	Parent   *User     `json:"-" gorm:"foreignKey:ParentID"`

	// Оценка реакции ребенка на занятие, от 1 до 5
	ChildReactionRating int     `json:"child_reaction_rating" gorm:"not null"`
	Comment             *string `json:"comment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
