package models

import (
	"time"

	"github.com/google/uuid"
)

// RegistrationQuestion - вопрос анкеты при регистрации
type RegistrationQuestion struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Question    string    `json:"question" gorm:"not null"`
	Topic       string    `json:"topic" gorm:"not null"`
	OrderNumber int       `json:"order_number"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
}

// RegistrationAnswer - ответ родителя на вопрос анкеты (да/нет)
type RegistrationAnswer struct {
	ID uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`

	// Связи
	ParentID   uuid.UUID `json:"parent_id" gorm:"type:uuid;not null;index"`
	QuestionID uuid.UUID `json:"question_id" gorm:"type:uuid;not null"`

	Answer    bool      `json:"answer" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`

	Question RegistrationQuestion `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}

// PasswordResetToken - одноразовый токен сброса пароля
type PasswordResetToken struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Token  string    `json:"-" gorm:"uniqueIndex;not null"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`

	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
}
