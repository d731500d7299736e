package models

import (
	"time"

	"github.com/google/uuid"
)

// UserType определяет тип учетной записи
type UserType string

const (
	UserTypeParent        UserType = "PARENT"
	UserTypeAdministrator UserType = "ADMINISTRATOR"
	UserTypeSpecialist    UserType = "SPECIALIST"
	UserTypeCurator       UserType = "CURATOR"
)

// User - учетная запись (родитель, администратор, специалист или куратор)
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	PinHash      *string   `json:"-"`
	Type         UserType  `json:"user_type" gorm:"not null"`

	Name        string `json:"name" gorm:"not null"`
	Surname     string `json:"surname" gorm:"not null"`
	PhoneNumber string `json:"phone_number"`

	// Только для специалистов
	Specialization *string `json:"specialization,omitempty"`

	ProfilePictureKey *string `json:"-"`

	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Связи
	Children []Child `json:"children,omitempty" gorm:"foreignKey:ParentID"`
}

// IsAdmin проверяет, является ли пользователь администратором
func (u *User) IsAdmin() bool {
	return u.Type == UserTypeAdministrator
}

// IsParent проверяет, является ли пользователь родителем
func (u *User) IsParent() bool {
	return u.Type == UserTypeParent
}

// IsCurator проверяет, является ли пользователь куратором
func (u *User) IsCurator() bool {
	return u.Type == UserTypeCurator
}

// FullName возвращает имя и фамилию
func (u *User) FullName() string {
	return u.Name + " " + u.Surname
}

// Child - ребенок родителя
type Child struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Name      string    `json:"name" gorm:"not null"`
	Surname   string    `json:"surname" gorm:"not null"`
	Age       int       `json:"age" gorm:"not null"`
	Diagnosis *string   `json:"diagnosis,omitempty"`

	// Связи
	ParentID uuid.UUID `json:"parent_id" gorm:"type:uuid;not null;index"`

	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
