package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bigbrownking/taubago/internal/models"
)

type PasswordResetRepository interface {
	Create(token *models.PasswordResetToken) error
	GetUnusedByToken(token string) (*models.PasswordResetToken, error)
	Update(token *models.PasswordResetToken) error
	DeleteByUser(userID uuid.UUID) error
}

type passwordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(token *models.PasswordResetToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	return r.db.Create(token).Error
}

func (r *passwordResetRepository) GetUnusedByToken(token string) (*models.PasswordResetToken, error) {
	var resetToken models.PasswordResetToken
	err := r.db.First(&resetToken, "token = ? AND used = ?", token, false).Error
	if err != nil {
		return nil, err
	}
	return &resetToken, nil
}

func (r *passwordResetRepository) Update(token *models.PasswordResetToken) error {
	return r.db.Save(token).Error
}

func (r *passwordResetRepository) DeleteByUser(userID uuid.UUID) error {
	return r.db.Delete(&models.PasswordResetToken{}, "user_id = ?", userID).Error
}
