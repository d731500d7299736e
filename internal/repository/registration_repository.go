package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bigbrownking/taubago/internal/models"
)

type RegistrationRepository interface {
	ListActiveQuestions() ([]*models.RegistrationQuestion, error)
	GetQuestionsByIDs(ids []uuid.UUID) ([]*models.RegistrationQuestion, error)
	CountQuestions() (int64, error)
	CreateQuestion(question *models.RegistrationQuestion) error

	CreateAnswers(answers []*models.RegistrationAnswer) error
	GetAnswersByParent(parentID uuid.UUID) ([]*models.RegistrationAnswer, error)
}

type registrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) ListActiveQuestions() ([]*models.RegistrationQuestion, error) {
	var questions []*models.RegistrationQuestion
	err := r.db.Where("is_active = ?", true).
		Order("order_number").
		Find(&questions).Error
	return questions, err
}

func (r *registrationRepository) GetQuestionsByIDs(ids []uuid.UUID) ([]*models.RegistrationQuestion, error) {
	var questions []*models.RegistrationQuestion
	err := r.db.Where("id IN ?", ids).Find(&questions).Error
	return questions, err
}

func (r *registrationRepository) CountQuestions() (int64, error) {
	var count int64
	err := r.db.Model(&models.RegistrationQuestion{}).Count(&count).Error
	return count, err
}

func (r *registrationRepository) CreateQuestion(question *models.RegistrationQuestion) error {
	if question.ID == uuid.Nil {
		question.ID = uuid.New()
	}
	return r.db.Create(question).Error
}

func (r *registrationRepository) CreateAnswers(answers []*models.RegistrationAnswer) error {
	for _, answer := range answers {
		if answer.ID == uuid.Nil {
			answer.ID = uuid.New()
		}
	}
	return r.db.Create(answers).Error
}

func (r *registrationRepository) GetAnswersByParent(parentID uuid.UUID) ([]*models.RegistrationAnswer, error) {
	var answers []*models.RegistrationAnswer
	err := r.db.Preload("Question").
		Where("parent_id = ?", parentID).
		Find(&answers).Error
	return answers, err
}
