package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bigbrownking/taubago/internal/models"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	ExistsByEmail(email string) (bool, error)
	Update(user *models.User) error
	ListByType(userType models.UserType) ([]*models.User, error)

	CreateChild(child *models.Child) error
	GetChildrenByParent(parentID uuid.UUID) ([]*models.Child, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	for i := range user.Children {
		if user.Children[i].ID == uuid.Nil {
			user.Children[i].ID = uuid.New()
		}
	}
	return r.db.Create(user).Error
}

func (r *userRepository) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.Preload("Children", "active = ?", true).
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Preload("Children", "active = ?", true).
		First(&user, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

func (r *userRepository) ListByType(userType models.UserType) ([]*models.User, error) {
	var users []*models.User
	err := r.db.Where("type = ?", userType).Order("created_at").Find(&users).Error
	return users, err
}

func (r *userRepository) CreateChild(child *models.Child) error {
	if child.ID == uuid.Nil {
		child.ID = uuid.New()
	}
	return r.db.Create(child).Error
}

func (r *userRepository) GetChildrenByParent(parentID uuid.UUID) ([]*models.Child, error) {
	var children []*models.Child
	err := r.db.Where("parent_id = ? AND active = ?", parentID, true).
		Order("created_at").
		Find(&children).Error
	return children, err
}
