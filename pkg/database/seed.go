package database

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bigbrownking/taubago/internal/models"
)

// CreateDefaultAdmin создает администратора по умолчанию, если его нет
func (d *Database) CreateDefaultAdmin(email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	var count int64
	if err := d.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check admin user: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Type:         models.UserTypeAdministrator,
		Name:         "Admin",
		Surname:      "System",
		Active:       true,
	}
	if err := d.DB.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	return nil
}

// SeedRegistrationQuestions наполняет анкету регистрации, если она пуста
func (d *Database) SeedRegistrationQuestions() error {
	var count int64
	if err := d.DB.Model(&models.RegistrationQuestion{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count questions: %w", err)
	}
	if count > 0 {
		return nil
	}

	type seedQuestion struct {
		question string
		topic    string
	}
	seed := []seedQuestion{
		{"Была ли гипоксия (кислородное голодание) при родах?", "Роды и беременность"},
		{"Были ли родовые травмы или инфекции в первый месяц?", "Роды и беременность"},
		{"Протекала ли беременность с серьезными осложнениями?", "Роды и беременность"},
		{"Ребенок уверенно держит голову и переворачивается?", "Моторика"},
		{"Умеет ли ребенок самостоятельно сидеть и ползать?", "Моторика"},
		{"Может ли ребенок захватывать мелкие предметы пальцами?", "Моторика"},
		{"Реагирует ли ребенок на свое имя?", "Речь"},
		{"Понимает ли ребенок простые инструкции (дай, принеси)?", "Речь"},
		{"Есть ли в лексиконе указательные жесты или первые слова?", "Речь"},
		{"Устанавливает ли ребенок зрительный контакт?", "Социализация"},
		{"Проявляет ли ребенок интерес к играм с другими детьми?", "Социализация"},
		{"Есть ли у ребенка комплекс оживления (улыбка в ответ)?", "Социализация"},
		{"Проявляет ли ребенок интерес к самостоятельному приему пищи?", "Самообслуживание"},
		{"Дает ли ребенок знать о физиологических нуждах?", "Самообслуживание"},
		{"Пытается ли ребенок помогать при одевании?", "Самообслуживание"},
	}

	for i, q := range seed {
		question := &models.RegistrationQuestion{
			ID:          uuid.New(),
			Question:    q.question,
			Topic:       q.topic,
			OrderNumber: i + 1,
			IsActive:    true,
		}
		if err := d.DB.Create(question).Error; err != nil {
			return fmt.Errorf("failed to seed question %d: %w", i+1, err)
		}
	}
	return nil
}

// SeedVideoCategories создает категории видео, если их нет
func (d *Database) SeedVideoCategories() error {
	var count int64
	if err := d.DB.Model(&models.VideoCategory{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	names := []string{
		"Крупная моторика",
		"Мелкая моторика",
		"Зрительно-слуховое восприятие",
	}
	for _, name := range names {
		category := &models.VideoCategory{ID: uuid.New(), Name: name}
		if err := d.DB.Create(category).Error; err != nil {
			return fmt.Errorf("failed to seed category %q: %w", name, err)
		}
	}
	return nil
}
