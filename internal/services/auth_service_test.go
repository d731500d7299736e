package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bigbrownking/taubago/internal/models"
	"github.com/bigbrownking/taubago/internal/repository"
	"github.com/bigbrownking/taubago/pkg/apperr"
	"github.com/bigbrownking/taubago/pkg/logger"
)

func newAuthService(db *gorm.DB, email *fakeEmailService) *AuthService {
	return NewAuthService(
		repository.NewUserRepository(db),
		repository.NewRegistrationRepository(db),
		repository.NewPasswordResetRepository(db),
		email,
		logger.NewNop(),
		"test-secret",
		time.Hour,
		24*time.Hour,
	)
}

func seedQuestions(t *testing.T, db *gorm.DB, n int) []*models.RegistrationQuestion {
	t.Helper()
	questions := make([]*models.RegistrationQuestion, 0, n)
	for i := 0; i < n; i++ {
		question := &models.RegistrationQuestion{
			ID:          uuid.New(),
			Question:    "Вопрос",
			Topic:       "Тема",
			OrderNumber: i + 1,
			IsActive:    true,
		}
		require.NoError(t, db.Create(question).Error)
		questions = append(questions, question)
	}
	return questions
}

func TestSignUp(t *testing.T) {
	db := newTestDB(t)
	email := newFakeEmailService()
	svc := newAuthService(db, email)
	questions := seedQuestions(t, db, 3)

	pin := "1234"
	diagnosis := "ЗПР"
	result, err := svc.SignUp(SignUpRequest{
		Email:         "parent@test.kz",
		Password:      "Password1!",
		PinCode:       &pin,
		ParentName:    "Айгуль",
		ParentSurname: "Ахметова",
		PhoneNumber:   "+77001234567",
		FirstChild: &ChildInput{
			Name:      "Алим",
			Surname:   "Ахметов",
			Age:       3,
			Diagnosis: &diagnosis,
		},
		RegistrationAnswers: []QuestionAnswer{
			{QuestionID: questions[0].ID, Answer: true},
			{QuestionID: questions[1].ID, Answer: false},
			{QuestionID: questions[2].ID, Answer: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.UserTypeParent, result.User.Type)
	assert.Equal(t, 3, result.TotalQuestions)
	assert.Equal(t, 2, result.PositiveAnswers)
	require.Len(t, result.User.Children, 1)
	assert.Equal(t, "Алим", result.User.Children[0].Name)
	assert.Contains(t, email.signups, "parent@test.kz")

	// Пароль и пин не хранятся в открытом виде
	assert.NotEqual(t, "Password1!", result.User.PasswordHash)
	require.NotNil(t, result.User.PinHash)
	assert.NotEqual(t, "1234", *result.User.PinHash)

	// Повторная регистрация с тем же email отклоняется
	_, err = svc.SignUp(SignUpRequest{
		Email:         "parent@test.kz",
		Password:      "Password1!",
		ParentName:    "Другой",
		ParentSurname: "Родитель",
	})
	assert.True(t, apperr.IsConflict(err))
}

func TestSignUpUnknownQuestion(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db, newFakeEmailService())

	_, err := svc.SignUp(SignUpRequest{
		Email:         "parent@test.kz",
		Password:      "Password1!",
		ParentName:    "Имя",
		ParentSurname: "Фамилия",
		RegistrationAnswers: []QuestionAnswer{
			{QuestionID: uuid.New(), Answer: true},
		},
	})
	assert.True(t, apperr.IsValidation(err))
}

func TestLoginByPasswordAndPin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db, newFakeEmailService())

	pin := "4321"
	_, err := svc.SignUp(SignUpRequest{
		Email:         "login@test.kz",
		Password:      "Password1!",
		PinCode:       &pin,
		ParentName:    "Имя",
		ParentSurname: "Фамилия",
	})
	require.NoError(t, err)

	byPassword, err := svc.Login("login@test.kz", "Password1!", "")
	require.NoError(t, err)
	assert.Equal(t, "PASSWORD", byPassword.AuthType)
	assert.NotEmpty(t, byPassword.Token)
	assert.NotEmpty(t, byPassword.RefreshToken)

	byPin, err := svc.Login("login@test.kz", "", "4321")
	require.NoError(t, err)
	assert.Equal(t, "PIN", byPin.AuthType)

	_, err = svc.Login("login@test.kz", "wrong", "0000")
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.Login("missing@test.kz", "Password1!", "")
	assert.True(t, apperr.IsNotFound(err))
}

func TestTokenValidationAndRefresh(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db, newFakeEmailService())

	_, err := svc.SignUp(SignUpRequest{
		Email:         "tokens@test.kz",
		Password:      "Password1!",
		ParentName:    "Имя",
		ParentSurname: "Фамилия",
	})
	require.NoError(t, err)

	result, err := svc.Login("tokens@test.kz", "Password1!", "")
	require.NoError(t, err)

	user, err := svc.ValidateAccessToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "tokens@test.kz", user.Email)

	// Refresh-токен не подходит для доступа
	_, err = svc.ValidateAccessToken(result.RefreshToken)
	assert.Error(t, err)

	// Access-токен не подходит для обновления
	_, err = svc.Refresh(result.Token)
	assert.True(t, apperr.IsValidation(err))

	refreshed, err := svc.Refresh(result.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.Token)

	_, err = svc.ValidateAccessToken("garbage")
	assert.Error(t, err)
}

func TestPasswordResetFlow(t *testing.T) {
	db := newTestDB(t)
	email := newFakeEmailService()
	svc := newAuthService(db, email)

	_, err := svc.SignUp(SignUpRequest{
		Email:         "reset@test.kz",
		Password:      "Password1!",
		ParentName:    "Имя",
		ParentSurname: "Фамилия",
	})
	require.NoError(t, err)

	err = svc.RequestPasswordReset("missing@test.kz")
	assert.True(t, apperr.IsNotFound(err))

	require.NoError(t, svc.RequestPasswordReset("reset@test.kz"))
	firstToken := email.resetToken("reset@test.kz")
	require.NotEmpty(t, firstToken)
	assert.True(t, svc.ValidateResetToken(firstToken))

	// Новый запрос аннулирует старый токен
	require.NoError(t, svc.RequestPasswordReset("reset@test.kz"))
	secondToken := email.resetToken("reset@test.kz")
	assert.NotEqual(t, firstToken, secondToken)
	assert.False(t, svc.ValidateResetToken(firstToken))

	err = svc.ConfirmPasswordReset(secondToken, "NewPassword1!", "Mismatch")
	assert.True(t, apperr.IsValidation(err))

	require.NoError(t, svc.ConfirmPasswordReset(secondToken, "NewPassword1!", "NewPassword1!"))
	assert.Contains(t, email.changed, "reset@test.kz")

	// Токен одноразовый
	err = svc.ConfirmPasswordReset(secondToken, "Another1!", "Another1!")
	assert.True(t, apperr.IsValidation(err))

	// Вход по новому паролю, старый не работает
	_, err = svc.Login("reset@test.kz", "NewPassword1!", "")
	require.NoError(t, err)
	_, err = svc.Login("reset@test.kz", "Password1!", "")
	assert.True(t, apperr.IsValidation(err))
}

func TestSignUpSurvivesEmailFailure(t *testing.T) {
	db := newTestDB(t)
	email := newFakeEmailService()
	email.failSignup = true
	svc := newAuthService(db, email)

	result, err := svc.SignUp(SignUpRequest{
		Email:         "noemail@test.kz",
		Password:      "Password1!",
		ParentName:    "Имя",
		ParentSurname: "Фамилия",
	})
	require.NoError(t, err)
	assert.NotNil(t, result.User)
}
