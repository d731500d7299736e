package services

import (
	"bytes"
	"context"
	"image"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/bigbrownking/taubago/internal/models"
	"github.com/bigbrownking/taubago/internal/repository"
	"github.com/bigbrownking/taubago/pkg/logger"
)

func newProfileService(db *gorm.DB, store *fakeObjectStore) *ProfileService {
	return NewProfileService(
		repository.NewUserRepository(db),
		repository.NewRegistrationRepository(db),
		repository.NewEnrollmentRepository(db),
		store,
		logger.NewNop(),
	)
}

// multipartImage собирает multipart-файл с картинкой для загрузки аватара
func multipartImage(t *testing.T, width, height int) *multipart.FileHeader {
	t.Helper()
	var imgBuf bytes.Buffer
	require.NoError(t, imaging.Encode(&imgBuf, image.NewRGBA(image.Rect(0, 0, width, height)), imaging.PNG))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="picture"; filename="avatar.png"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(imgBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(&body, writer.Boundary())
	form, err := reader.ReadForm(32 << 20)
	require.NoError(t, err)
	files := form.File["picture"]
	require.Len(t, files, 1)
	return files[0]
}

func TestGetMyProfileForParent(t *testing.T) {
	db := newTestDB(t)
	store := newFakeObjectStore()
	svc := newProfileService(db, store)
	admin := createUser(t, db, models.UserTypeAdministrator)
	parent := createUser(t, db, models.UserTypeParent)

	child := &models.Child{
		ID:       uuid.New(),
		Name:     "Алим",
		Surname:  "Тестов",
		Age:      4,
		ParentID: parent.ID,
		Active:   true,
	}
	require.NoError(t, db.Create(child).Error)

	questions := seedQuestions(t, db, 4)
	for i, question := range questions {
		answer := &models.RegistrationAnswer{
			ID:         uuid.New(),
			ParentID:   parent.ID,
			QuestionID: question.ID,
			Answer:     i%2 == 0,
		}
		require.NoError(t, db.Create(answer).Error)
	}

	course := createCourse(t, db, 1, models.MonthJanuary, admin.ID)
	enroll(t, db, parent.ID, course.ID, true)

	profile, err := svc.GetMyProfile(context.Background(), parent)
	require.NoError(t, err)
	assert.Equal(t, models.UserTypeParent, profile.UserType)
	require.Len(t, profile.Children, 1)
	assert.Equal(t, 1, profile.CompletedCourses)
	require.NotNil(t, profile.RegistrationStats)
	assert.Equal(t, 4, profile.RegistrationStats.TotalQuestions)
	assert.Equal(t, 2, profile.RegistrationStats.PositiveAnswers)
	assert.Equal(t, "50.0", profile.RegistrationStats.PositivePercentage)
}

func TestGetMyProfileForSpecialist(t *testing.T) {
	db := newTestDB(t)
	svc := newProfileService(db, newFakeObjectStore())
	specialist := createUser(t, db, models.UserTypeSpecialist)
	specialization := "Логопед"
	specialist.Specialization = &specialization
	require.NoError(t, db.Save(specialist).Error)

	profile, err := svc.GetMyProfile(context.Background(), specialist)
	require.NoError(t, err)
	assert.Equal(t, models.UserTypeSpecialist, profile.UserType)
	require.NotNil(t, profile.Specialization)
	assert.Equal(t, "Логопед", *profile.Specialization)
	assert.Nil(t, profile.RegistrationStats)
	assert.Empty(t, profile.Children)
}

func TestUpdateMyProfile(t *testing.T) {
	db := newTestDB(t)
	svc := newProfileService(db, newFakeObjectStore())
	parent := createUser(t, db, models.UserTypeParent)
	oldHash := parent.PasswordHash

	name := "Новое"
	empty := ""
	updated, err := svc.UpdateMyProfile(parent, UpdateProfileRequest{
		Name:     &name,
		Password: &empty,
	})
	require.NoError(t, err)
	assert.Equal(t, "Новое", updated.Name)
	// Пустой пароль не перехеширует
	assert.Equal(t, oldHash, updated.PasswordHash)

	short := "1234567"
	_, err = svc.UpdateMyProfile(parent, UpdateProfileRequest{Password: &short})
	assert.Error(t, err)

	newPassword := "NewPassword1!"
	updated, err = svc.UpdateMyProfile(parent, UpdateProfileRequest{Password: &newPassword})
	require.NoError(t, err)
	assert.NotEqual(t, oldHash, updated.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte(newPassword)))
}

func TestAddChild(t *testing.T) {
	db := newTestDB(t)
	svc := newProfileService(db, newFakeObjectStore())
	parent := createUser(t, db, models.UserTypeParent)
	admin := createUser(t, db, models.UserTypeAdministrator)

	child, err := svc.AddChild(parent, ChildInput{Name: "Дана", Surname: "Тестова", Age: 2})
	require.NoError(t, err)
	assert.Equal(t, parent.ID, child.ParentID)

	_, err = svc.AddChild(admin, ChildInput{Name: "Дана", Surname: "Тестова", Age: 2})
	assert.Error(t, err)
}

func TestUploadProfilePicture(t *testing.T) {
	db := newTestDB(t)
	store := newFakeObjectStore()
	svc := newProfileService(db, store)
	parent := createUser(t, db, models.UserTypeParent)

	file := multipartImage(t, 1024, 768)
	url, err := svc.UploadProfilePicture(context.Background(), parent, file)
	require.NoError(t, err)
	assert.Contains(t, url, "profiles/user_"+parent.ID.String())

	var saved models.User
	require.NoError(t, db.First(&saved, "id = ?", parent.ID).Error)
	require.NotNil(t, saved.ProfilePictureKey)

	// Загруженный объект действительно лежит в хранилище и ужат
	info, err := store.Stat(context.Background(), *saved.ProfilePictureKey)
	require.NoError(t, err)
	assert.Positive(t, info.Size)
	assert.Equal(t, "image/jpeg", info.ContentType)
}
