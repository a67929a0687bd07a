package service_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/lylastore/storefront/internal/domain/models"
	"github.com/lylastore/storefront/internal/service"
	"github.com/lylastore/storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	users map[string]*models.User // ключ — email
}

var _ storage.UserStorage = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if _, ok := f.users[user.Email]; ok {
		return nil, storage.ErrEmailTaken
	}
	user.ID = int64(len(f.users) + 1)
	f.users[user.Email] = user
	return user, nil
}

func TestAuthService_Register_NewUser(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	fakeRepo := newFakeUserRepo()
	authSvc := service.NewAuthService(testLogger(), fakeRepo, 60*time.Minute)
	ctx := context.Background()

	token, err := authSvc.Register(ctx, "newuser@example.com", "password123", "Alice", "Smith", "+15550100")
	assert.NoError(t, err, "Register should succeed for a new user")
	assert.NotEmpty(t, token, "Token should not be empty")

	user, err := fakeRepo.GetUserByEmail(ctx, "newuser@example.com")
	assert.NoError(t, err, "User should exist after registration")
	assert.Equal(t, "customer", user.Role)
	// Проверяем, что пароль хэширован (не равен исходному паролю)
	assert.NotEqual(t, "password123", string(user.PassHash), "Password should be hashed")
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	fakeRepo := newFakeUserRepo()
	authSvc := service.NewAuthService(testLogger(), fakeRepo, 60*time.Minute)
	ctx := context.Background()

	_, err := authSvc.Register(ctx, "taken@example.com", "password123", "Alice", "Smith", "")
	assert.NoError(t, err)

	token, err := authSvc.Register(ctx, "taken@example.com", "otherpassword", "Bob", "Jones", "")
	assert.ErrorIs(t, err, storage.ErrEmailTaken)
	assert.Empty(t, token)
}

func TestAuthService_Login_CorrectPassword(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	fakeRepo := newFakeUserRepo()
	authSvc := service.NewAuthService(testLogger(), fakeRepo, 60*time.Minute)
	ctx := context.Background()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	_, err = fakeRepo.CreateUser(ctx, &models.User{
		Email:    "existing@example.com",
		PassHash: hashed,
		Role:     "customer",
	})
	assert.NoError(t, err)

	token, err := authSvc.Login(ctx, "existing@example.com", "password123")
	assert.NoError(t, err, "Login should succeed with correct password")
	assert.NotEmpty(t, token, "Token should be returned")
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	fakeRepo := newFakeUserRepo()
	authSvc := service.NewAuthService(testLogger(), fakeRepo, 60*time.Minute)
	ctx := context.Background()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	_, err = fakeRepo.CreateUser(ctx, &models.User{
		Email:    "existing@example.com",
		PassHash: hashed,
	})
	assert.NoError(t, err)

	token, err := authSvc.Login(ctx, "existing@example.com", "wrongpassword")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	assert.Empty(t, token, "Token should be empty on failed login")
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	authSvc := service.NewAuthService(testLogger(), newFakeUserRepo(), 60*time.Minute)

	// Несуществующий email неотличим от неверного пароля
	token, err := authSvc.Login(context.Background(), "ghost@example.com", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	assert.Empty(t, token)
}
