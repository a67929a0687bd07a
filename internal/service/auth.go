package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lylastore/storefront/internal/auth"
	"github.com/lylastore/storefront/internal/domain/models"
	"github.com/lylastore/storefront/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	log      *slog.Logger
	userRepo storage.UserStorage
	tokenTTL time.Duration
}

func NewAuthService(log *slog.Logger, userRepo storage.UserStorage, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		log:      log,
		userRepo: userRepo,
		tokenTTL: tokenTTL,
	}
}

type AuthServiceInterface interface {
	Register(ctx context.Context, email, password, firstName, lastName, phone string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
}

// Register создаёт пользователя (пароль хэшируется через bcrypt, соль добавляется
// автоматически) и сразу выдаёт JWT-токен.
func (a *AuthService) Register(ctx context.Context, email, password, firstName, lastName, phone string) (string, error) {
	const op = "auth.Register"
	logger := a.log.With(slog.String("op", op), slog.String("email", email))

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	user, err := a.userRepo.CreateUser(ctx, &models.User{
		Email:     email,
		PassHash:  passHash,
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
		Role:      "customer",
	})
	if err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			logger.Warn("email already registered")
			return "", storage.ErrEmailTaken
		}
		logger.Error("failed to create user", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to create user: %w", op, err)
	}

	token, err := auth.NewToken(user, a.tokenTTL)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user registered", slog.Int64("userID", user.ID))
	return token, nil
}

// Login аутентифицирует пользователя: введённый пароль сравнивается с
// сохранённым bcrypt-хэшем, в ответе — JWT-токен. Несуществующий email и
// неверный пароль неразличимы для клиента.
func (a *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	const op = "auth.Login"
	logger := a.log.With(slog.String("op", op), slog.String("email", email))
	logger.Info("checking user")

	user, err := a.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("user not found")
			return "", ErrInvalidCredentials
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		logger.Warn("invalid password")
		return "", ErrInvalidCredentials
	}

	token, err := auth.NewToken(user, a.tokenTTL)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user logged in successfully", slog.Int64("userID", user.ID))
	return token, nil
}
