package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/roamline/travelcompanion-back/internal/db"
	"github.com/roamline/travelcompanion-back/internal/repository"
)

var (
	ErrLoginUserNotFound         = errors.New("user not found")
	ErrLoginPasswordDoesNotMatch = errors.New("password does not match")
)

type (
	RegisterParams struct {
		Name        string
		Surname     string
		DateOfBirth time.Time
		Username    string
		Password    string
		Email       string
	}

	AuthService struct {
		userRepo *repository.UserRepository
		logger   *zap.SugaredLogger
	}
)

func NewAuthService(userRepo *repository.UserRepository, logger *zap.SugaredLogger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Register creates a user, rejecting an already taken username with
// repository.ErrDuplicate. The password is stored as a bcrypt hash.
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (*db.User, error) {
	_, err := s.userRepo.GetByUsername(ctx, p.Username)
	if err == nil {
		return nil, repository.ErrDuplicate
	}
	if err != repository.ErrNotFound {
		return nil, err
	}

	hash, err := s.bcryptGen(p.Password)
	if err != nil {
		return nil, errors.Wrap(err, "bcryptGen")
	}

	user := db.User{
		Name:        p.Name,
		Surname:     p.Surname,
		DateOfBirth: p.DateOfBirth,
		Username:    p.Username,
		Password:    hash,
		Email:       p.Email,
	}
	if err := s.userRepo.Create(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login resolves the user by username and checks the password hash. Both
// failure modes render the same notice upstream.
func (s *AuthService) Login(ctx context.Context, username, password string) (*db.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrLoginUserNotFound
		}
		return nil, err
	}

	if err := s.bcryptCheck(user.Password, password); err != nil {
		return nil, ErrLoginPasswordDoesNotMatch
	}

	return user, nil
}

func (s *AuthService) bcryptGen(pass string) (string, error) {
	passwordHashB, err := bcrypt.GenerateFromPassword([]byte(pass), 14)
	if err != nil {
		return "", errors.Wrap(err, "generate password hash")
	}
	return string(passwordHashB), nil
}

func (s *AuthService) bcryptCheck(hash, pass string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass))
}
