package service

import (
	"errors"

	"go-inventory-core/internal/model"
	"go-inventory-core/internal/repository"
	"go-inventory-core/pkg/jwt"

	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid user name or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

type LoginResponse struct {
	Token     string             `json:"token"`
	User      model.UserResponse `json:"user"`
	Privilege string             `json:"privilege"`
}

type AuthService interface {
	Login(userName, password string) (*LoginResponse, error)
	ResetPassword(userName, oldPassword, newPassword string) error
}

type authService struct {
	userRepo    repository.UserRepository
	userService UserService
	logger      *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, userService UserService, logger *zap.Logger) AuthService {
	return &authService{
		userRepo:    userRepo,
		userService: userService,
		logger:      logger,
	}
}

func (s *authService) Login(userName, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByName(userName)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	privilege := s.userService.PrivilegeOf(user.UserName)
	token, err := jwt.GenerateToken(user.UserID, user.UserName, privilege)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	s.logger.Info("user logged in",
		zap.String("user_name", user.UserName),
		zap.String("privilege", privilege))

	return &LoginResponse{
		Token:     token,
		User:      user.ToResponse(),
		Privilege: privilege,
	}, nil
}

func (s *authService) ResetPassword(userName, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByName(userName)
	if err != nil {
		return ErrUserNotFound
	}
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(user.UserID, user.UserPassword)
}
