package service

import (
	"go-inventory-core/internal/config"
	"go-inventory-core/internal/model"
	"go-inventory-core/internal/repository"
	"go-inventory-core/pkg/validator"

	"go.uber.org/zap"
)

// Privilege levels derived from the configured admin group.
const (
	PrivilegeAdmin = "admin"
	PrivilegeUser  = "user"
)

type CreateUserRequest struct {
	UserName string `json:"user_name" validate:"required"`
	Password string `json:"password" validate:"required,min=1"`
}

type UserService interface {
	GetUsers() ([]model.UserResponse, error)
	GetUser(id int) (*model.UserResponse, error)
	GetUserByName(name string) (*model.User, error)
	CreateUser(req *CreateUserRequest) (*model.UserResponse, error)
	UpdateUser(id int, userName string) (*model.UserResponse, error)
	DeleteUser(id int) error
	ChangePassword(id int, newPassword string) error
	PrivilegeOf(userName string) string
}

type userService struct {
	userRepo repository.UserRepository
	cfg      *config.Config
	logger   *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, cfg *config.Config, logger *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *userService) GetUsers() ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}
	responses := make([]model.UserResponse, len(users))
	for i, u := range users {
		responses[i] = u.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUser(id int) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) GetUserByName(name string) (*model.User, error) {
	return s.userRepo.FindByName(name)
}

func (s *userService) CreateUser(req *CreateUserRequest) (*model.UserResponse, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	if existing, _ := s.userRepo.FindByName(req.UserName); existing != nil {
		return nil, model.ErrDuplicateName
	}

	user := &model.User{UserName: req.UserName}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}
	if err := translateWriteError(s.userRepo.Create(user)); err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) UpdateUser(id int, userName string) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	user.UserName = userName
	if errs := validator.ValidateStruct(user); len(errs) > 0 {
		return nil, validationError(errs)
	}
	if err := translateWriteError(s.userRepo.Update(user)); err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) DeleteUser(id int) error {
	return translateWriteError(s.userRepo.Delete(id))
}

func (s *userService) ChangePassword(id int, newPassword string) error {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return err
	}
	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(user.UserID, user.UserPassword)
}

// PrivilegeOf maps a user name onto a privilege level through the
// configured admin group.
func (s *userService) PrivilegeOf(userName string) string {
	if s.cfg.IsAdmin(userName) {
		return PrivilegeAdmin
	}
	return PrivilegeUser
}
