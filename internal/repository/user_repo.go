package repository

import (
	"go-inventory-core/internal/model"

	"gorm.io/gorm"
)

type UserRepository interface {
	FindAll() ([]model.User, error)
	FindByID(id int) (*model.User, error)
	FindByName(name string) (*model.User, error)
	Create(user *model.User) error
	Update(user *model.User) error
	UpdatePassword(id int, hashedPassword []byte) error
	Delete(id int) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) FindAll() ([]model.User, error) {
	var users []model.User
	err := r.db.Order("user_id").Find(&users).Error
	return users, err
}

func (r *userRepo) FindByID(id int) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, "user_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByName(name string) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, "user_name = ?", name).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *userRepo) Update(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *userRepo) UpdatePassword(id int, hashedPassword []byte) error {
	return r.db.Model(&model.User{}).
		Where("user_id = ?", id).
		Update("user_password", hashedPassword).Error
}

func (r *userRepo) Delete(id int) error {
	return r.db.Delete(&model.User{}, "user_id = ?", id).Error
}
