package repository

import (
	"go-inventory-core/internal/model"

	"gorm.io/gorm"
)

type ItemRepository interface {
	FindAll(includeInactive bool) ([]model.Item, error)
	FindByID(id int) (*model.Item, error)
	FindByName(name string) (*model.Item, error)
	Create(item *model.Item) error
	Update(item *model.Item) error
	Delete(id int) error
}

type itemRepo struct {
	db *gorm.DB
}

func NewItemRepo(db *gorm.DB) ItemRepository {
	return &itemRepo{db}
}

func (r *itemRepo) FindAll(includeInactive bool) ([]model.Item, error) {
	var items []model.Item
	q := r.db.Preload("Category").Order("item_id")
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	err := q.Find(&items).Error
	return items, err
}

func (r *itemRepo) FindByID(id int) (*model.Item, error) {
	var item model.Item
	err := r.db.Preload("Category").First(&item, "item_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepo) FindByName(name string) (*model.Item, error) {
	var item model.Item
	err := r.db.First(&item, "item_name = ?", name).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepo) Create(item *model.Item) error {
	return r.db.Create(item).Error
}

func (r *itemRepo) Update(item *model.Item) error {
	return r.db.Save(item).Error
}

func (r *itemRepo) Delete(id int) error {
	return r.db.Delete(&model.Item{}, "item_id = ?", id).Error
}
