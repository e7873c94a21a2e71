package repository

import (
	"go-inventory-core/internal/model"

	"gorm.io/gorm"
)

type SkuRepository interface {
	// FindAll returns SKUs, optionally filtered by item. itemID 0 means all
	// items. Unless includeInactive is set, only active SKUs of active items
	// are returned.
	FindAll(itemID int, includeInactive bool) ([]model.SKU, error)
	FindByID(id int) (*model.SKU, error)
	FindChildren(rootSku int) ([]model.SKU, error)
	FindBelowMin() ([]model.SKU, error)
	Create(sku *model.SKU) error
	Update(sku *model.SKU) error
	// UpdateQty runs on the given tx so stock math stays inside the caller's
	// database transaction.
	UpdateQty(tx *gorm.DB, id, qty int) error
	Delete(id int) error
}

type skuRepo struct {
	db *gorm.DB
}

func NewSkuRepo(db *gorm.DB) SkuRepository {
	return &skuRepo{db}
}

func (r *skuRepo) FindAll(itemID int, includeInactive bool) ([]model.SKU, error) {
	var skus []model.SKU
	q := r.db.Preload("Item").Order("skus.sku_id")
	if !includeInactive {
		q = q.Joins("JOIN items ON items.item_id = skus.item_id").
			Where("skus.active = ? AND items.active = ?", true, true)
	}
	if itemID > 0 {
		q = q.Where("skus.item_id = ?", itemID)
	}
	err := q.Find(&skus).Error
	return skus, err
}

func (r *skuRepo) FindByID(id int) (*model.SKU, error) {
	var sku model.SKU
	err := r.db.Preload("Item").First(&sku, "sku_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sku, nil
}

func (r *skuRepo) FindChildren(rootSku int) ([]model.SKU, error) {
	var skus []model.SKU
	err := r.db.Where("root_sku = ?", rootSku).Order("sku_id").Find(&skus).Error
	return skus, err
}

func (r *skuRepo) FindBelowMin() ([]model.SKU, error) {
	var skus []model.SKU
	err := r.db.Preload("Item").
		Joins("JOIN items ON items.item_id = skus.item_id").
		Where("skus.active = ? AND items.active = ? AND skus.sku_qty < skus.min_qty", true, true).
		Order("skus.sku_id").
		Find(&skus).Error
	return skus, err
}

func (r *skuRepo) Create(sku *model.SKU) error {
	return r.db.Create(sku).Error
}

func (r *skuRepo) Update(sku *model.SKU) error {
	return r.db.Save(sku).Error
}

func (r *skuRepo) UpdateQty(tx *gorm.DB, id, qty int) error {
	return tx.Model(&model.SKU{}).
		Where("sku_id = ?", id).
		Update("sku_qty", qty).Error
}

func (r *skuRepo) Delete(id int) error {
	return r.db.Delete(&model.SKU{}, "sku_id = ?", id).Error
}
