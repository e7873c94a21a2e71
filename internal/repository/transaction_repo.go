package repository

import (
	"time"

	"go-inventory-core/internal/model"

	"gorm.io/gorm"
)

// TransactionFilter narrows a transaction fetch. Zero values mean "no
// filter"; Limit 0 means no page limit.
type TransactionFilter struct {
	SkuID           int
	Begin           time.Time
	End             time.Time
	Limit           int
	Offset          int
	IncludeInactive bool
}

type TransactionRepository interface {
	// FindAll returns transactions newest-first (tr_id descending).
	FindAll(f TransactionFilter) ([]model.Transaction, error)
	Count(f TransactionFilter) (int64, error)
	FindByID(id int) (*model.Transaction, error)
	FindLatestForSku(tx *gorm.DB, skuID int) (*model.Transaction, error)
	Create(tr *model.Transaction) error
	CreateTx(tx *gorm.DB, tr *model.Transaction) error
	Update(tr *model.Transaction) error
	Delete(id int) error
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) query(f TransactionFilter) *gorm.DB {
	q := r.db.Model(&model.Transaction{})
	if !f.IncludeInactive {
		q = q.Joins("JOIN skus ON skus.sku_id = transactions.sku_id").
			Joins("JOIN items ON items.item_id = skus.item_id").
			Where("skus.active = ? AND items.active = ?", true, true)
	}
	if f.SkuID > 0 {
		q = q.Where("transactions.sku_id = ?", f.SkuID)
	}
	if !f.Begin.IsZero() && !f.End.IsZero() {
		q = q.Where("transactions.tr_timestamp BETWEEN ? AND ?", f.Begin, f.End)
	}
	return q
}

func (r *transactionRepo) FindAll(f TransactionFilter) ([]model.Transaction, error) {
	var transactions []model.Transaction
	q := r.query(f).
		Preload("User").Preload("SKU").Preload("Type").
		Order("transactions.tr_id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	err := q.Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) Count(f TransactionFilter) (int64, error) {
	var count int64
	err := r.query(f).Count(&count).Error
	return count, err
}

func (r *transactionRepo) FindByID(id int) (*model.Transaction, error) {
	var tr model.Transaction
	err := r.db.Preload("User").Preload("SKU").Preload("Type").
		First(&tr, "tr_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &tr, nil
}

// FindLatestForSku returns the newest transaction of a SKU, used to re-sync
// the SKU quantity after edits to transaction history.
func (r *transactionRepo) FindLatestForSku(tx *gorm.DB, skuID int) (*model.Transaction, error) {
	var tr model.Transaction
	err := tx.Where("sku_id = ?", skuID).Order("tr_id DESC").First(&tr).Error
	if err != nil {
		return nil, err
	}
	return &tr, nil
}

func (r *transactionRepo) Create(tr *model.Transaction) error {
	return r.db.Create(tr).Error
}

func (r *transactionRepo) CreateTx(tx *gorm.DB, tr *model.Transaction) error {
	return tx.Create(tr).Error
}

func (r *transactionRepo) Update(tr *model.Transaction) error {
	return r.db.Save(tr).Error
}

func (r *transactionRepo) Delete(id int) error {
	return r.db.Delete(&model.Transaction{}, "tr_id = ?", id).Error
}
