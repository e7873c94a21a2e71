package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go-inventory-core/internal/changeset"
	"go-inventory-core/internal/config"
	"go-inventory-core/internal/model"
	"go-inventory-core/internal/repository"
	"go-inventory-core/internal/ws"
	"go-inventory-core/pkg/validator"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StagedTransaction struct {
	Row  model.Transaction `json:"row"`
	Flag changeset.Flag    `json:"flag"`
}

// TransactionPage is one page of the newest-first transaction listing. The
// client extends its in-memory set by re-requesting with a larger offset
// until Total is reached.
type TransactionPage struct {
	Transactions []model.Transaction `json:"transactions"`
	Total        int64               `json:"total"`
	Offset       int                 `json:"offset"`
}

type TransactionService interface {
	GetTransactions(f repository.TransactionFilter) (*TransactionPage, error)
	GetTransaction(id int) (*model.Transaction, error)
	RecordTransaction(tr *model.Transaction, userName string) error
	UpdateTransaction(id int, tr *model.Transaction) (*model.Transaction, error)
	DeleteTransaction(id int) error
	SaveTransactions(ctx context.Context, staged []StagedTransaction) error
	ImportEmrConsumption(ctx context.Context, r io.Reader, userID int, userName string) (*EmrImportResult, error)
}

type transactionService struct {
	trRepo  repository.TransactionRepository
	skuRepo repository.SkuRepository
	cfg     *config.Config
	db      *gorm.DB
	hub     *ws.Hub
	logger  *zap.Logger
}

func NewTransactionService(tRepo repository.TransactionRepository, sRepo repository.SkuRepository, cfg *config.Config, db *gorm.DB, hub *ws.Hub, logger *zap.Logger) TransactionService {
	return &transactionService{
		trRepo:  tRepo,
		skuRepo: sRepo,
		cfg:     cfg,
		db:      db,
		hub:     hub,
		logger:  logger,
	}
}

func (s *transactionService) GetTransactions(f repository.TransactionFilter) (*TransactionPage, error) {
	if f.Limit <= 0 {
		f.Limit = s.cfg.Inventory.MaxTransactionCount
	}
	total, err := s.trRepo.Count(f)
	if err != nil {
		return nil, err
	}
	transactions, err := s.trRepo.FindAll(f)
	if err != nil {
		return nil, err
	}
	return &TransactionPage{
		Transactions: transactions,
		Total:        total,
		Offset:       f.Offset,
	}, nil
}

func (s *transactionService) GetTransaction(id int) (*model.Transaction, error) {
	return s.trRepo.FindByID(id)
}

// RecordTransaction validates the movement, then atomically writes the
// transaction row and the new SKU quantity. The SKU row is locked for the
// duration so before/after stay consistent.
func (s *transactionService) RecordTransaction(tr *model.Transaction, userName string) error {
	if errs := validator.ValidateStruct(tr); len(errs) > 0 {
		return validationError(errs)
	}
	if _, ok := model.TrTypeNames[tr.TrTypeID]; !ok {
		return model.ErrInvalidTrType
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var sku model.SKU
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&sku, "sku_id = ?", tr.SkuID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ErrNonexistentSkuID
			}
			return err
		}
		if !sku.Active {
			return model.ErrInactiveSkuID
		}
		var item model.Item
		if err := tx.First(&item, "item_id = ?", sku.ItemID).Error; err != nil {
			return err
		}
		if !item.Active {
			return model.ErrInactiveItemID
		}

		after, err := model.ApplyTrType(tr.TrTypeID, sku.SkuQty, tr.TrQty)
		if err != nil {
			return err
		}
		tr.BeforeQty = sku.SkuQty
		tr.AfterQty = after

		if err := s.trRepo.CreateTx(tx, tr); err != nil {
			return err
		}
		return s.skuRepo.UpdateQty(tx, sku.SkuID, after)
	})
	if err != nil {
		return translateWriteError(err)
	}

	s.hub.Publish(ws.StockEvent{
		Type:     "transaction_recorded",
		SkuID:    tr.SkuID,
		SkuQty:   tr.AfterQty,
		UserName: userName,
		Message:  fmt.Sprintf("%s recorded %s of %d units", userName, model.TrTypeNames[tr.TrTypeID], tr.TrQty),
	})
	return nil
}

// UpdateTransaction edits a saved transaction. Only the type, quantity and
// description are editable; sku, user and timestamp are fixed at insert.
// The after-quantity is recomputed and the SKU quantity re-synced from the
// newest transaction.
func (s *transactionService) UpdateTransaction(id int, tr *model.Transaction) (*model.Transaction, error) {
	existing, err := s.trRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if _, ok := model.TrTypeNames[tr.TrTypeID]; !ok {
		return nil, model.ErrInvalidTrType
	}

	after, err := model.ApplyTrType(tr.TrTypeID, existing.BeforeQty, tr.TrQty)
	if err != nil {
		return nil, err
	}
	existing.TrTypeID = tr.TrTypeID
	existing.TrQty = tr.TrQty
	existing.AfterQty = after
	existing.Description = tr.Description
	existing.User = nil
	existing.SKU = nil
	existing.Type = nil

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(existing).Error; err != nil {
			return err
		}
		return s.syncSkuQty(tx, existing.SkuID)
	})
	if err != nil {
		return nil, translateWriteError(err)
	}
	return existing, nil
}

func (s *transactionService) DeleteTransaction(id int) error {
	existing, err := s.trRepo.FindByID(id)
	if err != nil {
		return err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Transaction{}, "tr_id = ?", id).Error; err != nil {
			return err
		}
		return s.syncSkuQty(tx, existing.SkuID)
	})
	return translateWriteError(err)
}

// syncSkuQty sets the SKU quantity to the after-quantity of its newest
// transaction, the way the editor re-syncs the SKU row after history edits.
// A SKU with no transactions left keeps its current quantity.
func (s *transactionService) syncSkuQty(tx *gorm.DB, skuID int) error {
	latest, err := s.trRepo.FindLatestForSku(tx, skuID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return s.skuRepo.UpdateQty(tx, skuID, latest.AfterQty)
}

type transactionSaver struct {
	tx *gorm.DB
}

func (ts *transactionSaver) Delete(ctx context.Context, ids []int) error {
	return ts.tx.WithContext(ctx).Delete(&model.Transaction{}, "tr_id IN ?", ids).Error
}

func (ts *transactionSaver) Insert(ctx context.Context, rows []model.Transaction) error {
	for i := range rows {
		rows[i].TrID = 0
		rows[i].User = nil
		rows[i].SKU = nil
		rows[i].Type = nil
		if err := ts.tx.WithContext(ctx).Create(&rows[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (ts *transactionSaver) Update(ctx context.Context, rows []model.Transaction) error {
	// Same edit scope as the single-row endpoint: sku, user and timestamp
	// stay fixed at insert.
	for i := range rows {
		err := ts.tx.WithContext(ctx).
			Model(&model.Transaction{TrID: rows[i].TrID}).
			Select("tr_type_id", "tr_qty", "after_qty", "description").
			Updates(&rows[i]).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// SaveTransactions flushes a staged transaction batch: deletes, inserts,
// updates, in that order, inside one DB transaction. Inserted rows must
// satisfy the sign convention (after = before ± qty per type); afterwards
// every touched SKU is re-synced from its newest transaction.
func (s *transactionService) SaveTransactions(ctx context.Context, staged []StagedTransaction) error {
	skuIDs := make(map[int]struct{})
	for _, st := range staged {
		if st.Flag == changeset.Original {
			continue
		}
		skuIDs[st.Row.SkuID] = struct{}{}
		// sku_id is fixed at insert, so edits and deletes must re-sync the
		// stored row's SKU even when the staged row names another one
		if !st.Flag.Has(changeset.New) && st.Row.TrID != 0 {
			if existing, err := s.trRepo.FindByID(st.Row.TrID); err == nil {
				skuIDs[existing.SkuID] = struct{}{}
			}
		}
		if st.Flag.Has(changeset.Deleted) {
			continue
		}
		after, err := model.ApplyTrType(st.Row.TrTypeID, st.Row.BeforeQty, st.Row.TrQty)
		if err != nil {
			return err
		}
		if after != st.Row.AfterQty {
			return fmt.Errorf("tr for sku %d: after_qty %d does not match %d: %w",
				st.Row.SkuID, st.Row.AfterQty, after, model.ErrInvalidTrQty)
		}
	}

	tracker := changeset.NewTracker(
		func(tr model.Transaction) int { return tr.TrID },
		model.Transaction.Equal,
	)
	for _, st := range staged {
		tracker.Stage(st.Row, st.Flag)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tracker.Save(ctx, &transactionSaver{tx}); err != nil {
			return err
		}
		for skuID := range skuIDs {
			if err := s.syncSkuQty(tx, skuID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return translateWriteError(err)
	}

	s.hub.Publish(ws.StockEvent{Type: "transactions_saved", Message: "transaction table changed"})
	return nil
}
