package service

import (
	"context"
	"errors"
	"fmt"

	"go-inventory-core/internal/changeset"
	"go-inventory-core/internal/config"
	"go-inventory-core/internal/model"
	"go-inventory-core/internal/repository"
	"go-inventory-core/internal/ws"
	"go-inventory-core/pkg/validator"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type StagedSku struct {
	Row  model.SKU      `json:"row"`
	Flag changeset.Flag `json:"flag"`
}

// QtyCheck is the result of the root-SKU aggregation check.
type QtyCheck struct {
	SkuID       int  `json:"sku_id"`
	SkuQty      int  `json:"sku_qty"`
	ChildrenSum int  `json:"children_sum"`
	Correct     bool `json:"correct"`
}

type SkuService interface {
	GetSkus(itemID int, includeInactive bool) ([]model.SKU, error)
	GetSku(id int) (*model.SKU, error)
	CreateSku(sku *model.SKU) error
	UpdateSku(id int, sku *model.SKU) (*model.SKU, error)
	DeleteSku(id int) error
	CheckQty(id int) (*QtyCheck, error)
	LowStock() ([]model.SKU, error)
	SaveSkus(ctx context.Context, staged []StagedSku) error
}

type skuService struct {
	skuRepo  repository.SkuRepository
	itemRepo repository.ItemRepository
	cfg      *config.Config
	db       *gorm.DB
	hub      *ws.Hub
	logger   *zap.Logger
}

func NewSkuService(sRepo repository.SkuRepository, iRepo repository.ItemRepository, cfg *config.Config, db *gorm.DB, hub *ws.Hub, logger *zap.Logger) SkuService {
	return &skuService{
		skuRepo:  sRepo,
		itemRepo: iRepo,
		cfg:      cfg,
		db:       db,
		hub:      hub,
		logger:   logger,
	}
}

func (s *skuService) GetSkus(itemID int, includeInactive bool) ([]model.SKU, error) {
	return s.skuRepo.FindAll(itemID, includeInactive)
}

func (s *skuService) GetSku(id int) (*model.SKU, error) {
	return s.skuRepo.FindByID(id)
}

// checkItem verifies the referenced item exists and is active.
func (s *skuService) checkItem(itemID int) error {
	item, err := s.itemRepo.FindByID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ErrNonexistentItemID
		}
		return err
	}
	if !item.Active {
		return model.ErrInactiveItemID
	}
	return nil
}

// checkRootSku verifies the root_sku reference stays within the same item.
func (s *skuService) checkRootSku(rootSku, itemID int) error {
	if rootSku == 0 {
		return nil
	}
	root, err := s.skuRepo.FindByID(rootSku)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ErrInvalidRootSku
		}
		return err
	}
	if root.ItemID != itemID {
		return model.ErrInvalidRootSku
	}
	return nil
}

func (s *skuService) CreateSku(sku *model.SKU) error {
	if errs := validator.ValidateStruct(sku); len(errs) > 0 {
		return validationError(errs)
	}
	if err := s.checkItem(sku.ItemID); err != nil {
		return err
	}
	if err := s.checkRootSku(sku.RootSku, sku.ItemID); err != nil {
		return err
	}

	// defaults for fields the editor leaves blank
	sku.Active = true
	if sku.MinQty == 0 {
		sku.MinQty = s.cfg.Inventory.DefaultMinQty
	}
	if sku.ExpirationDate.IsZero() {
		sku.ExpirationDate = model.NoExpirationDate
	}
	return translateWriteError(s.skuRepo.Create(sku))
}

func (s *skuService) UpdateSku(id int, sku *model.SKU) (*model.SKU, error) {
	existing, err := s.skuRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.checkRootSku(sku.RootSku, existing.ItemID); err != nil {
		return nil, err
	}

	// item_id is immutable after creation; everything else follows the edit
	existing.Active = sku.Active
	existing.RootSku = sku.RootSku
	existing.SubName = sku.SubName
	existing.BitCode = sku.BitCode
	existing.SkuQty = sku.SkuQty
	existing.MinQty = sku.MinQty
	existing.Description = sku.Description
	if !sku.ExpirationDate.IsZero() {
		existing.ExpirationDate = sku.ExpirationDate
	}
	existing.Item = nil
	if err := translateWriteError(s.skuRepo.Update(existing)); err != nil {
		return nil, err
	}

	s.hub.Publish(ws.StockEvent{
		Type:   "sku_updated",
		SkuID:  existing.SkuID,
		ItemID: existing.ItemID,
		SkuQty: existing.SkuQty,
	})
	return existing, nil
}

func (s *skuService) DeleteSku(id int) error {
	return translateWriteError(s.skuRepo.Delete(id))
}

// CheckQty verifies the aggregation invariant of a root SKU: its qty must
// equal the sum of the children referencing it.
func (s *skuService) CheckQty(id int) (*QtyCheck, error) {
	sku, err := s.skuRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNonexistentSkuID
		}
		return nil, err
	}
	children, err := s.skuRepo.FindChildren(id)
	if err != nil {
		return nil, err
	}
	check := &QtyCheck{SkuID: id, SkuQty: sku.SkuQty, Correct: true}
	if len(children) == 0 {
		return check, nil
	}
	for _, child := range children {
		check.ChildrenSum += child.SkuQty
	}
	check.Correct = check.SkuQty == check.ChildrenSum
	return check, nil
}

func (s *skuService) LowStock() ([]model.SKU, error) {
	return s.skuRepo.FindBelowMin()
}

type skuSaver struct {
	tx       *gorm.DB
	assigned map[int]int // staged temporary ids to database-assigned ids
}

func (ss *skuSaver) Delete(ctx context.Context, ids []int) error {
	return ss.tx.WithContext(ctx).Delete(&model.SKU{}, "sku_id IN ?", ids).Error
}

func (ss *skuSaver) Insert(ctx context.Context, rows []model.SKU) error {
	// Roots go first so a child staged against a temporary root id gets
	// remapped to the id the database just assigned.
	order := make([]int, 0, len(rows))
	for i := range rows {
		if rows[i].RootSku == 0 {
			order = append(order, i)
		}
	}
	for i := range rows {
		if rows[i].RootSku != 0 {
			order = append(order, i)
		}
	}

	for _, i := range order {
		stagedID := rows[i].SkuID
		rows[i].SkuID = 0
		rows[i].Item = nil
		rows[i].Transactions = nil
		if assigned, ok := ss.assigned[rows[i].RootSku]; ok && rows[i].RootSku != 0 {
			rows[i].RootSku = assigned
		}
		if rows[i].ExpirationDate.IsZero() {
			rows[i].ExpirationDate = model.NoExpirationDate
		}
		if err := ss.tx.WithContext(ctx).Create(&rows[i]).Error; err != nil {
			return err
		}
		if stagedID != 0 {
			ss.assigned[stagedID] = rows[i].SkuID
		}
	}
	return nil
}

func (ss *skuSaver) Update(ctx context.Context, rows []model.SKU) error {
	for i := range rows {
		rows[i].Item = nil
		rows[i].Transactions = nil
		if assigned, ok := ss.assigned[rows[i].RootSku]; ok && rows[i].RootSku != 0 {
			rows[i].RootSku = assigned
		}
		if err := ss.tx.WithContext(ctx).Save(&rows[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *skuService) SaveSkus(ctx context.Context, staged []StagedSku) error {
	// Validate references before opening the transaction. Root-SKU checks
	// run against the staged set as well, so a new sub-SKU may point at a
	// root created in the same batch by its temporary id; the saver remaps
	// those to the assigned ids at insert.
	stagedByID := make(map[int]model.SKU, len(staged))
	for _, st := range staged {
		stagedByID[st.Row.SkuID] = st.Row
	}
	for _, st := range staged {
		if st.Flag.Has(changeset.Deleted) {
			continue
		}
		if st.Flag.Has(changeset.New) {
			if err := s.checkItem(st.Row.ItemID); err != nil {
				return fmt.Errorf("sku %q: %w", st.Row.SubName, err)
			}
		}
		if root, ok := stagedByID[st.Row.RootSku]; ok && st.Row.RootSku != 0 {
			if root.ItemID != st.Row.ItemID || root.RootSku != 0 {
				return model.ErrInvalidRootSku
			}
			continue
		}
		if err := s.checkRootSku(st.Row.RootSku, st.Row.ItemID); err != nil {
			return err
		}
	}

	tracker := changeset.NewTracker(
		func(sk model.SKU) int { return sk.SkuID },
		model.SKU.Equal,
	)
	for _, st := range staged {
		tracker.Stage(st.Row, st.Flag)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tracker.Save(ctx, &skuSaver{tx: tx, assigned: make(map[int]int)})
	})
	if err != nil {
		return translateWriteError(err)
	}

	s.hub.Publish(ws.StockEvent{Type: "skus_saved", Message: "sku table changed"})
	return nil
}
