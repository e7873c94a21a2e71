package service

import (
	"context"
	"errors"
	"fmt"

	"go-inventory-core/internal/changeset"
	"go-inventory-core/internal/model"
	"go-inventory-core/internal/repository"
	"go-inventory-core/pkg/validator"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StagedCategory and StagedItem are rows staged client-side with their edit
// flag, as sent by the batch-save endpoints.
type StagedCategory struct {
	Row  model.Category `json:"row"`
	Flag changeset.Flag `json:"flag"`
}

type StagedItem struct {
	Row  model.Item     `json:"row"`
	Flag changeset.Flag `json:"flag"`
}

type InventoryService interface {
	GetCategories() ([]model.Category, error)
	GetCategory(id int) (*model.Category, error)
	CreateCategory(category *model.Category) error
	UpdateCategory(id int, category *model.Category) (*model.Category, error)
	DeleteCategory(id int) error
	SaveCategories(ctx context.Context, staged []StagedCategory) error

	GetItems(includeInactive bool) ([]model.Item, error)
	GetItem(id int) (*model.Item, error)
	CreateItem(item *model.Item) error
	UpdateItem(id int, item *model.Item) (*model.Item, error)
	DeleteItem(id int) error
	SaveItems(ctx context.Context, staged []StagedItem) error
}

type inventoryService struct {
	categoryRepo repository.CategoryRepository
	itemRepo     repository.ItemRepository
	db           *gorm.DB
	logger       *zap.Logger
}

func NewInventoryService(cRepo repository.CategoryRepository, iRepo repository.ItemRepository, db *gorm.DB, logger *zap.Logger) InventoryService {
	return &inventoryService{
		categoryRepo: cRepo,
		itemRepo:     iRepo,
		db:           db,
		logger:       logger,
	}
}

// translateWriteError maps driver-level constraint violations onto domain
// errors the handlers know how to present.
func translateWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return model.ErrDuplicateName
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return model.ErrRowInUse
	default:
		return err
	}
}

// ErrValidation marks struct-validation failures so handlers can map them
// to a client error.
var ErrValidation = errors.New("validation failed")

func validationError(errs []*validator.ErrorResponse) error {
	first := errs[0]
	return fmt.Errorf("%w: field '%s' failed on tag '%s'", ErrValidation, first.FailedField, first.Tag)
}

// ---- categories ----

func (s *inventoryService) GetCategories() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}

func (s *inventoryService) GetCategory(id int) (*model.Category, error) {
	return s.categoryRepo.FindByID(id)
}

func (s *inventoryService) CreateCategory(category *model.Category) error {
	if errs := validator.ValidateStruct(category); len(errs) > 0 {
		return validationError(errs)
	}
	if existing, _ := s.categoryRepo.FindByName(category.CategoryName); existing != nil {
		return model.ErrDuplicateName
	}
	return translateWriteError(s.categoryRepo.Create(category))
}

func (s *inventoryService) UpdateCategory(id int, category *model.Category) (*model.Category, error) {
	existing, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	existing.CategoryName = category.CategoryName
	if errs := validator.ValidateStruct(existing); len(errs) > 0 {
		return nil, validationError(errs)
	}
	if err := translateWriteError(s.categoryRepo.Update(existing)); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *inventoryService) DeleteCategory(id int) error {
	return translateWriteError(s.categoryRepo.Delete(id))
}

// categorySaver flushes a category change-set inside one DB transaction.
type categorySaver struct {
	tx *gorm.DB
}

func (cs *categorySaver) Delete(ctx context.Context, ids []int) error {
	return cs.tx.WithContext(ctx).Delete(&model.Category{}, "category_id IN ?", ids).Error
}

func (cs *categorySaver) Insert(ctx context.Context, rows []model.Category) error {
	for i := range rows {
		rows[i].CategoryID = 0 // let the sequence assign ids
		if err := cs.tx.WithContext(ctx).Create(&rows[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (cs *categorySaver) Update(ctx context.Context, rows []model.Category) error {
	for i := range rows {
		if err := cs.tx.WithContext(ctx).Save(&rows[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *inventoryService) SaveCategories(ctx context.Context, staged []StagedCategory) error {
	tracker := changeset.NewTracker(
		func(c model.Category) int { return c.CategoryID },
		model.Category.Equal,
	)
	for _, st := range staged {
		tracker.Stage(st.Row, st.Flag)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tracker.Save(ctx, &categorySaver{tx})
	})
	return translateWriteError(err)
}

// ---- items ----

func (s *inventoryService) GetItems(includeInactive bool) ([]model.Item, error) {
	return s.itemRepo.FindAll(includeInactive)
}

func (s *inventoryService) GetItem(id int) (*model.Item, error) {
	return s.itemRepo.FindByID(id)
}

func (s *inventoryService) CreateItem(item *model.Item) error {
	if errs := validator.ValidateStruct(item); len(errs) > 0 {
		return validationError(errs)
	}
	if _, err := s.categoryRepo.FindByID(item.CategoryID); err != nil {
		return fmt.Errorf("category %d: %w", item.CategoryID, err)
	}
	if existing, _ := s.itemRepo.FindByName(item.ItemName); existing != nil {
		return model.ErrDuplicateName
	}
	item.Active = true
	return translateWriteError(s.itemRepo.Create(item))
}

func (s *inventoryService) UpdateItem(id int, item *model.Item) (*model.Item, error) {
	existing, err := s.itemRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	existing.ItemName = item.ItemName
	existing.CategoryID = item.CategoryID
	existing.Description = item.Description
	existing.Active = item.Active
	existing.Category = nil
	if errs := validator.ValidateStruct(existing); len(errs) > 0 {
		return nil, validationError(errs)
	}
	if err := translateWriteError(s.itemRepo.Update(existing)); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *inventoryService) DeleteItem(id int) error {
	return translateWriteError(s.itemRepo.Delete(id))
}

type itemSaver struct {
	tx *gorm.DB
}

func (is *itemSaver) Delete(ctx context.Context, ids []int) error {
	return is.tx.WithContext(ctx).Delete(&model.Item{}, "item_id IN ?", ids).Error
}

func (is *itemSaver) Insert(ctx context.Context, rows []model.Item) error {
	for i := range rows {
		rows[i].ItemID = 0
		rows[i].Category = nil
		rows[i].SKUs = nil
		if err := is.tx.WithContext(ctx).Create(&rows[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (is *itemSaver) Update(ctx context.Context, rows []model.Item) error {
	for i := range rows {
		rows[i].Category = nil
		rows[i].SKUs = nil
		if err := is.tx.WithContext(ctx).Save(&rows[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *inventoryService) SaveItems(ctx context.Context, staged []StagedItem) error {
	tracker := changeset.NewTracker(
		func(i model.Item) int { return i.ItemID },
		model.Item.Equal,
	)
	for _, st := range staged {
		tracker.Stage(st.Row, st.Flag)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tracker.Save(ctx, &itemSaver{tx})
	})
	return translateWriteError(err)
}
