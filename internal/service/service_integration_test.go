package service_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"go-inventory-core/internal/changeset"
	"go-inventory-core/internal/config"
	"go-inventory-core/internal/model"
	"go-inventory-core/internal/repository"
	"go-inventory-core/internal/service"
	"go-inventory-core/internal/ws"
	"go-inventory-core/pkg/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db   *gorm.DB
	cfg  *config.Config
	inv  service.InventoryService
	skus service.SkuService
	trs  service.TransactionService
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()
	if os.Getenv("TEST_DB_HOST") == "" {
		t.Skip("TEST_DB_HOST not set, skipping database integration tests")
	}

	dbCfg := config.DBConfig{
		Host:     os.Getenv("TEST_DB_HOST"),
		Port:     os.Getenv("TEST_DB_PORT"),
		User:     os.Getenv("TEST_DB_USER"),
		Password: os.Getenv("TEST_DB_PASSWORD"),
		Name:     os.Getenv("TEST_DB_NAME"),
	}
	if dbCfg.Port == "" {
		dbCfg.Port = "5432"
	}

	db, err := database.ConnectDB(dbCfg)
	if err != nil {
		t.Fatalf("connect to test database: %v", err)
	}

	if err := db.Migrator().DropTable(
		&model.Transaction{},
		&model.TransactionType{},
		&model.SKU{},
		&model.Item{},
		&model.Category{},
		&model.User{},
	); err != nil {
		t.Fatalf("drop tables: %v", err)
	}
	if err := database.Migrate(db,
		&model.Category{},
		&model.Item{},
		&model.SKU{},
		&model.User{},
		&model.TransactionType{},
		&model.Transaction{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for id := 1; id <= len(model.TrTypeNames); id++ {
		trType := model.TransactionType{TrTypeID: id, TrType: model.TrTypeNames[id]}
		if err := db.Create(&trType).Error; err != nil {
			t.Fatalf("seed transaction types: %v", err)
		}
	}

	cfg := &config.Config{
		DB: dbCfg,
		Auth: config.AuthConfig{
			AdminGroup: []string{"admin"},
		},
		Inventory: config.InventoryConfig{
			MaxTransactionCount: 10,
			DefaultMinQty:       2,
		},
	}

	hub := ws.NewHub(zap.NewNop())
	go hub.Run()

	catRepo := repository.NewCategoryRepo(db)
	itemRepo := repository.NewItemRepo(db)
	skuRepo := repository.NewSkuRepo(db)
	trRepo := repository.NewTransactionRepo(db)

	log := zap.NewNop()
	return &testEnv{
		db:   db,
		cfg:  cfg,
		inv:  service.NewInventoryService(catRepo, itemRepo, db, log),
		skus: service.NewSkuService(skuRepo, itemRepo, cfg, db, hub, log),
		trs:  service.NewTransactionService(trRepo, skuRepo, cfg, db, hub, log),
	}
}

// seedStock creates one category, one active item and one active SKU and
// returns the SKU and a user id to record transactions under.
func seedStock(t *testing.T, env *testEnv) (*model.SKU, int) {
	t.Helper()
	cat := model.Category{CategoryName: "외용제"}
	if err := env.inv.CreateCategory(&cat); err != nil {
		t.Fatalf("create category: %v", err)
	}
	item := model.Item{ItemName: "노시셉톨", CategoryID: cat.CategoryID}
	if err := env.inv.CreateItem(&item); err != nil {
		t.Fatalf("create item: %v", err)
	}
	sku := model.SKU{ItemID: item.ItemID, BitCode: "noci40", SubName: "40ml"}
	if err := env.skus.CreateSku(&sku); err != nil {
		t.Fatalf("create sku: %v", err)
	}

	user := model.User{UserName: "admin"}
	if err := user.SetPassword("a"); err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := env.db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &sku, user.UserID
}

func TestRecordTransaction(t *testing.T) {
	env := setupServices(t)
	sku, userID := seedStock(t, env)

	t.Run("BuyIncreasesQty", func(t *testing.T) {
		tr := model.Transaction{UserID: userID, SkuID: sku.SkuID, TrTypeID: model.TrTypeIDs[model.TrTypeBuy], TrQty: 5}
		if err := env.trs.RecordTransaction(&tr, "admin"); err != nil {
			t.Fatalf("RecordTransaction: %v", err)
		}
		if tr.BeforeQty != 0 || tr.AfterQty != 5 {
			t.Errorf("expected before 0 after 5, got before %d after %d", tr.BeforeQty, tr.AfterQty)
		}
		got, err := env.skus.GetSku(sku.SkuID)
		if err != nil {
			t.Fatalf("GetSku: %v", err)
		}
		if got.SkuQty != 5 {
			t.Errorf("expected sku qty 5, got %d", got.SkuQty)
		}
	})

	t.Run("SellBelowZeroRejected", func(t *testing.T) {
		tr := model.Transaction{UserID: userID, SkuID: sku.SkuID, TrTypeID: model.TrTypeIDs[model.TrTypeSell], TrQty: 99}
		err := env.trs.RecordTransaction(&tr, "admin")
		if !errors.Is(err, model.ErrInsufficientQty) {
			t.Errorf("expected ErrInsufficientQty, got %v", err)
		}
		got, _ := env.skus.GetSku(sku.SkuID)
		if got.SkuQty != 5 {
			t.Errorf("expected qty unchanged at 5, got %d", got.SkuQty)
		}
	})

	t.Run("UnknownSkuRejected", func(t *testing.T) {
		tr := model.Transaction{UserID: userID, SkuID: 9999, TrTypeID: model.TrTypeIDs[model.TrTypeBuy], TrQty: 1}
		err := env.trs.RecordTransaction(&tr, "admin")
		if !errors.Is(err, model.ErrNonexistentSkuID) {
			t.Errorf("expected ErrNonexistentSkuID, got %v", err)
		}
	})

	t.Run("InactiveSkuRejected", func(t *testing.T) {
		inactive := *sku
		inactive.Active = false
		if _, err := env.skus.UpdateSku(sku.SkuID, &inactive); err != nil {
			t.Fatalf("deactivate sku: %v", err)
		}
		tr := model.Transaction{UserID: userID, SkuID: sku.SkuID, TrTypeID: model.TrTypeIDs[model.TrTypeBuy], TrQty: 1}
		err := env.trs.RecordTransaction(&tr, "admin")
		if !errors.Is(err, model.ErrInactiveSkuID) {
			t.Errorf("expected ErrInactiveSkuID, got %v", err)
		}
	})
}

func TestDeleteTransactionResyncsSku(t *testing.T) {
	env := setupServices(t)
	sku, userID := seedStock(t, env)

	first := model.Transaction{UserID: userID, SkuID: sku.SkuID, TrTypeID: model.TrTypeIDs[model.TrTypeBuy], TrQty: 5}
	if err := env.trs.RecordTransaction(&first, "admin"); err != nil {
		t.Fatalf("record first: %v", err)
	}
	second := model.Transaction{UserID: userID, SkuID: sku.SkuID, TrTypeID: model.TrTypeIDs[model.TrTypeBuy], TrQty: 3}
	if err := env.trs.RecordTransaction(&second, "admin"); err != nil {
		t.Fatalf("record second: %v", err)
	}

	if err := env.trs.DeleteTransaction(second.TrID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	got, err := env.skus.GetSku(sku.SkuID)
	if err != nil {
		t.Fatalf("GetSku: %v", err)
	}
	// Qty falls back to the newest remaining transaction's after-quantity.
	if got.SkuQty != 5 {
		t.Errorf("expected qty re-synced to 5, got %d", got.SkuQty)
	}
}

func TestSaveSkusRemapsStagedRootIDs(t *testing.T) {
	env := setupServices(t)
	sku, _ := seedStock(t, env)
	ctx := context.Background()

	// A root and its child staged in one batch, linked by temporary ids.
	staged := []service.StagedSku{
		{Row: model.SKU{SkuID: -1, ItemID: sku.ItemID, SubName: "box"}, Flag: changeset.New},
		{Row: model.SKU{SkuID: -2, ItemID: sku.ItemID, RootSku: -1, SubName: "unit"}, Flag: changeset.New},
	}
	if err := env.skus.SaveSkus(ctx, staged); err != nil {
		t.Fatalf("SaveSkus: %v", err)
	}

	skus, err := env.skus.GetSkus(sku.ItemID, true)
	if err != nil {
		t.Fatalf("GetSkus: %v", err)
	}
	var root, child *model.SKU
	for i := range skus {
		switch skus[i].SubName {
		case "box":
			root = &skus[i]
		case "unit":
			child = &skus[i]
		}
	}
	if root == nil || child == nil {
		t.Fatalf("expected box and unit SKUs, got %+v", skus)
	}
	if root.SkuID <= 0 {
		t.Fatalf("expected assigned root id, got %d", root.SkuID)
	}
	if child.RootSku != root.SkuID {
		t.Errorf("expected child root_sku %d, got %d", root.SkuID, child.RootSku)
	}

	t.Run("StagedRootOfOtherItemRejected", func(t *testing.T) {
		other := model.Category{CategoryName: "수액제"}
		if err := env.inv.CreateCategory(&other); err != nil {
			t.Fatalf("create category: %v", err)
		}
		otherItem := model.Item{ItemName: "써지겔", CategoryID: other.CategoryID}
		if err := env.inv.CreateItem(&otherItem); err != nil {
			t.Fatalf("create item: %v", err)
		}
		bad := []service.StagedSku{
			{Row: model.SKU{SkuID: -1, ItemID: otherItem.ItemID, SubName: "case"}, Flag: changeset.New},
			{Row: model.SKU{SkuID: -2, ItemID: sku.ItemID, RootSku: -1, SubName: "piece"}, Flag: changeset.New},
		}
		if err := env.skus.SaveSkus(ctx, bad); !errors.Is(err, model.ErrInvalidRootSku) {
			t.Errorf("expected ErrInvalidRootSku, got %v", err)
		}
	})
}

func TestSaveTransactionsKeepsIdentityColumns(t *testing.T) {
	env := setupServices(t)
	sku, userID := seedStock(t, env)
	ctx := context.Background()

	tr := model.Transaction{UserID: userID, SkuID: sku.SkuID, TrTypeID: model.TrTypeIDs[model.TrTypeBuy], TrQty: 5}
	if err := env.trs.RecordTransaction(&tr, "admin"); err != nil {
		t.Fatalf("RecordTransaction: %v", err)
	}
	stored, err := env.trs.GetTransaction(tr.TrID)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}

	other := model.User{UserName: "test"}
	if err := other.SetPassword("a"); err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := env.db.Create(&other).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	otherSku := model.SKU{ItemID: sku.ItemID, SubName: "120ml", BitCode: "noci120"}
	if err := env.skus.CreateSku(&otherSku); err != nil {
		t.Fatalf("create sku: %v", err)
	}

	// A staged edit that also tries to move the row to another user, SKU
	// and timestamp. Only type, qty, after_qty and description may change.
	edited := *stored
	edited.User = nil
	edited.SKU = nil
	edited.Type = nil
	edited.UserID = other.UserID
	edited.SkuID = otherSku.SkuID
	edited.TrTimestamp = stored.TrTimestamp.Add(time.Hour)
	edited.TrQty = 4
	edited.AfterQty = 4
	edited.Description = "edited"

	staged := []service.StagedTransaction{{Row: edited, Flag: changeset.Changed}}
	if err := env.trs.SaveTransactions(ctx, staged); err != nil {
		t.Fatalf("SaveTransactions: %v", err)
	}

	got, err := env.trs.GetTransaction(tr.TrID)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.UserID != userID {
		t.Errorf("expected user_id to stay %d, got %d", userID, got.UserID)
	}
	if got.SkuID != sku.SkuID {
		t.Errorf("expected sku_id to stay %d, got %d", sku.SkuID, got.SkuID)
	}
	if !got.TrTimestamp.Equal(stored.TrTimestamp) {
		t.Errorf("expected timestamp to stay %v, got %v", stored.TrTimestamp, got.TrTimestamp)
	}
	if got.TrQty != 4 || got.AfterQty != 4 || got.Description != "edited" {
		t.Errorf("expected edited qty/after/description, got %+v", got)
	}

	updatedSku, err := env.skus.GetSku(sku.SkuID)
	if err != nil {
		t.Fatalf("GetSku: %v", err)
	}
	if updatedSku.SkuQty != 4 {
		t.Errorf("expected sku qty re-synced to 4, got %d", updatedSku.SkuQty)
	}
}

func TestImportEmrConsumption(t *testing.T) {
	env := setupServices(t)
	sku, userID := seedStock(t, env)
	ctx := context.Background()

	opening := model.Transaction{UserID: userID, SkuID: sku.SkuID, TrTypeID: model.TrTypeIDs[model.TrTypeBuy], TrQty: 10}
	if err := env.trs.RecordTransaction(&opening, "admin"); err != nil {
		t.Fatalf("record opening stock: %v", err)
	}

	export := "처방코드\t총소모량\n" +
		"noci40\t2\n" +
		"noci40\t1\n" +
		"ghost\t4\n"
	result, err := env.trs.ImportEmrConsumption(ctx, strings.NewReader(export), userID, "admin")
	if err != nil {
		t.Fatalf("ImportEmrConsumption: %v", err)
	}

	if len(result.Recorded) != 1 {
		t.Fatalf("expected 1 recorded transaction, got %d", len(result.Recorded))
	}
	rec := result.Recorded[0]
	if rec.SkuID != sku.SkuID || rec.TrTypeID != model.TrTypeIDs[model.TrTypeSell] || rec.TrQty != 3 {
		t.Errorf("unexpected recorded transaction: %+v", rec)
	}
	if len(result.UnmatchedCodes) != 1 || result.UnmatchedCodes[0] != "ghost" {
		t.Errorf("expected ghost unmatched, got %v", result.UnmatchedCodes)
	}

	got, err := env.skus.GetSku(sku.SkuID)
	if err != nil {
		t.Fatalf("GetSku: %v", err)
	}
	if got.SkuQty != 7 {
		t.Errorf("expected sku qty 7 after consumption, got %d", got.SkuQty)
	}
}

func TestSaveCategoriesChangeset(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	base := []model.Category{{CategoryName: "외용제"}, {CategoryName: "수액제"}, {CategoryName: "기타"}}
	for i := range base {
		if err := env.inv.CreateCategory(&base[i]); err != nil {
			t.Fatalf("create category: %v", err)
		}
	}

	renamed := base[1]
	renamed.CategoryName = "수액제-개정"
	staged := []service.StagedCategory{
		{Row: base[0], Flag: changeset.Original},
		{Row: renamed, Flag: changeset.Changed},
		{Row: base[2], Flag: changeset.Deleted},
		{Row: model.Category{CategoryName: "보조기"}, Flag: changeset.New},
	}
	if err := env.inv.SaveCategories(ctx, staged); err != nil {
		t.Fatalf("SaveCategories: %v", err)
	}

	categories, err := env.inv.GetCategories()
	if err != nil {
		t.Fatalf("GetCategories: %v", err)
	}
	names := make(map[string]bool, len(categories))
	for _, c := range categories {
		names[c.CategoryName] = true
	}
	if len(categories) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(categories))
	}
	for _, want := range []string{"외용제", "수액제-개정", "보조기"} {
		if !names[want] {
			t.Errorf("expected category %q to exist, have %v", want, names)
		}
	}
	if names["기타"] {
		t.Error("expected deleted category 기타 to be gone")
	}

	t.Run("DuplicateInsertRolledBack", func(t *testing.T) {
		dup := []service.StagedCategory{
			{Row: model.Category{CategoryName: "신규1"}, Flag: changeset.New},
			{Row: model.Category{CategoryName: "외용제"}, Flag: changeset.New},
		}
		err := env.inv.SaveCategories(ctx, dup)
		if !errors.Is(err, model.ErrDuplicateName) {
			t.Fatalf("expected ErrDuplicateName, got %v", err)
		}
		// The whole batch rolls back, including the valid first row.
		categories, err := env.inv.GetCategories()
		if err != nil {
			t.Fatalf("GetCategories: %v", err)
		}
		for _, c := range categories {
			if c.CategoryName == "신규1" {
				t.Error("expected 신규1 rolled back with the failed batch")
			}
		}
	})
}
