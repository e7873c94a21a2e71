package main

import (
	"flag"
	"os"

	"go-inventory-core/internal/config"
	"go-inventory-core/internal/model"
	"go-inventory-core/pkg/database"
	"go-inventory-core/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// init-db drops the whole inventory schema and recreates it with the
// default reference data and a couple of sample rows. Destructive;
// meant for first-time setup and for resetting a test database.
func main() {
	seedPassword := flag.String("password", "a", "initial password for the seeded accounts")
	skipSamples := flag.Bool("skip-samples", false, "only create tables and reference data, no sample rows")
	flag.Parse()

	log := logger.Must(logger.New())
	defer log.Sync()

	cfg, err := config.Load("")
	if err != nil {
		log.Error("failed to load configuration", zap.Error(err))
		os.Exit(1)
	}

	db, err := database.ConnectDB(cfg.DB)
	if err != nil {
		log.Error("failed to connect to database", zap.Error(err))
		os.Exit(1)
	}

	// Children before parents so the FK constraints never block the drop.
	dropOrder := []interface{}{
		&model.Transaction{},
		&model.TransactionType{},
		&model.SKU{},
		&model.Item{},
		&model.Category{},
		&model.User{},
	}
	if err := db.Migrator().DropTable(dropOrder...); err != nil {
		log.Error("failed to drop tables", zap.Error(err))
		os.Exit(1)
	}

	if err := database.Migrate(db,
		&model.Category{},
		&model.Item{},
		&model.SKU{},
		&model.User{},
		&model.TransactionType{},
		&model.Transaction{},
	); err != nil {
		log.Error("failed to create tables", zap.Error(err))
		os.Exit(1)
	}
	log.Info("schema created", zap.String("database", cfg.DB.Name))

	if err := seed(db, *seedPassword, *skipSamples); err != nil {
		log.Error("failed to seed initial data", zap.Error(err))
		os.Exit(1)
	}
	log.Info("initial data inserted")
}

func seed(db *gorm.DB, password string, skipSamples bool) error {
	return db.Transaction(func(tx *gorm.DB) error {
		categories := []model.Category{
			{CategoryName: "외용제"},
			{CategoryName: "수액제"},
			{CategoryName: "보조기"},
			{CategoryName: "기타"},
		}
		if err := tx.Create(&categories).Error; err != nil {
			return err
		}

		trTypes := make([]model.TransactionType, 0, len(model.TrTypeNames))
		for id := 1; id <= len(model.TrTypeNames); id++ {
			trTypes = append(trTypes, model.TransactionType{TrTypeID: id, TrType: model.TrTypeNames[id]})
		}
		if err := tx.Create(&trTypes).Error; err != nil {
			return err
		}

		users := []model.User{
			{UserName: "admin"},
			{UserName: "test"},
		}
		for i := range users {
			if err := users[i].SetPassword(password); err != nil {
				return err
			}
		}
		if err := tx.Create(&users).Error; err != nil {
			return err
		}

		if skipSamples {
			return nil
		}

		items := []model.Item{
			{Active: true, ItemName: "노시셉톨", CategoryID: categories[0].CategoryID},
			{Active: true, ItemName: "써지겔", CategoryID: categories[0].CategoryID},
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		skus := []model.SKU{
			{Active: true, SubName: "40ml", BitCode: "noci40", MinQty: 1, ItemID: items[0].ItemID, ExpirationDate: model.NoExpirationDate},
			{Active: true, SubName: "120ml", BitCode: "noci120", MinQty: 1, ItemID: items[0].ItemID, ExpirationDate: model.NoExpirationDate},
			{Active: true, SubName: "", BitCode: "surgigel", MinQty: 1, ItemID: items[1].ItemID, ExpirationDate: model.NoExpirationDate},
		}
		if err := tx.Create(&skus).Error; err != nil {
			return err
		}

		// Opening transaction so the history view is never empty.
		opening := model.Transaction{
			UserID:   users[0].UserID,
			SkuID:    skus[0].SkuID,
			TrTypeID: model.TrTypeIDs[model.TrTypeBuy],
		}
		return tx.Create(&opening).Error
	})
}
