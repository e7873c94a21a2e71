package main

import (
	"flag"
	"os"

	"go-inventory-core/internal/config"
	"go-inventory-core/internal/repository"
	"go-inventory-core/pkg/database"
	"go-inventory-core/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// reset-password forces a new password onto an account without knowing the
// old one. For operators who locked themselves out.
func main() {
	userName := flag.String("user", "admin", "account to reset")
	password := flag.String("password", "", "new password (required)")
	flag.Parse()

	log := logger.Must(logger.New())
	defer log.Sync()

	if *password == "" {
		log.Error("missing required -password flag")
		os.Exit(1)
	}

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

	userRepo := repository.NewUserRepo(db)
	user, err := userRepo.FindByName(*userName)
	if err != nil {
		log.Error("user not found", zap.String("user_name", *userName), zap.Error(err))
		os.Exit(1)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		os.Exit(1)
	}

	if err := userRepo.UpdatePassword(user.UserID, hashed); err != nil {
		log.Error("failed to update password", zap.Error(err))
		os.Exit(1)
	}

	log.Info("password reset", zap.String("user_name", *userName))
}
