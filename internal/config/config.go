package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the full application configuration surface.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Auth      AuthConfig
	Inventory InventoryConfig
	TestMode  bool
}

// ServerConfig holds HTTP server options.
type ServerConfig struct {
	Port string
}

// DBConfig holds Postgres connection settings.
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// AuthConfig holds token signing and admin-group settings.
type AuthConfig struct {
	JWTSecret  string
	AdminGroup []string
}

// InventoryConfig holds domain tunables.
type InventoryConfig struct {
	MaxTransactionCount int
	DefaultMinQty       int
	LowStockCron        string
}

// Load reads environment variables (optionally from the given .env file)
// into a Config. When TEST_MODE=true the TEST_DB_* variables take over the
// database settings so tests never touch the working database.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
		}
	} else {
		// Missing .env is fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	testMode := strings.EqualFold(os.Getenv("TEST_MODE"), "true")
	dbPrefix := "DB"
	if testMode {
		dbPrefix = "TEST_DB"
	}

	maxTrCount, err := getenvInt("MAX_TRANSACTION_COUNT", 10)
	if err != nil {
		return nil, err
	}
	defaultMinQty, err := getenvInt("DEFAULT_MIN_QTY", 2)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("PORT", "3000"),
		},
		DB: DBConfig{
			Host:     os.Getenv(dbPrefix + "_HOST"),
			Port:     getenvWithDefault(dbPrefix+"_PORT", "5432"),
			User:     os.Getenv(dbPrefix + "_USER"),
			Password: os.Getenv(dbPrefix + "_PASSWORD"),
			Name:     os.Getenv(dbPrefix + "_NAME"),
		},
		Auth: AuthConfig{
			JWTSecret:  os.Getenv("JWT_SECRET"),
			AdminGroup: splitList(getenvWithDefault("ADMIN_GROUP", "admin")),
		},
		Inventory: InventoryConfig{
			MaxTransactionCount: maxTrCount,
			DefaultMinQty:       defaultMinQty,
			LowStockCron:        getenvWithDefault("LOW_STOCK_CRON", "0 9 * * *"),
		},
		TestMode: testMode,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures required fields are populated and tunables are sane.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	switch {
	case c.DB.Host == "":
		return errors.New("DB_HOST must be provided")
	case c.DB.User == "":
		return errors.New("DB_USER must be provided")
	case c.DB.Name == "":
		return errors.New("DB_NAME must be provided")
	}
	if c.Inventory.MaxTransactionCount <= 0 {
		return errors.New("MAX_TRANSACTION_COUNT must be a positive integer")
	}
	if c.Inventory.DefaultMinQty < 0 {
		return errors.New("DEFAULT_MIN_QTY must not be negative")
	}
	if len(c.Auth.AdminGroup) == 0 {
		return errors.New("ADMIN_GROUP must name at least one user")
	}
	return nil
}

// IsAdmin reports whether the user name belongs to the admin group.
func (c *Config) IsAdmin(userName string) bool {
	for _, name := range c.Auth.AdminGroup {
		if name == userName {
			return true
		}
	}
	return false
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
