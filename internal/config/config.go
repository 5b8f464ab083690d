// Package config loads application configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Store backends accepted in STORE_BACKEND.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendMySQL    = "mysql"
	BackendPostgres = "postgres"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env  string // APP_ENV (dev, test, prod)
	Port string // APP_PORT

	StoreBackend string // STORE_BACKEND: file, memory, mysql or postgres
	DataDir      string // DATA_DIR, directory holding trains.json and users.json

	DBUser string // DB_USER
	DBPass string // DB_PASS, empty allowed
	DBHost string // DB_HOST
	DBPort string // DB_PORT
	DBName string // DB_NAME

	JWTSecret    string // JWT_SECRET
	AccessTTLMin int    // ACCESS_TOKEN_TTL_MIN
	BcryptCost   int    // BCRYPT_COST

	AdminUser     string // ADMIN_USER, created with the ADMIN role on startup if missing
	AdminPassword string // ADMIN_PASSWORD

	TrainSeedFile string // TRAIN_SEED_FILE, YAML list of trains to add on startup
	LogDir        string // LOG_DIR, where the event consumer writes booking.log
}

// LoadEnv reads a .env file into the process environment. Variables that
// are already set win. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads configuration values from environment variables. Required
// variables are enforced by must() and a missing value stops the program.
// Database settings are only required for the SQL backends.
func Load() Config {
	cfg := Config{
		Env:           envStr("APP_ENV", "dev"),
		Port:          envStr("APP_PORT", "8080"),
		StoreBackend:  strings.ToLower(envStr("STORE_BACKEND", BackendFile)),
		DataDir:       envStr("DATA_DIR", "./localDB"),
		JWTSecret:     must("JWT_SECRET"),
		AccessTTLMin:  envInt("ACCESS_TOKEN_TTL_MIN", 60),
		BcryptCost:    envInt("BCRYPT_COST", 10),
		AdminUser:     os.Getenv("ADMIN_USER"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		TrainSeedFile: os.Getenv("TRAIN_SEED_FILE"),
		LogDir:        envStr("LOG_DIR", "logs"),
	}
	switch cfg.StoreBackend {
	case BackendFile, BackendMemory:
	case BackendMySQL, BackendPostgres:
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	default:
		log.Fatalf("invalid STORE_BACKEND %q (want file, memory, mysql or postgres)", cfg.StoreBackend)
	}
	if cfg.AdminUser != "" && cfg.AdminPassword == "" {
		log.Fatalf("missing required env var: ADMIN_PASSWORD (ADMIN_USER is set)")
	}
	if cfg.AccessTTLMin <= 0 {
		log.Fatalf("invalid int for ACCESS_TOKEN_TTL_MIN: %d", cfg.AccessTTLMin)
	}
	return cfg
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
