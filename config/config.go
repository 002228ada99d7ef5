package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port        string
	MongoURI    string
	MongoDB     string
	Store       string
	AuthEnabled bool
	JWTSecret   string
	LogLevel    string
	GinMode     string
}

// Load reads .env (if present) and then the process environment.
func Load(envFiles ...string) (Config, error) {
	// a missing .env is fine, the environment may carry everything
	_ = godotenv.Load(envFiles...)

	cfg := Config{
		Port:      getEnv("PORT", "5000"),
		MongoURI:  getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:   getEnv("MONGO_DB", "todo-db"),
		Store:     strings.ToLower(getEnv("STORE", StoreMongo)),
		JWTSecret: os.Getenv("JWT_SECRET"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		GinMode:   getEnv("GIN_MODE", "release"),
	}

	if v := os.Getenv("AUTH_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("AUTH_ENABLED: %w", err)
		}
		cfg.AuthEnabled = enabled
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Store != StoreMongo && c.Store != StoreMemory {
		return fmt.Errorf("STORE must be %q or %q, got %q", StoreMongo, StoreMemory, c.Store)
	}
	if c.AuthEnabled && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required when AUTH_ENABLED is set")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT: %w", err)
	}
	return nil
}

func (c Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
