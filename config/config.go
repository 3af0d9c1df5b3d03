package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// Store kinds accepted by STORE.
const (
	StoreMemory    = "memory"
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Firebase FirebaseConfig
	App      AppConfig
}

type ServerConfig struct {
	Port            string
	CORSOrigins     []string
	ShutdownTimeout int // seconds
}

type StoreConfig struct {
	Kind       string
	SQLitePath string
}

type FirebaseConfig struct {
	ProjectID       string
	CredentialsPath string
}

type AppConfig struct {
	Locale string
}

// Load reads .env and the environment, applies command-line overrides from
// args and validates the result once.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := FromEnv()
	if err := cfg.ParseFlags(fs, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseFlags registers the override flags on fs with the current values as
// defaults and parses args. It does not validate.
func (c *Config) ParseFlags(fs *flag.FlagSet, args []string) error {
	fs.StringVar(&c.Server.Port, "port", c.Server.Port, "HTTP server port")
	fs.StringVar(&c.Store.Kind, "store", c.Store.Kind, "Store: memory, sqlite or firestore")
	fs.StringVar(&c.Store.SQLitePath, "db", c.Store.SQLitePath, "SQLite database path")
	fs.StringVar(&c.App.Locale, "locale", c.App.Locale, "Default status label locale")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.Store.Kind = strings.ToLower(c.Store.Kind)
	return nil
}

// FromEnv reads the process environment without loading .env or validating.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			CORSOrigins:     getEnvAsList("CORS_ORIGINS", []string{"*"}),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Store: StoreConfig{
			Kind:       strings.ToLower(getEnv("STORE", StoreSQLite)),
			SQLitePath: getEnv("SQLITE_PATH", "workbench.db"),
		},
		Firebase: FirebaseConfig{
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		App: AppConfig{
			Locale: getEnv("LOCALE", "pt-BR"),
		},
	}
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Store.Kind {
	case StoreMemory:
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORE=sqlite")
		}
	case StoreFirestore:
		if c.Firebase.ProjectID == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required when STORE=firestore")
		}
	default:
		return fmt.Errorf("STORE must be one of %s, %s, %s; got %q",
			StoreMemory, StoreSQLite, StoreFirestore, c.Store.Kind)
	}

	if _, err := language.Parse(c.App.Locale); err != nil {
		return fmt.Errorf("LOCALE %q: %w", c.App.Locale, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
