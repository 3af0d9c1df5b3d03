package config

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE", "SQLITE_PATH", "CORS_ORIGINS", "LOCALE", "SHUTDOWN_TIMEOUT", "FIREBASE_PROJECT_ID"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 10, cfg.Server.ShutdownTimeout)
	assert.Equal(t, StoreSQLite, cfg.Store.Kind)
	assert.Equal(t, "workbench.db", cfg.Store.SQLitePath)
	assert.Equal(t, "pt-BR", cfg.App.Locale)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE", "Firestore")
	t.Setenv("FIREBASE_PROJECT_ID", "nexwork-prod")
	t.Setenv("CORS_ORIGINS", " https://a.test, ,https://b.test ")
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-number")
	t.Setenv("LOCALE", "en-US")

	cfg := FromEnv()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, StoreFirestore, cfg.Store.Kind)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 10, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "en-US", cfg.App.Locale)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: "8080"},
			Store:  StoreConfig{Kind: StoreMemory},
			App:    AppConfig{Locale: "pt-BR"},
		}
	}

	tests := []struct {
		name string
		mut  func(*Config)
	}{
		{"no port", func(c *Config) { c.Server.Port = "" }},
		{"unknown store", func(c *Config) { c.Store.Kind = "postgres" }},
		{"sqlite without path", func(c *Config) { c.Store.Kind = StoreSQLite }},
		{"firestore without project", func(c *Config) { c.Store.Kind = StoreFirestore }},
		{"bad locale", func(c *Config) { c.App.Locale = "not a locale!" }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mut(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseFlags_OverrideBeforeValidate(t *testing.T) {
	// GIVEN: An environment that alone would not validate
	t.Setenv("STORE", "firestore")
	t.Setenv("FIREBASE_PROJECT_ID", "")
	t.Setenv("PORT", "")
	t.Setenv("LOCALE", "")

	cfg := FromEnv()
	require.Error(t, cfg.Validate())

	// WHEN: Flags pick another store, in any case
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	require.NoError(t, cfg.ParseFlags(fs, []string{"-store=MEMORY", "-port=3000"}))

	// THEN: The flag values win and validate
	require.NoError(t, cfg.Validate())
	assert.Equal(t, StoreMemory, cfg.Store.Kind)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "pt-BR", cfg.App.Locale)
}

func TestParseFlags_UnknownFlag(t *testing.T) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	assert.Error(t, FromEnv().ParseFlags(fs, []string{"-nope"}))
}
