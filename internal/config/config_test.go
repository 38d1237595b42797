package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validTestConfig() *Config {
	return &Config{
		Port:         "8460",
		JWTSecret:    "a-good-long-secret-value-0123456789abcdef",
		StoreBackend: "postgres",
		DBPassword:   "strongpassword",
		DBSSLMode:    "require",
		Env:          "development",
	}
}

func TestValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, validTestConfig().Validate())
	})

	t.Run("MissingPort", func(t *testing.T) {
		cfg := validTestConfig()
		cfg.Port = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("MissingSecret", func(t *testing.T) {
		cfg := validTestConfig()
		cfg.JWTSecret = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("UnknownBackend", func(t *testing.T) {
		cfg := validTestConfig()
		cfg.StoreBackend = "cassandra"
		assert.Error(t, cfg.Validate())
	})

	t.Run("MemoryBackendAllowedInDev", func(t *testing.T) {
		cfg := validTestConfig()
		cfg.StoreBackend = "memory"
		assert.NoError(t, cfg.Validate())
	})
}

func TestValidateProduction(t *testing.T) {
	prodConfig := func() *Config {
		cfg := validTestConfig()
		cfg.Env = "production"
		return cfg
	}

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, prodConfig().Validate())
	})

	t.Run("DefaultSecretRejected", func(t *testing.T) {
		cfg := prodConfig()
		cfg.JWTSecret = "your-secret-key-change-in-production"
		assert.Error(t, cfg.Validate())
	})

	t.Run("ShortSecretRejected", func(t *testing.T) {
		cfg := prodConfig()
		cfg.JWTSecret = "short"
		assert.Error(t, cfg.Validate())
	})

	t.Run("MemoryBackendRejected", func(t *testing.T) {
		cfg := prodConfig()
		cfg.StoreBackend = "memory"
		assert.Error(t, cfg.Validate())
	})

	t.Run("WeakDBPasswordRejected", func(t *testing.T) {
		cfg := prodConfig()
		cfg.DBPassword = "password"
		assert.Error(t, cfg.Validate())
	})

	t.Run("MongoBackendSkipsDBPasswordCheck", func(t *testing.T) {
		cfg := prodConfig()
		cfg.StoreBackend = "mongo"
		cfg.DBPassword = ""
		assert.NoError(t, cfg.Validate())
	})
}
