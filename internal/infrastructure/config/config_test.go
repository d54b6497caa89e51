package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dms-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.False(t, cfg.Store.CacheEnabled)
	assert.Equal(t, 5*time.Minute, cfg.Store.CacheTTL)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DMS_APP_PORT", "9090")
	t.Setenv("DMS_STORE_BACKEND", "gorm")
	t.Setenv("DMS_DATABASE_DRIVER", "sqlite")
	t.Setenv("DMS_DATABASE_DBNAME", "dms.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "gorm", cfg.Store.Backend)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "dms.db", cfg.Database.DSN())
}

func TestLoadRejectsInvalidBackend(t *testing.T) {
	t.Setenv("DMS_STORE_BACKEND", "mongo")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory backend", Config{Store: StoreConfig{Backend: "memory"}}, false},
		{"gorm with postgres", Config{Store: StoreConfig{Backend: "gorm"}, Database: DatabaseConfig{Driver: "postgres"}}, false},
		{"gorm with sqlite", Config{Store: StoreConfig{Backend: "gorm"}, Database: DatabaseConfig{Driver: "sqlite"}}, false},
		{"unknown backend", Config{Store: StoreConfig{Backend: "s3"}}, true},
		{"gorm with unknown driver", Config{Store: StoreConfig{Backend: "gorm"}, Database: DatabaseConfig{Driver: "mysql"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	pg := DatabaseConfig{
		Driver: "postgres", Host: "localhost", Port: 5432,
		User: "dms", Password: "secret", DBName: "dms", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=dms password=secret dbname=dms sslmode=disable",
		pg.DSN())

	lite := DatabaseConfig{Driver: "sqlite", DBName: "/tmp/dms.db"}
	assert.Equal(t, "/tmp/dms.db", lite.DSN())
}

func TestRedisAddr(t *testing.T) {
	r := RedisConfig{Host: "redis", Port: 6379}
	assert.Equal(t, "redis:6379", r.Addr())
}
