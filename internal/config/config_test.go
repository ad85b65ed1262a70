package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Port:            "8080",
		StorageType:     StorageMemory,
		SnapshotCron:    "@daily",
		ShutdownTimeout: 10 * time.Second,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(c *Config)
		wantErr     bool
		errorString string
	}{
		{name: "valid memory config", modify: func(c *Config) {}},
		{
			name:   "valid mysql with full dsn",
			modify: func(c *Config) { c.StorageType = StorageMySQL; c.FullDSN = "u:p@tcp(db:3306)/budget" },
		},
		{
			name:   "valid sqlite",
			modify: func(c *Config) { c.StorageType = StorageSQLite; c.SQLitePath = "./data/test.db" },
		},
		{
			name:        "invalid port - non-numeric",
			modify:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			modify:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "unknown storage",
			modify:      func(c *Config) { c.StorageType = "mongo" },
			wantErr:     true,
			errorString: "invalid storage type 'mongo'",
		},
		{
			name:        "mysql without credentials",
			modify:      func(c *Config) { c.StorageType = StorageMySQL },
			wantErr:     true,
			errorString: "mysql storage requires FULL_DSN",
		},
		{
			name:        "sqlite without path",
			modify:      func(c *Config) { c.StorageType = StorageSQLite; c.SQLitePath = "" },
			wantErr:     true,
			errorString: "SQLITE_PATH cannot be empty",
		},
		{
			name:        "bad cron expression",
			modify:      func(c *Config) { c.SnapshotCron = "every day" },
			wantErr:     true,
			errorString: "invalid SNAPSHOT_CRON 'every day'",
		},
		{
			name:        "missing tax schedule",
			modify:      func(c *Config) { c.TaxScheduleFile = filepath.Join(t.TempDir(), "missing.yaml") },
			wantErr:     true,
			errorString: "is not readable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestConfigValidateAggregatesProblems(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "0"
	cfg.StorageType = "paper"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port 0")
	assert.Contains(t, err.Error(), "invalid storage type 'paper'")
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "STORAGE_TYPE", "SNAPSHOT_CRON", "SHUTDOWN_TIMEOUT", "APP_ENV"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageMemory, cfg.StorageType)
	assert.Equal(t, "@daily", cfg.SnapshotCron)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.IsProduction())
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvFile(t *testing.T) {
	for _, key := range []string{"APP_PORT", "STORAGE_TYPE", "SQLITE_PATH", "APP_ENV", "SHUTDOWN_TIMEOUT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("APP_PORT", "9090")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "APP_PORT=7070\nSTORAGE_TYPE=SQLite\nSQLITE_PATH=/tmp/budget.db\nAPP_ENV=Production\nSHUTDOWN_TIMEOUT=3s\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0644))

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StorageSQLite, cfg.StorageType)
	assert.Equal(t, "/tmp/budget.db", cfg.SQLitePath)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}
