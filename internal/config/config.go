package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/subosito/gotenv"
)

const (
	StorageMemory = "memory"
	StorageMySQL  = "mysql"
	StorageSQLite = "sqlite"
)

type Config struct {
	AppEnv   string
	LogLevel string
	LogDir   string
	Port     string

	StorageType string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	FullDSN     string
	SQLitePath  string

	// TaxScheduleFile is a YAML schedule; empty selects the built-in one.
	TaxScheduleFile string
	// SnapshotCron is a standard cron expression or descriptor such as @daily.
	SnapshotCron    string
	ShutdownTimeout time.Duration
}

// Load reads the given .env files, or ./.env when none are given, and then
// the environment. Missing files are skipped; variables already set in the
// environment win.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := gotenv.Load(file); err != nil {
			return nil, fmt.Errorf("failed to load env variables from %s: %w", file, err)
		}
	}

	cfg := &Config{
		AppEnv:   strings.ToLower(getEnv("APP_ENV", "development")),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogDir:   getEnv("LOG_DIR", ""),
		Port:     getEnv("APP_PORT", "8080"),

		StorageType: strings.ToLower(getEnv("STORAGE_TYPE", StorageMemory)),
		DBUser:      getEnv("DB_USER", ""),
		DBPass:      getEnv("DB_PASS", ""),
		DBHost:      getEnv("DB_HOST", ""),
		DBPort:      getEnv("DB_PORT", "3306"),
		DBName:      getEnv("DB_NAME", "budget_insight"),
		FullDSN:     getEnv("FULL_DSN", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "./data/budget_insight.db"),

		TaxScheduleFile: getEnv("TAX_SCHEDULE_FILE", ""),
		SnapshotCron:    getEnv("SNAPSHOT_CRON", "@daily"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.StorageType {
	case StorageMemory:
	case StorageSQLite:
		if c.SQLitePath == "" {
			problems = append(problems, "SQLITE_PATH cannot be empty when using sqlite storage")
		}
	case StorageMySQL:
		if c.FullDSN == "" && (c.DBUser == "" || c.DBPass == "" || c.DBHost == "" || c.DBPort == "") {
			problems = append(problems, "mysql storage requires FULL_DSN or DB_USER, DB_PASS, DB_HOST and DB_PORT")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid storage type '%s': must be one of %v", c.StorageType, []string{StorageMemory, StorageMySQL, StorageSQLite}))
	}

	if c.SnapshotCron != "" {
		if _, err := cron.ParseStandard(c.SnapshotCron); err != nil {
			problems = append(problems, fmt.Sprintf("invalid SNAPSHOT_CRON '%s': %v", c.SnapshotCron, err))
		}
	}

	if c.TaxScheduleFile != "" {
		if _, err := os.Stat(c.TaxScheduleFile); err != nil {
			problems = append(problems, fmt.Sprintf("tax schedule file '%s' is not readable: %v", c.TaxScheduleFile, err))
		}
	}

	if c.ShutdownTimeout <= 0 {
		problems = append(problems, "SHUTDOWN_TIMEOUT must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultVal
	}
	return d
}
