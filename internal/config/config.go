package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutputDir string
	DraftsDir string

	InboxDir         string
	WatchIntervalSec int
	WatchWriteDrafts bool

	RequireApprover      bool
	OverdueThresholdDays float64

	Organization string
	ReferenceURL string
	SenderName   string
	SenderEmail  string

	LogLevel string
	LogJSON  bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "runs.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		DraftsDir: getEnv("DRAFTS_DIR", filepath.Join(cwd, "out", "drafts")),

		InboxDir:         getEnv("INBOX_DIR", filepath.Join(cwd, "data", "inbox")),
		WatchIntervalSec: getEnvInt("WATCH_INTERVAL_SEC", 30),
		WatchWriteDrafts: getEnvBool("WATCH_WRITE_DRAFTS", false),

		RequireApprover:      getEnvBool("REQUIRE_APPROVER", false),
		OverdueThresholdDays: getEnvFloat("OVERDUE_THRESHOLD_DAYS", 21),

		Organization: getEnv("ORGANIZATION", ""),
		ReferenceURL: getEnv("REFERENCE_VIDEO_URL", ""),
		SenderName:   getEnv("SENDER_NAME", "Payroll"),
		SenderEmail:  getEnv("SENDER_EMAIL", "payroll@example.com"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogJSON:  getEnvBool("LOG_JSON", false),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
