package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Config struct {
	Environment string
	AppName     string
	Port        string
	LogLevel    slog.Level

	ReadingListBackend string
	ReadingListPath    string
	SQLitePath         string

	PageLoader             string
	PageLoadTimeout        time.Duration
	UserAgent              string
	CloudflareBypass       bool
	ExtractionProfilesPath string

	RefreshWebhookURL  string
	RefreshPingTimeout time.Duration
	NotifyWebhookURL   string

	PollingEnabled      bool
	PollingMinutes      int
	PollingHostInterval time.Duration

	BrowserCommand string
	ScrapeURL      string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment: getEnv("APP_ENV", "development"),
		AppName:     getEnv("APP_NAME", "manhwa-agent"),
		Port:        getEnv("APP_PORT", "8000"),

		ReadingListBackend: strings.ToLower(getEnv("READING_LIST_BACKEND", "json")),
		ReadingListPath:    getEnv("READING_LIST_PATH", "./data/reading_list.json"),
		SQLitePath:         getEnv("SQLITE_PATH", "./data/reading_list.sqlite"),

		PageLoader:             strings.ToLower(getEnv("PAGE_LOADER", "http")),
		PageLoadTimeout:        time.Duration(getEnvAsInt("PAGE_LOAD_TIMEOUT_SECONDS", 45)) * time.Second,
		UserAgent:              getEnv("USER_AGENT", defaultUserAgent),
		CloudflareBypass:       getEnvAsBool("CLOUDFLARE_BYPASS", false),
		ExtractionProfilesPath: getEnv("EXTRACTION_PROFILES_PATH", "./profiles"),

		RefreshWebhookURL:  getEnv("REFRESH_WEBHOOK_URL", "http://localhost:5678/webhook/refresh"),
		RefreshPingTimeout: time.Duration(getEnvAsInt("REFRESH_PING_TIMEOUT_MS", 1000)) * time.Millisecond,
		NotifyWebhookURL:   os.Getenv("NOTIFY_WEBHOOK_URL"),

		PollingEnabled:      getEnvAsBool("POLLING_ENABLED", false),
		PollingMinutes:      getEnvAsInt("POLLING_MINUTES", 60),
		PollingHostInterval: time.Duration(getEnvAsInt("POLLING_HOST_INTERVAL_SECONDS", 5)) * time.Second,

		BrowserCommand: os.Getenv("BROWSER_COMMAND"),
		ScrapeURL:      os.Getenv("SCRAPE_URL"),
	}

	if cfg.PollingMinutes <= 0 {
		cfg.PollingMinutes = 60
	}
	if cfg.PageLoadTimeout <= 0 {
		cfg.PageLoadTimeout = 45 * time.Second
	}
	if cfg.RefreshPingTimeout <= 0 {
		cfg.RefreshPingTimeout = time.Second
	}
	if cfg.PollingHostInterval < 0 {
		cfg.PollingHostInterval = 0
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "INFO"))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	return cfg, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q, expected DEBUG|INFO|WARN|ERROR", raw)
	}
}

func getEnv(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsInt(key string, fallback int) int {
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
