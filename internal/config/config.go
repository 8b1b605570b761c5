package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Data sources: filesystem paths or http(s) URLs.
	SatisfactionSource string
	IncomeSource       string
	GeoSource          string
	AliasTablePath     string // empty uses the embedded table
	FetchTimeout       time.Duration
	RefreshInterval    time.Duration // zero disables periodic reloads

	// Preprocessing.
	StandardizeCodes bool
	TargetYears      []int

	// Dashboard behaviour.
	SelectionCap      int
	DefaultYear       int // 0 picks the latest year in the dataset
	ExplorerMaxTables int

	// Session storage. An empty RedisURL keeps sessions in memory.
	RedisURL   string
	SessionTTL time.Duration

	// Kafka export of installed datasets.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	var refreshInterval time.Duration
	if s := os.Getenv("REFRESH_INTERVAL"); s != "" && s != "0" {
		refreshInterval, err = parsePositiveDuration("REFRESH_INTERVAL", s)
		if err != nil {
			return nil, err
		}
	}

	sessionTTL, err := parsePositiveDuration("SESSION_TTL", "24h")
	if err != nil {
		return nil, err
	}

	selectionCap, err := parsePositiveInt("SELECTION_CAP", 5)
	if err != nil {
		return nil, err
	}

	explorerMaxTables, err := parsePositiveInt("EXPLORER_MAX_TABLES", 32)
	if err != nil {
		return nil, err
	}

	defaultYear := 0
	if s := os.Getenv("DEFAULT_YEAR"); s != "" {
		defaultYear, err = strconv.Atoi(s)
		if err != nil || defaultYear <= 0 {
			return nil, errors.New("invalid DEFAULT_YEAR")
		}
	}

	targetYears, err := parseYears(os.Getenv("TARGET_YEARS"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SatisfactionSource: sharedcfg.EnvOrDefault("SATISFACTION_SOURCE", "data/eurostat_life_satisfaction.csv"),
		IncomeSource:       sharedcfg.EnvOrDefault("INCOME_SOURCE", "data/eurostat_income.csv"),
		GeoSource:          sharedcfg.EnvOrDefault("GEO_SOURCE", "data/european_countries.json"),
		AliasTablePath:     os.Getenv("ALIAS_TABLE_PATH"),
		FetchTimeout:       fetchTimeout,
		RefreshInterval:    refreshInterval,

		StandardizeCodes: os.Getenv("STANDARDIZE_CODES") != "false",
		TargetYears:      targetYears,

		SelectionCap:      selectionCap,
		DefaultYear:       defaultYear,
		ExplorerMaxTables: explorerMaxTables,

		RedisURL:   os.Getenv("REDIS_URL"),
		SessionTTL: sessionTTL,

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "eurolife-observations"),
	}

	if cfg.SatisfactionSource == "" {
		return nil, errors.New("SATISFACTION_SOURCE is required")
	}
	if cfg.IncomeSource == "" {
		return nil, errors.New("INCOME_SOURCE is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

// parseYears reads a comma-separated year list such as "2013,2018,2022".
func parseYears(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var years []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid TARGET_YEARS entry %q", part)
		}
		years = append(years, y)
	}
	return years, nil
}
