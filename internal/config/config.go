package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
		// SummaryChannel is the pub/sub channel for cross-instance summaries.
		SummaryChannel string `yaml:"summaryChannel"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Heroes struct {
		// File is a hero import file served from memory when no database is configured.
		File string `yaml:"file"`
		TTL  string `yaml:"ttl"`
	} `yaml:"heroes"`
	Quiz struct {
		Seed int64 `yaml:"seed"`
	} `yaml:"quiz"`
	LLM struct {
		Provider    string  `yaml:"provider"`
		APIKey      string  `yaml:"apiKey"`
		Model       string  `yaml:"model"`
		BaseURL     string  `yaml:"baseUrl"`
		Temperature float64 `yaml:"temperature"`
	} `yaml:"llm"`
	Mail struct {
		APIKey string `yaml:"apiKey"`
		From   string `yaml:"from"`
	} `yaml:"mail"`
	Outbox struct {
		Interval    string `yaml:"interval"`
		BatchSize   int    `yaml:"batchSize"`
		MaxAttempts int    `yaml:"maxAttempts"`
	} `yaml:"outbox"`
}

// Load reads YAML config from path, after loading .env from the working
// directory, and applies environment overrides. A missing .env is fine.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv lets deployments keep secrets and endpoints out of the YAML file.
func applyEnv(cfg *Config) error {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Postgres.URL, "DATABASE_URL")
	setString(&cfg.SQLite.Path, "SQLITE_PATH")
	setString(&cfg.LLM.Provider, "LLM_PROVIDER")
	setString(&cfg.LLM.APIKey, "LLM_API_KEY")
	setString(&cfg.LLM.Model, "LLM_MODEL")
	setString(&cfg.LLM.BaseURL, "LLM_BASE_URL")
	setString(&cfg.Mail.APIKey, "MAIL_API_KEY")
	setString(&cfg.Mail.From, "MAIL_FROM")
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = splitList(origins)
	}
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		cfg.Redis.DB = db
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
