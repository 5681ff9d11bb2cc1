package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/AngelCh415/studio-metrics/internal/pattern"
)

type Config struct {
	NewVisitorsURL string
	BookingsURL    string
	SalesURL       string
	SinkURL        string
	SinkSecret     string
	Port           string
	HTTPTimeout    time.Duration
	LogLevel       slog.Level

	StoreBackend string // memory | redis
	RedisURL     string
	ResultTTL    time.Duration

	RulesFile      string
	UploadPerMin   int
	MaxUploadBytes int64
	CORSOrigins    []string
}

// FromEnv reads configuration from the environment, loading a .env file first
// when one exists.
func FromEnv() Config {
	_ = godotenv.Load()

	to := 15 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			to = d
		}
	}
	lvl := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		lvl = slog.LevelDebug
	}
	return Config{
		NewVisitorsURL: os.Getenv("NEW_VISITORS_URL"),
		BookingsURL:    os.Getenv("BOOKINGS_URL"),
		SalesURL:       os.Getenv("SALES_URL"),
		SinkURL:        os.Getenv("SINK_URL"),
		SinkSecret:     os.Getenv("SINK_SECRET"),
		Port:           envOr("PORT", "8080"),
		HTTPTimeout:    to,
		LogLevel:       lvl,
		StoreBackend:   envOr("STORE_BACKEND", "memory"),
		RedisURL:       envOr("REDIS_URL", "redis://localhost:6379/0"),
		ResultTTL:      time.Duration(intOr("RESULT_TTL_MINUTES", 24*60)) * time.Minute,
		RulesFile:      os.Getenv("RULES_FILE"),
		UploadPerMin:   intOr("UPLOAD_RATE_PER_MINUTE", 30),
		MaxUploadBytes: int64(intOr("MAX_UPLOAD_MB", 32)) << 20,
		CORSOrigins:    splitList(envOr("CORS_ORIGINS", "*")),
	}
}

// Rules returns the classification rules, read from RulesFile when set.
func (c Config) Rules() (*pattern.Ruleset, error) {
	if c.RulesFile == "" {
		return pattern.DefaultRules().Compile()
	}
	r, err := LoadRules(c.RulesFile)
	if err != nil {
		return nil, err
	}
	return r.Compile()
}

// LoadRules reads a YAML rules file. Keys left out keep their defaults.
func LoadRules(path string) (pattern.Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pattern.Rules{}, fmt.Errorf("read rules: %w", err)
	}
	r := pattern.DefaultRules()
	if err := yaml.Unmarshal(data, &r); err != nil {
		return pattern.Rules{}, fmt.Errorf("parse rules %s: %w", path, err)
	}
	if err := r.Validate(); err != nil {
		return pattern.Rules{}, err
	}
	return r, nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func intOr(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
