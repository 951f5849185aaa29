package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ScenarioFile      string
	DatabaseURL       string
	ScenarioDB        string
	ScenarioName      string
	NATSURL           string
	NATSSubjectPrefix string
	LogNATSSubjects   bool
	MetricsAddr       string
	MetricsOrigins    []string
	ServeAfterRun     bool
	MaxTicks          int
	LogLevel          slog.Level
	LogFormat         string
}

// Load reads .env and the environment. args are the positional command
// line arguments; the first one, if any, overrides SCENARIO_FILE.
func Load(args []string) (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.ScenarioFile = strings.TrimSpace(os.Getenv("SCENARIO_FILE"))
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		cfg.ScenarioFile = strings.TrimSpace(args[0])
	}

	cfg.ScenarioDB = strings.TrimSpace(os.Getenv("SCENARIO_DB"))
	cfg.ScenarioName = strings.TrimSpace(os.Getenv("SCENARIO_NAME"))

	// Database is only needed without a scenario file: prefer DATABASE_URL / PG_DSN, else build from PG* vars
	if cfg.ScenarioFile == "" {
		dsn := firstNonEmpty(
			os.Getenv("DATABASE_URL"),
			os.Getenv("PG_DSN"),
		)
		if dsn == "" {
			host := getenvDefault("PGHOST", "127.0.0.1")
			port := getenvDefault("PGPORT", "5432")
			user := getenvDefault("PGUSER", "postgres")
			pass := os.Getenv("PGPASSWORD")
			db := firstNonEmpty(os.Getenv("PGDATABASE"), cfg.ScenarioDB)
			if db == "" {
				return nil, errors.New("no scenario source: pass a scenario file, or set SCENARIO_FILE, DATABASE_URL or PGDATABASE")
			}
			sslmode := getenvDefault("PGSSLMODE", "disable")
			if pass != "" {
				cfg.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", urlEscape(user), urlEscape(pass), host, port, db, sslmode)
			} else {
				cfg.DatabaseURL = fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=%s", urlEscape(user), host, port, db, sslmode)
			}
		} else {
			cfg.DatabaseURL = dsn
		}
	}

	// Empty disables publishing.
	cfg.NATSURL = strings.TrimSpace(os.Getenv("NATS_URL"))
	cfg.NATSSubjectPrefix = getenvDefault("NATS_SUBJECT_PREFIX", "freight")

	if v := os.Getenv("LOG_NATS_SUBJECTS"); v != "" {
		b, err := parseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_NATS_SUBJECTS: %q", v)
		}
		cfg.LogNATSSubjects = b
	}

	// Metrics listen address (e.g., ":9102"). Empty disables the metrics server.
	cfg.MetricsAddr = strings.TrimSpace(os.Getenv("METRICS_ADDR"))
	if v := os.Getenv("METRICS_CORS_ORIGINS"); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.MetricsOrigins = append(cfg.MetricsOrigins, o)
			}
		}
	}

	if v := os.Getenv("SERVE_AFTER_RUN"); v != "" {
		b, err := parseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SERVE_AFTER_RUN: %q", v)
		}
		cfg.ServeAfterRun = b
	}
	if cfg.ServeAfterRun && cfg.MetricsAddr == "" {
		return nil, errors.New("SERVE_AFTER_RUN requires METRICS_ADDR")
	}

	if v := os.Getenv("MAX_TICKS"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid MAX_TICKS: %q", v)
		}
		cfg.MaxTicks = n
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.TrimSpace(v))); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %q", v)
		}
	} else {
		cfg.LogLevel = slog.LevelInfo
	}

	cfg.LogFormat = strings.ToLower(getenvDefault("LOG_FORMAT", "text"))
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid LOG_FORMAT: %q", cfg.LogFormat)
	}

	return cfg, nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", v)
}

func getenvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func urlEscape(s string) string {
	// Minimal escape for DSN user/pass with special chars
	r := strings.NewReplacer("@", "%40", ":", "%3A", "/", "%2F", "?", "%3F", "#", "%23")
	return r.Replace(s)
}
