package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allVars = []string{
	"SCENARIO_FILE", "DATABASE_URL", "PG_DSN", "PGHOST", "PGPORT", "PGUSER",
	"PGPASSWORD", "PGDATABASE", "PGSSLMODE", "SCENARIO_DB", "SCENARIO_NAME",
	"NATS_URL", "NATS_SUBJECT_PREFIX", "LOG_NATS_SUBJECTS", "METRICS_ADDR",
	"METRICS_CORS_ORIGINS", "SERVE_AFTER_RUN", "MAX_TICKS", "LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv blanks every variable Load reads; empty counts as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir()) // keep a stray .env out of the test
	for _, k := range allVars {
		t.Setenv(k, "")
	}
}

func TestLoadDefaultsWithScenarioFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load([]string{"worked.hcl"})
	require.NoError(t, err)

	assert.Equal(t, "worked.hcl", cfg.ScenarioFile)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.NATSURL)
	assert.Equal(t, "freight", cfg.NATSSubjectPrefix)
	assert.False(t, cfg.LogNATSSubjects)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Nil(t, cfg.MetricsOrigins)
	assert.False(t, cfg.ServeAfterRun)
	assert.Zero(t, cfg.MaxTicks)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadArgOverridesEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCENARIO_FILE", "env.hcl")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "env.hcl", cfg.ScenarioFile)

	cfg, err = Load([]string{"arg.hcl"})
	require.NoError(t, err)
	assert.Equal(t, "arg.hcl", cfg.ScenarioFile)
}

func TestLoadDatabaseURL(t *testing.T) {
	t.Run("explicit", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATABASE_URL", "postgres://u@db:5432/freight")
		t.Setenv("SCENARIO_NAME", "worked")

		cfg, err := Load(nil)
		require.NoError(t, err)
		assert.Equal(t, "postgres://u@db:5432/freight", cfg.DatabaseURL)
		assert.Equal(t, "worked", cfg.ScenarioName)
	})

	t.Run("from PG vars", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PGHOST", "db")
		t.Setenv("PGUSER", "sim")
		t.Setenv("PGPASSWORD", "p@ss")
		t.Setenv("PGDATABASE", "freight")

		cfg, err := Load(nil)
		require.NoError(t, err)
		assert.Equal(t, "postgres://sim:p%40ss@db:5432/freight?sslmode=disable", cfg.DatabaseURL)
	})

	t.Run("scenario db as database", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SCENARIO_DB", "scenarios")

		cfg, err := Load(nil)
		require.NoError(t, err)
		assert.Equal(t, "postgres://postgres@127.0.0.1:5432/scenarios?sslmode=disable", cfg.DatabaseURL)
	})

	t.Run("no source", func(t *testing.T) {
		clearEnv(t)
		_, err := Load(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no scenario source")
	})
}

func TestLoadOptionalSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv("NATS_URL", "nats://127.0.0.1:4222")
	t.Setenv("NATS_SUBJECT_PREFIX", "ops")
	t.Setenv("LOG_NATS_SUBJECTS", "yes")
	t.Setenv("METRICS_ADDR", ":9102")
	t.Setenv("METRICS_CORS_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("SERVE_AFTER_RUN", "on")
	t.Setenv("MAX_TICKS", "1000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := Load([]string{"worked.hcl"})
	require.NoError(t, err)

	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATSURL)
	assert.Equal(t, "ops", cfg.NATSSubjectPrefix)
	assert.True(t, cfg.LogNATSSubjects)
	assert.Equal(t, ":9102", cfg.MetricsAddr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.MetricsOrigins)
	assert.True(t, cfg.ServeAfterRun)
	assert.Equal(t, 1000, cfg.MaxTicks)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"MAX_TICKS", "-1", `invalid MAX_TICKS: "-1"`},
		{"MAX_TICKS", "lots", `invalid MAX_TICKS: "lots"`},
		{"LOG_LEVEL", "loud", `invalid LOG_LEVEL: "loud"`},
		{"LOG_FORMAT", "xml", `invalid LOG_FORMAT: "xml"`},
		{"LOG_NATS_SUBJECTS", "maybe", `invalid LOG_NATS_SUBJECTS: "maybe"`},
		{"SERVE_AFTER_RUN", "2", `invalid SERVE_AFTER_RUN: "2"`},
	}
	for _, tc := range tests {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)
			_, err := Load([]string{"worked.hcl"})
			require.Error(t, err)
			assert.EqualError(t, err, tc.want)
		})
	}
}

func TestServeAfterRunNeedsMetrics(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVE_AFTER_RUN", "true")
	_, err := Load([]string{"worked.hcl"})
	assert.EqualError(t, err, "SERVE_AFTER_RUN requires METRICS_ADDR")
}
