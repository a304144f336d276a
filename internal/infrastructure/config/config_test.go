package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// configEnvKeys are cleared before every case. Viper ignores empty values.
var configEnvKeys = []string{
	"POS_APP_NAME", "POS_APP_ENV", "POS_APP_PORT",
	"POS_DATABASE_DRIVER", "POS_DATABASE_HOST", "POS_DATABASE_PORT", "POS_DATABASE_USER",
	"POS_DATABASE_PASSWORD", "POS_DATABASE_DBNAME", "POS_DATABASE_SSLMODE",
	"POS_DATABASE_MAX_OPEN_CONNS", "POS_DATABASE_MAX_IDLE_CONNS",
	"POS_JWT_SECRET", "POS_JWT_REQUIRED",
	"POS_BILLING_DEFAULT_INVOICE_PREFIX", "POS_BILLING_CREATE_ATTEMPTS", "POS_BILLING_TIMEZONE",
	"POS_HTTP_CORS_ALLOW_ORIGINS", "POS_TELEMETRY_SAMPLING_RATIO",
	"POS_TELEMETRY_LOGS_ENABLED",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "posledger", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "posledger", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "CS", cfg.Billing.DefaultInvoicePrefix)
		assert.Equal(t, "₹", cfg.Billing.CurrencySymbol)
		assert.Equal(t, 3, cfg.Billing.CreateAttempts)
		assert.Equal(t, 24*time.Hour, cfg.Billing.IdempotencyTTL)
		assert.True(t, cfg.HTTP.MetricsEnabled)
		assert.False(t, cfg.Telemetry.LogsEnabled)
		assert.Contains(t, cfg.HTTP.CORSAllowHeaders, "Idempotency-Key")
	})

	t.Run("loads values from environment variables with POS prefix", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("POS_APP_NAME", "test-app")
		t.Setenv("POS_APP_PORT", "9000")
		t.Setenv("POS_DATABASE_HOST", "testdb.local")
		t.Setenv("POS_DATABASE_PORT", "5433")
		t.Setenv("POS_DATABASE_USER", "testuser")
		t.Setenv("POS_DATABASE_PASSWORD", "testpass")
		t.Setenv("POS_DATABASE_DBNAME", "testdb")
		t.Setenv("POS_DATABASE_SSLMODE", "require")
		t.Setenv("POS_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("POS_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("POS_BILLING_DEFAULT_INVOICE_PREFIX", "INV")
		t.Setenv("POS_BILLING_CREATE_ATTEMPTS", "5")
		t.Setenv("POS_BILLING_TIMEZONE", "Asia/Kolkata")
		t.Setenv("POS_TELEMETRY_LOGS_ENABLED", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, "INV", cfg.Billing.DefaultInvoicePrefix)
		assert.Equal(t, 5, cfg.Billing.CreateAttempts)
		assert.Equal(t, "Asia/Kolkata", cfg.Billing.Location().String())
		assert.True(t, cfg.Telemetry.LogsEnabled)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("POS_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("POS_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("POS_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("POS_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("accepts sqlite driver", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("POS_DATABASE_DRIVER", "sqlite")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "posledger.db", cfg.Database.DSN())
	})

	t.Run("rejects out of range create attempts", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("POS_BILLING_CREATE_ATTEMPTS", "42")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "billing.create_attempts")
	})

	t.Run("rejects unknown timezone", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("POS_BILLING_TIMEZONE", "Mars/Olympus")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "billing.timezone")
	})

	t.Run("rejects sampling ratio above one", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("POS_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		clearEnv(t)
		t.Setenv("POS_APP_ENV", "production")
		t.Setenv("POS_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		t.Setenv("POS_JWT_REQUIRED", "true")
		t.Setenv("POS_DATABASE_PASSWORD", "secure-password")
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.App.IsProduction())
	})

	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"requires jwt.secret", map[string]string{"POS_JWT_SECRET": ""}, "jwt.secret is required in production"},
		{"requires long jwt.secret", map[string]string{"POS_JWT_SECRET": "short-secret"}, "at least 32 characters"},
		{"requires jwt.required", map[string]string{"POS_JWT_REQUIRED": "false"}, "jwt.required must be true"},
		{"requires database.password", map[string]string{"POS_DATABASE_PASSWORD": ""}, "database.password is required"},
		{"rejects sqlite", map[string]string{"POS_DATABASE_DRIVER": "sqlite"}, "cannot be sqlite in production"},
		{"rejects wildcard CORS", map[string]string{"POS_HTTP_CORS_ALLOW_ORIGINS": "*"}, "cors_allow_origins"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setValidProductionBase(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   DriverPostgres,
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})

	t.Run("sqlite returns the file path", func(t *testing.T) {
		cfg := DatabaseConfig{Driver: DriverSQLite, SQLitePath: ":memory:"}
		assert.Equal(t, ":memory:", cfg.DSN())
	})
}

func TestBillingConfig_Location(t *testing.T) {
	assert.Equal(t, time.UTC, BillingConfig{}.Location())
	assert.Equal(t, time.UTC, BillingConfig{Timezone: "Nowhere/Special"}.Location())
	assert.Equal(t, "Asia/Kolkata", BillingConfig{Timezone: "Asia/Kolkata"}.Location().String())
}
