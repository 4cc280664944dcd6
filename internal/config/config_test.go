package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://localhost/revisit")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 9, cfg.Scheduler.ReviewHour)
	assert.Equal(t, []int{3, 7, 15}, cfg.Scheduler.InitialOffsetsDays)
	assert.Equal(t, "@every 1m", cfg.Dispatcher.Spec)
	assert.Equal(t, 10*time.Second, cfg.Dispatcher.SendTimeout)

	dsn, err := cfg.DB.DSN()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/revisit", dsn)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_SQLITE_PATH", "/tmp/revisit.db")
	t.Setenv("DISPATCHER_BATCH_SIZE", "25")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "/tmp/revisit.db", cfg.DB.SQLitePath)
	assert.Equal(t, 25, cfg.Dispatcher.BatchSize)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingEnvironmentVariables)
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_DRIVER", "mysql")

	_, err := Load()
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
