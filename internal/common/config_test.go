package common

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "./data/jobs.db", cfg.Store.SQLitePath)
	assert.Equal(t, 4, cfg.Pipeline.Workers)
	assert.Equal(t, time.Hour, cfg.Artifacts.Retention)
	assert.Equal(t, "pdftotext", cfg.Convert.Pdftotext)
	assert.Empty(t, cfg.Intake.Dirs)

	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DB_URL", "postgres://localhost/resumes")
	t.Setenv("PIPELINE_WORKERS", "8")
	t.Setenv("JOB_RETENTION", "30m")
	t.Setenv("INTAKE_DIRS", " /srv/intake/a , /srv/intake/b ,")

	cfg := LoadConfig()
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 8, cfg.Pipeline.Workers)
	assert.Equal(t, 30*time.Minute, cfg.Artifacts.Retention)
	assert.Equal(t, []string{"/srv/intake/a", "/srv/intake/b"}, cfg.Intake.Dirs)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cfg := LoadConfig()

	cfg.Store.Driver = "mysql"
	assert.Error(t, cfg.Validate())

	cfg.Store.Driver = "postgres"
	cfg.Store.PostgresDSN = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	cfg = LoadConfig()
	cfg.Pipeline.Workers = 0
	assert.Error(t, cfg.Validate())
}

func TestAppErrorUnwrap(t *testing.T) {
	err := NewAppError("JOB_FAILED", "processing failed", ErrUnsupportedDocument)
	assert.True(t, errors.Is(err, ErrUnsupportedDocument))
	assert.Contains(t, err.Error(), "JOB_FAILED")

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "JOB_FAILED", appErr.Code)
}
