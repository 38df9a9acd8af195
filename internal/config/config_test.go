package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
api:
  environment: production
  port: "9000"
  jwt_signing_key: secret
  jwt_ttl: 2h
  allowed_cors_domains:
    - https://club.example.org
postgres:
  host: db
  user: club
  password: pw
  db: club
storage:
  bucket: club_assets
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	conf, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "production", conf.API.Environment)
	assert.Equal(t, "9000", conf.API.Port)
	assert.Equal(t, 2*time.Hour, conf.API.JWTTTL)
	assert.Equal(t, []string{"https://club.example.org"}, conf.API.AllowedCORSDomains)
	assert.Equal(t, "db", conf.Postgres.Host)
	assert.Equal(t, "5432", conf.Postgres.Port)
	assert.Equal(t, "disable", conf.Postgres.SSLMode)
	assert.Equal(t, "club_assets", conf.Storage.Bucket)
	assert.Equal(t, int64(5*1024*1024), conf.Storage.MaxUploadBytes)
	assert.Equal(t, "postgres", conf.Database.Driver)
	assert.True(t, conf.Metrics.Enabled)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("APP_API_PORT", "7000")
	t.Setenv("APP_STORAGE_BUCKET", "other")

	conf, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "7000", conf.API.Port)
	assert.Equal(t, "other", conf.Storage.Bucket)
}

func TestLoadRequiresSigningKey(t *testing.T) {
	_, err := Load(writeConfig(t, "api:\n  port: \"80\"\n"))
	assert.ErrorIs(t, err, errMissingSigningKey)
}
