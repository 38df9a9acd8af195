package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basma-club/clubhub/internal/api"
	"github.com/basma-club/clubhub/internal/config"
	"github.com/basma-club/clubhub/internal/db"
)

func writeSQLiteConfig(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "club.sqlite")
	confPath := filepath.Join(dir, "config.yml")
	body := "api:\n" +
		"  environment: test\n" +
		"  log_level: warn\n" +
		"  jwt_signing_key: secret\n" +
		"database:\n" +
		"  driver: sqlite\n" +
		"  sqlite_path: " + dbPath + "\n"
	require.NoError(t, os.WriteFile(confPath, []byte(body), 0o600))

	return confPath, dbPath
}

func TestMigrateCommand(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	confPath, dbPath := writeSQLiteConfig(t)

	cmd := newRootCommand()
	cmd.SetArgs([]string{"--config", confPath, "migrate"})
	require.NoError(t, cmd.Execute())

	info, err := os.Stat(dbPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	cmd = newRootCommand()
	cmd.SetArgs([]string{"--config", confPath, "migrate", "--reset"})
	require.NoError(t, cmd.Execute())
}

func TestMigrateCommandBadConfig(t *testing.T) {
	dir := t.TempDir()
	confPath := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(confPath, []byte("api:\n  port: \"1\"\n"), 0o600))

	cmd := newRootCommand()
	cmd.SetArgs([]string{"--config", confPath, "migrate"})
	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize config")
}

func TestReloadAppliesOrigins(t *testing.T) {
	gdb, err := db.OpenSQLite("")
	require.NoError(t, err)

	conf := &config.AppConfig{
		API: &config.APIConfig{
			JWTSigningKey:      "secret",
			LogLevel:           "info",
			AllowedCORSDomains: []string{"http://localhost:5173"},
		},
		Gin: &config.GinConfig{Mode: gin.TestMode},
	}
	s := api.NewServer(conf, gdb, api.Dependencies{})
	require.True(t, s.Origins.Allowed("http://localhost:5173"))

	reload(s, &config.AppConfig{API: &config.APIConfig{
		LogLevel:           "warn",
		AllowedCORSDomains: []string{"https://club.example.org"},
	}})

	assert.True(t, s.Origins.Allowed("https://club.example.org"))
	assert.False(t, s.Origins.Allowed("http://localhost:5173"))
}
