package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:4000", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Server.ReadHeaderTimeout)
	assert.Zero(t, cfg.Server.RateLimit)
	assert.Equal(t, 20, cfg.Server.RateBurst)
	assert.Empty(t, cfg.Server.CORSOrigins)
	assert.Equal(t, "data.xlsx", cfg.Workbook.Path)
	assert.Empty(t, cfg.Workbook.Schema)
	assert.Equal(t, 5*time.Second, cfg.Workbook.LockTimeout)
	assert.Empty(t, cfg.Journal.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
server:
  addr: 127.0.0.1:9090
  rate_limit: 2.5
  cors_origins:
    - http://localhost:3000
workbook:
  path: /srv/wells.xlsx
  lock_timeout: 250ms
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "welltracker.yaml"), []byte(yaml), 0644))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.InDelta(t, 2.5, cfg.Server.RateLimit, 0.001)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "/srv/wells.xlsx", cfg.Workbook.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Workbook.LockTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply for unset values
	assert.Equal(t, 20, cfg.Server.RateBurst)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadExplicitPath(t *testing.T) {
	dir := chdirTemp(t)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("journal:\n  path: journal.db\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "journal.db", cfg.Journal.Path)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "welltracker.yaml"), []byte("workbook:\n  path: file.xlsx\n"), 0644))
	t.Setenv("WELLTRACKER_WORKBOOK_PATH", "env.xlsx")
	t.Setenv("WELLTRACKER_LOG_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env.xlsx", cfg.Workbook.Path)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestInitLogger(t *testing.T) {
	t.Cleanup(func() {
		log.SetLevel(log.InfoLevel)
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	})

	tests := []struct {
		name    string
		cfg     LogConfig
		level   log.Level
		wantErr bool
	}{
		{"text debug", LogConfig{Level: "debug", Format: "text"}, log.DebugLevel, false},
		{"json warn", LogConfig{Level: "warn", Format: "json"}, log.WarnLevel, false},
		{"default format", LogConfig{Level: "info"}, log.InfoLevel, false},
		{"bad level", LogConfig{Level: "loud", Format: "text"}, 0, true},
		{"bad format", LogConfig{Level: "info", Format: "xml"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitLogger(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.level, log.GetLevel())
		})
	}
}
