package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/straye-as/salesops-api/internal/config"
)

func TestNewLogger_Console(t *testing.T) {
	log, err := NewLogger(&config.LoggingConfig{Level: "debug", Format: "console"}, &config.AppConfig{Name: "test", Environment: "development"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(-1))
}

func TestNewLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	log, err := NewLogger(&config.LoggingConfig{Level: "loud", Format: "json"}, &config.AppConfig{Name: "test"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(-1))
	assert.True(t, log.Core().Enabled(0))
}

func TestNewLogger_WritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")
	log, err := NewLogger(&config.LoggingConfig{Level: "info", Format: "json", File: path, MaxSizeMB: 1}, &config.AppConfig{Name: "salesops", Environment: "test"})
	require.NoError(t, err)

	WithUser(WithRequest(log, "GET", "/api/v1/products", "req-1"), "u-1", "Agent").Info("searched")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := string(data)
	assert.True(t, strings.Contains(line, `"msg":"searched"`))
	assert.True(t, strings.Contains(line, `"request_id":"req-1"`))
	assert.True(t, strings.Contains(line, `"app":"salesops"`))
}
