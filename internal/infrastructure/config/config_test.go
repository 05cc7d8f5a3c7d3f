package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  base_url: "https://shop.example.com/"
gateway:
  app_id: "app-123"
  test_mode: false
`), 0o644))

	t.Setenv("SOSPAY_GATEWAY_APP_SECRET", "s3cret")

	cfg, err := Load("production", path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Server.Mode)
	assert.Equal(t, "https://shop.example.com", cfg.Server.SiteURL())
	assert.Equal(t, "app-123", cfg.Gateway.AppID)
	assert.Equal(t, "s3cret", cfg.Gateway.AppSecret)
	assert.False(t, cfg.Gateway.TestMode)
	assert.Equal(t, "fail", cfg.Gateway.PaymentFailEndpoint)
	assert.Equal(t, "token", cfg.Gateway.RefundFailEndpoint)
	assert.Equal(t, "sos_session", cfg.Session.CookieName)
	assert.Equal(t, 30, cfg.RateLimit.RequestsPerMinute)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Scheduler.RefundSweepInterval())
	assert.Same(t, cfg, Get())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load("", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
