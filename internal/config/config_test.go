package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadClient_Defaults(t *testing.T) {
	t.Setenv("LUMIX_API", "")
	t.Setenv("LUMIX_USER", "")
	t.Setenv("LUMIX_HTTP_TIMEOUT", "")

	cfg := LoadClient()

	assert.Equal(t, "http://localhost:8080", cfg.APIBase)
	assert.Empty(t, cfg.UserID)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
}

func TestLoadClient_FromEnvironment(t *testing.T) {
	t.Setenv("LUMIX_API", "https://lumix.example.com")
	t.Setenv("LUMIX_USER", "user-1")
	t.Setenv("LUMIX_HTTP_TIMEOUT", "3s")

	cfg := LoadClient()

	assert.Equal(t, "https://lumix.example.com", cfg.APIBase)
	assert.Equal(t, "user-1", cfg.UserID)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
}

func TestLoadServer_FromEnvironment(t *testing.T) {
	t.Setenv("LUMIXD_PORT", "9090")
	t.Setenv("LUMIXD_DB", "/tmp/lumix-test.db")
	t.Setenv("LUMIXD_RATE_LIMIT", "120")

	cfg := LoadServer()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/tmp/lumix-test.db", cfg.DBPath)
	assert.Equal(t, 120, cfg.RateLimit)
}

func TestLoadServer_IgnoresInvalidValues(t *testing.T) {
	t.Setenv("LUMIXD_RATE_LIMIT", "not-a-number")
	assert.Equal(t, 600, LoadServer().RateLimit)

	t.Setenv("LUMIXD_RATE_LIMIT", "-5")
	assert.Equal(t, 600, LoadServer().RateLimit)

	t.Setenv("LUMIX_HTTP_TIMEOUT", "soon")
	assert.Equal(t, 10*time.Second, LoadClient().HTTPTimeout)
}
