package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)

	assert.Contains(t, cfg.CORS.AllowedOrigins, "http://localhost:3000")

	assert.Equal(t, "groq", cfg.Extractor.Primary.Provider)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.Extractor.Primary.Model)
	assert.InDelta(t, 0.1, cfg.Extractor.Primary.Temperature, 1e-9)
	assert.Equal(t, 8000, cfg.Extractor.Primary.MaxOutputTokens)
	assert.Equal(t, 50000, cfg.Extractor.MaxTextChars)
	assert.Equal(t, 50000, cfg.Extractor.Primary.MaxTextChars)
	assert.Nil(t, cfg.Extractor.SecondaryConfig())

	assert.Equal(t, 3, cfg.FreeTier.DailyLimit)
	assert.Equal(t, int64(25), cfg.Session.MaxFileSizeMB)

	assert.Equal(t, "https://api.gumroad.com/v2/licenses/verify", cfg.License.Endpoint)
	assert.Equal(t, "freightsnap-pro", cfg.License.ProductPermalink)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FREIGHTSNAP_SERVER_PORT", ":9191")
	t.Setenv("FREIGHTSNAP_EXTRACTOR_SECONDARY_PROVIDER", "openai")
	t.Setenv("FREIGHTSNAP_EXTRACTOR_SECONDARY_MODEL", "gpt-4o-mini")
	t.Setenv("FREIGHTSNAP_FREE_TIER_DAILY_LIMIT", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9191", cfg.Server.Port)
	assert.Equal(t, 10, cfg.FreeTier.DailyLimit)

	secondary := cfg.Extractor.SecondaryConfig()
	require.NotNil(t, secondary)
	assert.Equal(t, "openai", secondary.Provider)
	assert.Equal(t, "gpt-4o-mini", secondary.Model)
	assert.Equal(t, 50000, secondary.MaxTextChars)
}

func TestLoadPlatformPortFallback(t *testing.T) {
	t.Setenv("PORT", "7777")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Server.Port)
}
