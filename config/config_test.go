package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaultsFillsProtocolKnobs(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	require.NotNil(t, cfg.Protocol)
	assert.Equal(t, 10, cfg.Protocol.CounterLookAheadWindow)
	assert.Equal(t, 1000, cfg.Protocol.RngRetryLimit)
	assert.Equal(t, 10000, cfg.Protocol.PBKDF2Iterations)
	assert.Equal(t, 16, cfg.Protocol.PBKDF2KeyLength)
	assert.False(t, cfg.Protocol.AllowLegacyV2)
}

func TestLoadFromFileYAMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.yaml"

	cfg := &Config{
		Environment: "staging",
		Protocol:    &ProtocolConfig{AllowLegacyV2: true, CounterLookAheadWindow: 20},
	}
	require.NoError(t, SaveToFile(cfg, path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", loaded.Environment)
	assert.True(t, loaded.Protocol.AllowLegacyV2)
	assert.Equal(t, 20, loaded.Protocol.CounterLookAheadWindow)
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("POWERAUTH_TEST_VAR", "resolved")
	assert.Equal(t, "resolved", SubstituteEnvVars("${POWERAUTH_TEST_VAR}"))
	assert.Equal(t, "fallback", SubstituteEnvVars("${POWERAUTH_TEST_VAR_UNSET:fallback}"))
}

func TestGetEnvironmentDefaultsToDevelopment(t *testing.T) {
	os.Unsetenv("POWERAUTH_ENV")
	os.Unsetenv("ENVIRONMENT")
	assert.Equal(t, "development", GetEnvironment())
	assert.True(t, IsDevelopment())
	assert.False(t, IsProduction())
}

func TestValidateFlagsNegativeLookAheadWindow(t *testing.T) {
	cfg := &Config{Protocol: &ProtocolConfig{CounterLookAheadWindow: -1, RngRetryLimit: 1000}}
	issues := Validate(cfg)
	require.NotEmpty(t, issues)
	assert.Equal(t, "error", issues[0].Level)
}

func TestLoadFallsBackToDefaultsWhenNoFilesPresent(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(LoaderOptions{ConfigDir: dir, Environment: "test"})
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Environment)
	assert.NotNil(t, cfg.Protocol)
}
