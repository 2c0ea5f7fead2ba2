package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the config directory and working directory at empty temp
// dirs and clears every bound environment variable.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Chdir(t.TempDir())
	for _, env := range envBindings {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
	return home
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	d := DefaultConfig()
	assert.Equal(t, d.Host, cfg.Host)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, int64(50<<20), cfg.MaxBodyBytes)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, "llama3-8b-8192", cfg.ChatModel)
	assert.Equal(t, d.Upstreams, cfg.Upstreams)
	assert.Equal(t, Credentials{}, cfg.Credentials)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "8081")
	t.Setenv("UPSTREAM_TIMEOUT", "5s")
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("CRYPTOCOMPARE_API_KEY", "cc_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, "gsk_test", cfg.Credentials.Groq)
	assert.Equal(t, "cc_test", cfg.Credentials.CryptoCompare)
	assert.Empty(t, cfg.Credentials.Serper)
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(".env", []byte("SERPER_API_KEY=from-dotenv\nGROQ_API_KEY=from-dotenv\n"), 0o600))
	t.Setenv("GROQ_API_KEY", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Credentials.Groq)
	assert.Equal(t, "from-dotenv", cfg.Credentials.Serper)
}

func TestSetAndLoad(t *testing.T) {
	isolate(t)

	require.NoError(t, Set("port", 9090))
	require.NoError(t, Set("chat_model", "llama-3.1-8b-instant"))
	require.NoError(t, Set("upstream_timeout", "5s"))
	require.NoError(t, Set("credentials.clipdrop_api_key", "clip"))

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, loaded.Port)
	assert.Equal(t, "llama-3.1-8b-instant", loaded.ChatModel)
	assert.Equal(t, 5*time.Second, loaded.UpstreamTimeout)
	assert.Equal(t, "clip", loaded.Credentials.Clipdrop)
	assert.Equal(t, DefaultConfig().Host, loaded.Host)
}

func TestSet_DoesNotPersistEnvironment(t *testing.T) {
	home := isolate(t)
	require.NoError(t, os.WriteFile(".env", []byte("SERPER_API_KEY=serper_from_dotenv\n"), 0o600))
	t.Setenv("GROQ_API_KEY", "gsk_from_env_only")

	require.NoError(t, Set("port", 8080))

	path := filepath.Join(home, "seasworthai", "config.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "gsk_from_env_only")
	assert.NotContains(t, string(data), "serper_from_dotenv")
	assert.Contains(t, string(data), "8080")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// The environment still applies at load time.
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "gsk_from_env_only", cfg.Credentials.Groq)
}

func TestSet_TightensExistingFile(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, "seasworthai")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"host":"127.0.0.1"}`), 0o644))

	require.NoError(t, Set("credentials.groq_api_key", "gsk_file"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, "gsk_file", cfg.Credentials.Groq)
}

func TestSet_RejectsInvalidValue(t *testing.T) {
	home := isolate(t)

	assert.Error(t, Set("port", 70000))
	assert.Error(t, Set("log_format", "xml"))

	_, err := os.Stat(filepath.Join(home, "seasworthai", "config.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad port", func(c *Config) { c.Port = 70000 }, true},
		{"zero body limit", func(c *Config) { c.MaxBodyBytes = 0 }, true},
		{"zero timeout", func(c *Config) { c.UpstreamTimeout = 0 }, true},
		{"json logs", func(c *Config) { c.LogFormat = "json" }, false},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCredentials_Lookup(t *testing.T) {
	c := Credentials{Groq: "g", Google: "goog"}

	v, ok := c.Lookup(CredentialGroq)
	assert.True(t, ok)
	assert.Equal(t, "g", v)

	v, ok = c.Lookup(CredentialGoogle)
	assert.True(t, ok)
	assert.Equal(t, "goog", v)

	_, ok = c.Lookup(CredentialSerper)
	assert.False(t, ok)

	_, ok = c.Lookup(Credential("UNKNOWN"))
	assert.False(t, ok)
}
