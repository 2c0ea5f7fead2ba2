package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configName     = "config"
	configFileName = configName + ".json"
)

// Credential names an external secret by the environment variable that carries it.
type Credential string

const (
	CredentialGroq          Credential = "GROQ_API_KEY"
	CredentialSerper        Credential = "SERPER_API_KEY"
	CredentialClipdrop      Credential = "CLIPDROP_API_KEY"
	CredentialCryptoCompare Credential = "CRYPTOCOMPARE_API_KEY"
	CredentialGoogle        Credential = "GOOGLE_API_KEY"
	CredentialImagine       Credential = "IMAGINE_TOKEN"
	CredentialTogether      Credential = "TOGETHER_API_KEY"
)

// Credentials holds the API keys of every upstream service.
// IMAGINE_TOKEN and TOGETHER_API_KEY are loaded but not consumed by any endpoint yet.
type Credentials struct {
	Groq          string `mapstructure:"groq_api_key"`
	Serper        string `mapstructure:"serper_api_key"`
	Clipdrop      string `mapstructure:"clipdrop_api_key"`
	CryptoCompare string `mapstructure:"cryptocompare_api_key"`
	Google        string `mapstructure:"google_api_key"`
	Imagine       string `mapstructure:"imagine_token"`
	Together      string `mapstructure:"together_api_key"`
}

// Lookup returns the value of the named credential and whether it is set.
func (c Credentials) Lookup(name Credential) (string, bool) {
	var value string
	switch name {
	case CredentialGroq:
		value = c.Groq
	case CredentialSerper:
		value = c.Serper
	case CredentialClipdrop:
		value = c.Clipdrop
	case CredentialCryptoCompare:
		value = c.CryptoCompare
	case CredentialGoogle:
		value = c.Google
	case CredentialImagine:
		value = c.Imagine
	case CredentialTogether:
		value = c.Together
	}
	return value, value != ""
}

// Upstreams holds the endpoint of every proxied service.
type Upstreams struct {
	Chat          string `mapstructure:"chat"`
	Search        string `mapstructure:"search"`
	Image         string `mapstructure:"image"`
	CryptoPrice   string `mapstructure:"crypto_price"`
	CryptoTopList string `mapstructure:"crypto_toplist"`
}

// Config holds the application configuration
type Config struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Debug           bool          `mapstructure:"debug"`
	Verbose         bool          `mapstructure:"verbose"`
	LogFormat       string        `mapstructure:"log_format"`
	StaticDir       string        `mapstructure:"static_dir"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	UpstreamTimeout time.Duration `mapstructure:"upstream_timeout"`
	ChatModel       string        `mapstructure:"chat_model"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	Upstreams       Upstreams     `mapstructure:"upstreams"`
	Credentials     Credentials   `mapstructure:"credentials"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            3000,
		LogFormat:       "text",
		StaticDir:       "public",
		MaxBodyBytes:    50 << 20,
		UpstreamTimeout: 30 * time.Second,
		ChatModel:       "llama3-8b-8192",
		CORSOrigins:     []string{"*"},
		Upstreams: Upstreams{
			Chat:          "https://api.groq.com/openai/v1",
			Search:        "https://google.serper.dev/search",
			Image:         "https://clipdrop-api.co/text-to-image/v1",
			CryptoPrice:   "https://min-api.cryptocompare.com/data/price",
			CryptoTopList: "https://min-api.cryptocompare.com/data/top/mktcapfull",
		},
	}
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"host":                              "HOST",
	"port":                              "PORT",
	"debug":                             "DEBUG",
	"log_format":                        "LOG_FORMAT",
	"static_dir":                        "STATIC_DIR",
	"upstream_timeout":                  "UPSTREAM_TIMEOUT",
	"chat_model":                        "CHAT_MODEL",
	"cors_origins":                      "CORS_ORIGINS",
	"credentials.groq_api_key":          string(CredentialGroq),
	"credentials.serper_api_key":        string(CredentialSerper),
	"credentials.clipdrop_api_key":      string(CredentialClipdrop),
	"credentials.cryptocompare_api_key": string(CredentialCryptoCompare),
	"credentials.google_api_key":        string(CredentialGoogle),
	"credentials.imagine_token":         string(CredentialImagine),
	"credentials.together_api_key":      string(CredentialTogether),
}

// Load loads configuration with precedence: ENV vars > config file > defaults.
// A .env file in the working directory is applied first without overriding
// variables that are already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName(configName)
	v.SetConfigType("json")

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	v.AddConfigPath(configDir)

	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	// Try to read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the values that would make the server unusable.
// Credentials are deliberately not checked here; endpoints check them per request.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", c.MaxBodyBytes)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream_timeout must be positive, got %s", c.UpstreamTimeout)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q (want text or json)", c.LogFormat)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("host", d.Host)
	v.SetDefault("port", d.Port)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("static_dir", d.StaticDir)
	v.SetDefault("max_body_bytes", d.MaxBodyBytes)
	v.SetDefault("upstream_timeout", d.UpstreamTimeout)
	v.SetDefault("chat_model", d.ChatModel)
	v.SetDefault("cors_origins", d.CORSOrigins)
	v.SetDefault("upstreams.chat", d.Upstreams.Chat)
	v.SetDefault("upstreams.search", d.Upstreams.Search)
	v.SetDefault("upstreams.image", d.Upstreams.Image)
	v.SetDefault("upstreams.crypto_price", d.Upstreams.CryptoPrice)
	v.SetDefault("upstreams.crypto_toplist", d.Upstreams.CryptoTopList)
	for key := range envBindings {
		if strings.HasPrefix(key, "credentials.") {
			v.SetDefault(key, "")
		}
	}
}

// Set persists one key in the config file. Only values already in the file
// and the new value are written: the environment and .env never reach disk.
// The resulting configuration must pass Validate. The file is written 0600.
func Set(key string, value any) error {
	configDir, err := getConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	configPath := filepath.Join(configDir, configFileName)

	file := viper.New()
	file.SetConfigType("json")
	if _, err := os.Stat(configPath); err == nil {
		file.SetConfigFile(configPath)
		if err := file.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	file.Set(key, value)
	settings := file.AllSettings()

	staged := viper.New()
	setDefaults(staged)
	if err := staged.MergeConfigMap(settings); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	var cfg Config
	if err := staged.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return writePrivate(configPath, data)
}

// writePrivate replaces path with data through a 0600 temp file and rename,
// so an existing file with wider permissions is not reused.
func writePrivate(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.json")
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// getConfigDir returns the configuration directory path (XDG-compliant)
func getConfigDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "seasworthai"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "seasworthai"), nil
}
