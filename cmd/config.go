package cmd

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seasworth/seasworthai/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Manage configuration settings for seasworthai.`,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Set a configuration value. Supported keys:
- host, port: Address to bind the server to (default: 0.0.0.0:3000)
- static_dir: Directory holding the static pages (default: public)
- chat_model: Model used for /api/chat (default: llama3-8b-8192)
- log_format: text or json
- upstream_timeout: Per-request upstream deadline, e.g. 30s
- groq_api_key, serper_api_key, clipdrop_api_key, cryptocompare_api_key,
  google_api_key, imagine_token, together_api_key: Upstream credentials`,
	Args: cobra.ExactArgs(2),
	Run:  runConfigSet,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Get a configuration value",
	Long:  `Get a configuration value. Credentials are always masked.`,
	Args:  cobra.ExactArgs(1),
	Run:   runConfigGet,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
}

// setting reads one user-facing key of config.Config and parses new values
// for the config file key it is stored under.
type setting struct {
	key    string
	secret bool
	get    func(*config.Config) string
	parse  func(string) (any, error)
}

func parseString(v string) (any, error) { return v, nil }

func stringSetting(key string, field func(*config.Config) string, secret bool) setting {
	return setting{key: key, secret: secret, get: field, parse: parseString}
}

var settings = map[string]setting{
	"host":       stringSetting("host", func(c *config.Config) string { return c.Host }, false),
	"static_dir": stringSetting("static_dir", func(c *config.Config) string { return c.StaticDir }, false),
	"chat_model": stringSetting("chat_model", func(c *config.Config) string { return c.ChatModel }, false),
	"log_format": stringSetting("log_format", func(c *config.Config) string { return c.LogFormat }, false),
	"port": {
		key: "port",
		get: func(c *config.Config) string {
			if c.Port == 0 {
				return ""
			}
			return strconv.Itoa(c.Port)
		},
		parse: func(v string) (any, error) {
			port, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("invalid port value: %s. Must be an integer", v)
			}
			return port, nil
		},
	},
	"upstream_timeout": {
		key: "upstream_timeout",
		get: func(c *config.Config) string { return c.UpstreamTimeout.String() },
		parse: func(v string) (any, error) {
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("invalid duration %q: %w", v, err)
			}
			return d.String(), nil
		},
	},
	"groq_api_key":          stringSetting("credentials.groq_api_key", func(c *config.Config) string { return c.Credentials.Groq }, true),
	"serper_api_key":        stringSetting("credentials.serper_api_key", func(c *config.Config) string { return c.Credentials.Serper }, true),
	"clipdrop_api_key":      stringSetting("credentials.clipdrop_api_key", func(c *config.Config) string { return c.Credentials.Clipdrop }, true),
	"cryptocompare_api_key": stringSetting("credentials.cryptocompare_api_key", func(c *config.Config) string { return c.Credentials.CryptoCompare }, true),
	"google_api_key":        stringSetting("credentials.google_api_key", func(c *config.Config) string { return c.Credentials.Google }, true),
	"imagine_token":         stringSetting("credentials.imagine_token", func(c *config.Config) string { return c.Credentials.Imagine }, true),
	"together_api_key":      stringSetting("credentials.together_api_key", func(c *config.Config) string { return c.Credentials.Together }, true),
}

func lookupSetting(key string) setting {
	s, ok := settings[key]
	if !ok {
		log.Fatalf("Invalid key: %s. Valid keys are: %s", key, strings.Join(settingKeys(), ", "))
	}
	return s
}

func settingKeys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func runConfigSet(cmd *cobra.Command, args []string) {
	key, value := args[0], args[1]
	s := lookupSetting(key)

	parsed, err := s.parse(value)
	if err != nil {
		log.Fatalf("%v", err)
	}

	// Set touches the config file only; env and .env values are not copied in.
	if err := config.Set(s.key, parsed); err != nil {
		log.Fatalf("Failed to save configuration: %v", err)
	}

	fmt.Printf("Configuration updated: %s = %s\n", key, mask(s, value))
}

func runConfigGet(cmd *cobra.Command, args []string) {
	key := args[0]
	s := lookupSetting(key)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	value := s.get(cfg)
	if value == "" {
		fmt.Printf("%s is not set\n", key)
	} else {
		fmt.Printf("%s = %s\n", key, mask(s, value))
	}
}

func mask(s setting, value string) string {
	if s.secret && value != "" {
		return "********"
	}
	return value
}
