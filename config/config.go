package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a configuration instance. An empty path searches the default
// locations for config.yaml; a missing file is not an error.
func New(path string) (*Config, error) {
	v := NewEmptyViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.linkscout")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{v: v}, nil
}

// NewFromViper wraps an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a Viper instance with defaults and environment bindings
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LINKSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.port", "3001")
	v.SetDefault("server.allowed_origins", []string{
		"http://localhost:5173",
		"http://localhost:5174",
		"http://localhost:5175",
	})
	v.SetDefault("server.rate_limit", 2.0)
	v.SetDefault("server.rate_burst", 4)
	v.SetDefault("server.read_timeout", "90s")

	// Browser
	v.SetDefault("browser.chrome_path", "")
	v.SetDefault("browser.navigation_timeout", "30s")
	v.SetDefault("browser.settle_delay", "1s")
	v.SetDefault("browser.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	// Privacy policy resolution
	v.SetDefault("privacy.fetch_timeout", "15s")
	v.SetDefault("privacy.snippet_length", 500)
	v.SetDefault("privacy.max_text_length", 50)

	// Enrichment providers
	v.SetDefault("providers.timeout", "10s")
	v.SetDefault("providers.whois.source", "auto")
	v.SetDefault("providers.whois.api_key", "")
	v.SetDefault("providers.pagerank.api_key", "")
	v.SetDefault("providers.safebrowsing.api_key", "")

	// Generative assessment
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.timeout", "30s")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 512)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-2.0-flash")

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4o-mini")

	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-3-haiku-20240307-v1:0")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// bindLegacyEnv keeps the variable names the service has always been deployed with.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("server.port", "LINKSCOUT_SERVER_PORT", "PORT")
	_ = v.BindEnv("browser.chrome_path", "LINKSCOUT_BROWSER_CHROME_PATH", "CHROME_PATH")
	_ = v.BindEnv("providers.whois.api_key", "LINKSCOUT_PROVIDERS_WHOIS_API_KEY", "WHOIS_API_KEY")
	_ = v.BindEnv("providers.pagerank.api_key", "LINKSCOUT_PROVIDERS_PAGERANK_API_KEY", "OPEN_PAGERANK_KEY")
	_ = v.BindEnv("providers.safebrowsing.api_key", "LINKSCOUT_PROVIDERS_SAFEBROWSING_API_KEY", "GOOGLE_SAFE_BROWSING_KEY")
	_ = v.BindEnv("gemini.api_key", "LINKSCOUT_GEMINI_API_KEY", "GEMINI_API", "GEMINI_API_KEY")
	_ = v.BindEnv("openai.api_key", "LINKSCOUT_OPENAI_API_KEY", "OPENAI_API_KEY")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) time.Duration {
	return c.v.GetDuration(key)
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
