package config

import "time"

// ServerConfig holds HTTP transport settings
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	RateLimit      float64
	RateBurst      int
	ReadTimeout    time.Duration
}

// BrowserConfig holds headless browser settings
type BrowserConfig struct {
	ChromePath        string
	NavigationTimeout time.Duration
	SettleDelay       time.Duration
	UserAgent         string
}

// PrivacyConfig holds privacy policy resolution settings
type PrivacyConfig struct {
	FetchTimeout  time.Duration
	SnippetLength int
	MaxTextLength int
}

// ProvidersConfig holds enrichment provider credentials and bounds
type ProvidersConfig struct {
	Timeout            time.Duration
	WhoisSource        string
	WhoisAPIKey        string
	PageRankAPIKey     string
	SafeBrowsingAPIKey string
}

// LLMConfig represents the configuration for the generative assessment
type LLMConfig struct {
	Provider    string
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey    string
	ModelName string
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey    string
	ModelName string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region  string
	ModelID string
}

// LoggingConfig represents logger settings
type LoggingConfig struct {
	Level  string
	Format string
}

// GetServer returns the server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		Port:           c.GetString("server.port"),
		AllowedOrigins: c.GetStringSlice("server.allowed_origins"),
		RateLimit:      c.GetFloat64("server.rate_limit"),
		RateBurst:      c.GetInt("server.rate_burst"),
		ReadTimeout:    c.GetDuration("server.read_timeout"),
	}
}

// GetBrowser returns the browser configuration
func (c *Config) GetBrowser() BrowserConfig {
	return BrowserConfig{
		ChromePath:        c.GetString("browser.chrome_path"),
		NavigationTimeout: c.GetDuration("browser.navigation_timeout"),
		SettleDelay:       c.GetDuration("browser.settle_delay"),
		UserAgent:         c.GetString("browser.user_agent"),
	}
}

// GetPrivacy returns the privacy resolver configuration
func (c *Config) GetPrivacy() PrivacyConfig {
	return PrivacyConfig{
		FetchTimeout:  c.GetDuration("privacy.fetch_timeout"),
		SnippetLength: c.GetInt("privacy.snippet_length"),
		MaxTextLength: c.GetInt("privacy.max_text_length"),
	}
}

// GetProviders returns the enrichment provider configuration
func (c *Config) GetProviders() ProvidersConfig {
	return ProvidersConfig{
		Timeout:            c.GetDuration("providers.timeout"),
		WhoisSource:        c.GetString("providers.whois.source"),
		WhoisAPIKey:        c.GetString("providers.whois.api_key"),
		PageRankAPIKey:     c.GetString("providers.pagerank.api_key"),
		SafeBrowsingAPIKey: c.GetString("providers.safebrowsing.api_key"),
	}
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider:    c.GetString("llm.provider"),
		Timeout:     c.GetDuration("llm.timeout"),
		Temperature: float32(c.GetFloat64("llm.temperature")),
		MaxTokens:   c.GetInt("llm.max_tokens"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:    c.GetString("gemini.api_key"),
		ModelName: c.GetString("gemini.model_name"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:    c.GetString("openai.api_key"),
		ModelName: c.GetString("openai.model_name"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:  c.GetString("bedrock.region"),
		ModelID: c.GetString("bedrock.model_id"),
	}
}

// GetLogging returns the logging configuration
func (c *Config) GetLogging() LoggingConfig {
	return LoggingConfig{
		Level:  c.GetString("logging.level"),
		Format: c.GetString("logging.format"),
	}
}
