package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Chatbot ChatbotConfig `mapstructure:"chatbot"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Environment  string `mapstructure:"environment"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

type ChatbotConfig struct {
	Token            string `mapstructure:"token"`
	APIEndpoint      string `mapstructure:"api_endpoint"`
	Mode             string `mapstructure:"mode"`
	WebhookURL       string `mapstructure:"webhook_url"`
	WebhookSecret    string `mapstructure:"webhook_secret"`
	PollTimeout      int    `mapstructure:"poll_timeout"`
	Workers          int    `mapstructure:"workers"`
	TypingIntervalMS int    `mapstructure:"typing_interval_ms"`
	ChunkLimit       int    `mapstructure:"chunk_limit"`
	StartupRetries   int    `mapstructure:"startup_retries"`
}

// WebhookEndpoint is the URL registered with Telegram: the public webhook
// URL with the secret appended as the last path segment.
func (c ChatbotConfig) WebhookEndpoint() string {
	return strings.TrimRight(c.WebhookURL, "/") + "/" + c.WebhookSecret
}

type LLMConfig struct {
	APIKey          string  `mapstructure:"api_key"`
	BaseURL         string  `mapstructure:"base_url"`
	DefaultModel    string  `mapstructure:"default_model"`
	Temperature     float32 `mapstructure:"temperature"`
	TopP            float32 `mapstructure:"top_p"`
	TopK            float32 `mapstructure:"top_k"`
	MaxOutputTokens int32   `mapstructure:"max_output_tokens"`
	Timeout         int     `mapstructure:"timeout"`
	SystemPrompt    string  `mapstructure:"system_prompt"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads configuration from defaults, an optional YAML file and the
// environment. An empty configFile searches ./configs and the working directory.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// The bot has always been configured through these names.
	if err := bindLegacyEnv(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func bindLegacyEnv(v *viper.Viper) error {
	legacy := map[string]string{
		"chatbot.token": "TELEGRAM_TOKEN",
		"llm.api_key":   "GOOGLE_TOKEN",
		"llm.base_url":  "BASE_URL",
	}
	for key, name := range legacy {
		// Binding replaces the automatic name, so keep it listed first.
		automatic := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, automatic, name); err != nil {
			return err
		}
	}
	return nil
}

// Validate reports settings the bot cannot start without.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Chatbot.Token) == "" {
		missing = append(missing, "TELEGRAM_TOKEN")
	}
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		missing = append(missing, "GOOGLE_TOKEN")
	}
	if len(missing) > 0 {
		return NewConfigurationError(strings.Join(missing, ", "), "required token not set", "")
	}

	switch c.Chatbot.Mode {
	case ModePolling:
	case ModeWebhook:
		if c.Chatbot.WebhookURL == "" {
			return NewConfigurationError("chatbot.webhook_url", "webhook mode needs a public URL", "")
		}
		if !validWebhookSecret(c.Chatbot.WebhookSecret) {
			return NewConfigurationError("chatbot.webhook_secret", "webhook mode needs 16 to 256 characters from A-Z, a-z, 0-9, _ and -", "")
		}
	default:
		return NewConfigurationError("chatbot.mode", "must be polling or webhook", c.Chatbot.Mode)
	}

	if c.Chatbot.ChunkLimit <= 0 {
		return NewConfigurationError("chatbot.chunk_limit", "must be positive", fmt.Sprint(c.Chatbot.ChunkLimit))
	}

	return nil
}

func validWebhookSecret(secret string) bool {
	if len(secret) < 16 || len(secret) > 256 {
		return false
	}
	for _, r := range secret {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 150)

	v.SetDefault("chatbot.token", "")
	v.SetDefault("chatbot.api_endpoint", "")
	v.SetDefault("chatbot.mode", ModePolling)
	v.SetDefault("chatbot.webhook_url", "")
	v.SetDefault("chatbot.webhook_secret", "")
	v.SetDefault("chatbot.poll_timeout", 60)
	v.SetDefault("chatbot.workers", 8)
	v.SetDefault("chatbot.typing_interval_ms", 3000)
	v.SetDefault("chatbot.chunk_limit", 3900)
	v.SetDefault("chatbot.startup_retries", 5)

	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.default_model", "")
	v.SetDefault("llm.temperature", 0.9)
	v.SetDefault("llm.top_p", 1.0)
	v.SetDefault("llm.top_k", 1.0)
	v.SetDefault("llm.max_output_tokens", 4096)
	v.SetDefault("llm.timeout", 120)
	v.SetDefault("llm.system_prompt", "")

	v.SetDefault("log.level", "info")

	v.SetDefault("metrics.enabled", true)
}
