// Package config loads and validates the muse configuration from Viper.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Defaults
const (
	DefaultPort        = 5001
	ConfigName         = ".muse"
	EnvPrefix          = "MUSE"
	DefaultShutdownSec = 5
)

// AppConfig is the full service configuration.
type AppConfig struct {
	Verbose   bool            `mapstructure:"verbose"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Personas  PersonasConfig  `mapstructure:"personas"`
	LLM       LLMSettings     `mapstructure:"llm"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port    int      `mapstructure:"port" validate:"min=1,max=65535"`
	Origins []string `mapstructure:"origins" validate:"dive,url"`
}

type PersonasConfig struct {
	// Dir holds extra *.yaml persona files. Empty means built-ins only.
	Dir string `mapstructure:"dir"`
}

// LLMSettings is the raw llm section. Use LoadLLMConfig for the resolved
// provider configuration, which also applies env var fallbacks.
type LLMSettings struct {
	Provider  string `mapstructure:"provider" validate:"omitempty,oneof=openai ollama anthropic gemini"`
	Model     string `mapstructure:"model"`
	BaseURL   string `mapstructure:"baseURL" validate:"omitempty,url"`
	MaxTokens int    `mapstructure:"maxTokens" validate:"min=0"`
}

type TelemetryConfig struct {
	APIKey   string `mapstructure:"apiKey"`
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
}

// validate is a single instance of Validate, it caches struct info
var validate = validator.New()

// SetDefaults registers default values on the global Viper instance.
func SetDefaults() {
	viper.SetDefault("server.port", DefaultPort)
	viper.SetDefault("server.origins", []string{"http://localhost:3000", "http://localhost:5173"})
	viper.SetDefault("personas.dir", "")
	viper.SetDefault("llm.provider", "")
	viper.SetDefault("llm.model", "")
	viper.SetDefault("llm.baseURL", "")
	viper.SetDefault("llm.maxTokens", 0)
	viper.SetDefault("telemetry.apiKey", "")
	viper.SetDefault("telemetry.endpoint", "")
}

// Load unmarshals the global Viper state into an AppConfig and validates it.
func Load() (AppConfig, error) {
	var cfg AppConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if err := validate.Struct(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
