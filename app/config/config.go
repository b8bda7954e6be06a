package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

const (
	defaultPath = "config.yaml"
	pathEnv     = "CHATROUTER_CONFIG"
)

type Config struct {
	Log     Log     `yaml:"log"`
	Server  Server  `yaml:"server"`
	LLM     LLM     `yaml:"llm"`
	Memory  Memory  `yaml:"memory"`
	Weather Weather `yaml:"weather"`
	News    News    `yaml:"news"`
	General General `yaml:"general"`
}

type Server struct {
	// Transport to serve: http or mcp (stdio)
	Mode string `yaml:"mode" example:"http" validate:"oneof=http mcp"`
	// HTTP listen address
	Listen string `yaml:"listen" example:":8080" validate:"required_if=Mode http"`
}

type LLM struct {
	// Disable the completion backend entirely, forcing deterministic fallbacks
	Disabled bool `yaml:"disabled" example:"false"`
	// Backend provider
	Provider string `yaml:"provider" example:"gemini" validate:"oneof=gemini openai"`
	// Base url override, required for openai-compatible gateways
	BaseURL string `yaml:"base_url" example:"https://openrouter.ai/api/v1"`
	// API token
	Token string `yaml:"token" example:"AIzaSyA-abc123456789DEF789ghi012JKL345mno"`
	// Preferred model
	Model string `yaml:"model" example:"gemini-2.5-flash" validate:"required"`
	// Models tried in order after the preferred one
	FallbackModels []string `yaml:"fallback_models" example:"[gemini-2.0-flash, gemini-1.5-flash]"`
	// Per-call timeout
	Timeout time.Duration `yaml:"timeout" example:"30s" validate:"gt=0"`
	// Pause after a rate-limited candidate
	RateLimitCooldown time.Duration `yaml:"rate_limit_cooldown" example:"2s" validate:"gte=0"`
}

type Memory struct {
	// Number of user/agent exchanges kept per session
	MaxTurns int `yaml:"max_turns" example:"6" validate:"gt=0"`
}

type Weather struct {
	// WeatherAPI.com base url
	BaseURL string `yaml:"base_url" example:"https://api.weatherapi.com/v1" validate:"required,url"`
	// WeatherAPI.com key, weather replies are disabled without it
	Token string `yaml:"token" example:"0123456789abcdef0123456789abcdef"`
	// Per-call timeout
	Timeout time.Duration `yaml:"timeout" example:"10s" validate:"gt=0"`
}

type News struct {
	// NewsAPI.org base url
	BaseURL string `yaml:"base_url" example:"https://newsapi.org/v2" validate:"required,url"`
	// NewsAPI.org key, news replies are disabled without it
	Token string `yaml:"token" example:"0123456789abcdef0123456789abcdef"`
	// Country code used when the message names no region
	DefaultRegion string `yaml:"default_region" example:"us" validate:"len=2"`
	// Number of headlines returned
	PageSize int `yaml:"page_size" example:"5" validate:"gt=0,lte=20"`
	// Per-call timeout
	Timeout time.Duration `yaml:"timeout" example:"10s" validate:"gt=0"`
}

type General struct {
	// Tradition the comforting passage is drawn from
	SupportSource string `yaml:"support_source" example:"Bhagavad Gita" validate:"required"`
	// Output budget for regular replies
	ConciseMaxTokens int `yaml:"concise_max_tokens" example:"512" validate:"gt=0"`
	// Output budget for creative/long-form replies
	DetailedMaxTokens int `yaml:"detailed_max_tokens" example:"2048" validate:"gtefield=ConciseMaxTokens"`
}

type Log struct {
	// Minimum level: debug, info, warn, error
	Level string `yaml:"level" example:"info" validate:"oneof=debug info warn error"`
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

// Path returns the config file location, honoring CHATROUTER_CONFIG.
func Path() string {
	if p := os.Getenv(pathEnv); p != "" {
		return p
	}

	return defaultPath
}

func Load(path string) (*Config, error) {
	var result Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.In("config").Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.In("config").Errorf("failed to parse YAML config: %w", err)
	}

	applyEnv(&result)
	applyDefaults(&result)

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.In("config").Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CHATROUTER_LLM_TOKEN"); v != "" {
		cfg.LLM.Token = v
	}
	if v := os.Getenv("CHATROUTER_WEATHER_TOKEN"); v != "" {
		cfg.Weather.Token = v
	}
	if v := os.Getenv("CHATROUTER_NEWS_TOKEN"); v != "" {
		cfg.News.Token = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "http"
	}
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "gemini"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaultModels[cfg.LLM.Provider]
	}
	if cfg.LLM.FallbackModels == nil {
		cfg.LLM.FallbackModels = defaultFallbacks[cfg.LLM.Provider]
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 30 * time.Second
	}
	if cfg.LLM.RateLimitCooldown == 0 {
		cfg.LLM.RateLimitCooldown = 2 * time.Second
	}

	if cfg.Memory.MaxTurns == 0 {
		cfg.Memory.MaxTurns = 6
	}

	if cfg.Weather.BaseURL == "" {
		cfg.Weather.BaseURL = "https://api.weatherapi.com/v1"
	}
	if cfg.Weather.Timeout == 0 {
		cfg.Weather.Timeout = 10 * time.Second
	}

	if cfg.News.BaseURL == "" {
		cfg.News.BaseURL = "https://newsapi.org/v2"
	}
	if cfg.News.DefaultRegion == "" {
		cfg.News.DefaultRegion = "us"
	}
	if cfg.News.PageSize == 0 {
		cfg.News.PageSize = 5
	}
	if cfg.News.Timeout == 0 {
		cfg.News.Timeout = 10 * time.Second
	}

	if cfg.General.SupportSource == "" {
		cfg.General.SupportSource = "Bhagavad Gita"
	}
	if cfg.General.ConciseMaxTokens == 0 {
		cfg.General.ConciseMaxTokens = 512
	}
	if cfg.General.DetailedMaxTokens == 0 {
		cfg.General.DetailedMaxTokens = 2048
	}
}

var defaultModels = map[string]string{
	"gemini": "gemini-2.5-flash",
	"openai": "gpt-4o-mini",
}

var defaultFallbacks = map[string][]string{
	"gemini": {"gemini-2.0-flash", "gemini-2.0-flash-lite", "gemini-1.5-flash"},
	"openai": {"gpt-4o", "gpt-3.5-turbo"},
}
