package conf

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config represents application configuration
type Config struct {
	// Storage configuration
	Store StoreConfig

	// Generation service configuration (optional)
	OpenAI OpenAIConfig

	// Weather service configuration (optional)
	Weather WeatherConfig

	// Feishu delivery configuration (optional)
	Feishu FeishuConfig

	// Admin API configuration
	API APIConfig

	// Log level (debug, info, warn, error)
	LogLevel string

	// Debug mode
	Debug bool
}

// StoreConfig contains file locations
type StoreConfig struct {
	DBPath         string
	SettingsPath   string
	CharactersPath string // optional persona YAML
	SeedPath       string // optional catalog seed YAML
}

// OpenAIConfig contains the text-generation configuration
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Enabled reports whether generation is configured
func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != ""
}

// WeatherConfig contains the OpenWeatherMap configuration
type WeatherConfig struct {
	APIKey  string
	Timeout time.Duration
}

// Enabled reports whether weather lookups are configured
func (c WeatherConfig) Enabled() bool {
	return c.APIKey != ""
}

// FeishuConfig contains Feishu configuration
type FeishuConfig struct {
	AppID     string
	AppSecret string
	ChatID    string
}

// Enabled reports whether notifications go to Feishu
func (c FeishuConfig) Enabled() bool {
	return c.AppID != "" && c.AppSecret != "" && c.ChatID != ""
}

// APIConfig contains admin API configuration
type APIConfig struct {
	Port int
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".cheer-notifier")

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "cheer.db")
	}

	settingsPath := os.Getenv("SETTINGS_PATH")
	if settingsPath == "" {
		settingsPath = filepath.Join(dataDir, "settings.yaml")
	}

	return &Config{
		Store: StoreConfig{
			DBPath:         dbPath,
			SettingsPath:   settingsPath,
			CharactersPath: os.Getenv("CHARACTERS_PATH"),
			SeedPath:       os.Getenv("CATALOG_SEED_PATH"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
			Model:   os.Getenv("OPENAI_MODEL"),
			Timeout: envSeconds("GENERATION_TIMEOUT_SECONDS", 30),
		},
		Weather: WeatherConfig{
			APIKey:  os.Getenv("OPENWEATHERMAP_API_KEY"),
			Timeout: envSeconds("WEATHER_TIMEOUT_SECONDS", 10),
		},
		Feishu: FeishuConfig{
			AppID:     os.Getenv("FEISHU_APP_ID"),
			AppSecret: os.Getenv("FEISHU_APP_SECRET"),
			ChatID:    os.Getenv("FEISHU_CHAT_ID"),
		},
		API: APIConfig{
			Port: envInt("API_PORT", 9876),
		},
		LogLevel: getenv("LOG_LEVEL", "info"),
		Debug:    os.Getenv("DEBUG") == "true",
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Store.DBPath == "" {
		return &ConfigError{Field: "DB_PATH", Message: "required"}
	}
	if c.Store.SettingsPath == "" {
		return &ConfigError{Field: "SETTINGS_PATH", Message: "required"}
	}
	if c.OpenAI.Timeout <= 0 {
		return &ConfigError{Field: "GENERATION_TIMEOUT_SECONDS", Message: "must be positive"}
	}
	if c.Weather.Timeout <= 0 {
		return &ConfigError{Field: "WEATHER_TIMEOUT_SECONDS", Message: "must be positive"}
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return &ConfigError{Field: "API_PORT", Message: "out of range"}
	}
	// A partial Feishu setup is almost always a typo
	if (c.Feishu.AppID != "" || c.Feishu.AppSecret != "") && !c.Feishu.Enabled() {
		return &ConfigError{Field: "FEISHU_APP_ID/FEISHU_APP_SECRET/FEISHU_CHAT_ID", Message: "all three are required together"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func envSeconds(key string, def int) time.Duration {
	return time.Duration(envInt(key, def)) * time.Second
}
