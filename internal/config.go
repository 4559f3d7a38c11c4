package internal

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Config holds application settings
type Config struct {
	// User configurable settings
	TelegramBotToken string
	YouTubeAPIKey    string
	OpenAIAPIKey     string
	ChatModel        string
	DatabasePath     string
	LogLevel         string
	MaxSummaryWords  int
	HistoryLimit     int
	DefaultLanguage  string
	SummaryTimeout   time.Duration
	Verbose          bool

	// Fixed XDG paths (not configurable)
	ConfigDir string
	DataDir   string
	CacheDir  string
}

//go:embed config.toml
var defaultFS embed.FS

// EnsureDefaultConfig checks if a config file exists in the XDG config
// directory and creates it from the embedded default if it doesn't.
func EnsureDefaultConfig(configDir string) error {
	filePath := filepath.Join(configDir, "config.toml")
	if FileExists(filePath) {
		return nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaultContent, err := defaultFS.ReadFile("config.toml")
	if err != nil {
		return fmt.Errorf("reading embedded default configuration: %w", err)
	}

	if err := os.WriteFile(filePath, defaultContent, 0644); err != nil {
		return fmt.Errorf("writing default configuration: %w", err)
	}

	fmt.Printf("Created default configuration at %s\n", filePath)
	return nil
}

// InitConfig initializes Viper and loads configuration
func InitConfig() *Config {
	// XDG standard directories
	configDir := filepath.Join(xdg.ConfigHome, "tubechat")
	dataDir := filepath.Join(xdg.DataHome, "tubechat")
	cacheDir := filepath.Join(xdg.CacheHome, "tubechat")

	v := viper.New()

	// Set default values for configurable settings
	v.SetDefault("chat_model", "gpt-4o-mini")
	v.SetDefault("database", filepath.Join(dataDir, "tubechat.db"))
	v.SetDefault("log_level", "info")
	v.SetDefault("max_summary_words", 500)
	v.SetDefault("history_limit", 10)
	v.SetDefault("default_language", "en")
	v.SetDefault("summary_timeout", 2*time.Minute)
	v.SetDefault("verbose", false)

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("TUBECHAT")
	v.AutomaticEnv()

	// Credentials are also accepted from their conventional env vars.
	_ = v.BindEnv("telegram_bot_token", "TELEGRAM_BOT_TOKEN")
	_ = v.BindEnv("youtube_api_key", "YOUTUBE_API_KEY")
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file: %v\n", err)
		}
	}

	return &Config{
		TelegramBotToken: v.GetString("telegram_bot_token"),
		YouTubeAPIKey:    v.GetString("youtube_api_key"),
		OpenAIAPIKey:     v.GetString("openai_api_key"),
		ChatModel:        v.GetString("chat_model"),
		DatabasePath:     v.GetString("database"),
		LogLevel:         v.GetString("log_level"),
		MaxSummaryWords:  v.GetInt("max_summary_words"),
		HistoryLimit:     v.GetInt("history_limit"),
		DefaultLanguage:  v.GetString("default_language"),
		SummaryTimeout:   v.GetDuration("summary_timeout"),
		Verbose:          v.GetBool("verbose"),

		ConfigDir: configDir,
		DataDir:   dataDir,
		CacheDir:  cacheDir,
	}
}

// FileExists checks if a file exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

// EnsureDirs creates directories if needed
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if !FileExists(dir) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}
	}
	return nil
}

// ValidateModel checks if the model is supported
func ValidateModel(model string) error {
	supportedModels := []string{"gpt-4o", "gpt-4o-mini", "o4-mini", "gpt-4.1-nano"}
	if slices.Contains(supportedModels, model) {
		return nil
	}
	return fmt.Errorf("unsupported model: %s (supported: %s)", model, strings.Join(supportedModels, ", "))
}

// ValidateAPIRequirements checks the credentials needed by the video
// pipeline (YouTube Data API and OpenAI).
func ValidateAPIRequirements(config *Config) error {
	if config.YouTubeAPIKey == "" {
		return fmt.Errorf("YouTube API key is required - set it in config.toml or YOUTUBE_API_KEY environment variable")
	}
	if config.OpenAIAPIKey == "" {
		return fmt.Errorf("OpenAI API key is required - set it in config.toml or OPENAI_API_KEY environment variable")
	}
	return ValidateModel(config.ChatModel)
}

// ValidateBotRequirements checks everything the Telegram bot needs at
// startup. Missing required configuration is the only abort-worthy
// condition; the process refuses to start.
func ValidateBotRequirements(config *Config) error {
	if config.TelegramBotToken == "" {
		return fmt.Errorf("Telegram bot token is required - set it in config.toml or TELEGRAM_BOT_TOKEN environment variable")
	}
	return ValidateAPIRequirements(config)
}
