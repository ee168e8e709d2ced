package lingotutor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ErrMissingEnvironmentVariables is returned when a required secret is unset.
var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env           string `mapstructure:"env"`            // current application environment (local, dev, production)
	Port          string `mapstructure:"port"`           // HTTP listen port
	OpenAIAPIKey  string `mapstructure:"-"`              // model API key loaded from environment
	ModelName     string `mapstructure:"model"`          // chat completion model, empty means the default
	PromptsPath   string `mapstructure:"prompts_path"`   // path to the prompt template JSON file
	MainListsDir  string `mapstructure:"main_lists_dir"` // read-only pre-seeded collections
	UserListsDir  string `mapstructure:"user_lists_dir"` // mutable user collections
	AttemptDBPath string `mapstructure:"attempt_db"`     // sqlite file for quiz attempt history
	TranscriptDir string `mapstructure:"transcript_dir"` // per-quiz LLM transcript logs, empty disables
	SessionSecret string `mapstructure:"-"`              // cookie session secret loaded from environment
	AdminUser     string `mapstructure:"admin_user"`     // single-user login name
	AdminPassword string `mapstructure:"-"`              // login password loaded from environment
}

// LoadConfig reads configuration from config files and environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	v.SetDefault("env", "local")
	v.SetDefault("port", "8180")
	v.SetDefault("model", "")
	v.SetDefault("prompts_path", "prompts/general_system_prompts.json")
	v.SetDefault("main_lists_dir", "lists/main_lists")
	v.SetDefault("user_lists_dir", "lists/user_lists")
	v.SetDefault("attempt_db", "./attempts.db")
	v.SetDefault("transcript_dir", "log")
	v.SetDefault("admin_user", "admin")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("session_secret", "SESSION_SECRET")
	_ = v.BindEnv("admin_password", "ADMIN_PASSWORD")
	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("port", "PORT")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	cfg.OpenAIAPIKey = v.GetString("openai_api_key")
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY: %w", ErrMissingEnvironmentVariables)
	}

	cfg.SessionSecret = v.GetString("session_secret")
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET: %w", ErrMissingEnvironmentVariables)
	}

	cfg.AdminPassword = v.GetString("admin_password")
	if cfg.AdminPassword == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD: %w", ErrMissingEnvironmentVariables)
	}

	return &cfg, nil
}
