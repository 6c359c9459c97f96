package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/helpdesk-assistant/internal/domain"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const (
	configName = "config"
	configType = "toml"
	appDirName = "helpdesk-assistant"

	KeyAPIKey             = "openai_api_key"
	KeyAssistantID        = "assistant_id"
	KeyBaseURL            = "openai_base_url"
	KeyRequestTimeout     = "openai_timeout_secs"
	KeyRunTimeout         = "assistants_run_timeout_secs"
	KeyVerifyTLS          = "httpx_verify"
	KeyMaxContextMessages = "max_ctx_msgs"
	KeySummaryModel       = "model_name"
	KeyLogLevel           = "log_level"

	DefaultRequestTimeout     = 60 * time.Second
	DefaultRunTimeout         = 90 * time.Second
	DefaultMaxContextMessages = 20
	DefaultSummaryModel       = "gpt-4o-mini"
	DefaultLogLevel           = "info"
)

// Config is the effective runtime configuration. Environment variables win
// over config.toml, which wins over defaults.
type Config struct {
	APIKey             string
	AssistantID        string
	BaseURL            string
	RequestTimeout     time.Duration
	RunTimeout         time.Duration
	VerifyTLS          bool
	MaxContextMessages int
	SummaryModel       string
	LogLevel           string
	// ConfigFile is empty when no config.toml was found.
	ConfigFile string
}

type LoadOptions struct {
	// ConfigDir overrides $XDG_CONFIG_HOME/helpdesk-assistant.
	ConfigDir string
	// EnvFile is loaded into the process environment when it exists.
	// Variables already set are left alone.
	EnvFile string
	Viper   *viper.Viper
}

func DefaultConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(dir, appDirName), nil
}

func Load(opts LoadOptions) (Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return Config{}, err
	}

	cfg := opts.Viper
	if cfg == nil {
		cfg = viper.New()
	}

	configDir := opts.ConfigDir
	if configDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return Config{}, err
		}
		configDir = dir
	}

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(configDir)
	cfg.AutomaticEnv()

	cfg.SetDefault(KeyRequestTimeout, DefaultRequestTimeout.Seconds())
	cfg.SetDefault(KeyRunTimeout, int(DefaultRunTimeout.Seconds()))
	cfg.SetDefault(KeyMaxContextMessages, DefaultMaxContextMessages)
	cfg.SetDefault(KeySummaryModel, DefaultSummaryModel)
	cfg.SetDefault(KeyLogLevel, DefaultLogLevel)

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	return fromViper(cfg)
}

func fromViper(cfg *viper.Viper) (Config, error) {
	requestTimeout, err := parseSeconds(KeyRequestTimeout, cfg.GetString(KeyRequestTimeout))
	if err != nil {
		return Config{}, err
	}

	runTimeoutSecs, err := parseInt(KeyRunTimeout, cfg.GetString(KeyRunTimeout))
	if err != nil {
		return Config{}, err
	}

	maxContext, err := parseInt(KeyMaxContextMessages, cfg.GetString(KeyMaxContextMessages))
	if err != nil {
		return Config{}, err
	}

	summaryModel := strings.TrimSpace(cfg.GetString(KeySummaryModel))
	if summaryModel == "" {
		summaryModel = DefaultSummaryModel
	}

	return Config{
		APIKey:             strings.TrimSpace(cfg.GetString(KeyAPIKey)),
		AssistantID:        strings.TrimSpace(cfg.GetString(KeyAssistantID)),
		BaseURL:            strings.TrimSpace(cfg.GetString(KeyBaseURL)),
		RequestTimeout:     requestTimeout,
		RunTimeout:         time.Duration(runTimeoutSecs) * time.Second,
		VerifyTLS:          ParseBool(cfg.GetString(KeyVerifyTLS), false),
		MaxContextMessages: maxContext,
		SummaryModel:       summaryModel,
		LogLevel:           strings.TrimSpace(cfg.GetString(KeyLogLevel)),
		ConfigFile:         cfg.ConfigFileUsed(),
	}, nil
}

// ParseBool accepts 1/true/t/yes/y and 0/false/f/no/n in any case. Anything
// else yields fallback.
func ParseBool(raw string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "t", "yes", "y":
		return true
	case "0", "false", "f", "no", "n":
		return false
	default:
		return fallback
	}
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func parseSeconds(key string, raw string) (time.Duration, error) {
	secs, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || secs <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive number of seconds, got %q", domain.ErrConfiguration, strings.ToUpper(key), raw)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func parseInt(key string, raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", domain.ErrConfiguration, strings.ToUpper(key), raw)
	}
	return value, nil
}
