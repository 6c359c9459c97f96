package config

import (
	"fmt"

	toml "github.com/pelletier/go-toml/v2"
)

type view struct {
	APIKey             string  `toml:"openai_api_key"`
	AssistantID        string  `toml:"assistant_id"`
	BaseURL            string  `toml:"openai_base_url,omitempty"`
	RequestTimeoutSecs float64 `toml:"openai_timeout_secs"`
	RunTimeoutSecs     int     `toml:"assistants_run_timeout_secs"`
	VerifyTLS          bool    `toml:"httpx_verify"`
	MaxContextMessages int     `toml:"max_ctx_msgs"`
	SummaryModel       string  `toml:"model_name"`
	LogLevel           string  `toml:"log_level"`
}

// MarshalMaskedTOML renders cfg in config.toml form with the API key masked.
func MarshalMaskedTOML(cfg Config) ([]byte, error) {
	data, err := toml.Marshal(view{
		APIKey:             MaskSecret(cfg.APIKey),
		AssistantID:        cfg.AssistantID,
		BaseURL:            cfg.BaseURL,
		RequestTimeoutSecs: cfg.RequestTimeout.Seconds(),
		RunTimeoutSecs:     int(cfg.RunTimeout.Seconds()),
		VerifyTLS:          cfg.VerifyTLS,
		MaxContextMessages: cfg.MaxContextMessages,
		SummaryModel:       cfg.SummaryModel,
		LogLevel:           cfg.LogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func MaskSecret(secret string) string {
	runes := []rune(secret)
	switch {
	case len(runes) == 0:
		return ""
	case len(runes) <= 8:
		return "****"
	default:
		return string(runes[:3]) + "****" + string(runes[len(runes)-4:])
	}
}
