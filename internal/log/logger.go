package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config captures options for the process logger.
type Config struct {
	Level   string    // "debug", "info", ...; falls back to LOG_LEVEL
	Output  io.Writer // defaults to os.Stderr
	Service string
}

var (
	mu   sync.RWMutex
	base = zerolog.New(os.Stderr).With().Timestamp().Str("service", "helpdesk-assistant").Logger()
)

// Configure replaces the base logger. Later calls win, so the CLI can
// reconfigure after flags are parsed.
func Configure(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	raw := cfg.Level
	if raw == "" {
		raw = os.Getenv("LOG_LEVEL")
	}
	if raw != "" {
		if parsed, err := zerolog.ParseLevel(raw); err == nil {
			level = parsed
		}
	}
	zerolog.TimeFieldFormat = time.RFC3339

	writer := cfg.Output
	if writer == nil {
		writer = os.Stderr
	}
	service := cfg.Service
	if service == "" {
		service = "helpdesk-assistant"
	}

	logger := zerolog.New(writer).Level(level).With().
		Timestamp().
		Str("service", service).
		Logger()

	mu.Lock()
	base = logger
	mu.Unlock()
	return logger
}

func Base() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// WithComponent returns a child logger annotated with the given component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}
