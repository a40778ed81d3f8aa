package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Pretty bool   `yaml:"pretty" env:"LOG_PRETTY"`
}

// New creates a configured zerolog.Logger.
func New(cfg Config) zerolog.Logger {
	var w io.Writer = os.Stdout
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
