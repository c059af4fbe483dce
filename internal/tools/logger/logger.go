package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates the service logger. Unknown or empty levels fall back to info.
func New(level string) *zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	parsed, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		parsed = zerolog.InfoLevel
	}

	log := zerolog.New(os.Stdout).
		Level(parsed).
		With().
		Timestamp().
		Str("service", "rental-gateway").
		Logger()

	return &log
}
