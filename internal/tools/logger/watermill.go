package logger

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

type watermillAdapter struct {
	log *zerolog.Logger
}

// NewWatermillAdapter lets watermill publishers log through zerolog.
func NewWatermillAdapter(log *zerolog.Logger) watermill.LoggerAdapter {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &watermillAdapter{log: log}
}

func (w *watermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	w.log.Error().Err(err).Fields(map[string]any(fields)).Msg(msg)
}

func (w *watermillAdapter) Info(msg string, fields watermill.LogFields) {
	w.log.Info().Fields(map[string]any(fields)).Msg(msg)
}

func (w *watermillAdapter) Debug(msg string, fields watermill.LogFields) {
	w.log.Debug().Fields(map[string]any(fields)).Msg(msg)
}

func (w *watermillAdapter) Trace(msg string, fields watermill.LogFields) {
	w.log.Trace().Fields(map[string]any(fields)).Msg(msg)
}

func (w *watermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	log := w.log.With().Fields(map[string]any(fields)).Logger()
	return &watermillAdapter{log: &log}
}
