package slowlog

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Logger interface {
	Start(name string)
	Stop(name string) time.Duration
}

// Observer receives every finished breakpoint, e.g. a metrics histogram.
type Observer func(name string, duration time.Duration)

type slowLogger struct {
	log           *zerolog.Logger
	observer      Observer
	ongoingTimers map[string]time.Time
	now           func() time.Time
	sync.Mutex
}

func (s *slowLogger) Start(name string) {
	s.Lock()
	s.ongoingTimers[name] = s.now()
	s.Unlock()
}

// Stop finishes the breakpoint. Stopping an unknown name returns zero and
// logs nothing.
func (s *slowLogger) Stop(name string) time.Duration {
	s.Lock()
	start, ok := s.ongoingTimers[name]
	delete(s.ongoingTimers, name)
	s.Unlock()

	if !ok {
		return 0
	}

	duration := s.now().Sub(start)

	s.log.Debug().
		Float64("duration", duration.Seconds()).
		Str("breakpoint_name", name).
		Msg("")

	if s.observer != nil {
		s.observer(name, duration)
	}

	return duration
}

func CreateLogger(log *zerolog.Logger) *slowLogger {
	return CreateObservedLogger(log, nil)
}

func CreateObservedLogger(log *zerolog.Logger, observer Observer) *slowLogger {
	logger := log.With().Str("label", "slowlog").Logger()
	return &slowLogger{
		log:           &logger,
		observer:      observer,
		ongoingTimers: make(map[string]time.Time),
		now:           time.Now,
	}
}
