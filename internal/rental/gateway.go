package rental

import (
	"context"
	"time"

	"bitbucket.org/crgw/rental-gateway/internal/config"
	"bitbucket.org/crgw/rental-gateway/internal/metrics"
	"bitbucket.org/crgw/rental-gateway/internal/queue"
	"bitbucket.org/crgw/rental-gateway/internal/tools/jsoncodec"
	"bitbucket.org/crgw/rental-gateway/internal/tools/slowlog"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// Destination is the queue every rental is sent to.
	Destination    = "queue-rental"
	SuccessMessage = "Rental sent to the queue successfully"

	DefaultReleaseTimeout = 5 * time.Second
)

type Gateway struct {
	provider  config.Provider
	transport queue.Transport
	options   options
}

type options struct {
	validation     bool
	sendTimeout    time.Duration
	releaseTimeout time.Duration
	now            func() time.Time
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type OptionFunc func(o *options)

// WithValidation toggles request validation. Disabled, every request is
// forwarded as received.
func WithValidation(enabled bool) OptionFunc {
	return func(o *options) {
		o.validation = enabled
	}
}

// WithSendTimeout bounds connect and send. Zero means no bound.
func WithSendTimeout(timeout time.Duration) OptionFunc {
	return func(o *options) {
		o.sendTimeout = timeout
	}
}

func WithReleaseTimeout(timeout time.Duration) OptionFunc {
	return func(o *options) {
		o.releaseTimeout = timeout
	}
}

func WithClock(now func() time.Time) OptionFunc {
	return func(o *options) {
		o.now = now
	}
}

func WithMetrics(m *metrics.Metrics) OptionFunc {
	return func(o *options) {
		o.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) OptionFunc {
	return func(o *options) {
		o.tracer = tracer
	}
}

func NewGateway(provider config.Provider, transport queue.Transport, optionFuncs ...OptionFunc) *Gateway {
	o := options{
		validation:     true,
		sendTimeout:    config.DefaultSendTimeout,
		releaseTimeout: DefaultReleaseTimeout,
		now:            time.Now,
		tracer:         otel.Tracer("rental-gateway"),
	}

	for _, optionFunc := range optionFuncs {
		optionFunc(&o)
	}

	return &Gateway{
		provider:  provider,
		transport: transport,
		options:   o,
	}
}

// SubmitRental sends one message built from request to Destination and
// returns it. Sender and connection are released before it returns.
func (g *Gateway) SubmitRental(ctx context.Context, request RentalRequest, logger *zerolog.Logger) (QueueMessage, error) {
	ctx, span := g.options.tracer.Start(ctx, "rental.SubmitRental", trace.WithAttributes(
		attribute.String("messaging.system", g.transport.Name()),
		attribute.String("messaging.destination.name", Destination),
	))
	defer span.End()

	logger.Debug().
		Str("transport", g.transport.Name()).
		Bool("validation", g.options.validation).
		Msg("Rental request received")

	message, err := g.submit(ctx, request, logger)

	outcome := "success"
	if err != nil {
		outcome = string(KindOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		logger.Debug().
			Err(err).
			Str("kind", outcome).
			Str("destination", Destination).
			Msg("Rental submission failed")
	} else {
		logger.Info().
			Str("destination", Destination).
			Str("date", message.Date).
			Msg("Rental sent to the queue")
	}

	g.options.metrics.Submission(g.transport.Name(), outcome)

	return message, err
}

func (g *Gateway) submit(ctx context.Context, request RentalRequest, logger *zerolog.Logger) (QueueMessage, error) {
	connectionString, err := g.connectionString()
	if err != nil {
		return QueueMessage{}, err
	}

	if g.options.validation {
		if err := Validate(request); err != nil {
			return QueueMessage{}, newError(KindValidation, err)
		}
	}

	logger.Debug().
		Str("transport", g.transport.Name()).
		Str("connection", config.RedactConnectionString(connectionString)).
		Msg("Queue connection string retrieved")

	message := NewQueueMessage(request, g.options.now())

	body, err := jsoncodec.Marshal(message)
	if err != nil {
		return QueueMessage{}, newError(KindSend, err)
	}

	sendCtx, cancel := g.withSendTimeout(ctx)
	defer cancel()

	slowLog := slowlog.CreateObservedLogger(logger, func(name string, duration time.Duration) {
		g.options.metrics.Stage(g.transport.Name(), name, duration)
	})

	slowLog.Start("rental:connect")
	sender, err := queue.OpenSender(sendCtx, g.transport, connectionString, Destination)
	slowLog.Stop("rental:connect")
	if err != nil {
		return QueueMessage{}, newError(KindConnection, err)
	}
	defer g.release(ctx, sender, logger)

	slowLog.Start("rental:send")
	err = sender.Send(sendCtx, queue.Envelope{
		Body:        body,
		ContentType: queue.ContentTypeJSON,
	})
	slowLog.Stop("rental:send")
	if err != nil {
		return QueueMessage{}, newError(KindSend, err)
	}

	return message, nil
}

// CheckConfiguration fails with a configuration error when no connection
// string is available.
func (g *Gateway) CheckConfiguration() error {
	_, err := g.connectionString()
	return err
}

func (g *Gateway) connectionString() (string, error) {
	connectionString := g.provider.ConnectionString()
	if connectionString == "" {
		return "", newError(KindConfiguration, config.ErrorMissingConnectionString)
	}
	return connectionString, nil
}

func (g *Gateway) withSendTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.options.sendTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.options.sendTimeout)
}

// release runs detached from ctx so a cancelled request still frees the
// broker link.
func (g *Gateway) release(ctx context.Context, sender *queue.ScopedSender, logger *zerolog.Logger) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.options.releaseTimeout)
	defer cancel()

	if err := sender.Close(releaseCtx); err != nil {
		logger.Warn().
			Err(err).
			Str("destination", Destination).
			Msg("Failed to release queue sender")
	}
}
