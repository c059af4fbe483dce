// Package nats publishes envelopes on a NATS Core subject.
package nats

import (
	"context"

	"bitbucket.org/crgw/rental-gateway/internal/queue"
	"bitbucket.org/crgw/rental-gateway/internal/tools/logger"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const TransportName = "nats"

// PublisherFactory allows overriding the publisher creation for testing.
var PublisherFactory = func(cfg nats.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return nats.NewPublisher(cfg, logger)
}

type Transport struct {
	logger watermill.LoggerAdapter
}

func New(log *zerolog.Logger) *Transport {
	return &Transport{logger: logger.NewWatermillAdapter(log)}
}

func (t *Transport) Name() string {
	return TransportName
}

// Connect takes a nats:// URL. The destination is used as the subject.
func (t *Transport) Connect(ctx context.Context, connectionString string) (queue.Connection, error) {
	cfg := nats.PublisherConfig{
		URL:         connectionString,
		NatsOptions: []nc.Option{nc.Name("rental-gateway")},
		Marshaler:   &nats.NATSMarshaler{},
		JetStream:   nats.JetStreamConfig{Disabled: true},
	}

	return &queue.PublisherConnection{
		NewPublisher: func(ctx context.Context) (message.Publisher, error) {
			return PublisherFactory(cfg, t.logger)
		},
	}, nil
}
