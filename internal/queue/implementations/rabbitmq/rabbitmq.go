// Package rabbitmq sends envelopes to a durable RabbitMQ queue.
package rabbitmq

import (
	"context"

	"bitbucket.org/crgw/rental-gateway/internal/queue"
	"bitbucket.org/crgw/rental-gateway/internal/tools/logger"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/v3/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
)

const TransportName = "rabbitmq"

// ConnectionFactory allows overriding the connection creation for testing.
var ConnectionFactory = func(cfg amqp.ConnectionConfig, logger watermill.LoggerAdapter) (*amqp.ConnectionWrapper, error) {
	return amqp.NewConnection(cfg, logger)
}

// PublisherFactory allows overriding the publisher creation for testing.
var PublisherFactory = func(cfg amqp.Config, logger watermill.LoggerAdapter, conn *amqp.ConnectionWrapper) (message.Publisher, error) {
	return amqp.NewPublisherWithConnection(cfg, logger, conn)
}

// CloseConnection allows overriding the connection teardown for testing.
var CloseConnection = func(conn *amqp.ConnectionWrapper) error {
	return conn.Close()
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

// Connect dials the broker at the amqp:// URL. Messages are published to the
// default exchange, routed to the queue named after the destination.
func (t *Transport) Connect(ctx context.Context, connectionString string) (queue.Connection, error) {
	conn, err := ConnectionFactory(amqp.ConnectionConfig{
		AmqpURI:   connectionString,
		Reconnect: amqp.DefaultReconnectConfig(),
	}, t.logger)
	if err != nil {
		return nil, err
	}

	amqpConfig := amqp.NewDurableQueueConfig(connectionString)

	return &queue.PublisherConnection{
		NewPublisher: func(ctx context.Context) (message.Publisher, error) {
			return PublisherFactory(amqpConfig, t.logger, conn)
		},
		OnClose: func() error {
			return CloseConnection(conn)
		},
	}, nil
}
