// Package kafka sends envelopes to a Kafka topic.
package kafka

import (
	"context"
	"errors"
	"strings"

	"bitbucket.org/crgw/rental-gateway/internal/queue"
	"bitbucket.org/crgw/rental-gateway/internal/tools/logger"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
)

const TransportName = "kafka"

var ErrorNoBrokers = errors.New("kafka connection string lists no brokers")

// PublisherFactory allows overriding the publisher creation for testing.
var PublisherFactory = func(cfg kafka.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return kafka.NewPublisher(cfg, logger)
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

// Connect takes a comma separated broker list. The producer itself is
// created when the sender opens.
func (t *Transport) Connect(ctx context.Context, connectionString string) (queue.Connection, error) {
	brokers := ParseBrokers(connectionString)
	if len(brokers) == 0 {
		return nil, ErrorNoBrokers
	}

	return &queue.PublisherConnection{
		NewPublisher: func(ctx context.Context) (message.Publisher, error) {
			return PublisherFactory(kafka.PublisherConfig{
				Brokers:   brokers,
				Marshaler: kafka.DefaultMarshaler{},
			}, t.logger)
		},
	}, nil
}

func ParseBrokers(connectionString string) []string {
	var brokers []string
	for _, broker := range strings.Split(connectionString, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}
