package factory

import (
	"errors"
	"fmt"

	"bitbucket.org/crgw/rental-gateway/internal/queue"
	"bitbucket.org/crgw/rental-gateway/internal/queue/implementations/channel"
	"bitbucket.org/crgw/rental-gateway/internal/queue/implementations/jetstream"
	"bitbucket.org/crgw/rental-gateway/internal/queue/implementations/kafka"
	"bitbucket.org/crgw/rental-gateway/internal/queue/implementations/nats"
	"bitbucket.org/crgw/rental-gateway/internal/queue/implementations/rabbitmq"
	"bitbucket.org/crgw/rental-gateway/internal/queue/implementations/redis"
	"bitbucket.org/crgw/rental-gateway/internal/queue/implementations/servicebus"
	"bitbucket.org/crgw/rental-gateway/internal/queue/implementations/webhook"
	"github.com/rs/zerolog"
)

var ErrorUnknownTransport = errors.New("unknown queue transport")

// Names lists every supported transport.
var Names = []string{
	servicebus.TransportName,
	rabbitmq.TransportName,
	kafka.TransportName,
	nats.TransportName,
	jetstream.TransportName,
	redis.TransportName,
	webhook.TransportName,
	channel.TransportName,
}

func New(name string, log *zerolog.Logger) (queue.Transport, error) {
	switch name {
	case servicebus.TransportName:
		return servicebus.New(log), nil
	case rabbitmq.TransportName:
		return rabbitmq.New(log), nil
	case kafka.TransportName:
		return kafka.New(log), nil
	case nats.TransportName:
		return nats.New(log), nil
	case jetstream.TransportName:
		return jetstream.New(log), nil
	case redis.TransportName:
		return redis.New(log), nil
	case webhook.TransportName:
		return webhook.New(log), nil
	case channel.TransportName:
		return channel.New(log), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrorUnknownTransport, name)
	}
}
