// Package jetstream publishes envelopes to a NATS JetStream stream. The stream
// covering the destination subject must already exist.
package jetstream

import (
	"context"
	"fmt"

	"bitbucket.org/crgw/rental-gateway/internal/queue"
	"bitbucket.org/crgw/rental-gateway/internal/tools/ids"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const TransportName = "jetstream"

const headerMessageId = "Rental-Message-Id"

// Publisher is the part of nats.JetStreamContext used here.
type Publisher interface {
	PublishMsg(m *nats.Msg, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// ConnectFunc allows overriding the connection creation for testing. The
// returned func closes the connection.
var ConnectFunc = func(url string) (Publisher, func(), error) {
	conn, err := nats.Connect(url, nats.Name("rental-gateway"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return js, conn.Close, nil
}

type Transport struct {
	log *zerolog.Logger
}

func New(log *zerolog.Logger) *Transport {
	return &Transport{log: log}
}

func (t *Transport) Name() string {
	return TransportName
}

func (t *Transport) Connect(ctx context.Context, connectionString string) (queue.Connection, error) {
	publisher, closeFunc, err := ConnectFunc(connectionString)
	if err != nil {
		return nil, err
	}
	return &connection{publisher: publisher, close: closeFunc, log: t.log}, nil
}

type connection struct {
	publisher Publisher
	close     func()
	log       *zerolog.Logger
}

func (c *connection) OpenSender(ctx context.Context, destination string) (queue.Sender, error) {
	return &sender{publisher: c.publisher, subject: destination, log: c.log}, nil
}

func (c *connection) Close(ctx context.Context) error {
	c.close()
	return nil
}

type sender struct {
	publisher Publisher
	subject   string
	log       *zerolog.Logger
}

func (s *sender) Send(ctx context.Context, envelope queue.Envelope) error {
	header := nats.Header{}
	header.Set(queue.MetadataContentType, envelope.ContentType)
	header.Set(headerMessageId, ids.CreateULID())

	ack, err := s.publisher.PublishMsg(&nats.Msg{
		Subject: s.subject,
		Data:    envelope.Body,
		Header:  header,
	}, nats.Context(ctx))
	if err != nil {
		return fmt.Errorf("failed to publish to JetStream: %w", err)
	}

	s.log.Debug().
		Str("stream", ack.Stream).
		Uint64("sequence", ack.Sequence).
		Msg("JetStream message acknowledged")

	return nil
}

func (s *sender) Close(ctx context.Context) error {
	return nil
}
