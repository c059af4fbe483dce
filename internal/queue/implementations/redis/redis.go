// Package redis appends envelopes to a Redis list named after the destination.
package redis

import (
	"context"
	"encoding/json"
	"time"

	"bitbucket.org/crgw/rental-gateway/internal/queue"
	"bitbucket.org/crgw/rental-gateway/internal/tools/jsoncodec"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const TransportName = "redis"

const (
	DialTimeout  = 4 * time.Second
	ReadTimeout  = 3 * time.Second
	WriteTimeout = 3 * time.Second
)

// ClientFactory allows overriding the client creation for testing.
var ClientFactory = func(opt *redis.Options) *redis.Client {
	return redis.NewClient(opt)
}

// ListEnvelope is the JSON stored as one list entry.
type ListEnvelope struct {
	Body        json.RawMessage `json:"body"`
	ContentType string          `json:"contentType"`
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

// Connect parses a redis:// URL and pings the server.
func (t *Transport) Connect(ctx context.Context, connectionString string) (queue.Connection, error) {
	opt, err := redis.ParseURL(connectionString)
	if err != nil {
		return nil, err
	}

	opt.DialTimeout = DialTimeout
	opt.ReadTimeout = ReadTimeout
	opt.WriteTimeout = WriteTimeout

	client := ClientFactory(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &connection{client: client}, nil
}

type connection struct {
	client *redis.Client
}

func (c *connection) OpenSender(ctx context.Context, destination string) (queue.Sender, error) {
	return &sender{client: c.client, key: destination}, nil
}

func (c *connection) Close(ctx context.Context) error {
	return c.client.Close()
}

type sender struct {
	client *redis.Client
	key    string
}

func (s *sender) Send(ctx context.Context, envelope queue.Envelope) error {
	entry, err := jsoncodec.Marshal(ListEnvelope{
		Body:        envelope.Body,
		ContentType: envelope.ContentType,
	})
	if err != nil {
		return err
	}

	return s.client.RPush(ctx, s.key, entry).Err()
}

func (s *sender) Close(ctx context.Context) error {
	return nil
}
