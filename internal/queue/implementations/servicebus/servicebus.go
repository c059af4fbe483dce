// Package servicebus sends envelopes to an Azure Service Bus queue.
package servicebus

import (
	"context"

	"bitbucket.org/crgw/rental-gateway/internal/queue"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/rs/zerolog"
)

const TransportName = "servicebus"

// MessageSender is the part of *azservicebus.Sender used here.
type MessageSender interface {
	SendMessage(ctx context.Context, message *azservicebus.Message, options *azservicebus.SendMessageOptions) error
	Close(ctx context.Context) error
}

type Client interface {
	NewSender(queueOrTopic string) (MessageSender, error)
	Close(ctx context.Context) error
}

// ClientFactory allows overriding the client creation for testing.
var ClientFactory = func(connectionString string) (Client, error) {
	client, err := azservicebus.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, err
	}
	return &azureClient{client: client}, nil
}

type azureClient struct {
	client *azservicebus.Client
}

func (c *azureClient) NewSender(queueOrTopic string) (MessageSender, error) {
	sender, err := c.client.NewSender(queueOrTopic, nil)
	if err != nil {
		return nil, err
	}
	return sender, nil
}

func (c *azureClient) Close(ctx context.Context) error {
	return c.client.Close(ctx)
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
	client, err := ClientFactory(connectionString)
	if err != nil {
		return nil, err
	}
	return &connection{client: client, log: t.log}, nil
}

type connection struct {
	client Client
	log    *zerolog.Logger
}

func (c *connection) OpenSender(ctx context.Context, destination string) (queue.Sender, error) {
	messageSender, err := c.client.NewSender(destination)
	if err != nil {
		return nil, err
	}

	c.log.Debug().
		Str("queue", destination).
		Msg("Service Bus sender opened")

	return &sender{sender: messageSender}, nil
}

func (c *connection) Close(ctx context.Context) error {
	return c.client.Close(ctx)
}

type sender struct {
	sender MessageSender
}

func (s *sender) Send(ctx context.Context, envelope queue.Envelope) error {
	return s.sender.SendMessage(ctx, &azservicebus.Message{
		Body:        envelope.Body,
		ContentType: to.Ptr(envelope.ContentType),
	}, nil)
}

func (s *sender) Close(ctx context.Context) error {
	return s.sender.Close(ctx)
}
