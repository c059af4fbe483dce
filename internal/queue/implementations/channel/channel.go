// Package channel keeps messages in process on a watermill gochannel. It is
// meant for local development: the service logs what it receives.
package channel

import (
	"context"

	"bitbucket.org/crgw/rental-gateway/internal/queue"
	"bitbucket.org/crgw/rental-gateway/internal/tools/logger"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"
)

const TransportName = "channel"

// Transport shares one pub/sub across all requests; connections and senders
// only borrow it.
type Transport struct {
	pubSub *gochannel.GoChannel
}

func New(log *zerolog.Logger) *Transport {
	return &Transport{
		pubSub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, logger.NewWatermillAdapter(log)),
	}
}

func (t *Transport) Name() string {
	return TransportName
}

func (t *Transport) Connect(ctx context.Context, connectionString string) (queue.Connection, error) {
	return &queue.PublisherConnection{
		NewPublisher: func(ctx context.Context) (message.Publisher, error) {
			return t.pubSub, nil
		},
		SharedPublisher: true,
	}, nil
}

func (t *Transport) Subscribe(ctx context.Context, destination string) (<-chan *message.Message, error) {
	return t.pubSub.Subscribe(ctx, destination)
}

func (t *Transport) Close() error {
	return t.pubSub.Close()
}

// LogMessages acks and logs every message sent to destination until ctx is
// done.
func LogMessages(ctx context.Context, t *Transport, destination string, log *zerolog.Logger) error {
	messages, err := t.Subscribe(ctx, destination)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			log.Info().
				Str("destination", destination).
				Str("messageId", msg.UUID).
				Str("contentType", msg.Metadata.Get(queue.MetadataContentType)).
				RawJSON("body", msg.Payload).
				Msg("Message received on local channel")
			msg.Ack()
		}
	}()

	return nil
}
