package queue

import (
	"context"

	"bitbucket.org/crgw/rental-gateway/internal/tools/ids"
	"github.com/ThreeDotsLabs/watermill/message"
)

const MetadataContentType = "Content-Type"

// PublisherSender sends envelopes through a watermill publisher bound to one
// topic.
type PublisherSender struct {
	Publisher message.Publisher
	Topic     string

	// KeepOpen leaves the publisher running on Close, for publishers shared
	// across requests.
	KeepOpen bool
}

// NewMessage wraps an envelope into a watermill message with a fresh ULID.
func NewMessage(ctx context.Context, envelope Envelope) *message.Message {
	msg := message.NewMessage(ids.CreateULID(), envelope.Body)
	msg.Metadata.Set(MetadataContentType, envelope.ContentType)
	msg.SetContext(ctx)
	return msg
}

// Send returns once the publisher confirms or ctx is done, whichever comes
// first. Watermill publishers take no context, so a publish cut off by ctx
// finishes in the background.
func (s *PublisherSender) Send(ctx context.Context, envelope Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	published := make(chan error, 1)
	go func() {
		published <- s.Publisher.Publish(s.Topic, NewMessage(ctx, envelope))
	}()

	select {
	case err := <-published:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *PublisherSender) Close(ctx context.Context) error {
	if s.KeepOpen {
		return nil
	}
	return s.Publisher.Close()
}

// PublisherConnection builds one publisher per opened sender. It holds no
// broker resources itself.
type PublisherConnection struct {
	NewPublisher func(ctx context.Context) (message.Publisher, error)
	OnClose      func() error

	// SharedPublisher marks publishers that outlive the sender.
	SharedPublisher bool
}

type builtPublisher struct {
	publisher message.Publisher
	err       error
}

// OpenSender gives up when ctx is done before the publisher is built. A
// publisher that arrives late is closed unless it is shared.
func (c *PublisherConnection) OpenSender(ctx context.Context, destination string) (Sender, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	built := make(chan builtPublisher, 1)
	go func() {
		publisher, err := c.NewPublisher(ctx)
		built <- builtPublisher{publisher: publisher, err: err}
	}()

	select {
	case result := <-built:
		if result.err != nil {
			return nil, result.err
		}
		return &PublisherSender{Publisher: result.publisher, Topic: destination, KeepOpen: c.SharedPublisher}, nil
	case <-ctx.Done():
		go c.discardLate(built)
		return nil, ctx.Err()
	}
}

func (c *PublisherConnection) discardLate(built <-chan builtPublisher) {
	result := <-built
	if result.err == nil && result.publisher != nil && !c.SharedPublisher {
		_ = result.publisher.Close()
	}
}

func (c *PublisherConnection) Close(ctx context.Context) error {
	if c.OnClose == nil {
		return nil
	}
	return c.OnClose()
}
