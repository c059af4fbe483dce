package jetstream

import (
	"context"
	"errors"
	"testing"

	"bitbucket.org/crgw/rental-gateway/internal/queue"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	publishMsg func(m *nats.Msg) (*nats.PubAck, error)
	published  []*nats.Msg
}

func (m *mockPublisher) PublishMsg(msg *nats.Msg, opts ...nats.PubOpt) (*nats.PubAck, error) {
	m.published = append(m.published, msg)
	return m.publishMsg(msg)
}

func TestTransport(t *testing.T) {
	log := zerolog.Nop()

	t.Run("publishes the envelope with headers", func(t *testing.T) {
		original := ConnectFunc
		defer func() { ConnectFunc = original }()

		closes := 0
		publisher := &mockPublisher{publishMsg: func(m *nats.Msg) (*nats.PubAck, error) {
			return &nats.PubAck{Stream: "RENTALS", Sequence: 7}, nil
		}}
		ConnectFunc = func(url string) (Publisher, func(), error) {
			assert.Equal(t, "nats://localhost:4222", url)
			return publisher, func() { closes++ }, nil
		}

		transport := New(&log)
		assert.Equal(t, "jetstream", transport.Name())

		scoped, err := queue.OpenSender(context.Background(), transport, "nats://localhost:4222", "queue-rental")
		require.NoError(t, err)

		require.NoError(t, scoped.Send(context.Background(), queue.Envelope{Body: []byte(`{"name":"A"}`), ContentType: queue.ContentTypeJSON}))
		require.NoError(t, scoped.Close(context.Background()))

		require.Len(t, publisher.published, 1)
		msg := publisher.published[0]
		assert.Equal(t, "queue-rental", msg.Subject)
		assert.Equal(t, []byte(`{"name":"A"}`), msg.Data)
		assert.Equal(t, "application/json", msg.Header.Get("Content-Type"))
		assert.NotEmpty(t, msg.Header.Get("Rental-Message-Id"))
		assert.Empty(t, msg.Header.Get(nats.MsgIdHdr))
		assert.Equal(t, 1, closes)
	})

	t.Run("publish failure is wrapped", func(t *testing.T) {
		original := ConnectFunc
		defer func() { ConnectFunc = original }()

		ConnectFunc = func(url string) (Publisher, func(), error) {
			return &mockPublisher{publishMsg: func(m *nats.Msg) (*nats.PubAck, error) {
				return nil, nats.ErrNoStreamResponse
			}}, func() {}, nil
		}

		scoped, err := queue.OpenSender(context.Background(), New(&log), "nats://localhost:4222", "queue-rental")
		require.NoError(t, err)
		defer scoped.Close(context.Background())

		err = scoped.Send(context.Background(), queue.Envelope{Body: []byte(`{}`)})
		assert.ErrorIs(t, err, nats.ErrNoStreamResponse)
	})

	t.Run("connect failure is returned", func(t *testing.T) {
		original := ConnectFunc
		defer func() { ConnectFunc = original }()

		ConnectFunc = func(url string) (Publisher, func(), error) {
			return nil, nil, errors.New("nats: no servers available for connection")
		}

		_, err := New(&log).Connect(context.Background(), "nats://localhost:4222")

		assert.Error(t, err)
	})
}
