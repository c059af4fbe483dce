package queue

import (
	"context"
)

const ContentTypeJSON = "application/json"

// Envelope is what a sender puts on the wire: the serialized message body and
// its content type.
type Envelope struct {
	Body        []byte
	ContentType string
}

// Transport connects to a broker using a connection string.
type Transport interface {
	Name() string
	Connect(ctx context.Context, connectionString string) (Connection, error)
}

type Connection interface {
	OpenSender(ctx context.Context, destination string) (Sender, error)
	Close(ctx context.Context) error
}

type Sender interface {
	Send(ctx context.Context, envelope Envelope) error
	Close(ctx context.Context) error
}
