// Package queuetest provides an in-memory queue.Transport that records every
// call, for tests of code that sends through a queue.
package queuetest

import (
	"context"
	"sync"

	"bitbucket.org/crgw/rental-gateway/internal/queue"
)

type SentMessage struct {
	Destination string
	Envelope    queue.Envelope
}

// Transport counts connections, senders, sends and closes. The Err fields make
// the matching step fail.
type Transport struct {
	ConnectErr     error
	OpenSenderErr  error
	SendErr        error
	CloseSenderErr error
	CloseConnErr   error

	// OnSend runs before a send is recorded, e.g. to block until ctx is done.
	OnSend func(ctx context.Context) error

	mu                sync.Mutex
	connectionStrings []string
	connects          int
	connectionCloses  int
	senderOpens       int
	senderCloses      int
	sent              []SentMessage
	closeOrder        []string
}

func New() *Transport {
	return &Transport{}
}

func (t *Transport) Name() string {
	return "fake"
}

func (t *Transport) Connect(ctx context.Context, connectionString string) (queue.Connection, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.connectionStrings = append(t.connectionStrings, connectionString)
	if t.ConnectErr != nil {
		return nil, t.ConnectErr
	}
	t.connects++

	return &connection{transport: t}, nil
}

type connection struct {
	transport *Transport
}

func (c *connection) OpenSender(ctx context.Context, destination string) (queue.Sender, error) {
	t := c.transport
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.OpenSenderErr != nil {
		return nil, t.OpenSenderErr
	}
	t.senderOpens++

	return &sender{transport: t, destination: destination}, nil
}

func (c *connection) Close(ctx context.Context) error {
	t := c.transport
	t.mu.Lock()
	defer t.mu.Unlock()

	t.connectionCloses++
	t.closeOrder = append(t.closeOrder, "connection")
	return t.CloseConnErr
}

type sender struct {
	transport   *Transport
	destination string
}

func (s *sender) Send(ctx context.Context, envelope queue.Envelope) error {
	t := s.transport

	if t.OnSend != nil {
		if err := t.OnSend(ctx); err != nil {
			return err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.SendErr != nil {
		return t.SendErr
	}

	body := make([]byte, len(envelope.Body))
	copy(body, envelope.Body)

	t.sent = append(t.sent, SentMessage{
		Destination: s.destination,
		Envelope:    queue.Envelope{Body: body, ContentType: envelope.ContentType},
	})
	return nil
}

func (s *sender) Close(ctx context.Context) error {
	t := s.transport
	t.mu.Lock()
	defer t.mu.Unlock()

	t.senderCloses++
	t.closeOrder = append(t.closeOrder, "sender")
	return t.CloseSenderErr
}

func (t *Transport) Connects() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connects
}

// ConnectAttempts includes failed connects.
func (t *Transport) ConnectAttempts() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.connectionStrings)
}

func (t *Transport) ConnectionStrings() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.connectionStrings...)
}

func (t *Transport) ConnectionCloses() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connectionCloses
}

func (t *Transport) SenderOpens() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.senderOpens
}

func (t *Transport) SenderCloses() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.senderCloses
}

func (t *Transport) CloseOrder() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.closeOrder...)
}

func (t *Transport) Sent() []SentMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]SentMessage(nil), t.sent...)
}
