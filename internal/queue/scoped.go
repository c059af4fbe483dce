package queue

import (
	"context"
	"errors"
	"sync"
)

var ErrorSenderClosed = errors.New("sender already closed")

// StageError tells which acquisition step failed.
type StageError struct {
	Stage string
	Err   error
}

const (
	StageConnect    = "connect"
	StageOpenSender = "open-sender"
)

func (e *StageError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ScopedSender owns a connection and the sender opened on it. Close releases
// both exactly once, sender first.
type ScopedSender struct {
	connection Connection
	sender     Sender

	once     sync.Once
	closeErr error
	closed   bool
	mu       sync.Mutex
}

// OpenSender connects and opens a sender for destination. When opening the
// sender fails the connection is closed before returning.
func OpenSender(ctx context.Context, transport Transport, connectionString, destination string) (*ScopedSender, error) {
	connection, err := transport.Connect(ctx, connectionString)
	if err != nil {
		return nil, &StageError{Stage: StageConnect, Err: err}
	}

	sender, err := connection.OpenSender(ctx, destination)
	if err != nil {
		closeErr := connection.Close(ctx)
		return nil, &StageError{Stage: StageOpenSender, Err: errors.Join(err, closeErr)}
	}

	return &ScopedSender{
		connection: connection,
		sender:     sender,
	}, nil
}

func (s *ScopedSender) Send(ctx context.Context, envelope Envelope) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return ErrorSenderClosed
	}

	return s.sender.Send(ctx, envelope)
}

func (s *ScopedSender) Close(ctx context.Context) error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		senderErr := s.sender.Close(ctx)
		connectionErr := s.connection.Close(ctx)
		s.closeErr = errors.Join(senderErr, connectionErr)
	})

	return s.closeErr
}
