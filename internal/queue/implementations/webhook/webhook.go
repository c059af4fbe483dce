// Package webhook posts envelopes to an HTTP endpoint, one request per
// message, at <base URL>/<destination>.
package webhook

import (
	"context"
	"errors"
	nethttp "net/http"
	"net/url"
	"strings"
	"time"

	"bitbucket.org/crgw/rental-gateway/internal/queue"
	"bitbucket.org/crgw/rental-gateway/internal/tools/logger"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-http/v2/pkg/http"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
)

const (
	TransportName  = "webhook"
	DefaultTimeout = 10 * time.Second
)

var ErrorInvalidURL = errors.New("webhook connection string must be an absolute http(s) URL")

// PublisherFactory allows overriding the publisher creation for testing.
var PublisherFactory = func(config http.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return http.NewPublisher(config, logger)
}

type Transport struct {
	log    *zerolog.Logger
	logger watermill.LoggerAdapter
}

func New(log *zerolog.Logger) *Transport {
	return &Transport{
		log:    log,
		logger: logger.NewWatermillAdapter(log),
	}
}

func (t *Transport) Name() string {
	return TransportName
}

func (t *Transport) Connect(ctx context.Context, connectionString string) (queue.Connection, error) {
	base, err := url.Parse(connectionString)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, ErrorInvalidURL
	}

	baseURL := strings.TrimSuffix(base.String(), "/")

	config := http.PublisherConfig{
		MarshalMessageFunc: func(topic string, msg *message.Message) (*nethttp.Request, error) {
			req, err := http.DefaultMarshalMessageFunc(baseURL+"/"+topic, msg)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Content-Type", msg.Metadata.Get(queue.MetadataContentType))
			return req.WithContext(msg.Context()), nil
		},
		Client: &nethttp.Client{
			Timeout:   DefaultTimeout,
			Transport: NewOutgoingLoggerRoundTripper(t.log, TransportName, nil),
		},
	}

	return &queue.PublisherConnection{
		NewPublisher: func(ctx context.Context) (message.Publisher, error) {
			return PublisherFactory(config, t.logger)
		},
	}, nil
}
