// Package connect talks to a connector-orchestration REST service: listing
// jobs, reading status and mutating processing checkpoints across the verb
// dialects different server versions expose.
package connect

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/giulio1979/kafka-connect-admin/internal/events"
)

// Client provides REST access to the connector service.
type Client interface {
	ListConnectors(ctx context.Context) ([]string, error)
	GetStatus(ctx context.Context, name string) (ConnectorStatus, error)
	SetCheckpoint(ctx context.Context, name string, cp Checkpoint) (CheckpointResult, error)
}

type httpClient struct {
	base string
	http *resty.Client
	sink events.Sink
}

type Option func(*httpClient)

// WithToken sets the Authorization token
func WithToken(tok string) Option {
	return func(c *httpClient) {
		c.http.SetAuthToken(tok)
	}
}

// WithBasicAuth sets basic credentials.
func WithBasicAuth(user, pass string) Option {
	return func(c *httpClient) {
		c.http.SetBasicAuth(user, pass)
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = resty.NewWithClient(hc)
	}
}

// WithSink routes checkpoint trail events to the given sink.
func WithSink(s events.Sink) Option {
	return func(c *httpClient) {
		c.sink = s
	}
}

// NewHTTP returns a Client for the given base URL.
func NewHTTP(base string, opts ...Option) Client {
	c := &httpClient{base: strings.TrimRight(base, "/"), http: resty.New()}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) ListConnectors(ctx context.Context) ([]string, error) {
	var out []string
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get(c.base + "/connectors")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, restyErr(resp)
	}
	return out, nil
}

func (c *httpClient) GetStatus(ctx context.Context, name string) (ConnectorStatus, error) {
	var out ConnectorStatus
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).
		Get(c.base + "/connectors/" + name + "/status")
	if err != nil {
		return ConnectorStatus{}, err
	}
	if resp.IsError() {
		return ConnectorStatus{}, restyErr(resp)
	}
	return out, nil
}

func restyErr(resp *resty.Response) error {
	msg := strings.TrimSpace(string(resp.Body()))
	if msg == "" {
		return fmt.Errorf("%s", resp.Status())
	}
	return fmt.Errorf("%s: %s", resp.Status(), msg)
}
