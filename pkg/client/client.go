// Package client is a PostgREST data provider: it composes the pgrest
// translation core with an HTTP transport and exposes the usual CRUD
// operations over named resources.
package client

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/edgeflare/pgrc/pkg/pgrest"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// Client talks to a single PostgREST endpoint. It is safe for concurrent
// use; the primary-key registry is fixed at construction.
type Client struct {
	baseURL       string
	httpc         *http.Client
	registry      pgrest.Registry
	defaultListOp string
	maxRetries    uint64
	logger        *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpc = hc }
}

// WithLogger attaches a zap logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithPrimaryKeys registers per-resource primary keys. Unregistered
// resources use the single "id" column.
func WithPrimaryKeys(reg pgrest.Registry) Option {
	return func(c *Client) { c.registry = reg }
}

// WithDefaultListOp sets the default filter operator name passed to the
// translator for list filters.
func WithDefaultListOp(op string) Option {
	return func(c *Client) { c.defaultListOp = op }
}

// WithMaxRetries bounds the retries of idempotent reads. Zero disables
// retrying.
func WithMaxRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// New returns a Client for the PostgREST endpoint at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("client: baseURL is required")
	}
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpc:         &http.Client{Timeout: defaultTimeout},
		registry:      pgrest.Registry{},
		defaultListOp: "eq",
		maxRetries:    3,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// PrimaryKeyOf exposes the registry lookup, mainly for callers that
// need to encode or decode identifiers themselves.
func (c *Client) PrimaryKeyOf(resource string) pgrest.PrimaryKey {
	return c.registry.PrimaryKeyOf(resource)
}

// DecodeRecord decodes a generic record into a typed struct. Fields are
// matched by json tag, and weakly typed input smooths over the float64
// numbers JSON decoding produces.
func DecodeRecord(rec pgrest.Record, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("client: build record decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(rec)); err != nil {
		return fmt.Errorf("client: decode record: %w", err)
	}
	return nil
}
