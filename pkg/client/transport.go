package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/edgeflare/pgrc/pkg/metrics"
	"github.com/edgeflare/pgrc/pkg/pgrest"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-Id"

// StatusError is a non-2xx response from the endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("client: request failed with status %d: %s", e.Code, e.Body)
}

// do issues one translated request and returns the response headers and
// body. Idempotent GETs are retried with exponential backoff on network
// errors and 5xx responses; 4xx responses are never retried.
func (c *Client) do(ctx context.Context, op, method, resource string, q *pgrest.Params, payload any, extra http.Header) (http.Header, []byte, error) {
	start := time.Now()
	metrics.RequestsTotal.WithLabelValues(resource, op).Inc()

	var body []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("client: marshal %s payload: %w", resource, err)
		}
		body = b
	}

	u := c.baseURL + "/" + resource
	if q != nil && q.Len() > 0 {
		u += "?" + q.Encode()
	}
	reqID := uuid.New().String()

	var respHeader http.Header
	var respBody []byte

	attempt := func() error {
		var r io.Reader
		if body != nil {
			r = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, r)
		if err != nil {
			return err
		}
		if body != nil {
			req.Header.Set("Content-Type", pgrest.MIMEApplicationJSON)
		}
		req.Header.Set(requestIDHeader, reqID)
		for k, vs := range extra {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 400 {
			return &StatusError{Code: resp.StatusCode, Body: string(b)}
		}
		respHeader = resp.Header
		respBody = b
		return nil
	}

	var err error
	if method == http.MethodGet && c.maxRetries > 0 {
		retryable := func() error {
			err := attempt()
			var se *StatusError
			if errors.As(err, &se) && se.Code < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
		err = backoff.Retry(retryable, bo)
	} else {
		err = attempt()
	}

	latency := time.Since(start)
	metrics.RequestDuration.WithLabelValues(op).Observe(latency.Seconds())

	fields := []zap.Field{
		zap.String("req_id", reqID),
		zap.String("method", method),
		zap.String("url", u),
		zap.Duration("latency", latency),
	}
	if err != nil {
		metrics.RequestErrors.WithLabelValues(resource, op).Inc()
		c.logger.Warn("request failed", append(fields, zap.Error(err))...)
		return nil, nil, err
	}
	c.logger.Debug("request", fields...)
	return respHeader, respBody, nil
}
