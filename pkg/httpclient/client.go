package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"go.uber.org/zap"
)

type Options struct {
	Timeout     time.Duration
	MaxRetries  int
	BaseDelay   time.Duration
	MaxFailures int
	OpenTimeout time.Duration
}

type Client struct {
	client     *http.Client
	cb         *CircuitBreaker
	maxRetries int
	baseDelay  time.Duration
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 100 * time.Millisecond
	}
	if opts.MaxFailures <= 0 {
		opts.MaxFailures = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}

	return &Client{
		client:     &http.Client{Timeout: opts.Timeout},
		cb:         NewCircuitBreaker(opts.MaxFailures, opts.OpenTimeout),
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.BaseDelay,
	}
}

func (c *Client) Get(ctx context.Context, baseURL string, queryParams map[string]string, headers map[string]string) (*http.Response, error) {
	return c.attemptRequestWithRetry(ctx, func() (*http.Request, error) {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, err
		}

		q := u.Query()
		for k, v := range queryParams {
			q.Add(k, v)
		}
		u.RawQuery = q.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}

		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	})
}

func (c *Client) Post(ctx context.Context, url string, body any, headers map[string]string) (*http.Response, error) {
	return c.attemptRequestWithRetry(ctx, func() (*http.Request, error) {
		var bodyReader io.Reader
		if body != nil {
			jsonData, err := json.Marshal(body)
			if err != nil {
				return nil, err
			}
			bodyReader = bytes.NewReader(jsonData)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bodyReader)
		if err != nil {
			return nil, err
		}

		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	})
}

func (c *Client) attemptRequestWithRetry(ctx context.Context, reqFactory func() (*http.Request, error)) (*http.Response, error) {
	if err := c.cb.CheckBeforeRequest(); err != nil {
		logger.Debug("request blocked by circuit breaker", zap.Error(err))
		return nil, err
	}

	const maxJitterMs = 100

	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	var response *http.Response

	for i := 0; i <= c.maxRetries; i++ {
		req, err := reqFactory()
		if err != nil {
			return nil, fmt.Errorf("error creating request: %w", err)
		}

		response, err = c.client.Do(req)
		lastErr = err

		if err == nil && response.StatusCode < 500 {
			c.cb.OnSuccess()
			return response, nil
		}

		if response != nil {
			response.Body.Close()
		}

		if i == c.maxRetries || ctx.Err() != nil {
			break
		}

		backoff := c.baseDelay * time.Duration(math.Pow(2, float64(i)))
		jitter := time.Duration(r.Intn(maxJitterMs)) * time.Millisecond
		sleepDuration := backoff + jitter

		logger.Warn("request failed, retrying",
			zap.Int("attempt", i+1),
			zap.Duration("sleep_duration", sleepDuration),
		)

		select {
		case <-ctx.Done():
			c.cb.OnFailure()
			return nil, ctx.Err()
		case <-time.After(sleepDuration):
		}
	}

	c.cb.OnFailure()

	if lastErr != nil {
		return nil, fmt.Errorf("all retries failed, last network error: %w", lastErr)
	}

	return nil, fmt.Errorf("all retries failed, last status: %s", response.Status)
}
