package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	ErrNotFound    = errors.New("location not found")
	ErrRateLimited = errors.New("rate limit exceeded")
)

// APIError is returned for any other non-success status
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %d %s", e.StatusCode, e.Message)
}

// Options tunes pacing and retries
type Options struct {
	MinInterval       time.Duration
	MaxRetries        int
	BackoffBase       time.Duration
	BackoffCap        time.Duration
	NetworkRetryDelay time.Duration
	Timeout           time.Duration
}

// DefaultOptions matches the upstream geocoder's free tier
func DefaultOptions() Options {
	return Options{
		MinInterval:       time.Second,
		MaxRetries:        2,
		BackoffBase:       2 * time.Second,
		BackoffCap:        5 * time.Second,
		NetworkRetryDelay: time.Second,
		Timeout:           10 * time.Second,
	}
}

// Stats is a snapshot of the outbound call bookkeeping
type Stats struct {
	Calls    int       `json:"calls"`
	LastCall time.Time `json:"last_call"`
}

// Gateway serialises outbound GET calls to a minimum interval and retries
// rate limited and failed transport attempts
type Gateway struct {
	logger  *logrus.Logger
	client  *http.Client
	limiter *rate.Limiter
	opts    Options

	mu       sync.Mutex
	calls    int
	lastCall time.Time
}

func New(logger *logrus.Logger, opts Options) *Gateway {
	return &Gateway{
		logger:  logger,
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Every(opts.MinInterval), 1),
		opts:    opts,
	}
}

// WithHTTPClient swaps the underlying client
func (g *Gateway) WithHTTPClient(client *http.Client) *Gateway {
	g.client = client
	return g
}

// Call fetches rawURL and returns the response body
func (g *Gateway) Call(ctx context.Context, rawURL string) ([]byte, error) {
	logURL := redact(rawURL)

	for attempt := 0; ; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		g.record()

		body, status, err := g.do(ctx, rawURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt < g.opts.MaxRetries {
				g.logger.WithError(err).WithFields(logrus.Fields{
					"url":     logURL,
					"attempt": attempt + 1,
				}).Warn("Network error, retrying")
				if err := sleep(ctx, g.opts.NetworkRetryDelay); err != nil {
					return nil, err
				}
				continue
			}
			return nil, fmt.Errorf("request failed: %w", err)
		}

		switch {
		case status == http.StatusTooManyRequests:
			if attempt < g.opts.MaxRetries {
				delay := g.backoff(attempt)
				g.logger.WithFields(logrus.Fields{
					"url":     logURL,
					"attempt": attempt + 1,
					"delay":   delay.String(),
				}).Warn("Rate limited, retrying")
				if err := sleep(ctx, delay); err != nil {
					return nil, err
				}
				continue
			}
			return nil, ErrRateLimited
		case status == http.StatusNotFound:
			return nil, ErrNotFound
		case status < 200 || status > 299:
			return nil, &APIError{StatusCode: status, Message: http.StatusText(status), Body: body}
		}

		g.logger.WithFields(logrus.Fields{
			"url":    logURL,
			"status": status,
		}).Debug("Gateway call succeeded")
		return body, nil
	}
}

// Stats returns the call counter and the time of the last call
func (g *Gateway) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Stats{Calls: g.calls, LastCall: g.lastCall}
}

func (g *Gateway) record() {
	g.mu.Lock()
	g.calls++
	g.lastCall = time.Now()
	g.mu.Unlock()
}

func (g *Gateway) backoff(attempt int) time.Duration {
	delay := g.opts.BackoffBase * time.Duration(attempt+1)
	if delay > g.opts.BackoffCap {
		return g.opts.BackoffCap
	}
	return delay
}

// do runs one request. The request is detached from ctx cancellation so an
// in-flight call completes and only its result is dropped.
func (g *Gateway) do(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "MandiPrices/1.0")

	type result struct {
		body   []byte
		status int
		err    error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := g.client.Do(req)
		if err != nil {
			done <- result{err: err}
			return
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			done <- result{err: fmt.Errorf("failed to read response: %w", err)}
			return
		}
		done <- result{body: body, status: resp.StatusCode}
	}()

	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	case r := <-done:
		return r.body, r.status, r.err
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// redact hides API keys before a URL reaches the log
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	for _, k := range []string{"key", "api-key"} {
		if q.Has(k) {
			q.Set(k, "REDACTED")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
