package request

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goliatone/go-storefront-cache/pkg/logging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Executor issues HTTP GET requests with a per-attempt timeout and capped
// retries with exponential backoff (2^attempt * BaseDelay, no jitter).
type Executor struct {
	client *http.Client
	config Config
	logger zerolog.Logger
	sleep  SleepFunc
}

// ExecutorOption customizes an Executor.
type ExecutorOption func(*Executor)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) ExecutorOption {
	return func(e *Executor) {
		if client != nil {
			e.client = client
		}
	}
}

// WithLogger sets the executor logger.
func WithLogger(logger zerolog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logging.Component(logger, "request")
	}
}

// WithSleep replaces the backoff wait, mainly for tests.
func WithSleep(sleep SleepFunc) ExecutorOption {
	return func(e *Executor) {
		if sleep != nil {
			e.sleep = sleep
		}
	}
}

// NewExecutor creates an Executor from cfg.
func NewExecutor(cfg Config, opts ...ExecutorOption) (*Executor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("request: invalid config: %w", err)
	}

	e := &Executor{
		client: &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
		config: cfg,
		logger: zerolog.Nop(),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Option overrides per-call settings.
type Option func(*callOptions)

type callOptions struct {
	retries int
	timeout time.Duration
	headers map[string]string
	query   url.Values
}

// WithRetries overrides the retry count for one call.
func WithRetries(n int) Option {
	return func(o *callOptions) {
		if n >= 0 {
			o.retries = n
		}
	}
}

// WithTimeout overrides the per-attempt timeout for one call.
func WithTimeout(d time.Duration) Option {
	return func(o *callOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithHeader sets a header for one call, overriding executor defaults.
func WithHeader(key, value string) Option {
	return func(o *callOptions) {
		o.headers[key] = value
	}
}

// WithQuery adds a query parameter for one call.
func WithQuery(key, value string) Option {
	return func(o *callOptions) {
		o.query.Set(key, value)
	}
}

// Execute performs a GET against rawURL. It makes at most retries+1
// attempts; once they are exhausted it returns an *ExhaustedError wrapping
// the last failure. Cancelling ctx stops the loop immediately.
func (e *Executor) Execute(ctx context.Context, rawURL string, opts ...Option) (*Response, error) {
	o := callOptions{
		retries: e.config.Retries,
		timeout: e.config.Timeout,
		headers: make(map[string]string),
		query:   url.Values{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	retryIf := e.config.RetryIf
	if retryIf == nil {
		retryIf = RetryAll
	}

	log := e.logger.With().
		Str("request_id", uuid.NewString()).
		Str("url", rawURL).
		Logger()

	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= o.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		attempts++
		log.Debug().Int("attempt", attempt+1).Msg("api request")

		resp, err := e.attempt(ctx, rawURL, o)
		if err == nil {
			log.Debug().Int("attempt", attempt+1).Int("status", resp.StatusCode).Msg("api response")
			return resp, nil
		}

		lastErr = err
		log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Int("status", StatusCode(err)).
			Bool("timeout", IsTimeout(err)).
			Msg("api request failed")

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !retryIf(err) || attempt == o.retries {
			break
		}

		if err := e.sleep(ctx, e.backoff(attempt)); err != nil {
			return nil, err
		}
	}

	return nil, &ExhaustedError{URL: rawURL, Attempts: attempts, Last: lastErr}
}

// Backoff returns the wait before the retry that follows attempt
// (zero based): 2^attempt * BaseDelay.
func (e *Executor) backoff(attempt int) time.Duration {
	return e.config.BaseDelay * time.Duration(1<<uint(attempt))
}

func (e *Executor) attempt(ctx context.Context, rawURL string, o callOptions) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req, err := e.buildRequest(attemptCtx, rawURL, o)
	if err != nil {
		return nil, err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return nil, NewTimeoutError(err)
		}
		return nil, NewConnectionError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return nil, NewTimeoutError(err)
		}
		return nil, NewConnectionError(fmt.Errorf("read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, NewStatusError(resp.StatusCode, body)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}, nil
}

func (e *Executor) buildRequest(ctx context.Context, rawURL string, o callOptions) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{Code: ErrCodeInvalid, Message: err.Error(), Err: err}
	}

	if len(o.query) > 0 {
		q := req.URL.Query()
		for k, vs := range o.query {
			for _, v := range vs {
				q.Set(k, v)
			}
		}
		req.URL.RawQuery = q.Encode()
	}

	for k, v := range e.config.Headers {
		req.Header.Set(k, v)
	}
	for k, v := range o.headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
