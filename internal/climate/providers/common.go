package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/i474232898/agro-climate/internal/climate"
	"github.com/i474232898/agro-climate/internal/metrics"
)

var (
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// maxErrorBody bounds how much of a failed response body is kept.
const maxErrorBody = 512

// statusError is a non-2xx response from a provider.
type statusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *statusError) Unwrap() error {
	return climate.ErrUpstream
}

// Option configures a provider.
type Option func(*upstream)

// WithMetrics records every outbound call in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(u *upstream) { u.metrics = m }
}

// WithLogger sets the provider logger.
func WithLogger(log zerolog.Logger) Option {
	return func(u *upstream) { u.log = log }
}

// upstream bundles what every provider needs for an outbound call: the
// shared client, a per-provider circuit breaker, metrics and logging.
// Calls are never retried.
type upstream struct {
	name    string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func newUpstream(name string, client *http.Client, opts []Option) upstream {
	u := upstream{
		name:   name,
		client: client,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&u)
	}
	u.log = u.log.With().Str("provider", name).Logger()
	u.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:         name,
		MaxRequests:  5,
		Interval:     1 * time.Minute,
		Timeout:      2 * time.Minute,
		IsSuccessful: healthyOutcome,
		OnStateChange: func(name string, from, to gobreaker.State) {
			u.log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
	return u
}

// healthyOutcome decides whether an error counts against the breaker. Client
// errors, unresolvable places and caller cancellation say nothing about the
// provider's health.
func healthyOutcome(err error) bool {
	if err == nil {
		return true
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.StatusCode < http.StatusInternalServerError && se.StatusCode != http.StatusTooManyRequests
	}
	return errors.Is(err, climate.ErrNotFound) || errors.Is(err, context.Canceled)
}

// call runs fn through the circuit breaker and records the outcome.
func (u upstream) call(fn func() error) error {
	start := time.Now()
	_, err := u.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	elapsed := time.Since(start)

	switch {
	case err == nil:
		u.metrics.ObserveUpstream(u.name, metrics.OutcomeSuccess, elapsed)
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		u.metrics.ObserveUpstream(u.name, metrics.OutcomeCircuitOpen, elapsed)
		return fmt.Errorf("%w: %s: %w", climate.ErrUpstream, u.name, errCircuitOpen)
	default:
		u.metrics.ObserveUpstream(u.name, metrics.OutcomeError, elapsed)
	}
	return err
}

// getJSON issues a GET against endpoint and decodes a 2xx JSON body into out.
func (u upstream) getJSON(ctx context.Context, endpoint string, query url.Values, out any) error {
	if u.client == nil {
		return errNoHTTPClient
	}

	return u.call(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
		if err != nil {
			return err
		}

		// The query string can carry credentials; log the endpoint only.
		u.log.Debug().Str("endpoint", endpoint).Msg("upstream request")

		resp, err := u.client.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", climate.ErrUpstream, u.name, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return &statusError{
				Provider:   u.name,
				StatusCode: resp.StatusCode,
				Body:       strings.TrimSpace(string(body)),
			}
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: %s: decode response: %w", climate.ErrUpstream, u.name, err)
		}
		return nil
	})
}
