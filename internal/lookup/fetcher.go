package lookup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TransportError is a connection-level failure (refused, reset,
// timeout). It is retried against the backoff schedule before being
// surfaced.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamError is a non-2xx HTTP response. Only 429 is retried; any
// other status is surfaced immediately.
type UpstreamError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.URL, e.StatusCode, e.Body)
}

const maxBodyBytes = 1 << 20

// Fetcher issues GETs against source URL templates with bounded
// retries. It holds no per-request state and is safe for concurrent
// use.
type Fetcher struct {
	client  *http.Client
	retries int
	backoff []time.Duration
}

func NewFetcher(timeout time.Duration, retries int, backoff []time.Duration) *Fetcher {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if retries < 0 {
		retries = 0
	}
	if len(backoff) == 0 {
		backoff = []time.Duration{1 * time.Second, 2 * time.Second, 5 * time.Second}
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}, retries: retries, backoff: backoff}
}

// Fetch resolves the source URL for query and GETs it, making at most
// retries+1 attempts. Transport failures and HTTP 429 are retried
// after a cooperative backoff sleep; other non-2xx statuses fail
// immediately. A 2xx body that is not JSON is preserved as an opaque
// {"_raw": body} leaf rather than treated as a failure.
func (f *Fetcher) Fetch(ctx context.Context, src Source, query string) (any, error) {
	reqURL := src.ResolveURL(query)
	var lastErr error
	attempts := f.retries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		tree, retryable, err := f.do(ctx, reqURL)
		if err == nil {
			return tree, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		if attempt < attempts-1 {
			wait := f.backoff[min(attempt, len(f.backoff)-1)]
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, &TransportError{URL: reqURL, Err: ctx.Err()}
			}
		}
	}
	return nil, lastErr
}

func (f *Fetcher) do(ctx context.Context, reqURL string) (tree any, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, &TransportError{URL: reqURL, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, &TransportError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		uerr := &UpstreamError{URL: reqURL, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		return nil, resp.StatusCode == http.StatusTooManyRequests, uerr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, true, &TransportError{URL: reqURL, Err: err}
	}
	parsed, perr := DecodeJSON(body)
	if perr != nil {
		raw := NewObject()
		raw.Set("_raw", strings.TrimSpace(string(body)))
		return raw, false, nil
	}
	return parsed, false, nil
}
