package edgetrust

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	// DefaultMaxListBytes caps the size of a fetched range list body. The
	// Cloudflare lists are well under a kilobyte; anything near the cap is
	// almost certainly not a range list.
	DefaultMaxListBytes = 1 << 20

	defaultRetryBase = 200 * time.Millisecond
	defaultRetryCap  = 5 * time.Second
)

// Fetcher retrieves the full text body stored at url.
//
// Implementations must honor ctx cancellation and be safe for concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) (string, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// HTTPFetcher fetches range lists over HTTP(S).
type HTTPFetcher struct {
	client   *http.Client
	retries  uint64
	maxBytes int64
}

// NewHTTPFetcher returns an HTTPFetcher using client.
//
// A nil client uses a client with a 30 second timeout. retries is the number
// of additional attempts after a transient failure (transport errors, 429 and
// 5xx responses), spaced by capped Fibonacci backoff.
func NewHTTPFetcher(client *http.Client, retries uint64) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &HTTPFetcher{
		client:   client,
		retries:  retries,
		maxBytes: DefaultMaxListBytes,
	}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	b := retry.NewFibonacci(defaultRetryBase)
	b = retry.WithCappedDuration(defaultRetryCap, b)
	b = retry.WithMaxRetries(f.retries, b)

	var body string
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		var err error
		body, err = f.fetchOnce(ctx, url)
		return err
	})
	if err != nil {
		return "", err
	}

	return body, nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.code, http.StatusText(e.code))
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", retry.RetryableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, f.maxBytes))

		err := &statusError{code: resp.StatusCode}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", retry.RetryableError(err)
		}
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", retry.RetryableError(err)
	}
	if int64(len(data)) > f.maxBytes {
		return "", errors.New("range list exceeds size limit")
	}

	return string(data), nil
}
