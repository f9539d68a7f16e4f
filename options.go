package edgetrust

import (
	"fmt"
	"net/http"
	"strings"
)

// WithHeaderName sets the header carrying the original client address.
func WithHeaderName(name string) Option {
	return func(c *config) error {
		c.headerName = strings.TrimSpace(name)
		return nil
	}
}

// WithIPv4ListURL sets the URL of the IPv4 range list.
func WithIPv4ListURL(url string) Option {
	return func(c *config) error {
		c.ipv4ListURL = strings.TrimSpace(url)
		return nil
	}
}

// WithIPv6ListURL sets the URL of the IPv6 range list.
func WithIPv6ListURL(url string) Option {
	return func(c *config) error {
		c.ipv6ListURL = strings.TrimSpace(url)
		return nil
	}
}

// UseIPv4List enables or disables fetching the IPv4 range list.
func UseIPv4List(enable bool) Option {
	return func(c *config) error {
		c.useIPv4List = enable
		return nil
	}
}

// UseIPv6List enables or disables fetching the IPv6 range list.
func UseIPv6List(enable bool) Option {
	return func(c *config) error {
		c.useIPv6List = enable
		return nil
	}
}

// WithAdditionalRanges adds ranges that are published alongside the fetched
// lists. They are placed ahead of fetched entries.
func WithAdditionalRanges(ranges ...NetworkRange) Option {
	ranges = cloneRanges(ranges)

	return func(c *config) error {
		for _, r := range ranges {
			if !r.IsValid() {
				return fmt.Errorf("invalid additional range %q", r)
			}
		}

		c.additionalRanges = append(c.additionalRanges, ranges...)
		return nil
	}
}

// WithFetcher sets the transport used to retrieve range lists.
//
// It takes precedence over WithHTTPClient and WithFetchRetries.
func WithFetcher(fetcher Fetcher) Option {
	return func(c *config) error {
		if isNilInterface(fetcher) {
			return fmt.Errorf("fetcher cannot be nil")
		}
		c.fetcher = fetcher
		return nil
	}
}

// WithHTTPClient sets the client used by the default HTTP fetcher.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) error {
		if client == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		c.httpClient = client
		return nil
	}
}

// WithFetchRetries sets how many times the default HTTP fetcher retries a
// transient failure per list.
func WithFetchRetries(retries int) Option {
	return func(c *config) error {
		if retries < 0 {
			return fmt.Errorf("fetch retries must be >= 0, got %d", retries)
		}
		c.fetchRetries = uint64(retries)
		return nil
	}
}

// WithMatchStrategy sets how the published set evaluates membership.
func WithMatchStrategy(strategy MatchStrategy) Option {
	return func(c *config) error {
		c.matchStrategy = strategy
		return nil
	}
}

// WithRewriter sets the collaborator applied to trusted requests.
func WithRewriter(rewriter Rewriter) Option {
	return func(c *config) error {
		c.rewriter = rewriter
		return nil
	}
}

// WithLazyStart controls whether the first request starts the loader when
// Start has not been called.
func WithLazyStart(enable bool) Option {
	return func(c *config) error {
		c.lazyStart = enable
		return nil
	}
}

// WithLogger sets the logger implementation.
func WithLogger(logger Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// WithMetrics sets a concrete metrics implementation.
//
// If previously configured, a metrics factory is disabled.
func WithMetrics(metrics Metrics) Option {
	return func(c *config) error {
		c.metrics = metrics
		c.metricsFactory = nil
		c.useMetricsFactory = false
		return nil
	}
}

// WithMetricsFactory configures a lazy metrics constructor.
//
// The factory is invoked only for the final winning metrics option after
// option validation succeeds.
func WithMetricsFactory(factory func() (Metrics, error)) Option {
	return func(c *config) error {
		if factory == nil {
			return fmt.Errorf("metrics factory cannot be nil")
		}

		c.metricsFactory = factory
		c.useMetricsFactory = true
		return nil
	}
}
