package edgetrust

import (
	"fmt"
	"net/http"
	"net/textproto"
)

const (
	// DefaultHeaderName is the header carrying the original client address.
	DefaultHeaderName = "CF_CONNECTING_IP"
	// DefaultIPv4ListURL publishes the Cloudflare IPv4 edge ranges.
	DefaultIPv4ListURL = "https://www.cloudflare.com/ips-v4"
	// DefaultIPv6ListURL publishes the Cloudflare IPv6 edge ranges.
	DefaultIPv6ListURL = "https://www.cloudflare.com/ips-v6"
)

// Option configures a Gate or Loader.
//
// Construct options using package-provided option builder functions.
type Option func(*config) error

// config holds gate and loader configuration state.
//
// It is mutated by Option functions during construction.
type config struct {
	headerName string

	ipv4ListURL      string
	ipv6ListURL      string
	useIPv4List      bool
	useIPv6List      bool
	additionalRanges []NetworkRange

	fetcher      Fetcher
	httpClient   *http.Client
	fetchRetries uint64

	matchStrategy MatchStrategy
	rewriter      Rewriter
	lazyStart     bool

	logger  Logger
	metrics Metrics

	metricsFactory    func() (Metrics, error)
	useMetricsFactory bool
}

func defaultConfig() *config {
	return &config{
		headerName:    DefaultHeaderName,
		ipv4ListURL:   DefaultIPv4ListURL,
		ipv6ListURL:   DefaultIPv6ListURL,
		useIPv4List:   true,
		useIPv6List:   true,
		matchStrategy: MatchLinear,
		rewriter:      RemoteAddrRewriter{},
		logger:        noopLogger{},
		metrics:       noopMetrics{},
	}
}

func applyOptions(c *config, opts ...Option) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(c); err != nil {
			return err
		}
	}

	return nil
}

func configFromOptions(opts ...Option) (*config, error) {
	cfg := defaultConfig()

	if err := applyOptions(cfg, opts...); err != nil {
		return nil, err
	}

	if cfg.fetcher == nil {
		cfg.fetcher = NewHTTPFetcher(cfg.httpClient, cfg.fetchRetries)
	}

	if cfg.useMetricsFactory && cfg.metricsFactory == nil {
		return nil, fmt.Errorf("metrics factory cannot be nil")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// The factory runs last so a rejected configuration never registers
	// collectors.
	if cfg.useMetricsFactory {
		metrics, err := cfg.metricsFactory()
		if err != nil {
			return nil, err
		}
		cfg.metrics = metrics

		if err := cfg.validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// canonicalHeaderKey returns the http.Header map key for name, the form
// HeaderValues implementations are queried with.
func canonicalHeaderKey(name string) string {
	return textproto.CanonicalMIMEHeaderKey(name)
}
