// Package edgetrust decides whether a CDN-supplied client IP header can be
// trusted, by checking the connection's peer address against the CDN's
// published edge ranges.
//
// # Features
//
//   - Fetches the IPv4 and IPv6 edge range lists once, concurrently, and
//     publishes them as a single read-only set
//   - Strict CIDR parsing: a range without a prefix length is an error, never
//     an implicit host route
//   - Fail-closed: when the lists cannot be loaded, no request is trusted
//   - Requests arriving while the lists are loading wait for the same run
//   - Optional observability with slog-compatible logging, pluggable metrics
//     and a readiness handler
//   - Type-safe using modern Go netip.Addr
//
// # Basic Usage
//
// Cloudflare defaults (CF_CONNECTING_IP, www.cloudflare.com/ips-v4 and ips-v6):
//
//	gate, err := edgetrust.New(edgetrust.WithLogger(slog.Default()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	gate.Start(ctx)
//
//	mux := http.NewServeMux()
//	mux.Handle("/readyz", gate.ReadinessHandler())
//	log.Fatal(http.ListenAndServe(":8080", gate.Handler(app)))
//
// Start should be called once the process is ready to serve; ctx is the
// shutdown signal and aborts a load that is still running. Alternatively
// WithLazyStart(true) lets the first request trigger the load.
//
// # Trust Decision
//
// For every request the Gate:
//
//   - waits for the load if it is still in flight (bounded by the request
//     context)
//   - requires a peer address and the forwarded header (any value)
//   - trusts the request if the peer falls in any published range
//
// Trusted requests are handed to the Rewriter, which by default replaces
// Request.RemoteAddr with the header value and keeps the previous value in
// X-Original-For. Untrusted requests pass through unmodified.
//
// # Observability
//
// Load failures are logged at error level and counted when they happen. Use
// Gate.Status or Gate.ReadinessHandler to tell a failed load apart from one
// that never started. Prometheus metrics are available from
// github.com/abczzz13/edgetrust/prometheus:
//
//	gate, err := edgetrust.New(
//	    edgetrust.WithLogger(slog.Default()),
//	    edgetrustprom.WithMetrics(),
//	)
//
// # Thread Safety
//
// Gate, Loader and RangeSet are safe for concurrent use. The published
// RangeSet is never modified, so request-path reads take no locks.
package edgetrust
