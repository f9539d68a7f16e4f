package edgetrust

// Metrics records loader outcomes and per-request trust decisions.
//
// Implementations should be safe for concurrent use, as a single Gate
// instance is typically shared across many goroutines.
type Metrics interface {
	// RecordLoad is called once when the loader run finishes, with one of
	// "success", "fetch_error", "parse_error" or "cancelled".
	RecordLoad(result string)
	// RecordRangesLoaded is called after a successful load with the number of
	// published ranges per family ("ipv4", "ipv6").
	RecordRangesLoaded(family string, count int)
	// RecordDecision is called once per evaluated request with the decision
	// reason.
	RecordDecision(reason string)
	// RecordRewriteFailure is called when a trusted request carries a header
	// value the rewriter rejects.
	RecordRewriteFailure()
}

// noopMetrics is the default Metrics implementation when metrics are not
// explicitly configured.
type noopMetrics struct{}

func (noopMetrics) RecordLoad(string) {}

func (noopMetrics) RecordRangesLoaded(string, int) {}

func (noopMetrics) RecordDecision(string) {}

func (noopMetrics) RecordRewriteFailure() {}
