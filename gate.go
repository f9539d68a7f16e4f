package edgetrust

import (
	"context"
	"fmt"
	"net/http"
	"net/netip"
)

// DecisionReason explains a trust decision.
type DecisionReason int

const (
	// ReasonTrusted means the peer is inside a trusted range and the header
	// is present.
	ReasonTrusted DecisionReason = iota + 1
	// ReasonPeerMissing means the request has no parseable peer address.
	ReasonPeerMissing
	// ReasonHeaderMissing means the forwarded header is absent.
	ReasonHeaderMissing
	// ReasonRangesUnavailable means no range set is published: the loader
	// failed, was never started, or the caller stopped waiting for it.
	ReasonRangesUnavailable
	// ReasonPeerUntrusted means the peer matched none of the trusted ranges.
	ReasonPeerUntrusted
)

// String returns the canonical text representation of r.
func (r DecisionReason) String() string {
	switch r {
	case ReasonTrusted:
		return "trusted"
	case ReasonPeerMissing:
		return "peer_missing"
	case ReasonHeaderMissing:
		return "header_missing"
	case ReasonRangesUnavailable:
		return "ranges_unavailable"
	case ReasonPeerUntrusted:
		return "peer_untrusted"
	default:
		return "unknown"
	}
}

// Decision is the outcome of evaluating one request.
type Decision struct {
	Trusted bool
	Reason  DecisionReason
	Peer    netip.Addr
}

// Gate decides per request whether the forwarded header may be trusted.
//
// Gate instances are safe for concurrent use. They are typically created once
// at application startup, started, and shared across all requests.
type Gate struct {
	config *config
	loader *Loader

	// lifetime is the shutdown signal for runs started lazily by a request.
	lifetime context.Context
	stop     context.CancelFunc
}

// New creates a Gate from one or more Option builders.
//
// The range lists are not fetched until Start is called, or until the first
// request when WithLazyStart(true) is set.
func New(opts ...Option) (*Gate, error) {
	cfg, err := configFromOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	lifetime, stop := context.WithCancel(context.Background())

	return &Gate{
		config:   cfg,
		loader:   newLoader(cfg),
		lifetime: lifetime,
		stop:     stop,
	}, nil
}

// Start triggers the one-shot range load. Only the first call has effect;
// cancelling ctx aborts an in-flight load.
func (g *Gate) Start(ctx context.Context) {
	g.loader.Start(ctx)
}

// Close aborts a lazily started load that is still in flight.
func (g *Gate) Close() {
	g.stop()
}

// Loader returns the loader owned by g.
func (g *Gate) Loader() *Loader {
	return g.loader
}

// Status returns a snapshot of the loader state.
func (g *Gate) Status() Status {
	return g.loader.Status()
}

// HeaderName returns the forwarded header g inspects.
func (g *Gate) HeaderName() string {
	return g.config.headerName
}

// Decide evaluates r. It may wait for an in-flight load, bounded by r's
// context.
func (g *Gate) Decide(r *http.Request) Decision {
	if r == nil {
		return g.record(Decision{Reason: ReasonPeerMissing})
	}

	present := len(r.Header.Values(g.config.headerName)) > 0
	return g.decide(r.Context(), r.RemoteAddr, present)
}

// DecideFrom evaluates framework-agnostic request input.
func (g *Gate) DecideFrom(input RequestInput) Decision {
	present := headerPresent(input.Headers, canonicalHeaderKey(g.config.headerName))
	return g.decide(requestInputContext(input), input.RemoteAddr, present)
}

func (g *Gate) decide(ctx context.Context, remoteAddr string, present bool) Decision {
	set, loaded := g.awaitRanges(ctx)

	peer, _ := parseRemoteAddr(remoteAddr)
	if !peer.IsValid() {
		return g.record(Decision{Reason: ReasonPeerMissing})
	}
	peer = normalizeIP(peer)

	if !present {
		return g.record(Decision{Reason: ReasonHeaderMissing, Peer: peer})
	}

	if !loaded {
		return g.record(Decision{Reason: ReasonRangesUnavailable, Peer: peer})
	}

	if !set.Contains(peer) {
		return g.record(Decision{Reason: ReasonPeerUntrusted, Peer: peer})
	}

	return g.record(Decision{Trusted: true, Reason: ReasonTrusted, Peer: peer})
}

// awaitRanges returns the published set, waiting for an in-flight load.
//
// A failed load was already reported by the loader, so the error is not
// surfaced again per request.
func (g *Gate) awaitRanges(ctx context.Context) (*RangeSet, bool) {
	if g.config.lazyStart {
		g.loader.Start(g.lifetime)
	}

	set, err := g.loader.Wait(ctx)
	if err != nil || set == nil {
		return nil, false
	}

	return set, true
}

func (g *Gate) record(d Decision) Decision {
	g.config.metrics.RecordDecision(d.Reason.String())
	return d
}
