package edgetrust

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// LoadState is the lifecycle state of a Loader.
//
// States only move forward: absent, in flight, then complete or failed.
type LoadState int

const (
	LoadStateAbsent LoadState = iota
	LoadStateInFlight
	LoadStateComplete
	LoadStateFailed
)

// String returns the canonical text representation of s.
func (s LoadState) String() string {
	switch s {
	case LoadStateAbsent:
		return "absent"
	case LoadStateInFlight:
		return "in_flight"
	case LoadStateComplete:
		return "complete"
	case LoadStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is a point-in-time snapshot of a Loader.
type Status struct {
	State      LoadState
	Err        error
	IPv4Ranges int
	IPv6Ranges int
	StartedAt  time.Time
	FinishedAt time.Time
}

// ListSource is one remote range list.
type ListSource struct {
	Family Family
	URL    string
}

// Loader fetches the trusted range lists exactly once and publishes the
// combined RangeSet.
//
// Loader instances are safe for concurrent use.
type Loader struct {
	sources  []ListSource
	extra    []NetworkRange
	fetcher  Fetcher
	strategy MatchStrategy
	logger   Logger
	metrics  Metrics
	now      func() time.Time

	startOnce sync.Once
	started   chan struct{}
	done      chan struct{}

	set    atomic.Pointer[RangeSet]
	status atomic.Pointer[Status]
}

// NewLoader creates a Loader from the same options accepted by New.
func NewLoader(opts ...Option) (*Loader, error) {
	cfg, err := configFromOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return newLoader(cfg), nil
}

func newLoader(cfg *config) *Loader {
	var sources []ListSource
	if cfg.useIPv4List {
		sources = append(sources, ListSource{Family: FamilyIPv4, URL: cfg.ipv4ListURL})
	}
	if cfg.useIPv6List {
		sources = append(sources, ListSource{Family: FamilyIPv6, URL: cfg.ipv6ListURL})
	}

	return &Loader{
		sources:  sources,
		extra:    cloneRanges(cfg.additionalRanges),
		fetcher:  cfg.fetcher,
		strategy: cfg.matchStrategy,
		logger:   cfg.logger,
		metrics:  cfg.metrics,
		now:      time.Now,
		started:  make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Sources returns the enabled list sources in fetch order.
func (l *Loader) Sources() []ListSource {
	sources := make([]ListSource, len(l.sources))
	copy(sources, l.sources)
	return sources
}

// Start begins the single loader run in the background.
//
// Only the first call has any effect. ctx is the shutdown signal: cancelling
// it aborts an in-flight run, which then fails without publishing anything.
func (l *Loader) Start(ctx context.Context) {
	l.startOnce.Do(func() {
		l.status.Store(&Status{State: LoadStateInFlight, StartedAt: l.now()})
		close(l.started)

		go l.run(ctx)
	})
}

// Load starts the loader if needed and waits for the run to finish.
func (l *Loader) Load(ctx context.Context) (*RangeSet, error) {
	l.Start(ctx)
	return l.Wait(ctx)
}

// Wait blocks until the loader run finishes and returns its result.
//
// It returns ErrLoaderNotStarted if Start was never called. ctx only bounds
// this caller's wait; cancelling it does not affect the run.
func (l *Loader) Wait(ctx context.Context) (*RangeSet, error) {
	select {
	case <-l.started:
	default:
		return nil, ErrLoaderNotStarted
	}

	select {
	case <-l.done:
	default:
		select {
		case <-l.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if status := l.status.Load(); status.Err != nil {
		return nil, status.Err
	}

	return l.set.Load(), nil
}

// Done returns a channel closed once the run has finished.
func (l *Loader) Done() <-chan struct{} {
	return l.done
}

// RangeSet returns the published set, or nil if nothing was published.
func (l *Loader) RangeSet() *RangeSet {
	return l.set.Load()
}

// Status returns a snapshot of the loader state.
func (l *Loader) Status() Status {
	status := l.status.Load()
	if status == nil {
		return Status{State: LoadStateAbsent}
	}
	return *status
}

func (l *Loader) run(ctx context.Context) {
	defer close(l.done)

	startedAt := l.Status().StartedAt

	l.logger.InfoContext(ctx, "loading trusted ranges",
		"sources", len(l.sources),
		"additional_ranges", len(l.extra),
	)

	set, err := l.fetchAll(ctx)
	if err != nil {
		result := loadResult(err)

		// The run is detached from any caller, so the failure is reported
		// here rather than left for someone to observe through Wait.
		l.logger.ErrorContext(ctx, "trusted range load failed",
			"result", result,
			"error", err,
		)
		l.metrics.RecordLoad(result)
		l.status.Store(&Status{
			State:      LoadStateFailed,
			Err:        err,
			StartedAt:  startedAt,
			FinishedAt: l.now(),
		})
		return
	}

	ipv4, ipv6 := set.CountByFamily()

	l.set.Store(set)
	l.status.Store(&Status{
		State:      LoadStateComplete,
		IPv4Ranges: ipv4,
		IPv6Ranges: ipv6,
		StartedAt:  startedAt,
		FinishedAt: l.now(),
	})

	l.metrics.RecordLoad(loadResultSuccess)
	l.metrics.RecordRangesLoaded(FamilyIPv4.String(), ipv4)
	l.metrics.RecordRangesLoaded(FamilyIPv6.String(), ipv6)
	l.logger.InfoContext(ctx, "trusted ranges loaded",
		"ipv4_ranges", ipv4,
		"ipv6_ranges", ipv6,
		"strategy", set.Strategy().String(),
	)
}

func (l *Loader) fetchAll(ctx context.Context) (*RangeSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, cancelledError(err)
	}

	lists := make([][]NetworkRange, len(l.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, source := range l.sources {
		g.Go(func() error {
			ranges, err := l.fetchList(gctx, source)
			if err != nil {
				return err
			}
			lists[i] = ranges
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, cancelledError(ctxErr)
		}
		return nil, &LoadError{Err: err}
	}

	combined := cloneRanges(l.extra)
	for _, ranges := range lists {
		combined = append(combined, ranges...)
	}

	return NewRangeSet(l.strategy, combined...), nil
}

func (l *Loader) fetchList(ctx context.Context, source ListSource) ([]NetworkRange, error) {
	body, err := l.fetcher.Fetch(ctx, source.URL)
	if err != nil {
		return nil, &FetchError{Family: source.Family, URL: source.URL, Err: err}
	}

	ranges, err := ParseRangeList(body)
	if err != nil {
		var parseErr *RangeParseError
		if errors.As(err, &parseErr) {
			parseErr.URL = source.URL
		}
		return nil, err
	}

	for _, r := range ranges {
		if r.Family() != source.Family {
			return nil, &RangeParseError{
				Err:    ErrInvalidRange,
				Input:  r.String(),
				Reason: fmt.Sprintf("address family does not match %s list", source.Family),
				URL:    source.URL,
			}
		}
	}

	return ranges, nil
}

func cancelledError(err error) *LoadError {
	return &LoadError{Err: fmt.Errorf("%w: %w", ErrLoadCancelled, err)}
}

func loadResult(err error) string {
	var parseErr *RangeParseError
	switch {
	case errors.Is(err, ErrLoadCancelled):
		return loadResultCancelled
	case errors.As(err, &parseErr):
		return loadResultParseError
	default:
		return loadResultFetchError
	}
}
