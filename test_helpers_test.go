package edgetrust

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"testing"
)

const (
	testIPv4URL = "https://ranges.test/ips-v4"
	testIPv6URL = "https://ranges.test/ips-v6"

	testIPv4List = "173.245.48.0/20\n103.21.244.0/22\n172.64.0.0/13\n"
	testIPv6List = "2400:cb00::/32\n2606:4700::/32\n"
)

// stubFetcher serves fixed bodies per URL and counts calls.
//
// When gate is non-nil, every Fetch blocks until it is closed or ctx ends.
type stubFetcher struct {
	mu     sync.Mutex
	bodies map[string]string
	errs   map[string]error
	calls  map[string]int
	gate   chan struct{}
	called chan string
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		bodies: map[string]string{
			testIPv4URL: testIPv4List,
			testIPv6URL: testIPv6List,
		},
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	f.calls[url]++
	body, ok := f.bodies[url]
	err := f.errs[url]
	gate := f.gate
	called := f.called
	f.mu.Unlock()

	if called != nil {
		called <- url
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no stub body for %s", url)
	}
	return body, nil
}

func (f *stubFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

type mockMetrics struct {
	mu              sync.Mutex
	loads           map[string]int
	ranges          map[string]int
	decisions       map[string]int
	rewriteFailures int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{
		loads:     make(map[string]int),
		ranges:    make(map[string]int),
		decisions: make(map[string]int),
	}
}

func (m *mockMetrics) RecordLoad(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads[result]++
}

func (m *mockMetrics) RecordRangesLoaded(family string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ranges[family] = count
}

func (m *mockMetrics) RecordDecision(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions[reason]++
}

func (m *mockMetrics) RecordRewriteFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rewriteFailures++
}

func (m *mockMetrics) getLoadCount(result string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads[result]
}

func (m *mockMetrics) getRangeCount(family string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ranges[family]
}

func (m *mockMetrics) getDecisionCount(reason string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decisions[reason]
}

func (m *mockMetrics) getRewriteFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rewriteFailures
}

type capturedLogEntry struct {
	level string
	msg   string
	attrs map[string]any
}

type capturedLogger struct {
	mu      sync.Mutex
	entries []capturedLogEntry
}

func (l *capturedLogger) InfoContext(_ context.Context, msg string, args ...any) {
	l.record("info", msg, args)
}

func (l *capturedLogger) WarnContext(_ context.Context, msg string, args ...any) {
	l.record("warn", msg, args)
}

func (l *capturedLogger) ErrorContext(_ context.Context, msg string, args ...any) {
	l.record("error", msg, args)
}

func (l *capturedLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, capturedLogEntry{
		level: level,
		msg:   msg,
		attrs: attrsToMap(args),
	})
}

func (l *capturedLogger) snapshot() []capturedLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]capturedLogEntry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

func (l *capturedLogger) byLevel(level string) []capturedLogEntry {
	var matched []capturedLogEntry
	for _, entry := range l.snapshot() {
		if entry.level == level {
			matched = append(matched, entry)
		}
	}
	return matched
}

func attrsToMap(args []any) map[string]any {
	attrs := make(map[string]any)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		attrs[key] = args[i+1]
	}
	return attrs
}

func mustNewGate(t *testing.T, opts ...Option) *Gate {
	t.Helper()

	gate, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(gate.Close)

	return gate
}

func stubOptions(fetcher Fetcher) []Option {
	return []Option{
		WithIPv4ListURL(testIPv4URL),
		WithIPv6ListURL(testIPv6URL),
		WithFetcher(fetcher),
	}
}

func mustLoad(t *testing.T, gate *Gate) *RangeSet {
	t.Helper()

	gate.Start(context.Background())
	set, err := gate.Loader().Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	return set
}

func newTestRequest(remoteAddr, path string) *http.Request {
	req := &http.Request{
		RemoteAddr: remoteAddr,
		Header:     make(http.Header),
	}

	if path != "" {
		req.URL = &url.URL{Path: path}
	}

	return req.WithContext(context.Background())
}
