package edgetrust

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serveReadiness(t *testing.T, gate *Gate) (int, readinessResponse, http.Header) {
	t.Helper()

	rec := httptest.NewRecorder()
	gate.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	var body readinessResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode readiness body: %v", err)
	}

	return rec.Code, body, rec.Header()
}

func TestReadinessHandler(t *testing.T) {
	t.Run("absent before start", func(t *testing.T) {
		gate := mustNewGate(t, stubOptions(newStubFetcher())...)

		code, body, header := serveReadiness(t, gate)
		if code != http.StatusServiceUnavailable || body.State != "absent" {
			t.Fatalf("readiness = %d %+v, want 503 absent", code, body)
		}
		if body.StartedAt != nil || body.FinishedAt != nil {
			t.Fatalf("readiness timestamps = %v / %v, want none", body.StartedAt, body.FinishedAt)
		}
		if header.Get("Content-Type") != "application/json" || header.Get("Cache-Control") != "no-store" {
			t.Fatalf("readiness headers = %v", header)
		}
	})

	t.Run("in flight", func(t *testing.T) {
		fetcher := newStubFetcher()
		fetcher.gate = make(chan struct{})
		gate := mustNewGate(t, stubOptions(fetcher)...)
		gate.Start(context.Background())
		defer close(fetcher.gate)

		code, body, _ := serveReadiness(t, gate)
		if code != http.StatusServiceUnavailable || body.State != "in_flight" || body.StartedAt == nil {
			t.Fatalf("readiness = %d %+v, want 503 in_flight with start time", code, body)
		}
	})

	t.Run("complete", func(t *testing.T) {
		gate := mustNewGate(t, stubOptions(newStubFetcher())...)
		mustLoad(t, gate)

		code, body, _ := serveReadiness(t, gate)
		if code != http.StatusOK || body.State != "complete" {
			t.Fatalf("readiness = %d %+v, want 200 complete", code, body)
		}
		if body.IPv4Ranges != 3 || body.IPv6Ranges != 2 || body.Error != "" || body.FinishedAt == nil {
			t.Fatalf("readiness body = %+v", body)
		}
	})

	t.Run("failed", func(t *testing.T) {
		fetcher := newStubFetcher()
		fetcher.errs[testIPv6URL] = errors.New("tls handshake timeout")
		gate := mustNewGate(t, stubOptions(fetcher)...)
		gate.Start(context.Background())
		<-gate.Loader().Done()

		code, body, _ := serveReadiness(t, gate)
		if code != http.StatusServiceUnavailable || body.State != "failed" {
			t.Fatalf("readiness = %d %+v, want 503 failed", code, body)
		}
		if !strings.Contains(body.Error, "tls handshake timeout") {
			t.Fatalf("readiness error = %q, want transport error", body.Error)
		}
	})
}
