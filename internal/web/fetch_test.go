package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/dialectica/internal/model"
	"github.com/ppiankov/dialectica/internal/worker"
)

func testFetcher() *Fetcher {
	f := NewFetcher(model.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test-agent"})
	// Generous limit keeps tests from waiting on the politeness budget.
	f.limiter = worker.NewLimiter(1000, 1000)
	return f
}

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, "<html><body>OK</body></html>")
	}))
	defer server.Close()

	body, err := testFetcher().Fetch(context.Background(), server.URL+"/page")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if body != "<html><body>OK</body></html>" {
		t.Errorf("Unexpected HTML: %s", body)
	}
}

func TestFetch_SendsUserAgent(t *testing.T) {
	var agent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		agent.Store(r.Header.Get("User-Agent"))
		_, _ = fmt.Fprint(w, "<html>OK</html>")
	}))
	defer server.Close()

	if _, err := testFetcher().Fetch(context.Background(), server.URL+"/page"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := agent.Load(); got != "test-agent" {
		t.Errorf("Expected test-agent user agent, got %v", got)
	}
}

func TestFetch_RobotsDisallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
			return
		}
		_, _ = fmt.Fprint(w, "<html>secret</html>")
	}))
	defer server.Close()

	_, err := testFetcher().Fetch(context.Background(), server.URL+"/private/page")
	if !errors.Is(err, ErrRobotsDisallowed) {
		t.Fatalf("Expected ErrRobotsDisallowed, got %v", err)
	}
}

func TestFetch_BodySizeCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = fmt.Fprint(w, strings.Repeat("x", 1000))
	}))
	defer server.Close()

	fetcher := NewFetcher(model.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test-agent", MaxBodyBytes: 64})
	fetcher.limiter = worker.NewLimiter(1000, 1000)

	body, err := fetcher.Fetch(context.Background(), server.URL+"/big")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(body) != 64 {
		t.Errorf("Expected body capped at 64 bytes, got %d", len(body))
	}
}

func TestFetchWithRetry_TransientThenSuccess(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, "<html>OK</html>")
	}))
	defer server.Close()

	origSleep := fetchSleep
	fetchSleep = func(d time.Duration) {}
	defer func() { fetchSleep = origSleep }()

	body, err := testFetcher().FetchWithRetry(context.Background(), server.URL+"/flaky")
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if body != "<html>OK</html>" {
		t.Errorf("Unexpected HTML: %s", body)
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
}

func TestFetchWithRetry_PermanentFailure(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	origSleep := fetchSleep
	fetchSleep = func(d time.Duration) {}
	defer func() { fetchSleep = origSleep }()

	_, err := testFetcher().FetchWithRetry(context.Background(), server.URL+"/gone")
	if err == nil {
		t.Fatal("Expected error for 404, got nil")
	}
	// 404 is not retryable, so should fail immediately
	if attempts.Load() != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts.Load())
	}
	if got := err.Error(); got != "unexpected status: 404 404 Not Found" {
		t.Errorf("Unexpected error: %s", got)
	}
}

func TestFetchWithRetry_TimeoutRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if attempts.Add(1) <= 2 {
			// Stall until the client gives up.
			<-r.Context().Done()
			return
		}
		_, _ = fmt.Fprint(w, "<html>OK</html>")
	}))
	defer server.Close()

	fetcher := NewFetcher(model.HTTPConfig{Timeout: 100 * time.Millisecond, UserAgent: "test-agent"})
	fetcher.limiter = worker.NewLimiter(1000, 1000)

	origSleep := fetchSleep
	fetchSleep = func(d time.Duration) {}
	defer func() { fetchSleep = origSleep }()

	body, err := fetcher.FetchWithRetry(context.Background(), server.URL+"/slow")
	if err != nil {
		t.Fatalf("Expected success after timeout retries, got %v", err)
	}
	if body != "<html>OK</html>" {
		t.Errorf("Unexpected HTML: %s", body)
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
}

func TestFetchWithRetry_ExhaustsAttempts(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	origSleep := fetchSleep
	fetchSleep = func(d time.Duration) {}
	defer func() { fetchSleep = origSleep }()

	_, err := testFetcher().FetchWithRetry(context.Background(), server.URL+"/down")
	if err == nil {
		t.Fatal("Expected error after exhausting retries, got nil")
	}
	if attempts.Load() != int32(fetchAttempts) {
		t.Errorf("Expected %d attempts, got %d", fetchAttempts, attempts.Load())
	}
}
