package httpds

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"csvload/internal/loaderr"
)

func fastClient(retries int) *Client {
	return NewClient(Config{
		MaxRetries:     retries,
		Timeout:        2 * time.Second,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	})
}

// TestNewClient_Defaults verifies that zero values get defaults and that TLS
// verification skipping reaches the transport.
func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{InsecureSkipVerify: true})

	if c.httpClient.Timeout <= 0 {
		t.Fatalf("expected non-zero timeout, got %v", c.httpClient.Timeout)
	}
	if c.maxRetries != 0 {
		t.Fatalf("expected default maxRetries=0, got %d", c.maxRetries)
	}
	if c.initialBackoff <= 0 || c.maxBackoff <= 0 {
		t.Fatalf("expected positive backoff defaults, got %v/%v", c.initialBackoff, c.maxBackoff)
	}
	transport, ok := c.httpClient.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", c.httpClient.Transport)
	}
	if transport.TLSClientConfig == nil || !transport.TLSClientConfig.InsecureSkipVerify {
		t.Fatalf("expected InsecureSkipVerify=true when configured")
	}
}

func TestGet_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, "a,b\n")
	}))
	defer srv.Close()

	resp, err := fastClient(3).Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer resp.Body.Close()

	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Fatalf("hits = %d, want 3", got)
	}
}

func TestGet_GivesUpAfterRetries(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := fastClient(2).Get(context.Background(), srv.URL); err == nil {
		t.Fatalf("Get() error = nil, want retryable status error")
	}
	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Fatalf("hits = %d, want 3 (1 + 2 retries)", got)
	}
}

func TestGet_NonRetryableStatusReturned(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	resp, err := fastClient(3).Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound || atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("status=%d hits=%d, want 404 after one hit", resp.StatusCode, hits)
	}
}

func TestGet_EmptyURL(t *testing.T) {
	t.Parallel()

	if _, err := fastClient(0).Get(context.Background(), ""); err == nil {
		t.Fatalf("Get(\"\") error = nil, want error")
	}
}

func TestBackoffDuration(t *testing.T) {
	t.Parallel()

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{5, time.Second},
	}
	for _, c := range cases {
		if got := backoffDuration(100*time.Millisecond, c.attempt, time.Second); got != c.want {
			t.Fatalf("backoffDuration(attempt=%d) = %v, want %v", c.attempt, got, c.want)
		}
	}
}

func TestSleepWithContext_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepWithContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("sleepWithContext() error = %v, want context.Canceled", err)
	}
}

func TestIsURL(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"http://example.com/a.csv":  true,
		"HTTPS://example.com/a.csv": true,
		"data/people.csv":           false,
		"/tmp/http.csv":             false,
	}
	for in, want := range cases {
		if got := IsURL(in); got != want {
			t.Fatalf("IsURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSourceOpen(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "name\nJohn\n")
	}))
	defer srv.Close()

	src := &Source{Client: fastClient(0), URL: srv.URL + "/people.csv"}
	rc, err := src.Open(context.Background())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	b, _ := io.ReadAll(rc)
	rc.Close()
	if string(b) != "name\nJohn\n" {
		t.Fatalf("body = %q", b)
	}

	missing := &Source{Client: fastClient(0), URL: srv.URL + "/missing.csv"}
	if _, err := missing.Open(context.Background()); !errors.Is(err, loaderr.ErrIO) {
		t.Fatalf("Open(missing) error = %v, want IO error", err)
	}
}
