package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	ngerr "github.com/liqshift/liqshift-go/errors"
)

func TestGetJSONRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"value": 7}`))
	}))
	defer srv.Close()

	var out struct {
		Value int `json:"value"`
	}
	client := New(5*time.Second, 3)
	if err := client.GetJSON(context.Background(), srv.URL, &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if out.Value != 7 {
		t.Fatalf("decoded value %d, want 7", out.Value)
	}
	if got := hits.Load(); got != 3 {
		t.Fatalf("server hit %d times, want 3", got)
	}
}

func TestGetJSONRetriesRateLimit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := New(5*time.Second, 2)
	var out map[string]any
	if err := client.GetJSON(context.Background(), srv.URL, &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("server hit %d times, want 2", got)
	}
}

func TestGetJSONRetriesExhausted(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(5*time.Second, 2)
	err := client.GetJSON(context.Background(), srv.URL, nil)
	if !ngerr.IsKind(err, ngerr.KindCollaborator) {
		t.Fatalf("exhausted retries should be a collaborator error, got %v", err)
	}
	if got := hits.Load(); got != 3 {
		t.Fatalf("server hit %d times, want 3", got)
	}
}

func TestGetJSONClientErrorNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(5*time.Second, 3)
	err := client.GetJSON(context.Background(), srv.URL, nil)
	if !ngerr.IsKind(err, ngerr.KindCollaborator) {
		t.Fatalf("4xx should be a collaborator error, got %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("4xx must not be retried, server hit %d times", got)
	}
}

func TestPostJSONReplaysBodyAcrossRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := make([]byte, r.ContentLength)
		r.Body.Read(body)
		if string(body) != `{"amount":"5"}` {
			t.Errorf("attempt %d saw body %q", hits.Load()+1, body)
		}
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if r.Header.Get("X-Api-Key") != "secret" {
			t.Errorf("missing api key header on retry")
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := New(5*time.Second, 2)
	var out struct {
		OK bool `json:"ok"`
	}
	headers := map[string]string{"X-Api-Key": "secret"}
	if err := client.PostJSON(context.Background(), srv.URL, []byte(`{"amount":"5"}`), headers, &out); err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if !out.OK {
		t.Fatal("response not decoded")
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("server hit %d times, want 2", got)
	}
}

func TestGetJSONEmptyBodyRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(5*time.Second, 0)
	var out map[string]any
	err := client.GetJSON(context.Background(), srv.URL, &out)
	if !ngerr.IsKind(err, ngerr.KindCollaborator) {
		t.Fatalf("empty body should be a collaborator error, got %v", err)
	}
}

func TestGetJSONContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := New(5*time.Second, 5)
	err := client.GetJSON(ctx, srv.URL, nil)
	if err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
}
