package market

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
)

func TestGetJSONRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `[{"title":"third time lucky"}]`)
	}))

	var items []newsItem
	if err := c.getJSON(context.Background(), "/stable/news/stock-latest", nil, &items); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
	if len(items) != 1 || items[0].Title != "third time lucky" {
		t.Errorf("unexpected items %+v", items)
	}
}

func TestGetJSONDoesNotRetryForbidden(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))

	var items []newsItem
	err := c.getJSON(context.Background(), "/stable/news/stock-latest", nil, &items)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "not available on this plan") {
		t.Errorf("unexpected error: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("403 should not be retried, got %d attempts", got)
	}
}

func TestGetJSONSendsAPIKey(t *testing.T) {
	var gotKey string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("apikey")
		fmt.Fprint(w, `[]`)
	}))

	var items []newsItem
	if err := c.getJSON(context.Background(), "/x", nil, &items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "test-key" {
		t.Errorf("apikey = %q, want %q", gotKey, "test-key")
	}
}

func TestGetJSONWithoutKey(t *testing.T) {
	c := NewClient("", testLogger())
	var dst any
	if err := c.getJSON(context.Background(), "/x", nil, &dst); err != ErrNoAPIKey {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}
