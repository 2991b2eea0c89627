package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClientGetJSONSendsQueryAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s", r.Method)
		}
		if got := r.URL.Query()["range"]; len(got) != 1 || got[0] != "20d" {
			t.Errorf("range = %v", got)
		}
		if r.URL.Query().Get("keep") != "1" {
			t.Errorf("existing query lost: %s", r.URL.RawQuery)
		}
		if r.Header.Get("User-Agent") != "volscan-test" || r.Header.Get("Accept") != "application/json" {
			t.Errorf("headers = %v", r.Header)
		}
		_, _ = w.Write([]byte(`{"n":3}`))
	}))
	defer srv.Close()

	c := NewClient(WithTimeout(time.Second), WithUserAgent("volscan-test"))
	var out struct{ N int }
	err := c.GetJSON(context.Background(), Request{
		URL:   srv.URL + "/x?keep=1",
		Query: map[string][]string{"range": {"20d"}},
	}, &out)
	if err != nil || out.N != 3 {
		t.Fatalf("out = %+v err = %v", out, err)
	}
}

func TestClientRequestHeaderOverridesUserAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Header.Get("User-Agent")))
	}))
	defer srv.Close()

	c := NewClient(WithUserAgent("default"))
	body, err := c.Get(context.Background(), Request{URL: srv.URL, Header: map[string]string{"User-Agent": "browser"}})
	if err != nil || string(body) != "browser" {
		t.Fatalf("body = %q err = %v", body, err)
	}
}

func TestClientStatusError(t *testing.T) {
	cases := []struct {
		code      int
		retryable bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusBadGateway, true},
		{http.StatusNotFound, false},
		{http.StatusUnauthorized, false},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tc.code)
		}))
		_, err := NewClient().Get(context.Background(), Request{URL: srv.URL})
		srv.Close()

		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("%d: expected StatusError, got %v", tc.code, err)
		}
		if se.StatusCode != tc.code || se.Retryable() != tc.retryable {
			t.Fatalf("%d: got %+v retryable=%v", tc.code, se, se.Retryable())
		}
		if !strings.Contains(se.Body, "nope") {
			t.Fatalf("%d: body = %q", tc.code, se.Body)
		}
	}
}

func TestClientMaxBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	if _, err := NewClient(WithMaxBody(32)).Get(context.Background(), Request{URL: srv.URL}); err == nil {
		t.Fatalf("oversized body should fail")
	}
	if body, err := NewClient(WithMaxBody(64)).Get(context.Background(), Request{URL: srv.URL}); err != nil || len(body) != 64 {
		t.Fatalf("body at the cap should pass: %d %v", len(body), err)
	}
}
