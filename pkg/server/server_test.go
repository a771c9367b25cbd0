package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/derivgraph/pkg/cache"
	"github.com/matzehuels/derivgraph/pkg/derivation"
	"github.com/matzehuels/derivgraph/pkg/loader"
)

const validPayload = `{
	"nodes": [
		{"id": 1, "rule": "App", "inputs": ["f", "x"], "outputs": ["y"], "children": [2]},
		{"id": 2, "rule": "Var", "inputs": [], "outputs": ["f"], "children": []}
	],
	"links": [{"source": 1, "target": 2}]
}`

func quietLogger() *log.Logger { return log.New(io.Discard) }

func newTestServer(t *testing.T, payload string) (*httptest.Server, *loader.State) {
	t.Helper()
	st := loader.New(
		loader.WithPayload("test.json", []byte(payload)),
		loader.WithLogger(quietLogger()),
	).Load()
	ts := httptest.NewServer(New(st, WithLogger(quietLogger())).Handler())
	t.Cleanup(ts.Close)
	return ts, st
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, validPayload)
	resp, body := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK || body != "ok\n" {
		t.Errorf("healthz = %d %q", resp.StatusCode, body)
	}
}

func TestGraphSuccess(t *testing.T) {
	ts, st := newTestServer(t, validPayload)
	resp, body := get(t, ts.URL+"/api/graph")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	if got := resp.Header.Get(LoadIDHeader); got != st.ID {
		t.Errorf("%s = %q, want %q", LoadIDHeader, got, st.ID)
	}

	var out struct {
		Data  *derivation.Graph `json:"data"`
		Error *string           `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Error != nil {
		t.Errorf("error = %q, want null", *out.Error)
	}
	want, _ := st.Graph()
	if diff := cmp.Diff(want, out.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestGraphFailure(t *testing.T) {
	ts, st := newTestServer(t, `{"nodes":[{"id":"x","rule":"r","inputs":[],"outputs":[],"children":[]}],"links":[]}`)

	tests := []struct {
		path string
		json bool
	}{
		{"/api/graph", true},
		{"/api/graph.dot", false},
		{"/api/graph.svg", false},
	}
	msg, _ := st.Err()
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, ts.URL+tt.path)
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422", resp.StatusCode)
			}
			if !tt.json {
				if !strings.Contains(body, msg) {
					t.Errorf("body %q does not contain %q", body, msg)
				}
				return
			}
			var out map[string]any
			if err := json.Unmarshal([]byte(body), &out); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if out["data"] != nil {
				t.Errorf("data = %v, want null", out["data"])
			}
			if out["error"] != msg {
				t.Errorf("error = %v, want %q", out["error"], msg)
			}
		})
	}
}

func TestGraphDOT(t *testing.T) {
	ts, _ := newTestServer(t, validPayload)

	tests := []struct {
		query string
		edges int
	}{
		{"", 1},
		{"?children=true", 2},
		{"?children=nope", 1},
	}
	for _, tt := range tests {
		t.Run("q"+tt.query, func(t *testing.T) {
			resp, body := get(t, ts.URL+"/api/graph.dot"+tt.query)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/vnd.graphviz") {
				t.Errorf("content type = %q", resp.Header.Get("Content-Type"))
			}
			if got := strings.Count(body, "->"); got != tt.edges {
				t.Errorf("edges = %d, want %d", got, tt.edges)
			}
		})
	}
}

// readOnlyCache misses every lookup and rejects every write.
type readOnlyCache struct{ cache.NullCache }

func (readOnlyCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("cache is read-only")
}

func TestGraphSVGCacheWriteFails(t *testing.T) {
	st := loader.New(
		loader.WithPayload("test.json", []byte(validPayload)),
		loader.WithLogger(quietLogger()),
	).Load()
	srv := New(st, WithLogger(quietLogger()), WithCache(readOnlyCache{}, nil, time.Minute))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	resp, body := get(t, ts.URL+"/api/graph.svg")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, "<svg") {
		t.Errorf("body is not SVG:\n%s", body)
	}
}

func TestSchema(t *testing.T) {
	ts, _ := newTestServer(t, validPayload)
	resp, body := get(t, ts.URL+"/api/schema")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body != string(derivation.Schema()) {
		t.Error("schema body differs from embedded schema")
	}
}

func TestNotFound(t *testing.T) {
	ts, _ := newTestServer(t, validPayload)
	resp, _ := get(t, ts.URL+"/api/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestServeShutdown(t *testing.T) {
	st := loader.New(loader.WithLogger(quietLogger())).Load()
	srv := New(st, WithLogger(quietLogger()))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, _ := get(t, "http://"+ln.Addr().String()+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
