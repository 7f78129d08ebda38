package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExtractTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.sql")
	sql := "CREATE TABLE IF NOT EXISTS rides (id TEXT);\ncreate table if not exists pilot_location_snapshots (id BIGSERIAL);\n"
	if err := os.WriteFile(path, []byte(sql), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	tables, err := extractTables(path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(tables) != 2 || tables[0] != "rides" || tables[1] != "pilot_location_snapshots" {
		t.Fatalf("unexpected tables %v", tables)
	}
}

func TestExpectAndSkips(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewRunner(Config{BaseURL: srv.URL, Timeout: time.Second, Concurrency: 1, Duration: 10 * time.Millisecond})
	ctx := context.Background()

	if res := r.expect(ctx, http.MethodGet, "/health", nil, http.StatusOK); res.Status != StatusPass {
		t.Fatalf("expected pass, got %+v", res)
	}
	if res := r.expect(ctx, http.MethodGet, "/nope", nil, http.StatusOK); res.Status != StatusFail {
		t.Fatalf("expected fail, got %+v", res)
	}
	if res := checkDB(ctx, r); res.Status != StatusSkip {
		t.Fatalf("expected skip without db, got %+v", res)
	}
	if res := checkRedis(ctx, r); res.Status != StatusSkip {
		t.Fatalf("expected skip without redis, got %+v", res)
	}
}
