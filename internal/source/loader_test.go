package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	cases := map[string]Kind{
		"-":                       KindStdin,
		"https://example.com/a":   KindURL,
		"http://localhost/a.json": KindURL,
		"fs:forms/a.json":         KindFS,
		"forms/a.json":            KindFile,
	}
	for location, want := range cases {
		if got := KindOf(location); got != want {
			t.Fatalf("KindOf(%q) = %s, want %s", location, got, want)
		}
	}
}

func TestLoad_FileStdinFS(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.json")
	if err := os.WriteFile(path, []byte(`{"a":1}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	l := New(
		WithStdin(strings.NewReader(`{"stdin":true}`)),
		WithFS(fstest.MapFS{"forms/b.json": {Data: []byte(`{"b":2}`)}}),
	)
	ctx := context.Background()

	for location, want := range map[string]string{
		path:              `{"a":1}`,
		"-":               `{"stdin":true}`,
		"fs:forms/b.json": `{"b":2}`,
	} {
		got, err := l.Load(ctx, location)
		if err != nil {
			t.Fatalf("Load(%q): %v", location, err)
		}
		if string(got) != want {
			t.Fatalf("Load(%q) = %s, want %s", location, got, want)
		}
	}

	if _, err := l.Load(ctx, " "); !errors.Is(err, ErrEmptyLocation) {
		t.Fatalf("expected ErrEmptyLocation, got %v", err)
	}
	if _, err := l.Load(ctx, filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected a not-exist error, got %v", err)
	}
	if _, err := New().Load(ctx, "fs:forms/b.json"); err == nil {
		t.Fatalf("expected an error without an fs")
	}
}

func TestLoad_HTTP(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/form.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"remote":true}`))
	}))
	t.Cleanup(srv.Close)

	l := New(WithHTTPClient(srv.Client()))
	got, err := l.Load(context.Background(), srv.URL+"/form.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != `{"remote":true}` {
		t.Fatalf("unexpected body %s", got)
	}
	if _, err := l.Load(context.Background(), srv.URL+"/missing"); err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected a status error, got %v", err)
	}
	if _, err := New(WithoutHTTP()).Load(context.Background(), srv.URL+"/form.json"); !errors.Is(err, ErrHTTPDisabled) {
		t.Fatalf("expected ErrHTTPDisabled, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Load(ctx, srv.URL+"/form.json"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
