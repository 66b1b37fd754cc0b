package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackzampolin/promptshelf/internal/api"
	"github.com/jackzampolin/promptshelf/internal/config"
	"github.com/jackzampolin/promptshelf/internal/home"
	"github.com/jackzampolin/promptshelf/internal/prompts"
	"github.com/jackzampolin/promptshelf/internal/server/endpoints"
	"github.com/jackzampolin/promptshelf/internal/testutil"
)

const catalogA = `
blocks:
  - id: greeting
    name: Greeting
    tier: 3
    content: Hello.
`

const catalogB = `
blocks:
  - id: greeting
    name: Greeting
    tier: 3
    content: Hi there.
  - id: farewell
    name: Farewell
    tier: 2
    content: Goodbye.
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// newTestServer builds a server on a free port from a config file body.
func newTestServer(t *testing.T, dir, configYAML string) (*Server, string) {
	t.Helper()

	mgr, err := config.NewManager(writeFile(t, dir, "config.yaml", configYAML))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	h, err := home.New(dir)
	if err != nil {
		t.Fatal(err)
	}
	port, err := testutil.FindFreePort()
	if err != nil {
		t.Fatalf("FindFreePort: %v", err)
	}

	srv, err := New(Config{
		Host:          "127.0.0.1",
		Port:          port,
		Home:          h,
		ConfigManager: mgr,
		Logger:        discardLogger(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv, fmt.Sprintf("http://127.0.0.1:%s", port)
}

// runServer starts srv and returns a function that stops it and waits.
func runServer(t *testing.T, srv *Server, baseURL string) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	serverErr := make(chan error, 1)
	go func() { serverErr <- srv.Start(ctx) }()

	if err := waitForServer(ctx, baseURL, 10*time.Second); err != nil {
		cancel()
		t.Fatalf("server did not start: %v", err)
	}

	return func() {
		cancel()
		select {
		case err := <-serverErr:
			if err != nil {
				t.Errorf("server returned error: %v", err)
			}
		case <-time.After(10 * time.Second):
			t.Fatal("server did not shut down within timeout")
		}
	}
}

func TestServer_MemoryBackend(t *testing.T) {
	dir := t.TempDir()
	srv, baseURL := newTestServer(t, dir, "storage:\n  backend: memory\n")
	stop := runServer(t, srv, baseURL)

	ctx := context.Background()
	client := api.NewClient(baseURL)

	t.Run("ready", func(t *testing.T) {
		var resp endpoints.HealthResponse
		if err := client.Get(ctx, "/ready", &resp); err != nil {
			t.Fatalf("ready: %v", err)
		}
		if resp.Status != "ok" {
			t.Errorf("ready status = %q", resp.Status)
		}
	})

	t.Run("edit_and_resolve", func(t *testing.T) {
		content := "You are a billing specialist."
		var updated prompts.ManagedPrompt
		err := client.Patch(ctx, "/api/prompts/role_intro", prompts.UpdateInput{
			Content:       &content,
			CommitMessage: "Specialize",
		}, &updated)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Version != 2 {
			t.Errorf("version = %d, want 2", updated.Version)
		}

		var block prompts.EffectiveBlock
		if err := client.Get(ctx, "/api/blocks/role_intro", &block); err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if block.Content != content || !block.IsOverride {
			t.Errorf("unexpected block %+v", block)
		}
	})

	t.Run("status_reports_backend", func(t *testing.T) {
		var status endpoints.StatusResponse
		if err := client.Get(ctx, "/status", &status); err != nil {
			t.Fatalf("status: %v", err)
		}
		if status.Storage.Backend != config.BackendMemory || status.Storage.Overrides != 1 {
			t.Errorf("unexpected storage status %+v", status.Storage)
		}
	})

	t.Run("missing_message_is_rejected", func(t *testing.T) {
		err := client.Patch(ctx, "/api/prompts/role_intro", prompts.UpdateInput{}, nil)
		var se *api.StatusError
		if !errors.As(err, &se) || se.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for missing commit message, got %v", err)
		}
	})

	t.Run("is_running", func(t *testing.T) {
		if !srv.IsRunning() {
			t.Error("IsRunning() = false, want true")
		}
	})

	stop()

	if srv.IsRunning() {
		t.Error("IsRunning() = true after shutdown, want false")
	}
}

func TestServer_SQLitePersistsAcrossRestarts(t *testing.T) {
	dir := t.TempDir()
	cfg := fmt.Sprintf("storage:\n  backend: sqlite\n  sqlite_path: %s\n", filepath.Join(dir, "overrides.db"))
	ctx := context.Background()
	content := "Escalate refunds over $100."

	srv, baseURL := newTestServer(t, dir, cfg)
	stop := runServer(t, srv, baseURL)
	err := api.NewClient(baseURL).Patch(ctx, "/api/prompts/escalation_policy", prompts.UpdateInput{
		Content:       &content,
		CommitMessage: "Raise threshold",
		Actor:         "carol",
	}, nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	stop()

	srv2, baseURL2 := newTestServer(t, dir, cfg)
	stop2 := runServer(t, srv2, baseURL2)
	defer stop2()

	var detail endpoints.PromptDetailResponse
	if err := api.NewClient(baseURL2).Get(ctx, "/api/prompts/escalation_policy", &detail); err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.Content != content || detail.Version != 2 {
		t.Errorf("override not persisted: %+v", detail.ManagedPrompt)
	}
	if len(detail.History) != 1 || detail.History[0].ChangedBy != "carol" {
		t.Errorf("history not persisted: %+v", detail.History)
	}
}

func TestServer_DoubleStart(t *testing.T) {
	srv, baseURL := newTestServer(t, t.TempDir(), "storage:\n  backend: memory\n")
	stop := runServer(t, srv, baseURL)
	defer stop()

	if err := srv.Start(context.Background()); err == nil {
		t.Error("second Start() should fail while running")
	}
}

func TestServer_ContextCancellation(t *testing.T) {
	srv, baseURL := newTestServer(t, t.TempDir(), "storage:\n  backend: memory\n")

	ctx, cancel := context.WithCancel(context.Background())
	serverErr := make(chan error, 1)
	go func() { serverErr <- srv.Start(ctx) }()

	if err := waitForServer(ctx, baseURL, 10*time.Second); err != nil {
		cancel()
		t.Fatalf("server did not start: %v", err)
	}

	cancel()
	select {
	case err := <-serverErr:
		if err != nil {
			t.Errorf("Start() returned %v after cancellation", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop after context cancellation")
	}

	if _, err := http.Get(baseURL + "/health"); err == nil {
		t.Error("server still accepting connections after shutdown")
	}
}

func TestServer_RequiresInit(t *testing.T) {
	srv, _ := newTestServer(t, t.TempDir(), "storage:\n  backend: memory\n")

	tests := []struct {
		path string
		want int
	}{
		{"/health", http.StatusOK},
		{"/ready", http.StatusServiceUnavailable},
		{"/api/prompts", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("%s before Init: got %d, want %d", tt.path, rec.Code, tt.want)
		}
	}
}

func TestServer_ReloadSwapsCatalog(t *testing.T) {
	dir := t.TempDir()
	pathA := writeFile(t, dir, "a.yaml", catalogA)
	pathB := writeFile(t, dir, "b.yaml", catalogB)

	srv, _ := newTestServer(t, dir, fmt.Sprintf("storage:\n  backend: memory\ncatalog:\n  path: %s\n", pathA))
	ctx := context.Background()
	if err := srv.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer srv.Close()

	content := "Welcome back."
	if _, err := srv.Services().Engine.Update(ctx, "greeting", prompts.UpdateInput{Content: &content, CommitMessage: "warmer"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Storage.Backend = config.BackendMemory
	cfg.Catalog.Path = pathB
	srv.reload(cfg)

	svc := srv.Services()
	if _, ok := svc.Catalog.Block("farewell"); !ok {
		t.Fatal("reloaded catalog missing farewell")
	}
	// Overrides live in the store and survive the swap.
	b, err := svc.Engine.ResolveBlock(ctx, "greeting")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if b.Content != content {
		t.Errorf("override lost across reload: %q", b.Content)
	}

	t.Run("invalid_catalog_keeps_previous", func(t *testing.T) {
		bad := writeFile(t, dir, "bad.yaml", "blocks:\n  - id: x\n")
		cfg.Catalog.Path = bad
		srv.reload(cfg)
		if _, ok := srv.Services().Catalog.Block("farewell"); !ok {
			t.Error("invalid catalog replaced the previous one")
		}
	})
}

// waitForServer polls the server until it responds or timeout.
func waitForServer(ctx context.Context, baseURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, "GET", baseURL+"/ready", nil)
		if err != nil {
			return err
		}

		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server not ready after %s", timeout)
}
