package schema

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackzampolin/promptshelf/internal/defra"
)

func TestAll(t *testing.T) {
	schemas, err := All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(schemas) != 1 {
		t.Fatalf("expected 1 schema, got %d", len(schemas))
	}

	s := schemas[0]
	if s.Name != PromptOverride {
		t.Errorf("Name = %s", s.Name)
	}
	for _, field := range []string{"type PromptOverride", "slug: String", "version: Int", "attributes: String"} {
		if !strings.Contains(s.SDL, field) {
			t.Errorf("SDL missing %q", field)
		}
	}
}

func TestGet(t *testing.T) {
	t.Run("existing schema", func(t *testing.T) {
		s, err := Get(PromptOverride)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if s.SDL == "" {
			t.Error("SDL is empty")
		}
	})

	t.Run("non-existent schema", func(t *testing.T) {
		if _, err := Get("NonExistent"); err == nil {
			t.Error("expected error for non-existent schema")
		}
	})
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{"added", http.StatusOK, "", false},
		{"already exists", http.StatusBadRequest, "collection already exists. Name: PromptOverride", false},
		{"syntax error", http.StatusBadRequest, "invalid schema syntax", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var received string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/v0/schema" {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				b, _ := io.ReadAll(r.Body)
				received = string(b)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := Initialize(context.Background(), defra.NewClient(server.URL), nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("Initialize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(received, "type PromptOverride") {
				t.Errorf("server did not receive the PromptOverride SDL: %q", received)
			}
		})
	}
}

func TestIsAlreadyExistsError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"collection exists", errors.New("collection already exists. Name: PromptOverride"), true},
		{"schema exists", errors.New("schema already exists"), true},
		{"other error", errors.New("invalid syntax"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isAlreadyExistsError(tt.err); got != tt.want {
				t.Errorf("isAlreadyExistsError() = %v, want %v", got, tt.want)
			}
		})
	}
}
