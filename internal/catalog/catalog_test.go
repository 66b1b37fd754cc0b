package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		blocks  []Block
		comps   []Composition
		libs    []Library
		wantErr string
	}{
		{
			name:   "valid",
			blocks: []Block{{ID: "a", Name: "A", Tier: TierOpen}},
			comps:  []Composition{{ID: "c", Name: "C", BlockIDs: []string{"a", "missing"}}},
			libs:   []Library{{ID: "lib"}},
		},
		{
			name:    "empty block id",
			blocks:  []Block{{Name: "A", Tier: TierOpen}},
			wantErr: "empty id",
		},
		{
			name:    "duplicate block id",
			blocks:  []Block{{ID: "a", Tier: TierOpen}, {ID: "a", Tier: TierLocked}},
			wantErr: "duplicate block id",
		},
		{
			name:    "invalid tier",
			blocks:  []Block{{ID: "a", Tier: 4}},
			wantErr: "invalid tier",
		},
		{
			name:    "reserved prefix",
			blocks:  []Block{{ID: "library-context-x", Tier: TierOpen}},
			wantErr: "reserved prefix",
		},
		{
			name:    "custom source not allowed",
			blocks:  []Block{{ID: "a", Tier: TierOpen, Source: SourceCustom}},
			wantErr: "has source",
		},
		{
			name:    "duplicate library",
			libs:    []Library{{ID: "l"}, {ID: "l"}},
			wantErr: "duplicate library id",
		},
		{
			name:    "unknown composition library",
			comps:   []Composition{{ID: "c", LibraryID: "nope"}},
			wantErr: "unknown library",
		},
		{
			name:    "duplicate composition",
			comps:   []Composition{{ID: "c"}, {ID: "c"}},
			wantErr: "duplicate composition id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.blocks, tt.comps, tt.libs)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("New() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("New() expected error containing %q", tt.wantErr)
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("error %v does not wrap ErrInvalid", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestCatalog_Immutable(t *testing.T) {
	blocks := []Block{{ID: "a", Name: "A", Tier: TierOpen, Content: "x", Variants: map[string]string{"chat": "y"}}}
	comps := []Composition{{ID: "c", BlockIDs: []string{"a"}}}
	c, err := New(blocks, comps, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Mutating inputs after construction must not leak in.
	blocks[0].Variants["chat"] = "changed"
	comps[0].BlockIDs[0] = "changed"

	b, _ := c.Block("a")
	if b.Variants["chat"] != "y" {
		t.Errorf("variant leaked from input: %q", b.Variants["chat"])
	}
	comp, _ := c.Composition("c")
	if comp.BlockIDs[0] != "a" {
		t.Errorf("block ids leaked from input: %v", comp.BlockIDs)
	}

	// Mutating returned values must not leak back.
	b.Variants["chat"] = "mutated"
	comp.BlockIDs[0] = "mutated"
	again, _ := c.Block("a")
	if again.Variants["chat"] != "y" {
		t.Errorf("variant leaked from caller: %q", again.Variants["chat"])
	}
	compAgain, _ := c.Composition("c")
	if compAgain.BlockIDs[0] != "a" {
		t.Errorf("block ids leaked from caller: %v", compAgain.BlockIDs)
	}
}

func TestCatalog_DefaultSource(t *testing.T) {
	c, err := New([]Block{{ID: "a", Tier: TierOpen}}, nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	b, _ := c.Block("a")
	if b.Source != SourceCore {
		t.Errorf("Source = %q, want %q", b.Source, SourceCore)
	}
}

func TestCatalog_Reserved(t *testing.T) {
	c, err := New([]Block{{ID: "a", Tier: TierOpen}}, nil, []Library{{ID: "lib"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		id   string
		want bool
	}{
		{"a", true},
		{"library-context-lib", true},
		{"library-context-other", false},
		{"library-context-", false},
		{"custom-1", false},
	}
	for _, tt := range tests {
		if got := c.Reserved(tt.id); got != tt.want {
			t.Errorf("Reserved(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestLibraryContextID(t *testing.T) {
	id := LibraryContextID("support")
	if id != "library-context-support" {
		t.Errorf("LibraryContextID() = %q", id)
	}
	lib, ok := LibraryIDFromContextID(id)
	if !ok || lib != "support" {
		t.Errorf("LibraryIDFromContextID(%q) = %q, %v", id, lib, ok)
	}
	if _, ok := LibraryIDFromContextID("role_intro"); ok {
		t.Error("expected non-context id to be rejected")
	}
}

func TestDefault(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	b, ok := c.Block("role_intro")
	if !ok {
		t.Fatal("role_intro missing from default catalog")
	}
	if b.Tier != TierOpen || b.Content != "You are an assistant." {
		t.Errorf("role_intro = %+v", b)
	}

	if len(c.Compositions()) == 0 {
		t.Error("expected default compositions")
	}
	if diff := cmp.Diff([]string{"support", "engineering", "sales"}, c.LibraryIDs()); diff != "" {
		t.Errorf("LibraryIDs() mismatch (-want +got):\n%s", diff)
	}

	legacy, _ := c.Block("legacy_signature")
	if legacy.Source != SourceLegacy {
		t.Errorf("legacy_signature source = %q", legacy.Source)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{
			name: "minimal",
			yaml: "blocks:\n  - id: a\n    name: A\n    tier: 1\n    content: hi\n",
		},
		{
			name:    "tier out of range",
			yaml:    "blocks:\n  - id: a\n    name: A\n    tier: 9\n    content: hi\n",
			wantErr: true,
		},
		{
			name:    "missing content",
			yaml:    "blocks:\n  - id: a\n    name: A\n    tier: 1\n",
			wantErr: true,
		},
		{
			name:    "unsafe id",
			yaml:    "blocks:\n  - id: \"a b\"\n    name: A\n    tier: 1\n    content: hi\n",
			wantErr: true,
		},
		{
			name:    "unknown field",
			yaml:    "blocks:\n  - id: a\n    name: A\n    tier: 1\n    content: hi\n    colour: red\n",
			wantErr: true,
		},
		{
			name:    "not yaml",
			yaml:    "blocks: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.yaml))
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_ExportRoundTrip(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	data, err := Export(c)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(c.Blocks(), loaded.Blocks()); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(c.Compositions(), loaded.Compositions()); diff != "" {
		t.Errorf("compositions mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	_, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
