package prompts

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackzampolin/promptshelf/internal/catalog"
)

func sampleOverride(slug string) *Override {
	return &Override{
		Slug:             slug,
		Title:            "Role",
		Description:      "who the model is",
		Content:          "You are a specialist.",
		Tier:             catalog.TierCaution,
		Source:           catalog.SourceCore,
		OverridesBlockID: slug,
		Categories:       []string{"a", "b"},
		Version:          2,
		Variants:         map[string]string{"chat": "short"},
		History: []VersionEntry{{
			Version:          2,
			Content:          "You are a specialist.",
			VariantsSnapshot: map[string]string{"chat": "short"},
			CommitMessage:    "tone fix",
			ChangedBy:        "alice",
			ChangedAt:        time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			Diff:             "- You are an assistant.\n+ You are a specialist.",
		}},
	}
}

// storeContract exercises the behavior every Store backend must share.
func storeContract(t *testing.T, newStore func(t *testing.T) Store) {
	ignoreStamps := cmpopts.IgnoreFields(Override{}, "DocID", "UpdatedAt")
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		s := newStore(t)
		o, err := s.Get(ctx, "nope")
		if err != nil || o != nil {
			t.Errorf("Get() = %v, %v; want nil, nil", o, err)
		}
		o, err = s.GetByDocID(ctx, "nope")
		if err != nil || o != nil {
			t.Errorf("GetByDocID() = %v, %v; want nil, nil", o, err)
		}
	})

	t.Run("create and read back", func(t *testing.T) {
		s := newStore(t)
		in := sampleOverride("role_intro")
		if err := s.Create(ctx, in); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if in.DocID == "" || in.Status != StatusActive {
			t.Errorf("Create() did not stamp the record: %+v", in)
		}

		got, err := s.Get(ctx, "role_intro")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		want := sampleOverride("role_intro")
		want.Status = StatusActive
		if diff := cmp.Diff(want, got, ignoreStamps); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}

		byDoc, err := s.GetByDocID(ctx, in.DocID)
		if err != nil || byDoc == nil || byDoc.Slug != "role_intro" {
			t.Errorf("GetByDocID() = %+v, %v", byDoc, err)
		}
	})

	t.Run("duplicate create conflicts", func(t *testing.T) {
		s := newStore(t)
		if err := s.Create(ctx, sampleOverride("x")); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := s.Create(ctx, sampleOverride("x")); !errors.Is(err, ErrConflict) {
			t.Errorf("second Create() error = %v, want ErrConflict", err)
		}
	})

	t.Run("update checks version", func(t *testing.T) {
		s := newStore(t)
		o := sampleOverride("x")
		if err := s.Create(ctx, o); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		o.Content = "v3"
		o.Version = 3
		if err := s.Update(ctx, o, 2); err != nil {
			t.Fatalf("Update() error = %v", err)
		}

		stale := sampleOverride("x")
		stale.DocID = o.DocID
		stale.Content = "stale"
		stale.Version = 3
		if err := s.Update(ctx, stale, 2); !errors.Is(err, ErrConflict) {
			t.Errorf("stale Update() error = %v, want ErrConflict", err)
		}

		got, _ := s.Get(ctx, "x")
		if got.Content != "v3" || got.Version != 3 {
			t.Errorf("stored = %+v", got)
		}
	})

	t.Run("get many and list", func(t *testing.T) {
		s := newStore(t)
		for _, slug := range []string{"b", "a", "c"} {
			if err := s.Create(ctx, sampleOverride(slug)); err != nil {
				t.Fatalf("Create(%s) error = %v", slug, err)
			}
		}

		many, err := s.GetMany(ctx, []string{"a", "c", "zzz"})
		if err != nil {
			t.Fatalf("GetMany() error = %v", err)
		}
		if len(many) != 2 || many["a"] == nil || many["c"] == nil {
			t.Errorf("GetMany() = %v", many)
		}

		list, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		var slugs []string
		for _, o := range list {
			slugs = append(slugs, o.Slug)
		}
		if diff := cmp.Diff([]string{"a", "b", "c"}, slugs); diff != "" {
			t.Errorf("List() order mismatch: %s", diff)
		}
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		if err := s.Create(ctx, sampleOverride("x")); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := s.Delete(ctx, "x"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if o, _ := s.Get(ctx, "x"); o != nil {
			t.Errorf("Get() after delete = %+v", o)
		}
		if err := s.Delete(ctx, "x"); err != nil {
			t.Errorf("Delete() of missing slug error = %v", err)
		}
		if err := s.Create(ctx, sampleOverride("x")); err != nil {
			t.Errorf("Create() after delete error = %v", err)
		}
	})

	t.Run("custom block source", func(t *testing.T) {
		s := newStore(t)
		o := &Override{Slug: "mine", Content: "x", Tier: catalog.TierOpen, Source: catalog.SourceCustom, Version: 1}
		if err := s.Create(ctx, o); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		got, _ := s.Get(ctx, "mine")
		if !got.IsCustom() || got.OverridesBlockID != "" {
			t.Errorf("custom round trip = %+v", got)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, func(t *testing.T) Store { return NewMemoryStore() })
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if err := s.Create(ctx, sampleOverride("x")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, _ := s.Get(ctx, "x")
	got.Variants["chat"] = "mutated"
	got.History[0].Content = "mutated"

	again, _ := s.Get(ctx, "x")
	if again.Variants["chat"] != "short" || again.History[0].Content != "You are a specialist." {
		t.Error("caller mutation leaked into the store")
	}
}

func TestSQLiteStore(t *testing.T) {
	storeContract(t, func(t *testing.T) Store {
		s, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "nested", "overrides.db"), discardLogger())
		if err != nil {
			t.Fatalf("OpenSQLiteStore() error = %v", err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.db")
	ctx := context.Background()

	s, err := OpenSQLiteStore(path, discardLogger())
	if err != nil {
		t.Fatalf("OpenSQLiteStore() error = %v", err)
	}
	if err := s.Create(ctx, sampleOverride("x")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	s.Close()

	s, err = OpenSQLiteStore(path, discardLogger())
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()
	got, err := s.Get(ctx, "x")
	if err != nil || got == nil || len(got.History) != 1 {
		t.Errorf("after reopen = %+v, %v", got, err)
	}
}

func TestSQLiteStore_Engine(t *testing.T) {
	s, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "overrides.db"), discardLogger())
	if err != nil {
		t.Fatalf("OpenSQLiteStore() error = %v", err)
	}
	defer s.Close()
	e := NewEngine(s, testCatalog(t), discardLogger())

	edit(t, e, "role_intro", "v2", "two")
	edit(t, e, "role_intro", "v3", "three")
	p, err := e.Rollback(context.Background(), "role_intro", 2, "")
	if err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}
	if p.Version != 4 || p.Content != "v2" {
		t.Errorf("prompt = %+v", p)
	}
}

func TestDecodeAttributes(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		tier       catalog.Tier
		wantTier   catalog.Tier
		wantSource catalog.Source
	}{
		{"empty custom", "", 0, catalog.TierOpen, catalog.SourceCustom},
		{"tier from attributes", `{"promptTier":1,"overridesBlockId":"x"}`, 0, catalog.TierLocked, catalog.SourceCore},
		{"flat tier wins", `{"promptTier":1,"promptSource":"legacy"}`, catalog.TierCaution, catalog.TierCaution, catalog.SourceLegacy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Override{Slug: "x", Tier: tt.tier}
			if err := decodeAttributes(tt.raw, o); err != nil {
				t.Fatalf("decodeAttributes() error = %v", err)
			}
			if o.Tier != tt.wantTier || o.Source != tt.wantSource {
				t.Errorf("tier/source = %s/%s, want %s/%s", o.Tier, o.Source, tt.wantTier, tt.wantSource)
			}
		})
	}

	if err := decodeAttributes("{not json", &Override{}); err == nil {
		t.Error("expected error for malformed attributes")
	}
}
