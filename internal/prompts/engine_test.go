package prompts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jackzampolin/promptshelf/internal/catalog"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(
		[]catalog.Block{
			{ID: "role_intro", Name: "Role", Tier: catalog.TierOpen, Content: "You are an assistant."},
			{ID: "safety_rules", Name: "Safety", Tier: catalog.TierLocked, Content: "Be safe."},
			{ID: "tone", Name: "Tone", Tier: catalog.TierOpen, Content: "Be kind.", Variants: map[string]string{"chat": "Be brief."}},
			{ID: "blank", Name: "Blank", Tier: catalog.TierCaution, Content: "   "},
			{ID: "old_sig", Name: "Signature", Tier: catalog.TierOpen, Source: catalog.SourceLegacy, Content: "-- Team"},
		},
		[]catalog.Composition{
			{ID: "reply", Name: "Reply", Category: "support", LibraryID: "support",
				BlockIDs: []string{"role_intro", "tone", "missing_one", "safety_rules", "blank", "missing_one"}},
			{ID: "chat", Name: "Chat", VariantContext: "chat", BlockIDs: []string{"tone"}},
		},
		[]catalog.Library{
			{ID: "support", Name: "Support", Context: "Support context."},
			{ID: "quiet", Name: "Quiet", Context: ""},
		},
	)
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return cat
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T) (*Engine, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	e := NewEngine(store, testCatalog(t), discardLogger())
	e.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return e, store
}

func ptr[T any](v T) *T { return &v }

func edit(t *testing.T, e *Engine, id, content, msg string) *ManagedPrompt {
	t.Helper()
	p, err := e.Update(context.Background(), id, UpdateInput{Content: ptr(content), CommitMessage: msg, Actor: "tester"})
	if err != nil {
		t.Fatalf("Update(%s) error = %v", id, err)
	}
	return p
}

func TestResolveBlock(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	t.Run("catalog default", func(t *testing.T) {
		b, err := e.ResolveBlock(ctx, "role_intro")
		if err != nil {
			t.Fatalf("ResolveBlock() error = %v", err)
		}
		if b.Content != "You are an assistant." || b.Version != 1 || b.IsOverride {
			t.Errorf("unexpected block: %+v", b)
		}
		if b.Source != catalog.SourceCore {
			t.Errorf("Source = %s", b.Source)
		}
		if b.ContentHash != HashText(b.Content) {
			t.Error("content hash mismatch")
		}
	})

	t.Run("override wins", func(t *testing.T) {
		edit(t, e, "safety_rules", "Be very safe.", "tighten")
		b, err := e.ResolveBlock(ctx, "safety_rules")
		if err != nil {
			t.Fatalf("ResolveBlock() error = %v", err)
		}
		if b.Content != "Be very safe." || !b.IsOverride || b.Version != 2 {
			t.Errorf("unexpected block: %+v", b)
		}
		if b.Tier != catalog.TierLocked {
			t.Errorf("tier should be inherited, got %s", b.Tier)
		}
	})

	t.Run("library context", func(t *testing.T) {
		b, err := e.ResolveBlock(ctx, "library-context-support")
		if err != nil {
			t.Fatalf("ResolveBlock() error = %v", err)
		}
		if b.Content != "Support context." || b.Source != catalog.SourceLibraryContext || b.Tier != catalog.TierOpen {
			t.Errorf("unexpected block: %+v", b)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := e.ResolveBlock(ctx, "nope")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
		_, err = e.ResolveBlock(ctx, "library-context-unknown")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("unknown library: error = %v, want ErrNotFound", err)
		}
	})
}

type countingStore struct {
	*MemoryStore
	getMany int
}

func (s *countingStore) GetMany(ctx context.Context, slugs []string) (map[string]*Override, error) {
	s.getMany++
	return s.MemoryStore.GetMany(ctx, slugs)
}

func TestResolveBlocks(t *testing.T) {
	store := &countingStore{MemoryStore: NewMemoryStore()}
	e := NewEngine(store, testCatalog(t), discardLogger())
	ctx := context.Background()
	edit(t, e, "tone", "Be kinder.", "warmer")
	store.getMany = 0

	blocks, err := e.ResolveBlocks(ctx, []string{"tone", "missing", "role_intro", "tone"})
	if err != nil {
		t.Fatalf("ResolveBlocks() error = %v", err)
	}
	if store.getMany != 1 {
		t.Errorf("expected one batched store query, got %d", store.getMany)
	}

	var got []string
	for _, b := range blocks {
		got = append(got, b.ID+"="+b.Content)
	}
	want := []string{"tone=Be kinder.", "role_intro=You are an assistant.", "tone=Be kinder."}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ResolveBlocks() mismatch (-want +got):\n%s", diff)
	}

	empty, err := e.ResolveBlocks(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("ResolveBlocks(nil) = %v, %v", empty, err)
	}
}

func TestListAll(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	edit(t, e, "role_intro", "You are a specialist.", "specialize")
	edit(t, e, "library-context-support", "New support context.", "refresh")
	if _, err := e.Create(ctx, CreateInput{Slug: "faq", Content: "FAQ text", Categories: []string{"support"}, CommitMessage: "add faq"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := e.Create(ctx, CreateInput{Slug: "aaa_custom", Content: "A", CommitMessage: "add a"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	all, err := e.ListAll(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}

	// 5 catalog blocks + 2 libraries + 2 custom blocks.
	var ids []string
	for _, p := range all {
		ids = append(ids, p.ID)
	}
	want := []string{
		"role_intro", "safety_rules", "tone", "blank", "old_sig",
		"library-context-support", "library-context-quiet",
		"aaa_custom", "faq",
	}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("ListAll() ids mismatch (-want +got):\n%s", diff)
	}

	byID := make(map[string]ManagedPrompt)
	for _, p := range all {
		byID[p.ID] = p
	}
	if p := byID["role_intro"]; !p.HasOverride || p.Version != 2 || p.DefaultContent != "You are an assistant." || p.IsCustom {
		t.Errorf("role_intro view = %+v", p)
	}
	if p := byID["safety_rules"]; p.HasOverride || p.Version != 1 {
		t.Errorf("safety_rules view = %+v", p)
	}
	if p := byID["library-context-support"]; !p.HasOverride || p.LibraryID != "support" || p.Content != "New support context." {
		t.Errorf("library view = %+v", p)
	}
	if p := byID["faq"]; !p.IsCustom || p.Source != catalog.SourceCustom || p.Version != 1 {
		t.Errorf("faq view = %+v", p)
	}
	if p := byID["old_sig"]; p.Source != catalog.SourceLegacy {
		t.Errorf("old_sig source = %s", p.Source)
	}

	t.Run("category filter", func(t *testing.T) {
		got, err := e.ListAll(ctx, ListFilter{Category: "support"})
		if err != nil {
			t.Fatalf("ListAll() error = %v", err)
		}
		if len(got) != 1 || got[0].ID != "faq" {
			t.Errorf("category filter = %+v", got)
		}
	})

	t.Run("source filter", func(t *testing.T) {
		got, err := e.ListAll(ctx, ListFilter{Source: catalog.SourceLibraryContext})
		if err != nil {
			t.Fatalf("ListAll() error = %v", err)
		}
		if len(got) != 2 {
			t.Errorf("source filter returned %d prompts", len(got))
		}
	})
}

func TestListAllOrphanOverride(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	// Its catalog block no longer exists.
	if err := store.Create(ctx, sampleOverride("retired_block")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	all, err := e.ListAll(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	last := all[len(all)-1]
	if last.ID != "retired_block" {
		t.Fatalf("orphan should be listed last, got %s", last.ID)
	}
	if !last.HasOverride || last.IsCustom || last.Source != catalog.SourceCore || last.Version != 2 {
		t.Errorf("orphan view = %+v", last)
	}
}

func TestGetByID(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	created := edit(t, e, "tone", "Be kinder.", "warmer")

	byDoc, err := e.GetByID(ctx, created.DocID)
	if err != nil {
		t.Fatalf("GetByID(docID) error = %v", err)
	}
	if byDoc.ID != "tone" || byDoc.Content != "Be kinder." {
		t.Errorf("GetByID(docID) = %+v", byDoc)
	}

	bySlug, err := e.GetByID(ctx, "role_intro")
	if err != nil {
		t.Fatalf("GetByID(slug) error = %v", err)
	}
	if bySlug.HasOverride || bySlug.Version != 1 {
		t.Errorf("GetByID(slug) = %+v", bySlug)
	}

	if _, err := e.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v", err)
	}
}

func TestLegacyRowWithoutSlug(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	// A row written before slugs existed is keyed by its document id.
	o := &Override{Slug: "", Content: "old", Source: catalog.SourceCustom, Version: 1}
	store.mu.Lock()
	o.DocID = "bae-legacy"
	normalize(o)
	store.byDoc[o.DocID] = o
	store.bySlug[o.Slug] = o.DocID
	store.mu.Unlock()

	p, err := e.GetBySlug(ctx, "bae-legacy")
	if err != nil {
		t.Fatalf("GetBySlug() error = %v", err)
	}
	if p.ID != "bae-legacy" || p.Content != "old" {
		t.Errorf("legacy view = %+v", p)
	}
}
