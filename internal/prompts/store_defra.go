package prompts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackzampolin/promptshelf/internal/catalog"
	"github.com/jackzampolin/promptshelf/internal/defra"
	"github.com/jackzampolin/promptshelf/internal/schema"
)

var overrideFields = []string{
	"_docID", "slug", "title", "description", "content", "tier",
	"categories", "version", "status", "attributes", "updatedAt",
}

// DefraStore persists overrides in the DefraDB PromptOverride collection.
type DefraStore struct {
	client *defra.Client
	logger *slog.Logger
}

// NewDefraStore creates a store on an initialized DefraDB client.
func NewDefraStore(client *defra.Client, logger *slog.Logger) *DefraStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefraStore{client: client, logger: logger}
}

// Close is a no-op; the client owns no resources.
func (s *DefraStore) Close() error { return nil }

func (s *DefraStore) query(ctx context.Context, q *defra.QueryBuilder) ([]Override, error) {
	resp, err := q.Fields(overrideFields...).Execute(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	if errMsg := resp.Error(); errMsg != "" {
		return nil, fmt.Errorf("graphql error: %s", errMsg)
	}
	return parseOverrides(resp.Documents(schema.PromptOverride))
}

// Get returns the active override for slug. Legacy rows stored without a
// slug are found by their document id. When a create race left more than
// one active row, the lowest document id is the override.
func (s *DefraStore) Get(ctx context.Context, slug string) (*Override, error) {
	rows, err := s.query(ctx, defra.NewQuery(schema.PromptOverride).
		Filter("slug", slug).
		Filter("status", StatusActive))
	if err != nil {
		return nil, err
	}
	if winner := lowestDocID(rows); winner != "" {
		for i := range rows {
			if rows[i].DocID == winner {
				return &rows[i], nil
			}
		}
	}
	if strings.HasPrefix(slug, "bae-") {
		return s.GetByDocID(ctx, slug)
	}
	return nil, nil
}

// GetMany fetches all requested slugs in one query. Legacy ids without a
// slug row fall back to a document id lookup.
func (s *DefraStore) GetMany(ctx context.Context, slugs []string) (map[string]*Override, error) {
	out := make(map[string]*Override, len(slugs))
	if len(slugs) == 0 {
		return out, nil
	}

	rows, err := s.query(ctx, defra.NewQuery(schema.PromptOverride).
		FilterIn("slug", slugs).
		Filter("status", StatusActive))
	if err != nil {
		return nil, err
	}
	for _, o := range dedupeBySlug(rows) {
		out[o.Slug] = &o
	}

	for _, slug := range slugs {
		if _, ok := out[slug]; ok || !strings.HasPrefix(slug, "bae-") {
			continue
		}
		o, err := s.GetByDocID(ctx, slug)
		if err != nil {
			return nil, err
		}
		if o != nil {
			out[slug] = o
		}
	}
	return out, nil
}

// GetByDocID returns the active override with the given document id.
func (s *DefraStore) GetByDocID(ctx context.Context, docID string) (*Override, error) {
	if err := defra.ValidateID(docID); err != nil {
		return nil, nil
	}
	resp, err := defra.SafeQueryByDocID(ctx, s.client, schema.PromptOverride, docID, overrideFields...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	if errMsg := resp.Error(); errMsg != "" {
		return nil, fmt.Errorf("graphql error: %s", errMsg)
	}
	rows, err := parseOverrides(resp.Documents(schema.PromptOverride))
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].Status == StatusActive {
			return &rows[i], nil
		}
	}
	return nil, nil
}

// List returns every active override ordered by slug.
func (s *DefraStore) List(ctx context.Context) ([]Override, error) {
	rows, err := s.query(ctx, defra.NewQuery(schema.PromptOverride).
		Filter("status", StatusActive).
		OrderBy("slug", "ASC"))
	if err != nil {
		return nil, err
	}
	return dedupeBySlug(rows), nil
}

// Create inserts o and assigns its DocID. DefraDB has no unique constraint,
// so after writing it re-reads the slug. The pre-check saw no row, so any
// other active row under the slug is a concurrent creator and this write
// backs out. Readers settle on the lowest document id meanwhile.
func (s *DefraStore) Create(ctx context.Context, o *Override) error {
	if o.Slug == "" {
		return fmt.Errorf("%w: empty slug", ErrValidation)
	}
	existing, err := s.query(ctx, defra.NewQuery(schema.PromptOverride).
		Filter("slug", o.Slug).
		Filter("status", StatusActive).
		Limit(1))
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return fmt.Errorf("%w: override %s already exists", ErrConflict, o.Slug)
	}

	now := time.Now().UTC()
	o.Status = StatusActive
	input, err := overrideInput(o, now)
	if err != nil {
		return err
	}
	input["status"] = StatusActive

	res, err := s.client.CreateWithVersion(ctx, schema.PromptOverride, input)
	if err != nil {
		return fmt.Errorf("create failed: %w", err)
	}

	rows, err := s.query(ctx, defra.NewQuery(schema.PromptOverride).
		Filter("slug", o.Slug).
		Filter("status", StatusActive))
	if err != nil {
		return err
	}
	for _, r := range rows {
		if r.DocID == res.DocID {
			continue
		}
		if err := s.client.Delete(ctx, schema.PromptOverride, res.DocID); err != nil {
			s.logger.Error("failed to remove losing override", "slug", o.Slug, "doc_id", res.DocID, "error", err)
		}
		return fmt.Errorf("%w: override %s was created concurrently", ErrConflict, o.Slug)
	}

	o.DocID = res.DocID
	o.UpdatedAt = now
	s.logger.Debug("created override", "slug", o.Slug, "doc_id", o.DocID, "cid", res.CID)
	return nil
}

// Update writes o with a filtered mutation that only matches while the stored
// version equals expectedVersion.
func (s *DefraStore) Update(ctx context.Context, o *Override, expectedVersion int) error {
	if o.DocID == "" {
		return fmt.Errorf("%w: override %s has no document id", ErrConflict, o.Slug)
	}

	now := time.Now().UTC()
	input, err := overrideInput(o, now)
	if err != nil {
		return err
	}

	filter := map[string]any{
		"_docID":  map[string]any{"_eq": o.DocID},
		"status":  map[string]any{"_eq": StatusActive},
		"version": map[string]any{"_eq": expectedVersion},
	}
	ids, err := s.client.UpdateWhere(ctx, schema.PromptOverride, filter, input)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: %s is no longer at version %d", ErrConflict, o.Slug, expectedVersion)
	}

	o.UpdatedAt = now
	return nil
}

// Delete removes the override for slug.
func (s *DefraStore) Delete(ctx context.Context, slug string) error {
	o, err := s.Get(ctx, slug)
	if err != nil {
		return err
	}
	if o == nil {
		return nil
	}
	if err := s.client.Delete(ctx, schema.PromptOverride, o.DocID); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

func overrideInput(o *Override, now time.Time) (map[string]any, error) {
	attrs, err := encodeAttributes(o)
	if err != nil {
		return nil, err
	}
	categories := make([]any, 0, len(o.Categories))
	for _, c := range o.Categories {
		categories = append(categories, c)
	}
	return map[string]any{
		"slug":        o.Slug,
		"title":       o.Title,
		"description": o.Description,
		"content":     o.Content,
		"tier":        int(o.Tier),
		"categories":  categories,
		"version":     o.Version,
		"attributes":  attrs,
		"updatedAt":   formatTime(now),
	}, nil
}

// dedupeBySlug keeps the lowest document id per slug, preserving the order
// in which slugs first appear.
func dedupeBySlug(rows []Override) []Override {
	idx := make(map[string]int, len(rows))
	out := make([]Override, 0, len(rows))
	for _, r := range rows {
		i, seen := idx[r.Slug]
		if !seen {
			idx[r.Slug] = len(out)
			out = append(out, r)
			continue
		}
		if r.DocID < out[i].DocID {
			out[i] = r
		}
	}
	return out
}

func lowestDocID(rows []Override) string {
	winner := ""
	for _, r := range rows {
		if winner == "" || r.DocID < winner {
			winner = r.DocID
		}
	}
	return winner
}

// parseOverrides converts GraphQL rows into overrides. JSON numbers arrive as float64.
func parseOverrides(docs []map[string]any) ([]Override, error) {
	out := make([]Override, 0, len(docs))
	for _, doc := range docs {
		var o Override
		o.DocID, _ = doc["_docID"].(string)
		o.Slug, _ = doc["slug"].(string)
		o.Title, _ = doc["title"].(string)
		o.Description, _ = doc["description"].(string)
		o.Content, _ = doc["content"].(string)
		o.Status, _ = doc["status"].(string)
		if v, ok := doc["tier"].(float64); ok {
			o.Tier = catalog.Tier(int(v))
		}
		if v, ok := doc["version"].(float64); ok {
			o.Version = int(v)
		}
		if o.Version < 1 {
			o.Version = 1
		}
		if raw, ok := doc["categories"].([]any); ok {
			for _, c := range raw {
				if s, ok := c.(string); ok {
					o.Categories = append(o.Categories, s)
				}
			}
		}
		if ts, ok := doc["updatedAt"].(string); ok {
			o.UpdatedAt = parseTime(ts)
		}

		normalize(&o)
		attrs, _ := doc["attributes"].(string)
		if err := decodeAttributes(attrs, &o); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
