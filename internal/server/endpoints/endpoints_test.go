package endpoints

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/swaggo/swag"

	"github.com/jackzampolin/promptshelf/internal/api"
	"github.com/jackzampolin/promptshelf/internal/catalog"
	"github.com/jackzampolin/promptshelf/internal/prompts"
	"github.com/jackzampolin/promptshelf/internal/svcctx"
)

func testServices(t *testing.T) *svcctx.Services {
	t.Helper()
	cat, err := catalog.New(
		[]catalog.Block{
			{ID: "role_intro", Name: "Role", Tier: catalog.TierOpen, Content: "You are an assistant."},
			{ID: "safety_rules", Name: "Safety", Tier: catalog.TierLocked, Content: "Never share secrets."},
			{ID: "tone", Name: "Tone", Tier: catalog.TierOpen, Content: "Be clear.", Variants: map[string]string{"chat": "Be brief."}},
		},
		[]catalog.Composition{
			{ID: "reply", Name: "Reply", Category: "support", BlockIDs: []string{"role_intro", "ghost", "tone"}, LibraryID: "support"},
			{ID: "digest", Name: "Digest", Category: "internal", BlockIDs: []string{"role_intro"}},
		},
		[]catalog.Library{{ID: "support", Name: "Support", Context: "Support context."}},
	)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := prompts.NewMemoryStore()
	return &svcctx.Services{
		Engine:         prompts.NewEngine(store, cat, logger),
		Catalog:        cat,
		Store:          store,
		StorageBackend: "memory",
		Logger:         logger,
	}
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	svc := testServices(t)

	reg := api.NewRegistry()
	for _, ep := range All(Config{}) {
		reg.Register(ep)
	}
	mux := http.NewServeMux()
	reg.RegisterRoutes(mux, func(next http.HandlerFunc) http.HandlerFunc { return next })

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r.WithContext(svcctx.WithServices(r.Context(), svc)))
	})
}

func do(t *testing.T, h http.Handler, method, path string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, reader))
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{prompts.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: v9", prompts.ErrVersionNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: message required", prompts.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: use resetToDefault", prompts.ErrInvalidOperation), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: stale", prompts.ErrConflict), http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestHealthAndReady(t *testing.T) {
	h := newTestHandler(t)

	var health HealthResponse
	if code := do(t, h, "GET", "/health", nil, &health); code != http.StatusOK || health.Status != "ok" {
		t.Errorf("health: %d %+v", code, health)
	}

	var ready HealthResponse
	if code := do(t, h, "GET", "/ready", nil, &ready); code != http.StatusOK || ready.Store != "ok" {
		t.Errorf("ready: %d %+v", code, ready)
	}

	var status StatusResponse
	if code := do(t, h, "GET", "/status", nil, &status); code != http.StatusOK {
		t.Fatalf("status: %d", code)
	}
	if status.Storage.Backend != "memory" || status.Catalog.Blocks != 3 || status.Defra != nil {
		t.Errorf("unexpected status %+v", status)
	}
}

func TestReadyWithoutServices(t *testing.T) {
	rec := httptest.NewRecorder()
	(&ReadyEndpoint{}).handler(rec, httptest.NewRequest("GET", "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestPromptLifecycle(t *testing.T) {
	h := newTestHandler(t)

	var list PromptsListResponse
	if code := do(t, h, "GET", "/api/prompts", nil, &list); code != http.StatusOK {
		t.Fatalf("list: %d", code)
	}
	// three catalog blocks plus one library context
	if list.Total != 4 {
		t.Errorf("expected 4 prompts, got %d", list.Total)
	}

	content := "You are a support agent."
	var updated prompts.ManagedPrompt
	code := do(t, h, "PATCH", "/api/prompts/role_intro", prompts.UpdateInput{
		Content:       &content,
		CommitMessage: "Make it specific",
		Actor:         "alice",
	}, &updated)
	if code != http.StatusOK {
		t.Fatalf("update: %d", code)
	}
	if updated.Version != 2 || !updated.HasOverride || updated.Content != content {
		t.Errorf("unexpected update result %+v", updated)
	}

	var detail PromptDetailResponse
	if code := do(t, h, "GET", "/api/prompts/role_intro", nil, &detail); code != http.StatusOK {
		t.Fatalf("get: %d", code)
	}
	if len(detail.History) != 1 || detail.History[0].ChangedBy != "alice" {
		t.Errorf("unexpected history %+v", detail.History)
	}
	if detail.DefaultContent != "You are an assistant." {
		t.Errorf("expected default content, got %q", detail.DefaultContent)
	}

	var errResp ErrorResponse
	if code := do(t, h, "DELETE", "/api/prompts/role_intro", nil, &errResp); code != http.StatusUnprocessableEntity {
		t.Errorf("delete override: expected 422, got %d", code)
	}
	if !strings.Contains(errResp.Error, "resetToDefault") {
		t.Errorf("expected the error to name resetToDefault, got %q", errResp.Error)
	}

	var reset prompts.ResetResult
	if code := do(t, h, "POST", "/api/prompts/role_intro/reset", nil, &reset); code != http.StatusOK {
		t.Fatalf("reset: %d", code)
	}
	if reset.DiscardedVersions != 1 || reset.Prompt.HasOverride {
		t.Errorf("unexpected reset result %+v", reset)
	}

	var hist HistoryResponse
	if code := do(t, h, "GET", "/api/prompts/role_intro/history", nil, &hist); code != http.StatusOK {
		t.Fatalf("history: %d", code)
	}
	if hist.Versions == nil || len(hist.Versions) != 0 {
		t.Errorf("expected empty non-nil history after reset, got %#v", hist.Versions)
	}
}

func TestPromptErrors(t *testing.T) {
	h := newTestHandler(t)
	content := "x"

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"missing commit message", "PATCH", "/api/prompts/role_intro", prompts.UpdateInput{Content: &content}, http.StatusBadRequest},
		{"unknown prompt", "GET", "/api/prompts/nope", nil, http.StatusNotFound},
		{"update unknown prompt", "PATCH", "/api/prompts/nope", prompts.UpdateInput{Content: &content, CommitMessage: "m"}, http.StatusNotFound},
		{"history of unknown prompt", "GET", "/api/prompts/nope/history", nil, http.StatusNotFound},
		{"rollback without history", "POST", "/api/prompts/role_intro/rollback", RollbackRequest{Version: 1}, http.StatusNotFound},
		{"reset without override", "POST", "/api/prompts/role_intro/reset", nil, http.StatusUnprocessableEntity},
		{"delete catalog default", "DELETE", "/api/prompts/safety_rules", nil, http.StatusUnprocessableEntity},
		{"create over catalog id", "POST", "/api/prompts", prompts.CreateInput{Slug: "role_intro", Content: "x", CommitMessage: "m"}, http.StatusBadRequest},
		{"malformed body", "POST", "/api/prompts", map[string]any{"bogus": true}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errResp ErrorResponse
			code := do(t, h, tt.method, tt.path, tt.body, &errResp)
			if code != tt.want {
				t.Errorf("expected %d, got %d (%s)", tt.want, code, errResp.Error)
			}
			if errResp.Error == "" {
				t.Error("expected an error message")
			}
		})
	}
}

func TestCustomPromptAndRollback(t *testing.T) {
	h := newTestHandler(t)

	var created prompts.ManagedPrompt
	code := do(t, h, "POST", "/api/prompts", prompts.CreateInput{
		Slug:          "faq_style",
		Content:       "Answer in bullet points.",
		Categories:    []string{"support"},
		CommitMessage: "Initial",
	}, &created)
	if code != http.StatusCreated {
		t.Fatalf("create: %d", code)
	}
	if !created.IsCustom || created.Version != 1 {
		t.Errorf("unexpected created prompt %+v", created)
	}

	next := "Answer in numbered steps."
	if code := do(t, h, "PATCH", "/api/prompts/faq_style", prompts.UpdateInput{Content: &next, CommitMessage: "Steps"}, nil); code != http.StatusOK {
		t.Fatalf("update: %d", code)
	}

	var rolled prompts.ManagedPrompt
	if code := do(t, h, "POST", "/api/prompts/faq_style/rollback", RollbackRequest{Version: 1, Actor: "bob"}, &rolled); code != http.StatusOK {
		t.Fatalf("rollback: %d", code)
	}
	if rolled.Version != 3 || rolled.Content != "Answer in bullet points." {
		t.Errorf("unexpected rollback result %+v", rolled)
	}

	var hist HistoryResponse
	do(t, h, "GET", "/api/prompts/faq_style/history", nil, &hist)
	if got := hist.Versions[len(hist.Versions)-1].CommitMessage; got != "Rollback to version 1" {
		t.Errorf("unexpected rollback message %q", got)
	}

	var filtered PromptsListResponse
	do(t, h, "GET", "/api/prompts?category=support", nil, &filtered)
	if filtered.Total != 1 || filtered.Prompts[0].ID != "faq_style" {
		t.Errorf("category filter returned %+v", filtered.Prompts)
	}

	var del DeleteResponse
	if code := do(t, h, "DELETE", "/api/prompts/faq_style", nil, &del); code != http.StatusOK || !del.Deleted {
		t.Errorf("delete: %d %+v", code, del)
	}
	if code := do(t, h, "GET", "/api/prompts/faq_style", nil, nil); code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", code)
	}
}

func TestUpdateVariant(t *testing.T) {
	h := newTestHandler(t)

	var p prompts.ManagedPrompt
	code := do(t, h, "PUT", "/api/prompts/tone/variants/email", VariantRequest{
		Content:       "Open with a greeting.",
		CommitMessage: "Email variant",
	}, &p)
	if code != http.StatusOK {
		t.Fatalf("variant: %d", code)
	}
	want := map[string]string{"chat": "Be brief.", "email": "Open with a greeting."}
	if diff := cmp.Diff(want, p.Variants); diff != "" {
		t.Errorf("variants mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveBlocks(t *testing.T) {
	h := newTestHandler(t)

	var resp ResolveBlocksResponse
	code := do(t, h, "POST", "/api/blocks/resolve", ResolveBlocksRequest{IDs: []string{"tone", "ghost", "role_intro", "ghost"}}, &resp)
	if code != http.StatusOK {
		t.Fatalf("resolve: %d", code)
	}
	var ids []string
	for _, b := range resp.Blocks {
		ids = append(ids, b.ID)
	}
	if diff := cmp.Diff([]string{"tone", "role_intro"}, ids); diff != "" {
		t.Errorf("resolved ids mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ghost"}, resp.Missing); diff != "" {
		t.Errorf("missing ids mismatch (-want +got):\n%s", diff)
	}

	var single prompts.EffectiveBlock
	if code := do(t, h, "GET", "/api/blocks/safety_rules", nil, &single); code != http.StatusOK {
		t.Fatalf("resolve single: %d", code)
	}
	if single.Tier != catalog.TierLocked || single.IsOverride {
		t.Errorf("unexpected block %+v", single)
	}
}

func TestLibraryContext(t *testing.T) {
	h := newTestHandler(t)

	var libs LibrariesListResponse
	do(t, h, "GET", "/api/libraries", nil, &libs)
	if len(libs.Libraries) != 1 || libs.Libraries[0].ContextID != "library-context-support" {
		t.Errorf("unexpected libraries %+v", libs)
	}

	content := "Escalate billing issues."
	if code := do(t, h, "PATCH", "/api/prompts/library-context-support", prompts.UpdateInput{Content: &content, CommitMessage: "Billing"}, nil); code != http.StatusOK {
		t.Fatalf("update library context: %d", code)
	}

	var ctxResp LibraryContextResponse
	if code := do(t, h, "GET", "/api/libraries/support/context", nil, &ctxResp); code != http.StatusOK {
		t.Fatalf("context: %d", code)
	}
	if ctxResp.Content != content {
		t.Errorf("expected override content, got %q", ctxResp.Content)
	}

	if code := do(t, h, "GET", "/api/libraries/nope/context", nil, nil); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown library, got %d", code)
	}
}

func TestCompositions(t *testing.T) {
	h := newTestHandler(t)

	var list CompositionsListResponse
	do(t, h, "GET", "/api/compositions?category=support", nil, &list)
	if len(list.Compositions) != 1 || list.Compositions[0].ID != "reply" {
		t.Errorf("unexpected compositions %+v", list.Compositions)
	}

	var comp catalog.Composition
	if code := do(t, h, "GET", "/api/compositions/digest", nil, &comp); code != http.StatusOK || comp.Name != "Digest" {
		t.Errorf("get composition: %d %+v", code, comp)
	}

	// No body: the composition's own library applies.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/compositions/reply/build", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("build: %d %s", rec.Code, rec.Body.String())
	}
	var res prompts.CompositionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	want := "## Role\n\nYou are an assistant.\n\n## Tone\n\nBe clear.\n\n## Library Context\n\nSupport context."
	if res.Text != want {
		t.Errorf("unexpected text:\n%s", res.Text)
	}
	if diff := cmp.Diff([]string{"ghost"}, res.MissingBlockIDs); diff != "" {
		t.Errorf("missing mismatch (-want +got):\n%s", diff)
	}

	var chat prompts.CompositionResult
	do(t, h, "POST", "/api/compositions/reply/build", prompts.BuildOptions{VariantContext: "chat"}, &chat)
	if !strings.Contains(chat.Text, "## Tone\n\nBe brief.") {
		t.Errorf("expected chat variant in:\n%s", chat.Text)
	}

	if code := do(t, h, "POST", "/api/compositions/nope/build", prompts.BuildOptions{}, nil); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown composition, got %d", code)
	}
}

func TestSwaggerDocumentsEveryRoute(t *testing.T) {
	doc, err := swag.ReadDoc()
	if err != nil {
		t.Fatalf("ReadDoc: %v", err)
	}
	var spec struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal([]byte(doc), &spec); err != nil {
		t.Fatalf("swagger doc is not valid JSON: %v", err)
	}

	var undocumented []string
	for _, ep := range All(Config{}) {
		method, path, _ := ep.Route()
		if path == "/swagger.json" || path == "/swagger" {
			continue
		}
		if _, ok := spec.Paths[path][strings.ToLower(method)]; !ok {
			undocumented = append(undocumented, method+" "+path)
		}
	}
	sort.Strings(undocumented)
	if len(undocumented) > 0 {
		t.Errorf("routes missing from swagger.json: %v", undocumented)
	}

	h := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/swagger.json", nil))
	if rec.Code != http.StatusOK || !json.Valid(rec.Body.Bytes()) {
		t.Errorf("/swagger.json: %d", rec.Code)
	}
}
