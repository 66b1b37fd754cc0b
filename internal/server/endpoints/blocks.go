package endpoints

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptshelf/internal/api"
	"github.com/jackzampolin/promptshelf/internal/catalog"
	"github.com/jackzampolin/promptshelf/internal/prompts"
	"github.com/jackzampolin/promptshelf/internal/svcctx"
)

type blockGroup struct{}

func (blockGroup) Group() string { return "blocks" }

// ResolveBlockEndpoint handles GET /api/blocks/{id}.
type ResolveBlockEndpoint struct{ blockGroup }

func (e *ResolveBlockEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/blocks/{id}", e.handler
}

func (e *ResolveBlockEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Resolve a block
//	@Description	The override content when one exists, otherwise the catalog default
//	@Tags			blocks
//	@Produce		json
//	@Param			id	path		string	true	"Block id"
//	@Success		200	{object}	prompts.EffectiveBlock
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/blocks/{id} [get]
func (e *ResolveBlockEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	b, err := svcctx.EngineFrom(r.Context()).ResolveBlock(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (e *ResolveBlockEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <id>",
		Short: "Resolve a block to its effective content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp prompts.EffectiveBlock
			if err := client.Get(cmd.Context(), "/api/blocks/"+url.PathEscape(args[0]), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ResolveBlocksRequest lists block ids to resolve in order.
type ResolveBlocksRequest struct {
	IDs []string `json:"ids"`
}

// ResolveBlocksResponse holds the resolved blocks and the ids that did not resolve.
type ResolveBlocksResponse struct {
	Blocks  []prompts.EffectiveBlock `json:"blocks"`
	Missing []string                 `json:"missing"`
}

// ResolveBlocksEndpoint handles POST /api/blocks/resolve.
type ResolveBlocksEndpoint struct{ blockGroup }

func (e *ResolveBlocksEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/blocks/resolve", e.handler
}

func (e *ResolveBlocksEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Resolve many blocks
//	@Description	Resolves ids in input order with one store query. Unknown ids are reported in missing.
//	@Tags			blocks
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ResolveBlocksRequest	true	"Block ids"
//	@Success		200		{object}	ResolveBlocksResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/blocks/resolve [post]
func (e *ResolveBlocksEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req ResolveBlocksRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	blocks, err := svcctx.EngineFrom(r.Context()).ResolveBlocks(r.Context(), req.IDs)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ResolveBlocksResponse{Blocks: blocks, Missing: missingIDs(req.IDs, blocks)})
}

func (e *ResolveBlocksEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve-many <id>...",
		Short: "Resolve several blocks in order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ResolveBlocksResponse
			if err := client.Post(cmd.Context(), "/api/blocks/resolve", ResolveBlocksRequest{IDs: args}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

func missingIDs(ids []string, blocks []prompts.EffectiveBlock) []string {
	found := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		found[b.ID] = true
	}
	missing := []string{}
	seen := make(map[string]bool)
	for _, id := range ids {
		if !found[id] && !seen[id] {
			seen[id] = true
			missing = append(missing, id)
		}
	}
	return missing
}

type libraryGroup struct{}

func (libraryGroup) Group() string { return "libraries" }

// LibrarySummary describes a configured library.
type LibrarySummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ContextID string `json:"contextId"`
}

// LibrariesListResponse lists configured libraries.
type LibrariesListResponse struct {
	Libraries []LibrarySummary `json:"libraries"`
}

// ListLibrariesEndpoint handles GET /api/libraries.
type ListLibrariesEndpoint struct{ libraryGroup }

func (e *ListLibrariesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/libraries", e.handler
}

func (e *ListLibrariesEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	List libraries
//	@Tags		libraries
//	@Produce	json
//	@Success	200	{object}	LibrariesListResponse
//	@Router		/api/libraries [get]
func (e *ListLibrariesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	libs := svcctx.CatalogFrom(r.Context()).Libraries()
	resp := LibrariesListResponse{Libraries: make([]LibrarySummary, len(libs))}
	for i, l := range libs {
		resp.Libraries[i] = LibrarySummary{ID: l.ID, Name: l.Name, ContextID: catalog.LibraryContextID(l.ID)}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *ListLibrariesEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List libraries",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp LibrariesListResponse
			if err := client.Get(cmd.Context(), "/api/libraries", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// LibraryContextResponse is the effective context text of a library.
type LibraryContextResponse struct {
	LibraryID string `json:"libraryId"`
	ContextID string `json:"contextId"`
	Content   string `json:"content"`
}

// LibraryContextEndpoint handles GET /api/libraries/{id}/context.
type LibraryContextEndpoint struct{ libraryGroup }

func (e *LibraryContextEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/libraries/{id}/context", e.handler
}

func (e *LibraryContextEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Resolve a library context
//	@Description	The edited context when one exists, otherwise the catalog default. Edit it through /api/prompts/library-context-{id}.
//	@Tags			libraries
//	@Produce		json
//	@Param			id	path		string	true	"Library id"
//	@Success		200	{object}	LibraryContextResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/libraries/{id}/context [get]
func (e *LibraryContextEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := svcctx.CatalogFrom(r.Context()).Library(id); !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("library %s not found", id))
		return
	}

	content, err := svcctx.EngineFrom(r.Context()).ResolveLibraryContext(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LibraryContextResponse{
		LibraryID: id,
		ContextID: catalog.LibraryContextID(id),
		Content:   content,
	})
}

func (e *LibraryContextEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "context <library-id>",
		Short: "Show a library's effective context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp LibraryContextResponse
			if err := client.Get(cmd.Context(), "/api/libraries/"+url.PathEscape(args[0])+"/context", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
