package endpoints

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptshelf/internal/api"
	"github.com/jackzampolin/promptshelf/internal/catalog"
	"github.com/jackzampolin/promptshelf/internal/prompts"
	"github.com/jackzampolin/promptshelf/internal/svcctx"
)

// PromptsListResponse contains every managed prompt.
type PromptsListResponse struct {
	Prompts []prompts.ManagedPrompt `json:"prompts"`
	Total   int                     `json:"total"`
}

// PromptDetailResponse is a managed prompt with its version history.
type PromptDetailResponse struct {
	prompts.ManagedPrompt
	History []prompts.VersionEntry `json:"history"`
}

// promptGroup places prompt commands under `api prompts`.
type promptGroup struct{}

func (promptGroup) Group() string { return "prompts" }

// ListPromptsEndpoint handles GET /api/prompts.
type ListPromptsEndpoint struct{ promptGroup }

func (e *ListPromptsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompts", e.handler
}

func (e *ListPromptsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List all prompts
//	@Description	Catalog blocks, library contexts and custom blocks merged with their overrides
//	@Tags			prompts
//	@Produce		json
//	@Param			category	query		string	false	"Only prompts carrying this category"
//	@Param			source		query		string	false	"Only prompts from this source (v2-core, legacy, chat-library, library-context, custom)"
//	@Success		200			{object}	PromptsListResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/api/prompts [get]
func (e *ListPromptsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	engine := svcctx.EngineFrom(r.Context())

	filter := prompts.ListFilter{
		Category: r.URL.Query().Get("category"),
		Source:   catalog.Source(r.URL.Query().Get("source")),
	}
	list, err := engine.ListAll(r.Context(), filter)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PromptsListResponse{Prompts: list, Total: len(list)})
}

func (e *ListPromptsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var category, source string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if category != "" {
				q.Set("category", category)
			}
			if source != "" {
				q.Set("source", source)
			}
			path := "/api/prompts"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}

			client := api.NewClient(getServerURL())
			var resp PromptsListResponse
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	cmd.Flags().StringVar(&source, "source", "", "Filter by source")
	return cmd
}

// GetPromptEndpoint handles GET /api/prompts/{id}.
type GetPromptEndpoint struct{ promptGroup }

func (e *GetPromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompts/{id}", e.handler
}

func (e *GetPromptEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get a prompt
//	@Description	Get a prompt by slug or document id, with its version history
//	@Tags			prompts
//	@Produce		json
//	@Param			id	path		string	true	"Block id, slug or document id"
//	@Success		200	{object}	PromptDetailResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/prompts/{id} [get]
func (e *GetPromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	engine := svcctx.EngineFrom(r.Context())

	p, err := engine.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	history, err := engine.History(r.Context(), p.ID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PromptDetailResponse{ManagedPrompt: *p, History: history})
}

func (e *GetPromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a prompt by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp PromptDetailResponse
			if err := client.Get(cmd.Context(), "/api/prompts/"+url.PathEscape(args[0]), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// CreatePromptEndpoint handles POST /api/prompts.
type CreatePromptEndpoint struct{ promptGroup }

func (e *CreatePromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/prompts", e.handler
}

func (e *CreatePromptEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Create a custom prompt
//	@Description	Creates a custom block at version 1. The slug must not collide with the catalog or an existing block.
//	@Tags			prompts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		prompts.CreateInput	true	"New block"
//	@Success		201		{object}	prompts.ManagedPrompt
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/prompts [post]
func (e *CreatePromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req prompts.CreateInput
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := svcctx.EngineFrom(r.Context()).Create(r.Context(), req)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

func (e *CreatePromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		req        prompts.CreateInput
		file       string
		tier       int
		categories []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a custom prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				content, err := readContentFile(file)
				if err != nil {
					return err
				}
				req.Content = content
			}
			req.Tier = catalog.Tier(tier)
			req.Categories = categories

			client := api.NewClient(getServerURL())
			var resp prompts.ManagedPrompt
			if err := client.Post(cmd.Context(), "/api/prompts", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&req.Slug, "slug", "", "Block id (default: generated)")
	cmd.Flags().StringVar(&req.Title, "title", "", "Display title")
	cmd.Flags().StringVar(&req.Description, "description", "", "Description")
	cmd.Flags().StringVar(&req.Content, "content", "", "Block content")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read content from file (- for stdin)")
	cmd.Flags().IntVar(&tier, "tier", 0, "Tier: 1 locked, 2 caution, 3 open (default 3)")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "Category (repeatable)")
	cmd.Flags().StringVarP(&req.CommitMessage, "message", "m", "", "Commit message (required)")
	cmd.Flags().StringVar(&req.Actor, "actor", "", "Who is making the change")
	cmd.MarkFlagRequired("message")
	return cmd
}

// UpdatePromptEndpoint handles PATCH /api/prompts/{id}.
type UpdatePromptEndpoint struct{ promptGroup }

func (e *UpdatePromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PATCH", "/api/prompts/{id}", e.handler
}

func (e *UpdatePromptEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Update a prompt
//	@Description	Appends a version. Editing a catalog block for the first time creates its override at version 2.
//	@Tags			prompts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Block id"
//	@Param			request	body		prompts.UpdateInput	true	"Changes and commit message"
//	@Success		200		{object}	prompts.ManagedPrompt
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/prompts/{id} [patch]
func (e *UpdatePromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req prompts.UpdateInput
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := svcctx.EngineFrom(r.Context()).Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (e *UpdatePromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		content, file, title, description string
		categories                        []string
		req                               prompts.UpdateInput
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a prompt's content or metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if file != "" {
				c, err := readContentFile(file)
				if err != nil {
					return err
				}
				req.Content = &c
			} else if flags.Changed("content") {
				req.Content = &content
			}
			if flags.Changed("title") {
				req.Title = &title
			}
			if flags.Changed("description") {
				req.Description = &description
			}
			if flags.Changed("category") {
				req.Categories = categories
			}

			client := api.NewClient(getServerURL())
			var resp prompts.ManagedPrompt
			if err := client.Patch(cmd.Context(), "/api/prompts/"+url.PathEscape(args[0]), req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "New content")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read new content from file (- for stdin)")
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "Replace categories (repeatable)")
	cmd.Flags().StringVarP(&req.CommitMessage, "message", "m", "", "Commit message (required)")
	cmd.Flags().StringVar(&req.Actor, "actor", "", "Who is making the change")
	cmd.MarkFlagRequired("message")
	return cmd
}

// DeletePromptEndpoint handles DELETE /api/prompts/{id}.
type DeletePromptEndpoint struct{ promptGroup }

func (e *DeletePromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/prompts/{id}", e.handler
}

func (e *DeletePromptEndpoint) RequiresInit() bool { return true }

// DeleteResponse confirms a deletion.
type DeleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// handler godoc
//
//	@Summary		Delete a custom prompt
//	@Description	Only custom blocks can be deleted. Overrides of catalog blocks are removed with reset.
//	@Tags			prompts
//	@Produce		json
//	@Param			id	path		string	true	"Block id"
//	@Success		200	{object}	DeleteResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/prompts/{id} [delete]
func (e *DeletePromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := svcctx.EngineFrom(r.Context()).Delete(r.Context(), id); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{ID: id, Deleted: true})
}

func (e *DeletePromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a custom prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp DeleteResponse
			if err := client.Delete(cmd.Context(), "/api/prompts/"+url.PathEscape(args[0]), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ResetPromptEndpoint handles POST /api/prompts/{id}/reset.
type ResetPromptEndpoint struct{ promptGroup }

func (e *ResetPromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/prompts/{id}/reset", e.handler
}

func (e *ResetPromptEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Reset a prompt to its catalog default
//	@Description	Deletes the override and its entire version history. This cannot be undone.
//	@Tags			prompts
//	@Produce		json
//	@Param			id	path		string	true	"Block id"
//	@Success		200	{object}	prompts.ResetResult
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/prompts/{id}/reset [post]
func (e *ResetPromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	res, err := svcctx.EngineFrom(r.Context()).ResetToDefault(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (e *ResetPromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <id>",
		Short: "Discard a prompt's override and history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp prompts.ResetResult
			if err := client.Post(cmd.Context(), "/api/prompts/"+url.PathEscape(args[0])+"/reset", nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// readContentFile reads block content from path, or stdin for "-".
func readContentFile(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	return string(data), nil
}
