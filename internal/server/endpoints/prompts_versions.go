package endpoints

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptshelf/internal/api"
	"github.com/jackzampolin/promptshelf/internal/prompts"
	"github.com/jackzampolin/promptshelf/internal/svcctx"
)

// HistoryResponse lists a prompt's versions, oldest first.
type HistoryResponse struct {
	ID       string                 `json:"id"`
	Versions []prompts.VersionEntry `json:"versions"`
}

// PromptHistoryEndpoint handles GET /api/prompts/{id}/history.
type PromptHistoryEndpoint struct{ promptGroup }

func (e *PromptHistoryEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompts/{id}/history", e.handler
}

func (e *PromptHistoryEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get version history
//	@Description	Empty for blocks still at their catalog default
//	@Tags			prompts
//	@Produce		json
//	@Param			id	path		string	true	"Block id"
//	@Success		200	{object}	HistoryResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/prompts/{id}/history [get]
func (e *PromptHistoryEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	engine := svcctx.EngineFrom(r.Context())
	id := r.PathValue("id")

	if _, err := engine.GetBySlug(r.Context(), id); err != nil {
		writeEngineError(w, err)
		return
	}
	history, err := engine.History(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, HistoryResponse{ID: id, Versions: history})
}

func (e *PromptHistoryEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show a prompt's version history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HistoryResponse
			if err := client.Get(cmd.Context(), "/api/prompts/"+url.PathEscape(args[0])+"/history", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// RollbackRequest selects the version to restore.
type RollbackRequest struct {
	Version int    `json:"version"`
	Actor   string `json:"actor,omitempty"`
}

// RollbackPromptEndpoint handles POST /api/prompts/{id}/rollback.
type RollbackPromptEndpoint struct{ promptGroup }

func (e *RollbackPromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/prompts/{id}/rollback", e.handler
}

func (e *RollbackPromptEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Roll back to an earlier version
//	@Description	Restores the content and variants of a past version as a new version
//	@Tags			prompts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Block id"
//	@Param			request	body		RollbackRequest	true	"Target version"
//	@Success		200		{object}	prompts.ManagedPrompt
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/prompts/{id}/rollback [post]
func (e *RollbackPromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req RollbackRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := svcctx.EngineFrom(r.Context()).Rollback(r.Context(), r.PathValue("id"), req.Version, req.Actor)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (e *RollbackPromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	var actor string
	cmd := &cobra.Command{
		Use:   "rollback <id> <version>",
		Short: "Restore an earlier version as a new version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}

			client := api.NewClient(getServerURL())
			var resp prompts.ManagedPrompt
			req := RollbackRequest{Version: version, Actor: actor}
			if err := client.Post(cmd.Context(), "/api/prompts/"+url.PathEscape(args[0])+"/rollback", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "Who is making the change")
	return cmd
}

// VariantRequest sets the content of one context variant.
type VariantRequest struct {
	Content       string `json:"content"`
	CommitMessage string `json:"commitMessage"`
	Actor         string `json:"actor,omitempty"`
}

// UpdateVariantEndpoint handles PUT /api/prompts/{id}/variants/{variant}.
type UpdateVariantEndpoint struct{ promptGroup }

func (e *UpdateVariantEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/prompts/{id}/variants/{variant}", e.handler
}

func (e *UpdateVariantEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Set a context variant
//	@Description	Empty content removes the variant. Appends a version like any other edit.
//	@Tags			prompts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Block id"
//	@Param			variant	path		string			true	"Context name (e.g. chat)"
//	@Param			request	body		VariantRequest	true	"Variant content and commit message"
//	@Success		200		{object}	prompts.ManagedPrompt
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/prompts/{id}/variants/{variant} [put]
func (e *UpdateVariantEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req VariantRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := svcctx.EngineFrom(r.Context()).UpdateVariant(r.Context(),
		r.PathValue("id"), r.PathValue("variant"), req.Content, req.CommitMessage, req.Actor)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (e *UpdateVariantEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		req  VariantRequest
		file string
	)
	cmd := &cobra.Command{
		Use:   "variant <id> <context>",
		Short: "Set or remove a prompt's context variant",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				content, err := readContentFile(file)
				if err != nil {
					return err
				}
				req.Content = content
			}

			client := api.NewClient(getServerURL())
			var resp prompts.ManagedPrompt
			path := "/api/prompts/" + url.PathEscape(args[0]) + "/variants/" + url.PathEscape(args[1])
			if err := client.Put(cmd.Context(), path, req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&req.Content, "content", "", "Variant content (empty removes the variant)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read variant content from file (- for stdin)")
	cmd.Flags().StringVarP(&req.CommitMessage, "message", "m", "", "Commit message (required)")
	cmd.Flags().StringVar(&req.Actor, "actor", "", "Who is making the change")
	cmd.MarkFlagRequired("message")
	return cmd
}
