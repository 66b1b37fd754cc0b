package endpoints

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptshelf/internal/api"
	"github.com/jackzampolin/promptshelf/internal/catalog"
	"github.com/jackzampolin/promptshelf/internal/prompts"
	"github.com/jackzampolin/promptshelf/internal/svcctx"
)

type compositionGroup struct{}

func (compositionGroup) Group() string { return "compositions" }

// CompositionsListResponse lists the catalog's compositions.
type CompositionsListResponse struct {
	Compositions []catalog.Composition `json:"compositions"`
}

// ListCompositionsEndpoint handles GET /api/compositions.
type ListCompositionsEndpoint struct{ compositionGroup }

func (e *ListCompositionsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/compositions", e.handler
}

func (e *ListCompositionsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List compositions
//	@Description	Compositions defined in the catalog, optionally filtered by category
//	@Tags			compositions
//	@Produce		json
//	@Param			category	query		string	false	"Only compositions in this category"
//	@Success		200			{object}	CompositionsListResponse
//	@Router			/api/compositions [get]
func (e *ListCompositionsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	all := svcctx.CatalogFrom(r.Context()).Compositions()

	resp := CompositionsListResponse{Compositions: make([]catalog.Composition, 0, len(all))}
	for _, c := range all {
		if category == "" || c.Category == category {
			resp.Compositions = append(resp.Compositions, c)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *ListCompositionsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List compositions",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/compositions"
			if category != "" {
				path += "?category=" + url.QueryEscape(category)
			}
			client := api.NewClient(getServerURL())
			var resp CompositionsListResponse
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	return cmd
}

// GetCompositionEndpoint handles GET /api/compositions/{id}.
type GetCompositionEndpoint struct{ compositionGroup }

func (e *GetCompositionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/compositions/{id}", e.handler
}

func (e *GetCompositionEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	Get a composition definition
//	@Tags		compositions
//	@Produce	json
//	@Param		id	path		string	true	"Composition id"
//	@Success	200	{object}	catalog.Composition
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/compositions/{id} [get]
func (e *GetCompositionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	comp, ok := svcctx.CatalogFrom(r.Context()).Composition(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("composition %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, comp)
}

func (e *GetCompositionEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a composition definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp catalog.Composition
			if err := client.Get(cmd.Context(), "/api/compositions/"+url.PathEscape(args[0]), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// BuildCompositionEndpoint handles POST /api/compositions/{id}/build.
type BuildCompositionEndpoint struct{ compositionGroup }

func (e *BuildCompositionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/compositions/{id}/build", e.handler
}

func (e *BuildCompositionEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Build a composition
//	@Description	Assembles the composition from effective block content. Missing blocks are reported, never fatal.
//	@Tags			compositions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Composition id"
//	@Param			request	body		prompts.BuildOptions	false	"Library and variant overrides"
//	@Success		200		{object}	prompts.CompositionResult
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/compositions/{id}/build [post]
func (e *BuildCompositionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var opts prompts.BuildOptions
	if err := decodeBody(r, &opts); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := svcctx.EngineFrom(r.Context()).BuildCompositionByID(r.Context(), r.PathValue("id"), opts)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (e *BuildCompositionEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		opts prompts.BuildOptions
		raw  bool
	)
	cmd := &cobra.Command{
		Use:   "build <id>",
		Short: "Assemble a composition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp prompts.CompositionResult
			if err := client.Post(cmd.Context(), "/api/compositions/"+url.PathEscape(args[0])+"/build", opts, &resp); err != nil {
				return err
			}
			if raw {
				fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
				return nil
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&opts.LibraryID, "library", "", "Library whose context is appended")
	cmd.Flags().StringVar(&opts.VariantContext, "variant", "", "Context variant to prefer (e.g. chat)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print only the assembled text")
	return cmd
}
