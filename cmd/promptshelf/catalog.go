package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptshelf/internal/api"
	"github.com/jackzampolin/promptshelf/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and validate block catalogs",
	Long: `Inspect and validate block catalogs.

A catalog is a YAML file of default blocks, compositions and libraries.
When catalog.path is empty the embedded default catalog is used.

Examples:
  promptshelf catalog validate ./catalog.yaml   # Check a file offline
  promptshelf catalog show                      # Print the configured catalog
  promptshelf catalog show --write              # Export it to ~/.promptshelf/catalog.yaml`,
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a catalog file against the schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load(args[0])
		if err != nil {
			return err
		}
		stats := cat.Stats()
		fmt.Printf("%s is valid: %d blocks, %d compositions, %d libraries\n",
			args[0], stats.Blocks, stats.Compositions, stats.Libraries)
		return nil
	},
}

var catalogWrite bool

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the catalog the server would load",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := getHome()
		if err != nil {
			return err
		}
		cfgMgr, err := loadConfig(h)
		if err != nil {
			return err
		}
		cat, err := catalog.LoadOrDefault(cfgMgr.Get().CatalogPath())
		if err != nil {
			return err
		}

		if catalogWrite {
			data, err := catalog.Export(cat)
			if err != nil {
				return err
			}
			path := h.CatalogExportPath()
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("failed to write catalog: %w", err)
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		}

		return api.Output(map[string]any{
			"blocks":       cat.Blocks(),
			"compositions": cat.Compositions(),
			"libraries":    cat.Libraries(),
		})
	},
}

func init() {
	catalogShowCmd.Flags().BoolVar(&catalogWrite, "write", false, "Write the catalog YAML to the home directory")

	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	rootCmd.AddCommand(catalogCmd)
}
