// cmd/list.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loxasys/asterix/specxml"
)

var catalogFlag string

func init() {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the categories defined by an XML catalog",
		Long: `Load the category XML files named by --catalog and display their id, edition,
data items, and UAP FRN count.`,
		RunE: runList,
	}

	listCmd.Flags().StringVarP(&catalogFlag, "catalog", "c", "", "Path(s) to category XML file(s), comma-separated")
	listCmd.MarkFlagRequired("catalog")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	logger := ConfigureLogger(Verbose, JsonLogs)

	paths, err := splitCatalogFlag(catalogFlag)
	if err != nil {
		return err
	}

	def, err := specxml.Load(paths, logger)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	for _, id := range def.Categories() {
		cat, _ := def.Category(id)
		uap, _ := cat.DefaultUAP()
		maxFRN := 0
		if uap != nil {
			maxFRN = uap.MaxFRN()
		}
		logger.Info("Category",
			"id", cat.ID,
			"edition", cat.Edition,
			"items", len(cat.Items()),
			"max_frn", maxFRN,
		)
	}
	return nil
}
