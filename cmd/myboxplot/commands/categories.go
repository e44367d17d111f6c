package commands

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/mpedy/myboxplot/pkg/survey"
)

func newCategoriesCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the survey categories with their questions and colours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog := survey.Catalog()

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")

				err := enc.Encode(catalog)
				if err != nil {
					return fmt.Errorf("encode categories: %w", err)
				}

				return nil
			}

			tbl := table.NewWriter()
			tbl.SetOutputMirror(cmd.OutOrStdout())
			tbl.SetStyle(table.StyleLight)
			tbl.AppendHeader(table.Row{"Category", "Display", "Color", "Question"})

			for _, info := range catalog {
				tbl.AppendRow(table.Row{info.Category, info.Display, info.Color, info.Description})
			}

			tbl.Render()

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}
