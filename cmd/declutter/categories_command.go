package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"declutter/internal/category"
)

func newCategoriesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show the category table in effect",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cats, err := cfg.CategoryTable()
			if err != nil {
				return err
			}

			tw := table.NewWriter()
			tw.SetStyle(table.StyleRounded)
			tw.AppendHeader(table.Row{"Category", "Extensions"})
			for _, c := range cats.Categories() {
				tw.AppendRow(table.Row{c.Name, strings.Join(c.Extensions, " ")})
			}
			tw.AppendRow(table.Row{category.Other, "everything else"})
			fmt.Fprintln(cmd.OutOrStdout(), tw.Render())
			return nil
		},
	}
}
