package main

import (
	"errors"
	"fmt"
	"strings"

	"expense-tracker-go/internal/client/categories"
	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List and add expense categories",
	}
	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer closeApp(a)

			cats, err := a.Categories.List(cmd.Context())
			if err != nil {
				return err
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintf(tw, "%s\t%s\t%s\n", headerStyle.Render("NAME"), headerStyle.Render("COLOR"), headerStyle.Render("ICON"))
			for _, c := range cats {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", categoryStyle(c.Color).Render(c.Name), c.Color, c.Icon)
			}
			return tw.Flush()
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var color, icon string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer closeApp(a)

			created, err := a.Categories.Add(cmd.Context(), args[0], color, icon)
			switch {
			case errors.Is(err, categories.ErrDuplicateName):
				return fmt.Errorf("category %q already exists", args[0])
			case errors.Is(err, categories.ErrInvalidIcon):
				return fmt.Errorf("unknown icon %q, choose one of: %s", icon, strings.Join(categories.Icons, ", "))
			case err != nil:
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Created category "+created.Name+"."))
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", "#6B7280", "hex color, #rrggbb")
	cmd.Flags().StringVar(&icon, "icon", categories.DefaultIcon, "icon tag")
	return cmd
}
