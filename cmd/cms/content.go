package main

import (
	"fmt"

	"github.com/flxbl-dev/kickass-cms-sub000/internal/cli"
	"github.com/flxbl-dev/kickass-cms-sub000/internal/presentation/tui"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/client"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/document"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <entity>",
	Short: "List records of an entity type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		res, err := app.CMS.Client.ListWithPagination(cmd.Context(), args[0], client.ListOptions{Limit: limit, Offset: offset})
		if err != nil {
			return err
		}
		return cli.WriteJSON(cmd.OutOrStdout(), res)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <entity> <id>",
	Short: "Fetch one record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		rec, err := app.CMS.Client.Get(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return cli.WriteJSON(cmd.OutOrStdout(), rec)
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree <page-id>",
	Short: "Print the page hierarchy below a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		depth, _ := cmd.Flags().GetInt("depth")
		tree, err := app.CMS.Compose.PageTree(cmd.Context(), args[0], depth)
		if err != nil {
			return err
		}
		return cli.WriteJSON(cmd.OutOrStdout(), tree)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <content-id>",
	Short: "Render the blocks of a content item as Markdown",
	Long:  `Loads the stored blocks of a content item and prints them as Markdown, styled when stdout is a terminal.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		content, err := client.GetAs[domain.Content](cmd.Context(), app.CMS.Client, domain.EntityContent, args[0])
		if err != nil {
			return err
		}
		blocks, err := app.CMS.Blocks.LoadBlocks(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		render, err := tui.ForWriter(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		out, err := render("# " + content.Title + "\n\n" + document.ToMarkdown(blocks))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	listCmd.Flags().Int("limit", 0, "Maximum number of records")
	listCmd.Flags().Int("offset", 0, "Number of records to skip")
	treeCmd.Flags().Int("depth", -1, "Levels below the root to load; negative means all")
	rootCmd.AddCommand(listCmd, getCmd, treeCmd, showCmd)
}
