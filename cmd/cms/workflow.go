package main

import (
	"fmt"

	"github.com/flxbl-dev/kickass-cms-sub000/internal/cli"
	"github.com/flxbl-dev/kickass-cms-sub000/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Inspect and apply editorial workflow states",
}

var workflowValidateCmd = &cobra.Command{
	Use:   "validate [catalog]",
	Short: "Check a workflow catalog for consistency",
	Long:  `Crawls the catalog from its first state and reports unknown targets, duplicates and unreachable states. Without a file the built-in catalog is checked.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		if err := cli.ValidateCatalog(path, cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "catalog is valid")
		return nil
	},
}

var workflowSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create missing workflow states in the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		states, err := cli.LoadStates(app.Config.WorkflowCatalog)
		if err != nil {
			return err
		}
		stored, err := app.CMS.Workflow.EnsureStates(cmd.Context(), states)
		if err != nil {
			return err
		}
		return cli.WriteJSON(cmd.OutOrStdout(), stored)
	},
}

var workflowGraphCmd = &cobra.Command{
	Use:   "graph [catalog]",
	Short: "Export the workflow catalog as a Mermaid diagram",
	Long:  `Outputs a Mermaid flowchart of the catalog. With --content the state of that content item is highlighted.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		states, err := cli.LoadStates(path)
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		if contentID, _ := cmd.Flags().GetString("content"); contentID != "" {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			current, err := app.CMS.Workflow.CurrentState(cmd.Context(), contentID)
			if err != nil {
				return err
			}
			if current != nil {
				overlay = &graph.Overlay{Current: current.Slug}
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(states, overlay))
		return nil
	},
}

var workflowAllowedCmd = &cobra.Command{
	Use:   "allowed <content-id>",
	Short: "List the states a content item may move to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		allowed, err := app.CMS.Workflow.Allowed(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		cli.PrintAllowed(cmd.OutOrStdout(), allowed)
		return nil
	},
}

var workflowTransitionCmd = &cobra.Command{
	Use:   "transition <content-id> <state>",
	Short: "Move a content item to another state",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		actor, _ := cmd.Flags().GetString("actor")
		res, err := app.CMS.Workflow.TransitionState(cmd.Context(), args[0], args[1], actor)
		if err != nil {
			return err
		}
		from := "(none)"
		if res.From != nil {
			from = res.From.Slug
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", res.ContentID, from, res.To.Slug)
		return nil
	},
}

func init() {
	workflowTransitionCmd.Flags().String("actor", "", "Who made the change")
	workflowGraphCmd.Flags().String("content", "", "Highlight the state of this content item")
	workflowCmd.AddCommand(workflowValidateCmd, workflowGraphCmd, workflowSeedCmd, workflowAllowedCmd, workflowTransitionCmd)
	rootCmd.AddCommand(workflowCmd)
}
