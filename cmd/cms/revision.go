package main

import (
	"github.com/flxbl-dev/kickass-cms-sub000/internal/cli"
	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff <from.json> <to.json>",
	Short: "Compare two revision files",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		_, err := cli.DiffFiles(args[0], args[1], cmd.InOrStdin(), cmd.OutOrStdout(), asJSON)
		return err
	},
}

var revisionCmd = &cobra.Command{
	Use:   "revision",
	Short: "Manage stored revisions of a content item",
}

var revisionListCmd = &cobra.Command{
	Use:   "list <content-id>",
	Short: "List revisions, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		revs, err := app.CMS.Revisions.List(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return cli.WriteJSON(cmd.OutOrStdout(), revs)
	},
}

var revisionCaptureCmd = &cobra.Command{
	Use:   "capture <content-id>",
	Short: "Snapshot the stored blocks as a new revision",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		message, _ := cmd.Flags().GetString("message")
		actor, _ := cmd.Flags().GetString("actor")
		rev, err := app.CMS.Revisions.Capture(cmd.Context(), args[0], message, actor)
		if err != nil {
			return err
		}
		return cli.WriteJSON(cmd.OutOrStdout(), rev)
	},
}

var revisionRestoreCmd = &cobra.Command{
	Use:   "restore <content-id> <revision-id>",
	Short: "Restore blocks and title from a revision",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		actor, _ := cmd.Flags().GetString("actor")
		rev, err := app.CMS.Revisions.Restore(cmd.Context(), args[0], args[1], actor)
		if err != nil {
			return err
		}
		return cli.WriteJSON(cmd.OutOrStdout(), rev)
	},
}

var revisionCompareCmd = &cobra.Command{
	Use:   "compare <from-id> <to-id>",
	Short: "Compare two stored revisions",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		d, err := app.CMS.Revisions.Compare(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return cli.PrintDiff(cmd.OutOrStdout(), d)
	},
}

func init() {
	diffCmd.Flags().Bool("json", false, "Print the diff as JSON")
	revisionCaptureCmd.Flags().StringP("message", "m", "", "Change message")
	for _, c := range []*cobra.Command{revisionCaptureCmd, revisionRestoreCmd} {
		c.Flags().String("actor", "", "Who made the change")
	}
	revisionCmd.AddCommand(revisionListCmd, revisionCaptureCmd, revisionRestoreCmd, revisionCompareCmd)
	rootCmd.AddCommand(diffCmd, revisionCmd)
}
