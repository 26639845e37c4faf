package main

import (
	"github.com/flxbl-dev/kickass-cms-sub000/internal/cli"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert between rich-text documents and content blocks",
}

var toBlocksCmd = &cobra.Command{
	Use:   "to-blocks [file]",
	Short: "Convert a document to content blocks",
	Long:  `Reads a document tree (JSON) from the file, or stdin when omitted or "-", and prints content blocks.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.ToBlocks(inputPath(args), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

var toDocumentCmd = &cobra.Command{
	Use:   "to-document [file]",
	Short: "Convert content blocks to a document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.ToDocument(inputPath(args), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func inputPath(args []string) string {
	if len(args) == 0 {
		return "-"
	}
	return args[0]
}

func init() {
	convertCmd.AddCommand(toBlocksCmd, toDocumentCmd)
	rootCmd.AddCommand(convertCmd)
}
