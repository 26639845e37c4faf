package main

import (
	"fmt"
	"strings"

	cms "github.com/flxbl-dev/kickass-cms-sub000"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of cms",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cms version %s\n", strings.TrimSpace(cms.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
