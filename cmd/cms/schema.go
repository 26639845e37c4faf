package main

import (
	"github.com/flxbl-dev/kickass-cms-sub000/internal/cli"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [entity]",
	Short: "Print the entity schemas the client validates against",
	Long:  `Prints the built-in entity catalog, including any extraFields from the config file.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		reg, err := cli.BuildRegistry(cfg)
		if err != nil {
			return err
		}
		entity := ""
		if len(args) > 0 {
			entity = args[0]
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		return cli.PrintSchema(reg, entity, cmd.OutOrStdout(), asJSON)
	},
}

func init() {
	schemaCmd.Flags().Bool("json", false, "Print the schemas as JSON")
	rootCmd.AddCommand(schemaCmd)
}
