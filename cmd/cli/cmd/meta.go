package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var metaCmd = &cobra.Command{
	Use:   "meta",
	Short: "Manage layer metadata",
}

var metaPublishCmd = &cobra.Command{
	Use:   "publish [workspace:name]...",
	Short: "Publish layer metadata and push the metadata repository",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("requires at least one layer")
		}
		for _, arg := range args {
			if ws, name, ok := strings.Cut(arg, ":"); !ok || ws == "" || name == "" {
				return fmt.Errorf("invalid layer %q, expected workspace:name", arg)
			}
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := clientFromConfig().PublishMetadata(args)
		if err != nil {
			return err
		}
		return printBatch(cmd, resp)
	},
}

func init() {
	metaCmd.AddCommand(metaPublishCmd)
	rootCmd.AddCommand(metaCmd)
}
