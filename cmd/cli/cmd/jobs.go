package cmd

import (
	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage publish jobs",
}

var jobsCreateCmd = &cobra.Command{
	Use:   "create [publish]...",
	Short: "Create jobs for publishes",
	Long: `Create one waiting job per publish. All jobs of a call share a batch id.
A publish that does not exist or is disabled fails on its own without affecting the others.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetString("interval")

		resp, err := clientFromConfig().CreateJobs(args, interval)
		if err != nil {
			return err
		}
		return printBatch(cmd, resp)
	},
}

func init() {
	jobsCreateCmd.Flags().String("interval", "", "job interval (Manually, Triggered, Realtime, Hourly, Daily, Weekly, Monthly)")

	jobsCmd.AddCommand(jobsCreateCmd)
	rootCmd.AddCommand(jobsCmd)
}
