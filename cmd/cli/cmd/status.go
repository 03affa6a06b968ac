package cmd

import (
	"strconv"

	"layerplane/pkg/api"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [publish]",
	Short: "Get the job and sync status of a publish",
	Long: `Show the publish's current job, the last published job, the job deployed
on the slave servers and every slave server that is out of sync.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := clientFromConfig().GetPublishStatus(args[0])
		if err != nil {
			return err
		}
		printStatus(cmd, resp)
		return nil
	},
}

func printStatus(cmd *cobra.Command, resp *api.PublishStatusResponse) {
	layer := resp.Layer
	if layer.ID == nil {
		cmd.Printf("%s✗%s Publish %s%s%s does not exist\n", colorRed, colorReset, colorBold, layer.Name, colorReset)
		return
	}

	cmd.Printf("%sPublish Details%s\n", colorBold, colorReset)
	cmd.Println("──────────────────────────────")
	cmd.Printf("%sID:%s          %d\n", colorDim, colorReset, *layer.ID)
	cmd.Printf("%sWorkspace:%s   %s\n", colorDim, colorReset, layer.Workspace)
	cmd.Printf("%sName:%s        %s\n", colorDim, colorReset, layer.Name)
	cmd.Printf("%sStatus:%s      %s\n", colorDim, colorReset, layer.Status)

	p := resp.Publish
	if p == nil {
		return
	}

	cmd.Println()
	publishing := formatID(p.PublishingJobID)
	if p.PublishingFailed {
		publishing = colorRed + publishing + " (failed)" + colorReset
	}
	cmd.Printf("%sPublishing:%s  %s\n", colorDim, colorReset, publishing)
	if p.PublishingMessage != nil {
		cmd.Printf("%sMessage:%s     %s\n", colorDim, colorReset, formatText(p.PublishingMessage))
	}
	cmd.Printf("%sPublished:%s   %s at %s\n", colorDim, colorReset, formatID(p.PublishedJobID), formatMillis(p.PublishTime))
	cmd.Printf("%sDeployed:%s    %s at %s\n", colorDim, colorReset, formatID(p.DeployedJobID), formatMillis(p.DeployTime))

	if len(p.OutOfSyncServers) == 0 {
		cmd.Printf("%s✓ All slave servers in sync%s\n", colorGreen, colorReset)
		return
	}

	cmd.Printf("\n%s%d slave server(s) out of sync%s\n", colorYellow, len(p.OutOfSyncServers), colorReset)
	for _, s := range p.OutOfSyncServers {
		cmd.Printf("  %s%s%s  deployed %s at %s", colorBold, s.Server, colorReset, formatID(s.DeployedJobID), formatMillis(s.DeployTime))
		if s.SyncJobID != nil {
			cmd.Printf(", sync job %s failed: %s", formatID(s.SyncJobID), formatText(s.SyncMessage))
		}
		cmd.Printf(", last poll %s\n", formatMillis(s.LastPollTime))
	}
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
