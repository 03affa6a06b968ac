package cmd

import (
	"errors"
	"sort"
	"time"

	"layerplane/pkg/api"

	"github.com/spf13/cobra"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

var errBatchFailed = errors.New("one or more items failed")

// printBatch prints one line per item in name order and fails when any item failed.
func printBatch(cmd *cobra.Command, resp *api.BatchResponse) error {
	names := make([]string, 0, len(resp.Results))
	for name := range resp.Results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		r := resp.Results[name]
		icon := colorGreen + "✓" + colorReset
		if !r.Status {
			icon = colorRed + "✗" + colorReset
		}
		line := icon + " " + colorBold + name + colorReset + "  " + r.Message
		if r.JobID != nil {
			cmd.Printf("%s %s(job %d)%s\n", line, colorDim, *r.JobID, colorReset)
		} else {
			cmd.Println(line)
		}
	}

	if !resp.Status {
		return errBatchFailed
	}
	return nil
}

func formatMillis(ms *int64) string {
	if ms == nil {
		return "-"
	}
	return time.UnixMilli(*ms).Format(time.DateTime)
}

func formatID(id *int64) string {
	if id == nil {
		return "-"
	}
	return formatInt(*id)
}

func formatText(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
