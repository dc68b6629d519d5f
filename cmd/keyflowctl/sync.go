package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyflow/keyflow/pkg/client"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize a known_hosts file with a flow",
	Long: `Synchronize a known_hosts file with a flow.

The file's full content is parsed leniently (malformed lines are skipped)
and submitted to the server for reconciliation. With --in-place the file is
then rewritten from the server's reconciled state, deprecated keys included,
replacing the local content entirely. The file is never touched unless both
calls succeed.

Example:
  keyflowctl sync --flow prod --file ~/.ssh/known_hosts
  keyflowctl sync --flow prod --file ~/.ssh/known_hosts --in-place`,
	Run: func(cmd *cobra.Command, args []string) {
		flow, _ := cmd.Flags().GetString("flow")
		file, _ := cmd.Flags().GetString("file")
		inPlace, _ := cmd.Flags().GetBool("in-place")

		stats, err := client.Sync(context.Background(), apiClient(cmd), file, flow, inPlace)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Sync failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Parsed %d entries (%d lines skipped), submitted %d to flow %q\n",
			stats.Parsed, stats.Skipped, stats.Submitted, flow)
		if inPlace {
			fmt.Printf("Rewrote %s with %d entries from the server\n", file, stats.Written)
		}
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	addClientFlags(syncCmd)
	syncCmd.Flags().StringP("flow", "f", "", "flow name")
	syncCmd.Flags().String("file", "", "known_hosts file path")
	syncCmd.Flags().Bool("in-place", false, "rewrite the file from server state after submission")
	_ = syncCmd.MarkFlagRequired("flow")
	_ = syncCmd.MarkFlagRequired("file")
}
