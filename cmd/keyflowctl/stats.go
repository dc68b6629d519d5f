package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a flow's key statistics",
	Run: func(cmd *cobra.Command, args []string) {
		flow, _ := cmd.Flags().GetString("flow")

		stats, err := apiClient(cmd).Stats(context.Background(), flow)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch stats: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Flow %q\n", flow)
		fmt.Printf("  total keys:     %d\n", stats.Total)
		fmt.Printf("  active:         %d\n", stats.Active)
		fmt.Printf("  deprecated:     %d\n", stats.Deprecated)
		fmt.Printf("  unique servers: %d\n", stats.UniqueServers)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	addClientFlags(statsCmd)
	statsCmd.Flags().StringP("flow", "f", "", "flow name")
	_ = statsCmd.MarkFlagRequired("flow")
}
