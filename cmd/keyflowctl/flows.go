package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// flowsCmd represents the flows command
var flowsCmd = &cobra.Command{
	Use:   "flows",
	Short: "List the server's flow allow-list",
	Run: func(cmd *cobra.Command, args []string) {
		flows, err := apiClient(cmd).Flows(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list flows: %v\n", err)
			os.Exit(1)
		}
		for _, f := range flows {
			fmt.Println(f)
		}
	},
}

func init() {
	rootCmd.AddCommand(flowsCmd)
	addClientFlags(flowsCmd)
}
