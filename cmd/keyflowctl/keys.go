package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyflow/keyflow/pkg/sshkey"
)

// keysCmd represents the keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Print a flow's current key set in known_hosts format",
	Run: func(cmd *cobra.Command, args []string) {
		flow, _ := cmd.Flags().GetString("flow")
		includeDeprecated, _ := cmd.Flags().GetBool("include-deprecated")

		entries, err := apiClient(cmd).FetchKeys(context.Background(), flow, includeDeprecated)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch keys: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(sshkey.FormatKnownHosts(entries))
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
	addClientFlags(keysCmd)
	keysCmd.Flags().StringP("flow", "f", "", "flow name")
	keysCmd.Flags().Bool("include-deprecated", false, "include deprecated keys")
	_ = keysCmd.MarkFlagRequired("flow")
}
