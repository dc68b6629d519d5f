package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyflow/keyflow/pkg/client"
)

// deprecateCmd represents the deprecate command
var deprecateCmd = &cobra.Command{
	Use:   "deprecate <server>...",
	Short: "Mark a server's keys as deprecated in a flow",
	Long: `Mark a server's keys as deprecated in a flow.

Deprecated keys stay in the store and keep their deprecated state across
resubmissions; they are only distributed to clients that ask for them
explicitly. With more than one server the bulk endpoint is used and the
whole batch is applied atomically.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runLifecycleVerb(cmd, args, "deprecate")
	},
}

// restoreCmd represents the restore command
var restoreCmd = &cobra.Command{
	Use:   "restore <server>...",
	Short: "Reactivate a server's deprecated keys in a flow",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runLifecycleVerb(cmd, args, "restore")
	},
}

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <server>",
	Short: "Permanently remove a server from a flow",
	Long: `Permanently remove a server from a flow.

The flow's associations for the server are deleted; key records that no
other flow references are removed from the store entirely.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flow, _ := cmd.Flags().GetString("flow")

		result, err := apiClient(cmd).Delete(context.Background(), flow, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Delete failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s (associations removed: %d, records removed: %d)\n",
			result.Message, result.AssociationsRemoved, result.RecordsRemoved)
	},
}

func runLifecycleVerb(cmd *cobra.Command, servers []string, verb string) {
	flow, _ := cmd.Flags().GetString("flow")
	c := apiClient(cmd)
	ctx := context.Background()

	var (
		result client.LifecycleResult
		err    error
	)
	switch {
	case len(servers) == 1 && verb == "deprecate":
		result, err = c.Deprecate(ctx, flow, servers[0])
	case len(servers) == 1 && verb == "restore":
		result, err = c.Restore(ctx, flow, servers[0])
	case verb == "deprecate":
		result, err = c.BulkDeprecate(ctx, flow, servers)
	default:
		result, err = c.BulkRestore(ctx, flow, servers)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to %s: %v\n", verb, err)
		os.Exit(1)
	}
	fmt.Printf("%s (affected: %d)\n", result.Message, result.AffectedCount)
}

func init() {
	for _, cmd := range []*cobra.Command{deprecateCmd, restoreCmd, deleteCmd} {
		rootCmd.AddCommand(cmd)
		addClientFlags(cmd)
		cmd.Flags().StringP("flow", "f", "", "flow name")
		_ = cmd.MarkFlagRequired("flow")
	}
}
