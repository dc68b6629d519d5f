// Package main is the keyflowctl CLI: it runs the keyflow server and drives
// its HTTP API for sync and administration.
//
// The server side is organized into several packages:
//
//   - pkg/server: HTTP server, routing and the fail-fast supervisor
//   - pkg/server/endpoints: REST API endpoint handlers
//   - pkg/reconcile: key submission reconciliation
//   - pkg/lifecycle: deprecation state machine and orphan cleanup
//   - pkg/snapshot: in-memory flow view
//   - pkg/sshkey: known_hosts parsing and formatting
//   - pkg/client: HTTP client used by the CLI verbs
//   - pkg/model: database models
//   - pkg/db: database connection utilities
//   - pkg/audit: audit logging
//   - pkg/config: configuration management
//
// # Quick Start
//
//	# Start the server (sqlite file store)
//	KEYFLOW_DATABASE_URL=/var/lib/keyflow/keyflow.db keyflowctl server
//
//	# Push a known_hosts file into a flow and pull the reconciled set back
//	keyflowctl sync --flow prod --file ~/.ssh/known_hosts --in-place
//
// # Environment Variables
//
//   - KEYFLOW_CONFIG_PATH: directory holding keyflow.yml
//   - KEYFLOW_DATABASE_URL (or DATABASE_URL): postgres URL or sqlite path
//   - KEYFLOW_BIND_ADDRESS, KEYFLOW_PORT: listen address
//   - KEYFLOW_ALLOWED_FLOWS: comma-separated flow allow-list
//   - KEYFLOW_LOG_LEVEL: debug, info, warn, error
package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/keyflow/keyflow/pkg/client"
)

var rootCmd = &cobra.Command{
	Use:   "keyflowctl",
	Short: "Centralized SSH known_hosts management",
	Long: `keyflowctl runs the keyflow server and drives its HTTP API.

The server keeps a deduplicated store of SSH host keys grouped into named
flows; clients resubmit their full known_hosts content and receive the
reconciled set back.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}

func defaultServerURL() string {
	if u := os.Getenv("KEYFLOW_SERVER_URL"); u != "" {
		return u
	}
	return "http://localhost:8372"
}

// apiClient builds the HTTP client shared by every non-server verb.
func apiClient(cmd *cobra.Command) *client.Client {
	u, _ := cmd.Flags().GetString("url")
	timeout, _ := cmd.Flags().GetInt("timeout")
	return client.NewClient(u, time.Duration(timeout)*time.Second)
}

func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("url", "u", defaultServerURL(), "keyflow server URL")
	cmd.Flags().Int("timeout", 30, "request timeout in seconds")
}
