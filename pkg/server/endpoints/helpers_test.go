package endpoints

import (
	"testing"

	"github.com/keyflow/keyflow/pkg/config"
	"github.com/keyflow/keyflow/pkg/server"
	"github.com/keyflow/keyflow/pkg/server/store"
	"github.com/keyflow/keyflow/pkg/snapshot"
)

// newTestServer builds a fully routed server over mock collaborators and a
// snapshot preloaded with the given rows.
func newTestServer(
	t *testing.T,
	flows []string,
	rows []store.SnapshotRow,
	engine server.Submitter,
	manager server.LifecycleManager,
	health store.HealthStore,
) *server.Server {
	t.Helper()

	cfg := &config.Config{AllowedFlows: flows}
	snap := snapshot.New()
	if err := snap.Reload(staticSource{rows: rows}); err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}

	s := server.NewServer(cfg, engine, manager, snap, health, "127.0.0.1", "0")
	RegisterAll(s)
	return s
}
