package lifecycle

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyflow/keyflow/pkg/config"
	"github.com/keyflow/keyflow/pkg/db"
	"github.com/keyflow/keyflow/pkg/model"
	"github.com/keyflow/keyflow/pkg/reconcile"
	"github.com/keyflow/keyflow/pkg/server/store"
	gormstore "github.com/keyflow/keyflow/pkg/server/store/gorm"
	"github.com/keyflow/keyflow/pkg/snapshot"
)

const (
	keyOne   = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIOne root@web01"
	keyTwo   = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAITwo root@web01"
	keyThree = "ssh-rsa AAAAB3NzaC1yc2EAAAADAQABAAABThree deploy"
)

func newTestManager(t *testing.T, flows ...string) (*Manager, *reconcile.Engine, *snapshot.Snapshot) {
	t.Helper()

	gdb, err := db.Connect(db.Config{URL: filepath.Join(t.TempDir(), "keyflow.db")})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	st := gormstore.NewKeysStore(gdb)
	snap := snapshot.New()
	cfg := &config.Config{AllowedFlows: flows}
	return NewManager(st, snap, cfg), reconcile.NewEngine(st, snap, cfg), snap
}

func submit(t *testing.T, engine *reconcile.Engine, flow string, entries ...model.SSHKeyEntry) {
	t.Helper()
	_, err := engine.Submit(flow, entries)
	require.NoError(t, err)
}

func TestDeprecateAndRestore(t *testing.T) {
	manager, engine, snap := newTestManager(t, "prod")
	submit(t, engine, "prod",
		model.SSHKeyEntry{Server: "web01.example.com", PublicKey: keyOne},
		model.SSHKeyEntry{Server: "web01.example.com", PublicKey: keyTwo},
		model.SSHKeyEntry{Server: "web02.example.com", PublicKey: keyThree},
	)

	affected, err := manager.Deprecate("web01.example.com", "prod")
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	// Deprecated keys drop out of the default view but stay in the full one.
	assert.Len(t, snap.Flow("prod", false), 1)
	assert.Len(t, snap.Flow("prod", true), 3)

	t.Run("deprecating again is a no-op", func(t *testing.T) {
		affected, err := manager.Deprecate("web01.example.com", "prod")
		require.NoError(t, err)
		assert.Equal(t, int64(0), affected)
	})

	t.Run("restore flips exactly the deprecated subset", func(t *testing.T) {
		affected, err := manager.Restore("web01.example.com", "prod")
		require.NoError(t, err)
		assert.Equal(t, int64(2), affected)
		assert.Len(t, snap.Flow("prod", false), 3)
	})

	t.Run("restoring an active server is a no-op", func(t *testing.T) {
		affected, err := manager.Restore("web02.example.com", "prod")
		require.NoError(t, err)
		assert.Equal(t, int64(0), affected)
	})
}

func TestDeprecationIsSticky(t *testing.T) {
	manager, engine, snap := newTestManager(t, "prod")
	entry := model.SSHKeyEntry{Server: "web01.example.com", PublicKey: keyOne}
	submit(t, engine, "prod", entry)

	_, err := manager.Deprecate("web01.example.com", "prod")
	require.NoError(t, err)

	// An ordinary resubmission of the same key must not reactivate it.
	stats, err := engine.Submit("prod", []model.SSHKeyEntry{entry})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.IgnoredDeprecated)
	assert.Empty(t, snap.Flow("prod", false))

	// Only an explicit restore brings it back.
	affected, err := manager.Restore("web01.example.com", "prod")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.Len(t, snap.Flow("prod", false), 1)
}

func TestBulkOperations(t *testing.T) {
	manager, engine, snap := newTestManager(t, "prod")
	submit(t, engine, "prod",
		model.SSHKeyEntry{Server: "web01.example.com", PublicKey: keyOne},
		model.SSHKeyEntry{Server: "web02.example.com", PublicKey: keyTwo},
		model.SSHKeyEntry{Server: "web03.example.com", PublicKey: keyThree},
	)

	affected, err := manager.BulkDeprecate([]string{"web01.example.com", "web03.example.com", "ghost.example.com"}, "prod")
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
	assert.Len(t, snap.Flow("prod", false), 1)

	affected, err = manager.BulkRestore([]string{"web01.example.com", "web02.example.com", "web03.example.com"}, "prod")
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
	assert.Len(t, snap.Flow("prod", false), 3)
}

func TestPermanentlyDeleteWithOrphanGC(t *testing.T) {
	manager, engine, snap := newTestManager(t, "prod", "backup")
	shared := model.SSHKeyEntry{Server: "web01.example.com", PublicKey: keyOne}
	submit(t, engine, "prod", shared,
		model.SSHKeyEntry{Server: "web01.example.com", PublicKey: keyTwo})
	submit(t, engine, "backup", shared)

	result, err := manager.PermanentlyDelete("web01.example.com", "prod")
	require.NoError(t, err)

	// Two associations went away; only the prod-exclusive record was
	// physically deleted, the shared one survives through backup.
	assert.Equal(t, int64(2), result.AssociationsRemoved)
	assert.Equal(t, int64(1), result.RecordsRemoved)
	assert.Equal(t, int64(2), result.AffectedCount())

	assert.Empty(t, snap.Flow("prod", true))
	assert.Len(t, snap.Flow("backup", true), 1)

	t.Run("deleting from the last flow removes the record", func(t *testing.T) {
		result, err := manager.PermanentlyDelete("web01.example.com", "backup")
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.AssociationsRemoved)
		assert.Equal(t, int64(1), result.RecordsRemoved)
		assert.Empty(t, snap.Flow("backup", true))
	})

	t.Run("deleting an absent server reports zero", func(t *testing.T) {
		result, err := manager.PermanentlyDelete("ghost.example.com", "prod")
		require.NoError(t, err)
		assert.Equal(t, DeleteResult{}, result)
	})
}

func TestLifecycleGatesOnFlowAllowList(t *testing.T) {
	manager, _, _ := newTestManager(t, "prod")

	_, err := manager.Deprecate("web01.example.com", "staging")
	assert.ErrorIs(t, err, store.ErrFlowNotAllowed)

	_, err = manager.BulkRestore([]string{"web01.example.com"}, "staging")
	assert.ErrorIs(t, err, store.ErrFlowNotAllowed)

	_, err = manager.PermanentlyDelete("web01.example.com", "staging")
	assert.ErrorIs(t, err, store.ErrFlowNotAllowed)
}
