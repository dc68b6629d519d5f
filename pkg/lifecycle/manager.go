// Package lifecycle owns the deprecation state machine. Per (host, flow) a
// key set is Active, Deprecated, or Absent; only the operations here move
// between those states, and only this package physically deletes records.
package lifecycle

import (
	"time"

	"github.com/keyflow/keyflow/pkg/server/store"
	"github.com/keyflow/keyflow/pkg/snapshot"
)

// FlowGate answers whether a flow is on the allow-list.
type FlowGate interface {
	FlowAllowed(name string) bool
}

// DeleteResult reports both quantities a permanent delete changes. The
// historical wire contract collapsed them into a single number; AffectedCount
// preserves that while the two real counts stay separately visible.
type DeleteResult struct {
	AssociationsRemoved int64
	RecordsRemoved      int64
}

// AffectedCount returns the legacy single-number approximation,
// max(associations removed, records removed).
func (r DeleteResult) AffectedCount() int64 {
	if r.RecordsRemoved > r.AssociationsRemoved {
		return r.RecordsRemoved
	}
	return r.AssociationsRemoved
}

// Manager runs lifecycle transitions. It is the only writer of the
// deprecated flag and the only entity that physically deletes records.
type Manager struct {
	store store.KeysStore
	snap  *snapshot.Snapshot
	gate  FlowGate
}

// NewManager creates a Manager over the given store, snapshot, and flow gate.
func NewManager(st store.KeysStore, snap *snapshot.Snapshot, gate FlowGate) *Manager {
	return &Manager{store: st, snap: snap, gate: gate}
}

// Deprecate moves host's active keys in flow to the deprecated state and
// returns the number of records changed. Zero means nothing was active.
func (m *Manager) Deprecate(host, flow string) (int64, error) {
	return m.setDeprecated(flow, []string{host}, true)
}

// Restore moves host's deprecated keys in flow back to active. Records that
// were already active are never touched.
func (m *Manager) Restore(host, flow string) (int64, error) {
	return m.setDeprecated(flow, []string{host}, false)
}

// BulkDeprecate applies Deprecate to every host in one transaction: either
// every given host's active keys flip, or none do.
func (m *Manager) BulkDeprecate(hosts []string, flow string) (int64, error) {
	return m.setDeprecated(flow, hosts, true)
}

// BulkRestore applies Restore to every host in one transaction.
func (m *Manager) BulkRestore(hosts []string, flow string) (int64, error) {
	return m.setDeprecated(flow, hosts, false)
}

func (m *Manager) setDeprecated(flow string, hosts []string, deprecated bool) (int64, error) {
	if !m.gate.FlowAllowed(flow) {
		return 0, store.ErrFlowNotAllowed
	}

	var affected int64
	err := m.store.Transaction(func(tx store.KeysTx) error {
		var err error
		affected, err = tx.SetDeprecated(flow, hosts, deprecated, time.Now().UTC())
		return err
	})
	if err != nil {
		return 0, err
	}

	if err := m.snap.Reload(m.store); err != nil {
		return 0, err
	}
	return affected, nil
}

// PermanentlyDelete removes host's association rows from flow, then
// physically deletes any of the affected records that no flow references
// anymore. A key shared with another flow survives until it is unreferenced
// everywhere (cross-flow orphan GC).
func (m *Manager) PermanentlyDelete(host, flow string) (DeleteResult, error) {
	if !m.gate.FlowAllowed(flow) {
		return DeleteResult{}, store.ErrFlowNotAllowed
	}

	var result DeleteResult
	err := m.store.Transaction(func(tx store.KeysTx) error {
		keyIDs, removed, err := tx.RemoveHostAssociations(flow, host)
		if err != nil {
			return err
		}
		result.AssociationsRemoved = removed
		if len(keyIDs) == 0 {
			return nil
		}

		deleted, err := tx.DeleteOrphanRecords(keyIDs)
		if err != nil {
			return err
		}
		result.RecordsRemoved = deleted
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}

	if err := m.snap.Reload(m.store); err != nil {
		return DeleteResult{}, err
	}
	return result, nil
}
