// Package reconcile implements the server-side dedup/upsert algorithm that
// runs on every submission. Host-key identity is content-addressed by
// (host, key), so resubmitting an unchanged file is a storage-level no-op,
// and a deprecated key never comes back to life through ordinary sync
// traffic.
package reconcile

import (
	"time"

	"github.com/keyflow/keyflow/pkg/model"
	"github.com/keyflow/keyflow/pkg/server/store"
	"github.com/keyflow/keyflow/pkg/snapshot"
	"github.com/keyflow/keyflow/pkg/sshkey"
)

// FlowGate answers whether a flow is on the allow-list.
type FlowGate interface {
	FlowAllowed(name string) bool
}

// SubmissionStats is the outcome of one Submit. IgnoredDeprecated sits
// outside the Total = Inserted + Unchanged arithmetic; it is reported for
// visibility only.
type SubmissionStats struct {
	Total             int `json:"total"`
	Inserted          int `json:"inserted"`
	Unchanged         int `json:"unchanged"`
	IgnoredDeprecated int `json:"ignored_deprecated"`
}

// Engine is the reconciliation engine. It is the only writer of key records
// on the submission path.
type Engine struct {
	store store.KeysStore
	snap  *snapshot.Snapshot
	gate  FlowGate
}

// NewEngine creates an Engine over the given store, snapshot, and flow gate.
func NewEngine(st store.KeysStore, snap *snapshot.Snapshot, gate FlowGate) *Engine {
	return &Engine{store: st, snap: snap, gate: gate}
}

// Submit reconciles a batch of entries into flow.
//
// The whole batch is validated up front: one malformed key rejects the
// submission atomically, naming the offending server. Inside a single
// transaction the batch is partitioned against existing records into new,
// unchanged-active, and ignored-deprecated classes; new records are inserted
// with fresh ids, and flow associations are ensured for the new and
// unchanged-active classes only. Deprecated records are neither reactivated
// nor associated; restoration is an explicit lifecycle operation.
//
// On success the flow snapshot is rebuilt from the store before returning, so
// the submitting client reads its own writes.
func (e *Engine) Submit(flow string, entries []model.SSHKeyEntry) (SubmissionStats, error) {
	if !e.gate.FlowAllowed(flow) {
		return SubmissionStats{}, store.ErrFlowNotAllowed
	}
	for _, entry := range entries {
		if !sshkey.ValidFormat(entry.PublicKey) {
			return SubmissionStats{}, &store.ValidationError{
				Server: entry.Server,
				Reason: "unsupported public key format",
			}
		}
	}

	// Dedupe the batch itself; a client file can legitimately repeat a pair.
	seen := make(map[store.HostKey]struct{}, len(entries))
	pairs := make([]store.HostKey, 0, len(entries))
	for _, entry := range entries {
		hk := store.HostKey{Host: entry.Server, Key: entry.PublicKey}
		if _, dup := seen[hk]; dup {
			continue
		}
		seen[hk] = struct{}{}
		pairs = append(pairs, hk)
	}

	var stats SubmissionStats
	err := e.store.Transaction(func(tx store.KeysTx) error {
		existing, err := tx.LookupRecords(pairs)
		if err != nil {
			return err
		}
		known := make(map[store.HostKey]store.KeyRecord, len(existing))
		for _, rec := range existing {
			known[store.HostKey{Host: rec.Host, Key: rec.Key}] = rec
		}

		now := time.Now().UTC()
		var (
			newPairs  []store.HostKey
			activeIDs []int64
		)
		for _, hk := range pairs {
			rec, ok := known[hk]
			switch {
			case !ok:
				newPairs = append(newPairs, hk)
			case rec.Deprecated:
				stats.IgnoredDeprecated++
			default:
				stats.Unchanged++
				activeIDs = append(activeIDs, rec.ID)
			}
		}

		if err := tx.TouchRecords(activeIDs, now); err != nil {
			return err
		}

		inserted, err := tx.InsertRecords(newPairs, now)
		if err != nil {
			return err
		}
		stats.Inserted = len(inserted)

		targetIDs := activeIDs
		for _, rec := range inserted {
			targetIDs = append(targetIDs, rec.ID)
		}
		if err := tx.EnsureAssociations(flow, targetIDs); err != nil {
			return err
		}

		stats.Total = stats.Inserted + stats.Unchanged
		return nil
	})
	if err != nil {
		return SubmissionStats{}, err
	}

	if err := e.snap.Reload(e.store); err != nil {
		return SubmissionStats{}, err
	}
	return stats, nil
}
