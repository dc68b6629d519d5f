// Package snapshot maintains the read-optimized in-memory view of every flow
// and its current key set. The relational store stays the source of truth;
// the snapshot is rebuilt from it in full after each mutation, never patched
// incrementally.
package snapshot

import (
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/keyflow/keyflow/pkg/model"
	"github.com/keyflow/keyflow/pkg/server/store"
)

var rebuildsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "keyflow_snapshot_rebuilds_total",
	Help: "Total number of full snapshot rebuilds from the store",
})

// Source is anything the snapshot can rebuild itself from.
type Source interface {
	SnapshotRows() ([]store.SnapshotRow, error)
}

// Stats summarizes one flow's current key set.
type Stats struct {
	Total         int `json:"total"`
	Active        int `json:"active"`
	Deprecated    int `json:"deprecated"`
	UniqueServers int `json:"unique_servers"`
}

// Snapshot is the lock-guarded flow view. Mutating requests serialize on the
// write lock around Reload; GET requests take the read lock. It is owned by
// the server and passed by reference into handlers, never a package global.
type Snapshot struct {
	// reloadMu serializes whole rebuilds: it is held across the store read
	// and the swap, so a rebuild that read older state can never replace the
	// result of a rebuild that read newer state.
	reloadMu sync.Mutex

	mu    sync.RWMutex
	flows map[string][]model.SSHKeyEntry
}

// New returns an empty snapshot.
func New() *Snapshot {
	return &Snapshot{flows: make(map[string][]model.SSHKeyEntry)}
}

// Reload replaces the entire snapshot with the store's current state. Reloads
// run one at a time; readers only contend on the brief swap at the end.
func (s *Snapshot) Reload(src Source) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	rows, err := src.SnapshotRows()
	if err != nil {
		return err
	}

	flows := make(map[string][]model.SSHKeyEntry)
	for _, row := range rows {
		flows[row.Flow] = append(flows[row.Flow], model.SSHKeyEntry{
			Server:     row.Host,
			PublicKey:  row.Key,
			Deprecated: row.Deprecated,
		})
	}
	for _, entries := range flows {
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].Server != entries[j].Server {
				return entries[i].Server < entries[j].Server
			}
			return strings.Compare(entries[i].PublicKey, entries[j].PublicKey) < 0
		})
	}

	s.mu.Lock()
	s.flows = flows
	s.mu.Unlock()
	rebuildsTotal.Inc()
	return nil
}

// Flow returns a copy of the named flow's entries, omitting deprecated ones
// unless includeDeprecated is set. The result is never nil.
func (s *Snapshot) Flow(name string, includeDeprecated bool) []model.SSHKeyEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.flows[name]
	out := make([]model.SSHKeyEntry, 0, len(entries))
	for _, e := range entries {
		if e.Deprecated && !includeDeprecated {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Stats derives per-flow statistics from the current snapshot.
func (s *Snapshot) Stats(name string) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Stats
	servers := make(map[string]struct{})
	for _, e := range s.flows[name] {
		st.Total++
		if e.Deprecated {
			st.Deprecated++
		} else {
			st.Active++
		}
		servers[e.Server] = struct{}{}
	}
	st.UniqueServers = len(servers)
	return st
}
