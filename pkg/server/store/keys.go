package store

import "time"

// HostKey is the content identity of a key record.
type HostKey struct {
	Host string
	Key  string
}

// KeyRecord is the store-level view of one deduplicated (host, key) pair.
type KeyRecord struct {
	ID         int64
	Host       string
	Key        string
	Updated    time.Time
	Deprecated bool
}

// SnapshotRow is one (flow, host, key, deprecated) tuple from the join of
// flow associations onto key records, used to rebuild the in-memory snapshot.
type SnapshotRow struct {
	Flow       string
	Host       string
	Key        string
	Deprecated bool
}

// KeysTx is the set of mutations and lookups available inside one store
// transaction. Everything a single Submit or lifecycle operation does happens
// through one KeysTx, so a persistence failure rolls the whole operation back.
type KeysTx interface {
	// LookupRecords returns the existing records matching any of the given
	// (host, key) pairs.
	LookupRecords(pairs []HostKey) ([]KeyRecord, error)

	// InsertRecords inserts one record per pair with updated=now and returns
	// the records with their newly assigned ids.
	InsertRecords(pairs []HostKey, now time.Time) ([]KeyRecord, error)

	// TouchRecords bumps updated on the given records.
	TouchRecords(keyIDs []int64, now time.Time) error

	// EnsureAssociations inserts (flow, keyID) association rows for any of
	// the given ids not already associated; existing rows are silently kept.
	EnsureAssociations(flow string, keyIDs []int64) error

	// SetDeprecated flips the deprecation flag (and bumps updated) on records
	// whose host is in hosts, which are associated with flow, and whose
	// current flag differs from deprecated. Returns rows changed.
	SetDeprecated(flow string, hosts []string, deprecated bool, now time.Time) (int64, error)

	// RemoveHostAssociations deletes flow's association rows for the given
	// host and returns the affected key ids together with the number of rows
	// removed.
	RemoveHostAssociations(flow, host string) (keyIDs []int64, removed int64, err error)

	// DeleteOrphanRecords physically deletes those of the given records that
	// no flow references anymore, returning the number deleted.
	DeleteOrphanRecords(keyIDs []int64) (int64, error)
}

// KeysStore is the durable key/association store.
type KeysStore interface {
	// Transaction runs fn inside a single database transaction. fn returning
	// an error rolls everything back.
	Transaction(fn func(tx KeysTx) error) error

	// SnapshotRows returns every (flow, host, key, deprecated) tuple for
	// snapshot rebuilding.
	SnapshotRows() ([]SnapshotRow, error)
}

// HealthStore probes backing-store connectivity.
type HealthStore interface {
	CheckConnectivity() error
}
