package audit

import "fmt"

// SubmitEvent records one reconciliation submission.
type SubmitEvent struct {
	Flow              string
	ClientIP          string
	Total             int
	Inserted          int
	Unchanged         int
	IgnoredDeprecated int
}

func (e SubmitEvent) Action() string {
	return "submit"
}

func (e SubmitEvent) Message() string {
	return fmt.Sprintf("flow %s reconciled %d keys (%d new, %d unchanged, %d deprecated ignored)",
		e.Flow, e.Total, e.Inserted, e.Unchanged, e.IgnoredDeprecated)
}

func (e SubmitEvent) Fields() []interface{} {
	return []interface{}{
		"flow", e.Flow,
		"client_ip", e.ClientIP,
		"total", e.Total,
		"inserted", e.Inserted,
		"unchanged", e.Unchanged,
		"ignored_deprecated", e.IgnoredDeprecated,
	}
}

// DeprecateEvent records a single-host deprecation.
type DeprecateEvent struct {
	Flow     string
	Host     string
	ClientIP string
	Affected int64
}

func (e DeprecateEvent) Action() string {
	return "deprecate"
}

func (e DeprecateEvent) Message() string {
	return fmt.Sprintf("deprecated %d keys for %s in flow %s", e.Affected, e.Host, e.Flow)
}

func (e DeprecateEvent) Fields() []interface{} {
	return []interface{}{"flow", e.Flow, "host", e.Host, "client_ip", e.ClientIP, "affected", e.Affected}
}

// RestoreEvent records a single-host restoration.
type RestoreEvent struct {
	Flow     string
	Host     string
	ClientIP string
	Affected int64
}

func (e RestoreEvent) Action() string {
	return "restore"
}

func (e RestoreEvent) Message() string {
	return fmt.Sprintf("restored %d keys for %s in flow %s", e.Affected, e.Host, e.Flow)
}

func (e RestoreEvent) Fields() []interface{} {
	return []interface{}{"flow", e.Flow, "host", e.Host, "client_ip", e.ClientIP, "affected", e.Affected}
}

// DeleteEvent records a permanent per-host deletion, including the orphan GC
// outcome.
type DeleteEvent struct {
	Flow                string
	Host                string
	ClientIP            string
	AssociationsRemoved int64
	RecordsRemoved      int64
}

func (e DeleteEvent) Action() string {
	return "delete"
}

func (e DeleteEvent) Message() string {
	return fmt.Sprintf("deleted %s from flow %s (%d associations, %d orphaned records)",
		e.Host, e.Flow, e.AssociationsRemoved, e.RecordsRemoved)
}

func (e DeleteEvent) Fields() []interface{} {
	return []interface{}{
		"flow", e.Flow,
		"host", e.Host,
		"client_ip", e.ClientIP,
		"associations_removed", e.AssociationsRemoved,
		"records_removed", e.RecordsRemoved,
	}
}

// BulkLifecycleEvent records a bulk deprecate or restore.
type BulkLifecycleEvent struct {
	Verb     string // "bulk-deprecate" or "bulk-restore"
	Flow     string
	ClientIP string
	Hosts    int
	Affected int64
}

func (e BulkLifecycleEvent) Action() string {
	return e.Verb
}

func (e BulkLifecycleEvent) Message() string {
	return fmt.Sprintf("%s touched %d keys across %d hosts in flow %s", e.Verb, e.Affected, e.Hosts, e.Flow)
}

func (e BulkLifecycleEvent) Fields() []interface{} {
	return []interface{}{"flow", e.Flow, "client_ip", e.ClientIP, "hosts", e.Hosts, "affected", e.Affected}
}
