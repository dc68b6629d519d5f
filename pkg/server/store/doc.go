// Package store provides the storage abstractions for the keyflow server.
//
// It defines the persistence interfaces and the shared error taxonomy,
// decoupling the reconciliation engine, lifecycle manager, and HTTP endpoints
// from the concrete database implementation. The gorm subpackage holds the
// relational implementation; tests substitute mocks or an in-memory sqlite
// store.
//
// # Available Stores
//
//   - KeysStore: key record and flow association persistence, transactional
//   - HealthStore: connectivity probe for the status endpoint
//
// # Error taxonomy
//
//	ValidationError  client-caused (malformed key); maps to 400
//	ErrFlowNotAllowed flow missing from the allow-list; maps to 403
//	ConnectionError  broken database connection; fatal to the process
package store
