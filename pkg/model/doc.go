// Package model defines the database models for keyflow.
//
// This package contains GORM models that map to the keyflow schema, plus the
// wire-level entry type shared between server and client.
//
// # Core Models
//
//   - KeyRecord: one deduplicated (host, public key) pair
//   - FlowAssociation: membership of a key record in a named flow
//   - SSHKeyEntry: the JSON wire form of one known_hosts entry
//
// # Database Schema
//
// The schema works on PostgreSQL and sqlite with two tables:
//
//   - keys: deduplicated host keys with lifecycle state
//   - flows: (flow name, key id) association rows
package model
