// Package gorm implements the store interfaces on a relational database via
// GORM. It carries no business rules beyond the uniqueness constraints of the
// schema; partitioning, lifecycle decisions, and orphan-GC policy live with
// the callers.
package gorm
