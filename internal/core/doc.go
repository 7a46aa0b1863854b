// Package core provides the registration record store and the reporting
// engine built on top of it.
//
// This package is the heart of the portal, containing all domain logic
// independent of any transport or storage technology. It can be used by web
// handlers, the backup scheduler, or tests without modification.
//
// # Architecture
//
//   - Store: the single owner of the registration dataset. All reads and
//     writes go through it.
//   - Backend: pluggable whole-dataset persistence (see package storage).
//   - Query engine: [Filter], [Query] and [Select] derive views of a snapshot.
//   - Aggregation: [ComputeStats] counts status values over the full dataset.
//   - Audit: every mutation is logged as a structured audit entry.
//
// # Consistency
//
// Mutations run inside one critical section that covers the duplicate check,
// the in-memory change and the persist step. A mutation becomes visible to
// readers only after the backend has durably replaced the stored dataset:
//
//	rec, err := store.Create(ctx, core.CreateInput{...})
//	var dup *core.DuplicateError
//	if errors.As(err, &dup) {
//	    // dup.Field is "email" or "phone"
//	}
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - VAL001-VAL003: Validation errors
//   - REG001-REG002: Duplicate and missing registrations
//   - STO001: Storage failures
//   - EXP001-EXP002: Export errors
//   - AUTH001-AUTH002: Admin session errors
//
// See error_messages.go for the complete error code reference.
package core
