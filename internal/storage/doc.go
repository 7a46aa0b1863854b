// Package storage persists the registration dataset for core.Store.
//
// Every backend stores the whole dataset and replaces it atomically on Save:
//
//   - BlobBackend encodes the dataset as an xlsx workbook and writes it to a
//     Blob (local filesystem with temp-file + rename, S3, or memory).
//   - SQLiteBackend and PostgresBackend keep one row per registration and
//     rewrite the table inside a single transaction.
//
// The workbook layout (sheet "Registrations", header row in core.Columns
// order) is the long-lived storage format and is shared with backups.
package storage
