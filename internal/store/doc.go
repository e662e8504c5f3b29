// Package store archives finished summary runs to PostgreSQL.
//
// The archive is append-only history for later inspection; no run ever reads
// it back. It is optional and skipped entirely when no database is
// configured.
package store
