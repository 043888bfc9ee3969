// Package storage opens the PostgreSQL connection pool and applies the
// application schema.
package storage
