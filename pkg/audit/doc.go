// Package audit records who did what to which entity. Records are written
// after the operation succeeds through a Recorder that never fails the
// caller; sinks include PostgreSQL (which also backs the read API), an
// NDJSON file, and an in-memory logger for tests.
package audit
