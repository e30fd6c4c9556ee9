// Package blob provides the key-value store that acts as the system of
// record for task results and progress. The webhook handler is the only
// writer, the cleanup endpoint the only deleter; pollers only read.
// Backends: in-memory (tests, single-process), Redis, and Postgres.
package blob
