// Package storage is the persistence port of rxkeeper.
//
// # Overview
//
// The stores persist whole named collections of JSON records ("tasks",
// "compliance", "task_events", "user"). A Storage reads a collection as an
// ordered slice of records and replaces it wholesale on write.
//
// # Atomicity
//
// Every write call is crash-atomic: a reader never observes a partially
// written collection, and a WriteBatch either replaces all listed
// collections or none. The SQL backends use one transaction per call, Redis
// uses MULTI/EXEC and Memory swaps slices under a lock.
//
// # Concurrency
//
// Backends are safe for concurrent use, but the read-modify-write cycles of
// the stores above are not coordinated across processes: two writers of
// the same collection lose updates (last writer wins).
//
// Key Types
//
//   - Storage: the port used by the stores
//   - Memory: in-process backend, also used by tests
//   - SQLStorage: SQLite or PostgreSQL over database/sql
//   - RedisStorage: one Redis string key per collection
//
// Typical Usage
//
//	s, _ := storage.Open(ctx, storage.Options{Driver: storage.DriverSQLite, DSN: "rxkeeper.db"})
//	defer s.Close()
//	tasks, _ := storage.Load[models.Task](ctx, s, common.CollectionTasks)
package storage
