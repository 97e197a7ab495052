// Package atomicfile persists documents so readers never observe a half-written file,
// and reads them back with a cascading recovery when the primary file is damaged.
//
// Writes go to a sibling temp file named <path>.tmp.<unique> which is renamed over the
// target. Before each write up to N prior versions are rotated into <path>.bak1 (newest)
// through <path>.bakN (oldest). Reads fall back from the primary file to the newest
// leftover temp file, then to the backups, then to a caller default.
//
// Rename gives atomicity, not serialization: two writers racing on one path lose one
// update (last rename wins). Callers must ensure a single writer per path, for example
// with a mutex around Update. Contexts carry tracing and metrics only; operations are
// not cancellable.
package atomicfile
