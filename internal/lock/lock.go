// Package lock serializes chapter reordering per project.
//
// A Locker hands out one holder per key at a time. Callers hold the lock for the
// whole read, plan and write sequence of a mutating operation so two requests
// against the same project can never interleave their reads and writes.
package lock

import "context"

// Locker acquires exclusive per-key locks.
type Locker interface {
	// Lock blocks until key is free or ctx is done. The returned func releases
	// the lock and is safe to call more than once.
	Lock(ctx context.Context, key string) (func(), error)
}
