// Package mapping resolves canonical expression and bone names against the
// names a specific model exposes, and adapts template rotations to the
// resolved bones.
//
// Every function is pure. The synonym and bone-alternative tables are
// package-level data that is never mutated, so the package is safe for
// concurrent use without locking.
//
// Resolution is best effort: a name that cannot be resolved yields no
// result rather than an error, and callers drop it.
package mapping
