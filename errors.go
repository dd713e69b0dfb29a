package bptree

import "errors"

// ErrInvalidBranchingFactor is returned by New when BranchingFactor < 4.
var ErrInvalidBranchingFactor = errors.New("bptree: branching factor must be >= 4")

// ErrInvalidBulkLoadInput is returned by BulkLoad when the input pairs are
// not in strictly increasing key order (or contain a duplicate key). The
// tree is left exactly as it was before the call.
var ErrInvalidBulkLoadInput = errors.New("bptree: bulk load input is not strictly increasing")

// ErrConcurrentMutation is reported by Cursor.Err after Cursor.Next finds
// that the tree has been mutated since the cursor was constructed (or
// since its last successful step). The cursor is poisoned thereafter:
// every subsequent Next call returns false and Err keeps returning this
// same error.
var ErrConcurrentMutation = errors.New("bptree: cursor used after a concurrent mutation")

// ErrInvariantViolation is the error CheckInvariants returns when it finds
// a structural invariant broken. It signals a programmer
// error in the engine itself, not caller misuse.
var ErrInvariantViolation = errors.New("bptree: invariant violation")
