package fuse

import "errors"

// Sentinel error kinds a pass can return. Callers recover the kind with
// errors.Is even after a pass has wrapped it with context via
// github.com/pkg/errors.
var (
	// ErrInvariantViolation signals a malformed graph on entry: a missing
	// producer, a mismatched offset, a non-topological order. The pass
	// aborts; the caller must fix the graph upstream.
	ErrInvariantViolation = errors.New("fuse: invariant violation")

	// ErrUnsupportedOperationForType signals that constant folding was
	// asked to evaluate an (operation, element type) pair with no defined
	// semantics, e.g. And on Float. No mutation of the offending node is
	// observable.
	ErrUnsupportedOperationForType = errors.New("fuse: unsupported operation for type")

	// ErrMissingSubcircuit signals that a CallSubcircuit node names a
	// circuit absent from its module.
	ErrMissingSubcircuit = errors.New("fuse: missing subcircuit")

	// ErrBudgetExceeded classifies a spent FSR time budget. passes/fsr.Run
	// never returns it: when its context is done, Run reports the condition
	// through Result.BudgetExceeded instead, finalizing and returning
	// whatever was committed so far.
	ErrBudgetExceeded = errors.New("fuse: budget exceeded")
)
