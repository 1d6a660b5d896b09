package kernel

import "errors"

// Sentinel errors returned by the core's -1-returning operations (spec.md
// §7, tier 2). Panics, the other error tier, are raised directly at the
// call sites that detect a broken kernel invariant and are not modeled as
// error values.
var (
	// ErrTableFull means AllocSlot found no Unused slot.
	ErrTableFull = errors.New("kernel: process table full")

	// ErrAllocFailed means the kernel-stack allocator collaborator
	// returned an error during AllocSlot.
	ErrAllocFailed = errors.New("kernel: kernel-stack allocation failed")

	// ErrVMFailed means a VM collaborator call (Setup/Copy/Grow) failed.
	ErrVMFailed = errors.New("kernel: vm operation failed")

	// ErrUnknownPID means the given pid does not name a live slot.
	ErrUnknownPID = errors.New("kernel: no such pid")

	// ErrNoChildren means the caller has no children to reap, or was
	// killed while waiting for one.
	ErrNoChildren = errors.New("kernel: no children to wait for")
)
