// Package kernel is xvsched's process-scheduling core: a fixed-size process
// table, a per-CPU dispatcher, four interchangeable scheduling policies
// (round-robin, first-come-first-served, priority-based, and an aging
// multilevel feedback queue), and the sleep/wake and tick-accounting
// primitives that sit underneath fork/exit/wait/kill.
//
// The table is protected by a single lock (ptableLock, modeled here as
// ProcessTable.mu) exactly as in the teaching kernel this package
// reimplements: every non-trivial operation on process state acquires it,
// and processes never observe each other's fields without holding it.
//
// External collaborators the real kernel would own (virtual memory, context
// switching, the filesystem, a block allocator) are modeled as small
// interfaces in collaborators.go with in-process stand-ins, so the core can
// be exercised without a real page table or trap frame.
package kernel
