package kernel

import (
	"runtime"

	"github.com/rs/zerolog"
)

// PolicyKind selects one of the four interchangeable scheduling policies at
// ProcessTable construction time. Unlike the teaching kernel this package is
// modeled on -- which picks a policy via a compile-time #ifdef -- PolicyKind
// is a runtime value, per the "policy as strategy" redesign direction.
type PolicyKind int

const (
	PolicyRR PolicyKind = iota
	PolicyFCFS
	PolicyPBS
	PolicyMLFQ
)

// String returns the build-time configuration name the policy corresponds
// to (SCHED_RR, SCHED_FCFS, ...), matching the vocabulary callers configure
// a build with.
func (k PolicyKind) String() string {
	switch k {
	case PolicyRR:
		return "SCHED_RR"
	case PolicyFCFS:
		return "SCHED_FCFS"
	case PolicyPBS:
		return "SCHED_PBS"
	case PolicyMLFQ:
		return "SCHED_MLFQ"
	default:
		return "SCHED_UNKNOWN"
	}
}

const (
	// NPROC is the default size of the process table.
	NPROC = 64
	// NOFILE is the default size of a process's open-file table.
	NOFILE = 16
	// MaxNameLen bounds Process.Name, matching the teaching kernel's
	// char name[16] (15 usable bytes plus a NUL terminator).
	MaxNameLen = 15
	// DefaultPriority is the priority newly allocated processes start at
	// under PBS. Other policies leave priority undefined (-1).
	DefaultPriority = 60

	numQueues = 5
)

// mlfqQuantum and mlfqAging carry the MLFQ tables verbatim from the
// teaching kernel's proc.h #define block (spec.md §3).
var mlfqQuantum = [numQueues]int{1, 2, 4, 8, 16}
var mlfqAging = [numQueues]int{-1, 10, 20, 30, 40}

// Config configures a ProcessTable. It follows the same "struct with
// optional-looking fields plus a defaulting constructor" shape as
// plib.LinuxInspectorConfig and host.LinuxReaderConfig: zero values are
// filled in by NewProcessTable, never by the caller.
type Config struct {
	// Policy selects the active scheduling policy. Zero value is PolicyRR.
	Policy PolicyKind
	// NumCPU is the number of logical CPUs the dispatcher simulates. Zero
	// means runtime.NumCPU().
	NumCPU int
	// NProc overrides the process table size. Zero means NPROC.
	NProc int

	Allocator Allocator
	VM        VM
	FS        FS

	// Logger receives debug-level trace events (quantum expiry, demotion,
	// aging, wakeup). Nil means zerolog.Nop(), matching the teaching
	// kernel's own sparing use of logging -- off unless a caller opts in.
	Logger *zerolog.Logger
}

// applyDefaults fills zero-valued fields of cfg and returns the result;
// the caller-supplied cfg is never mutated.
func (cfg Config) applyDefaults() Config {
	if cfg.NumCPU <= 0 {
		cfg.NumCPU = runtime.NumCPU()
	}
	if cfg.NProc <= 0 {
		cfg.NProc = NPROC
	}
	if cfg.Allocator == nil {
		cfg.Allocator = NewInMemAllocator(0)
	}
	if cfg.VM == nil {
		cfg.VM = NewInMemVM()
	}
	if cfg.FS == nil {
		cfg.FS = NewInMemFS()
	}
	if cfg.Logger == nil {
		nop := zerolog.Nop()
		cfg.Logger = &nop
	}
	return cfg
}

// DefaultConfig returns a Config with every field defaulted, using
// round-robin as the policy.
func DefaultConfig() Config {
	return Config{}.applyDefaults()
}
