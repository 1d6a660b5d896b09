package kernel

import "sync"

// ProcessTable is the fixed-size table of process slots and its single
// lock (spec.md §3's ptable_lock). All exported operations that touch more
// than one field, or more than one slot, acquire mu for their whole
// critical section, except Snapshot (introspect.go), which reads the slots
// without it.
type ProcessTable struct {
	mu sync.Mutex

	cfg     Config
	policy  Policy
	slots   []Process
	byPID   map[int]int // pid -> slot index, avoids the re-scan spec.md §9 flags as avoidable
	nextPID int
	initPID int

	mlfq [numQueues][]int // FIFO queues of pid, spec.md §3

	rt      map[int]*procRuntime
	cpuProc []int // cpu index -> running pid, 0 if idle (invariant 3)

	currentTick uint64 // ticks elapsed since boot, advanced by Tick (tick.go)
	rrCursor    int    // slot index to resume scanning from, round-robin fairness
}

// NewProcessTable constructs a ProcessTable with cfg's policy and
// collaborators, defaulting any zero-valued field of cfg.
func NewProcessTable(cfg Config) *ProcessTable {
	cfg = cfg.applyDefaults()
	t := &ProcessTable{
		cfg:     cfg,
		policy:  NewPolicy(cfg.Policy),
		slots:   make([]Process, cfg.NProc),
		byPID:   make(map[int]int, cfg.NProc),
		rt:      make(map[int]*procRuntime, cfg.NProc),
		cpuProc: make([]int, cfg.NumCPU),
	}
	t.nextPID = 1
	return t
}

// Config returns the table's effective configuration.
func (t *ProcessTable) Config() Config { return t.cfg }

// mustProc returns the slot for pid. Caller must hold mu. It panics if pid
// does not name a live slot, reserving that case for callers that have
// already validated the pid (internal bookkeeping, never user input).
func (t *ProcessTable) mustProc(pid int) *Process {
	idx, ok := t.byPID[pid]
	if !ok {
		panic("kernel: mustProc called with unknown pid")
	}
	return &t.slots[idx]
}

// lookup returns the slot for pid and whether it exists. Caller must hold mu.
func (t *ProcessTable) lookup(pid int) (*Process, bool) {
	idx, ok := t.byPID[pid]
	if !ok {
		return nil, false
	}
	return &t.slots[idx], true
}

func (t *ProcessTable) runtime(pid int) *procRuntime {
	t.mu.Lock()
	rt := t.rt[pid]
	t.mu.Unlock()
	return rt
}

// AllocSlot scans for the first Unused slot, transitions it to Embryo,
// assigns the next pid, and allocates a kernel stack (spec.md §4.1). On
// kernel-stack-allocation failure the slot reverts to Unused, without
// reacquiring the lock -- matching the teaching kernel's allocproc, which
// does the same outside the lock it already released.
func (t *ProcessTable) AllocSlot() (*Process, error) {
	t.mu.Lock()
	var p *Process
	for i := range t.slots {
		if t.slots[i].State == Unused {
			p = &t.slots[i]
			break
		}
	}
	if p == nil {
		t.mu.Unlock()
		return nil, ErrTableFull
	}

	p.State = Embryo
	p.PID = t.nextPID
	t.nextPID++
	t.byPID[p.PID] = indexOf(t.slots, p)
	p.CTime = t.currentTick
	p.RTime, p.WTime, p.TWTime, p.NRun = 0, 0, 0, 0
	p.Killed = false
	p.Parent = 0
	p.Chan = nil
	p.sleepTrace = nil

	if t.cfg.Policy == PolicyPBS {
		p.Priority = DefaultPriority
	} else {
		p.Priority = -1
	}
	if t.cfg.Policy == PolicyMLFQ {
		p.CurQ = 0
		p.NTicks = 0
		p.Q = [numQueues]uint64{}
	} else {
		p.CurQ = -1
		p.NTicks = -1
		p.Q = [numQueues]uint64{}
	}
	t.mu.Unlock()

	kstack, err := t.cfg.Allocator.AllocPage()
	if err != nil {
		p.State = Unused
		return nil, ErrAllocFailed
	}
	p.KStack = kstack

	t.rt[p.PID] = newProcRuntime()
	return p, nil
}

func indexOf(slots []Process, p *Process) int {
	for i := range slots {
		if &slots[i] == p {
			return i
		}
	}
	return -1
}

// UserInit allocates and prepares the first process the way the teaching
// kernel's userinit does: a page directory, the name "initcode", cwd "/",
// and an immediate transition to Runnable. It must be called exactly
// once; the resulting pid becomes the table's init process, the
// recipient of orphaned children (spec.md §4.1). w runs as init's body,
// exactly as any other process's workload does -- the teaching kernel
// gives initcode no special runtime, just the first turn at the CPU.
// A nil w defaults to IdleInit, a loop that reaps children as they exit
// and otherwise sleeps.
func (t *ProcessTable) UserInit(w Workload) (int, error) {
	if w == nil {
		w = IdleInit
	}
	p, err := t.AllocSlot()
	if err != nil {
		return 0, err
	}

	dir, err := t.cfg.VM.Setup()
	if err != nil {
		t.mu.Lock()
		p.State = Unused
		t.mu.Unlock()
		return 0, ErrVMFailed
	}

	t.mu.Lock()
	p.PgDir = dir
	p.Sz = pageSize
	p.Name = truncateName("initcode")
	p.Cwd = t.cfg.FS.RootInode()
	p.State = Runnable
	t.initPID = p.PID
	if t.cfg.Policy == PolicyMLFQ {
		t.mlfqEnqueue(p.CurQ, p.PID)
	}
	pid := p.PID
	t.mu.Unlock()

	t.runWorkload(pid, w)
	return pid, nil
}

const pageSize = 4096

func truncateName(name string) string {
	if len(name) > MaxNameLen {
		return name[:MaxNameLen]
	}
	return name
}

// Grow extends (n>0) or shrinks (n<0) pid's user memory by n bytes,
// returning the old size. A VM failure leaves Sz unchanged and returns -1
// via ErrVMFailed (spec.md §4.1).
func (t *ProcessTable) Grow(pid int, n int) (oldSz int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.lookup(pid)
	if !ok {
		return 0, ErrUnknownPID
	}
	oldSz = p.Sz
	if n == 0 {
		return oldSz, nil
	}
	newSz, err := t.cfg.VM.Grow(p.PgDir, p.Sz, n)
	if err != nil {
		return oldSz, ErrVMFailed
	}
	p.Sz = newSz
	t.cfg.VM.Switch(p.PgDir)
	return oldSz, nil
}

// Fork duplicates parentPID's address space, open files, and cwd into a
// fresh Runnable child, returning the child's pid (spec.md §4.1). The
// caller is responsible for giving the child something to execute; see
// Spawn/ForkSpawn in dispatch.go for the goroutine-driven convenience on
// top of this pure state transition.
func (t *ProcessTable) Fork(parentPID int) (int, error) {
	t.mu.Lock()
	parent, ok := t.lookup(parentPID)
	if !ok {
		t.mu.Unlock()
		return -1, ErrUnknownPID
	}
	parentSz, parentDir, parentName := parent.Sz, parent.PgDir, parent.Name
	var parentFiles [NOFILE]FileHandle
	copy(parentFiles[:], parent.Files[:])
	parentCwd := parent.Cwd
	t.mu.Unlock()

	child, err := t.AllocSlot()
	if err != nil {
		return -1, err
	}

	dir, err := t.cfg.VM.Copy(parentDir, parentSz)
	if err != nil {
		t.cfg.Allocator.FreePage(child.KStack)
		t.mu.Lock()
		child.State = Unused
		t.mu.Unlock()
		return -1, ErrVMFailed
	}

	t.mu.Lock()
	child.PgDir = dir
	child.Sz = parentSz
	child.Parent = parentPID
	for i, f := range parentFiles {
		if f != 0 {
			child.Files[i] = t.cfg.FS.DupFile(f)
		}
	}
	child.Cwd = t.cfg.FS.DupInode(parentCwd)
	child.Name = parentName
	child.State = Runnable
	if t.cfg.Policy == PolicyMLFQ {
		t.mlfqEnqueue(child.CurQ, child.PID)
	}
	pid := child.PID
	t.mu.Unlock()

	return pid, nil
}

// Exit closes pid's open files, releases its cwd, reparents its children to
// init (waking init if any are already Zombie), wakes pid's own parent, and
// transitions pid to Zombie. It panics if pid is the init process, matching
// spec.md §4.1, §7.
func (t *ProcessTable) Exit(pid int) {
	t.mu.Lock()
	p := t.mustProc(pid)
	if pid == t.initPID {
		t.mu.Unlock()
		panic("kernel: init exiting")
	}
	for i, f := range p.Files {
		if f != 0 {
			t.cfg.FS.CloseFile(f)
			p.Files[i] = 0
		}
	}
	if p.Cwd != 0 {
		t.cfg.FS.PutInode(p.Cwd)
		p.Cwd = 0
	}
	p.ETime = t.currentTick
	parentPID := p.Parent

	for i := range t.slots {
		c := &t.slots[i]
		if c.State != Unused && c.Parent == pid {
			c.Parent = t.initPID
			if c.State == Zombie {
				t.wakeupLocked(waitChan(t.initPID))
			}
		}
	}

	// p.State must reach Zombie before mu is released and the parent's
	// channel is woken: sleep(chan, ptable_lock) guarantees a waiter is
	// never missed only because wakeup(chan) and the state it's waiting to
	// observe are published atomically under the same lock (spec.md §5).
	// Waking the parent from a second, separately-acquired critical
	// section would let it race in, find no Zombie child yet, and go back
	// to sleep on a channel that will never be woken again.
	p.State = Zombie
	t.wakeupLocked(waitChan(parentPID))
	t.mu.Unlock()
}

// hasChildren reports whether pid has any live (non-Unused) child slots.
// Caller must hold mu.
func (t *ProcessTable) hasChildren(pid int) bool {
	for i := range t.slots {
		if t.slots[i].State != Unused && t.slots[i].Parent == pid {
			return true
		}
	}
	return false
}

// reapZombieChild looks for a Zombie child of pid, frees its kernel stack
// and page directory, clears its identity, and returns it to Unused.
// Caller must hold mu.
func (t *ProcessTable) reapZombieChild(pid int) (childPID int, wtime, rtime uint64, found bool) {
	for i := range t.slots {
		c := &t.slots[i]
		if c.State != Zombie || c.Parent != pid {
			continue
		}
		childPID = c.PID
		wtime = c.TWTime
		rtime = c.RTime

		t.cfg.Allocator.FreePage(c.KStack)
		t.cfg.VM.Free(c.PgDir)

		delete(t.byPID, c.PID)
		*c = Process{}
		c.State = Unused
		return childPID, wtime, rtime, true
	}
	return 0, 0, 0, false
}

// Kill sets pid's killed flag. A Sleeping target is promoted to Runnable
// immediately (spec.md §4.1); it observes the flag lazily, on its own next
// cooperative checkpoint.
func (t *ProcessTable) Kill(pid int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.lookup(pid)
	if !ok {
		return ErrUnknownPID
	}
	p.Killed = true
	if p.State == Sleeping {
		p.State = Runnable
		p.Chan = nil
		if t.cfg.Policy == PolicyMLFQ {
			t.mlfqEnqueue(p.CurQ, p.PID)
		}
	}
	return nil
}

// SetPriority changes pid's priority under PBS and returns the old value.
// The lock is held across the scan and the write (spec.md §9's resolution
// of the source's racy implicit-lock version), released before the
// optional yield the caller performs when priority was raised.
func (t *ProcessTable) SetPriority(pid int, newPriority int) (old int, err error) {
	t.mu.Lock()
	p, ok := t.lookup(pid)
	if !ok {
		t.mu.Unlock()
		return -1, ErrUnknownPID
	}
	old = p.Priority
	p.Priority = newPriority
	t.mu.Unlock()
	return old, nil
}

// Yield is the pure state-transition half of spec.md §4.3's yield(): it
// marks pid Runnable, applies any demotion Tick flagged for it, and
// re-enqueues it under MLFQ. The goroutine hand-off half -- actually
// giving up the calling workload's turn -- lives in RunContext.Yield.
func (t *ProcessTable) Yield(pid int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.mustProc(pid)
	p.State = Runnable
	if t.cfg.Policy == PolicyMLFQ {
		if p.pendingDemote {
			p.CurQ = min(p.CurQ+1, numQueues-1)
			p.pendingDemote = false
		}
		t.mlfqEnqueue(p.CurQ, p.PID)
	}
	p.preemptPending = false
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
