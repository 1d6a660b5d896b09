package kernel

import (
	"context"
	"runtime"
	"time"
)

// Workload is the function a simulated process runs. It receives a
// RunContext bound to its own pid and calls back into the table (Yield,
// Sleep, Wait/Waitx, SetPriority, Exit) at its own cooperative checkpoints,
// exactly as user code traps into the teaching kernel at syscall
// boundaries.
type Workload func(rc *RunContext)

// RunContext is the handle a running workload uses to call back into its
// own process's scheduling state. It is only valid for the lifetime of the
// Workload call it was passed to.
type RunContext struct {
	t   *ProcessTable
	pid int
	rt  *procRuntime
}

// PID returns the context's own process id.
func (rc *RunContext) PID() int { return rc.pid }

// park hands control back to the dispatcher (reason explains why) and
// blocks until the dispatcher resumes this pid again.
func (rc *RunContext) park(reason parkReason) {
	rc.rt.parked <- parkEvent{reason: reason}
	<-rc.rt.resume
}

// Yield gives up the rest of this turn, the blocking half of spec.md
// §4.3's yield() (the pure state transition is ProcessTable.Yield).
func (rc *RunContext) Yield() {
	rc.t.Yield(rc.pid)
	rc.park(parkYield)
}

// CheckPoint is the simulated timer-trap boundary: a CPU-bound Workload
// must call it periodically -- once per unit of simulated work, e.g. each
// iteration of a busy loop -- for spec.md §4.4's RR and MLFQ quanta to be
// enforced. Go gives library code no way to suspend a goroutine it didn't
// park itself, so unlike a real hardware timer interrupt, preemption here
// can only take effect the next time the running Workload reaches a
// CheckPoint (or any other RunContext call); a Workload that never calls
// back into its RunContext cannot be forced off the CPU. This is the same
// lazy-delivery tradeoff spec.md §4.1/§9 already accepts for killed: "the
// target observes killed on its next return to user mode", not
// synchronously.
//
// Tick flags preemptPending on the Running slot once RR's one-tick
// quantum, or the current MLFQ level's quantum, is used up (tick.go).
// CheckPoint is the only place that flag is read; when set, it performs
// exactly the state transition and park an externally forced yield would,
// handing the CPU to whichever other Runnable process the policy selects
// next instead of letting the caller monopolize it. Under FCFS and PBS,
// Tick never sets the flag, so CheckPoint is a cheap no-op there, matching
// their non-preemptive semantics.
func (rc *RunContext) CheckPoint() {
	rc.t.mu.Lock()
	p := rc.t.mustProc(rc.pid)
	preempt := p.preemptPending
	rc.t.mu.Unlock()
	if preempt {
		rc.Yield()
	}
}

// Sleep blocks the calling process on chanTok until a matching Wakeup
// (spec.md §4.2). tag is recorded for ProcDump, standing in for
// procdump's PC-chain walk (SPEC_FULL.md §4).
func (rc *RunContext) Sleep(chanTok any, tag string) {
	rc.t.sleep(rc.pid, chanTok, tag)
	rc.park(parkSleep)
}

// Wakeup wakes every process sleeping on chanTok (spec.md §4.2). It is the
// blocking-context passthrough to ProcessTable.Wakeup, letting a workload
// signal another the way a producer wakes a consumer.
func (rc *RunContext) Wakeup(chanTok any) {
	rc.t.Wakeup(chanTok)
}

// Killed reports whether this process has been marked for death, the
// lazy-delivery check a cooperative checkpoint is expected to make
// (spec.md §4.1, §9).
func (rc *RunContext) Killed() bool {
	rc.t.mu.Lock()
	defer rc.t.mu.Unlock()
	p, ok := rc.t.lookup(rc.pid)
	return ok && p.Killed
}

// Waitx blocks until a child exits, reaps it, and returns its pid together
// with its accumulated wait/run ticks (spec.md §4.1). It returns
// ErrNoChildren immediately if the caller has no children at all.
func (rc *RunContext) Waitx() (childPID int, wtime, rtime uint64, err error) {
	for {
		rc.t.mu.Lock()
		if !rc.t.hasChildren(rc.pid) {
			rc.t.mu.Unlock()
			return 0, 0, 0, ErrNoChildren
		}
		if cpid, wt, rt, ok := rc.t.reapZombieChild(rc.pid); ok {
			rc.t.mu.Unlock()
			return cpid, wt, rt, nil
		}
		rc.t.mu.Unlock()

		if rc.Killed() {
			return 0, 0, 0, ErrNoChildren
		}
		rc.Sleep(waitChan(rc.pid), "wait")
	}
}

// Wait is Waitx discarding the timing outputs, the same thin-wrapper
// relationship the source's wait/waitx pair has (SPEC_FULL.md §4).
func (rc *RunContext) Wait() (int, error) {
	pid, _, _, err := rc.Waitx()
	return pid, err
}

// SetPriority changes targetPID's PBS priority and returns its old value.
// Per spec.md §9's resolution of the source's set_priority, it is the
// *caller* that yields, unconditionally, when the priority was raised
// (numerically lowered).
func (rc *RunContext) SetPriority(targetPID, newPriority int) (int, error) {
	old, err := rc.t.SetPriority(targetPID, newPriority)
	if err != nil {
		return old, err
	}
	if newPriority < old {
		rc.Yield()
	}
	return old, nil
}

// Exit terminates the calling process immediately, the same way a
// workload returning normally does, but without requiring the Workload
// function itself to return. It never returns to its caller.
func (rc *RunContext) Exit() {
	rc.t.Exit(rc.pid)
	rc.rt.parked <- parkEvent{reason: parkExit}
	close(rc.rt.done)
	runtime.Goexit()
}

// IdleInit is UserInit's default workload when the caller passes a nil
// Workload: it reaps children as they become zombies and otherwise sleeps
// on its own wait channel, the minimal loop a teaching kernel's init
// performs once it has no shell left to fork. Exit wakes exactly this
// channel for both init's direct children and children reparented to it,
// so a later child, direct or inherited, always rouses it.
func IdleInit(rc *RunContext) {
	for {
		if _, _, _, err := rc.Waitx(); err != nil {
			rc.Sleep(waitChan(rc.PID()), "init-idle")
		}
	}
}

// Spawn allocates a fresh top-level process (parented to init, the way a
// daemon spawned directly by the kernel would be) and starts w running in
// its own goroutine once the dispatcher first selects it.
func (t *ProcessTable) Spawn(name string, w Workload) (int, error) {
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
	p.Name = truncateName(name)
	p.Cwd = t.cfg.FS.RootInode()
	p.Parent = t.initPID
	p.State = Runnable
	if t.cfg.Policy == PolicyMLFQ {
		t.mlfqEnqueue(p.CurQ, p.PID)
	}
	pid := p.PID
	t.mu.Unlock()

	t.runWorkload(pid, w)
	return pid, nil
}

// ForkSpawn forks parentPID and starts w running as the child, the
// goroutine-driven convenience built on the pure Fork.
func (t *ProcessTable) ForkSpawn(parentPID int, w Workload) (int, error) {
	pid, err := t.Fork(parentPID)
	if err != nil {
		return 0, err
	}
	t.runWorkload(pid, w)
	return pid, nil
}

// runWorkload starts pid's workload goroutine, parked until the dispatcher
// first resumes it. The goroutine's own exit (normal return from w) calls
// Exit on pid's behalf.
func (t *ProcessTable) runWorkload(pid int, w Workload) {
	rt := t.runtime(pid)
	go func() {
		<-rt.resume
		rc := &RunContext{t: t, pid: pid, rt: rt}
		w(rc)
		t.Exit(pid)
		rt.parked <- parkEvent{reason: parkExit}
		close(rt.done)
	}()
}

// StartCPUs starts n dispatcher goroutines, one per simulated CPU, each
// running the acquire-select-switch-release loop of spec.md §4.3 until ctx
// is done.
func (t *ProcessTable) StartCPUs(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		go t.runCPU(ctx, i)
	}
}

// runCPU is one simulated CPU's scheduler() loop: select a Runnable
// process under the policy, hand it the turn, and wait for it to park
// before selecting again.
func (t *ProcessTable) runCPU(ctx context.Context, cpuID int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		t.mu.Lock()
		p := t.policy.Select(t)
		if p == nil {
			t.mu.Unlock()
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Millisecond):
			}
			continue
		}
		p.State = Running
		p.WTime = 0
		p.NRun++
		if t.cfg.Policy == PolicyMLFQ {
			p.NTicks = 0
		}
		pid := p.PID
		t.cpuProc[cpuID] = pid
		rt := t.rt[pid]
		t.mu.Unlock()

		select {
		case rt.resume <- struct{}{}:
		case <-ctx.Done():
			return
		}

		select {
		case <-rt.parked:
		case <-ctx.Done():
			return
		}

		t.mu.Lock()
		t.cpuProc[cpuID] = 0
		t.mu.Unlock()
	}
}
