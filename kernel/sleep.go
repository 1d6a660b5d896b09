package kernel

// mlfqEnqueue appends pid to the back of queue q. Caller must hold mu.
func (t *ProcessTable) mlfqEnqueue(q int, pid int) {
	t.mlfq[q] = append(t.mlfq[q], pid)
}

// mlfqDequeueFront pops and returns the pid at the front of queue q, the
// way the teaching kernel's multilevel scheduler always takes the head of
// the highest non-empty queue. Caller must hold mu.
func (t *ProcessTable) mlfqDequeueFront(q int) (pid int, ok bool) {
	if len(t.mlfq[q]) == 0 {
		return 0, false
	}
	pid = t.mlfq[q][0]
	t.mlfq[q] = t.mlfq[q][1:]
	return pid, true
}

// mlfqRemove deletes pid from queue q if present, used by aging to move a
// process out of the middle of its current queue. Caller must hold mu.
func (t *ProcessTable) mlfqRemove(q int, pid int) bool {
	for i, v := range t.mlfq[q] {
		if v == pid {
			t.mlfq[q] = append(t.mlfq[q][:i], t.mlfq[q][i+1:]...)
			return true
		}
	}
	return false
}

// Sleep is the pure half of spec.md §4.2's sleep(): it records chanTok on
// pid and transitions it to Sleeping. tag is recorded into the process's
// sleepTrace for ProcDump, standing in for procdump's PC-chain walk (see
// SPEC_FULL.md §4). The blocking half -- actually parking the calling
// workload's goroutine until woken -- lives in RunContext.Sleep.
func (t *ProcessTable) sleep(pid int, chanTok any, tag string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.mustProc(pid)
	p.Chan = chanTok
	p.State = Sleeping
	p.sleepTrace = append(p.sleepTrace, tag)
	if len(p.sleepTrace) > 10 {
		p.sleepTrace = p.sleepTrace[len(p.sleepTrace)-10:]
	}
}

// Wakeup scans every Sleeping slot and promotes those sleeping on chanTok
// to Runnable, clearing Chan and re-enqueueing under MLFQ (spec.md §4.2,
// invariant "chan != nil iff Sleeping").
func (t *ProcessTable) Wakeup(chanTok any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wakeupLocked(chanTok)
}

// wakeupLocked is Wakeup's body for callers that already hold mu (Exit
// wakes init and its own parent while still inside its critical section).
func (t *ProcessTable) wakeupLocked(chanTok any) {
	for i := range t.slots {
		p := &t.slots[i]
		if p.State == Sleeping && p.Chan == chanTok {
			p.State = Runnable
			p.Chan = nil
			if t.cfg.Policy == PolicyMLFQ {
				t.mlfqEnqueue(p.CurQ, p.PID)
			}
			t.cfg.Logger.Debug().Int("pid", p.PID).Msg("woke process")
		}
	}
}
